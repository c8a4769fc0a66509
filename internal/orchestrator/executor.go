// Package orchestrator executes workflow task graphs: tasks run
// sequentially in declaration order, dependencies resolve depth-first
// with memoized outputs, and failures follow the configured policy.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scribe-stack/scribe-machine/internal/errors"
	"github.com/scribe-stack/scribe-machine/internal/logging"
	"github.com/scribe-stack/scribe-machine/internal/template"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

// FailurePolicy controls what happens when a task fails.
type FailurePolicy string

const (
	// FailurePolicyFallback records deterministic fallback content for
	// the failed task and continues the pipeline.
	FailurePolicyFallback FailurePolicy = "fallback"
	// FailurePolicyPropagate fails the workflow on the first task error.
	FailurePolicyPropagate FailurePolicy = "propagate"
)

// Valid returns true if this is a recognized policy.
func (p FailurePolicy) Valid() bool {
	return p == FailurePolicyFallback || p == FailurePolicyPropagate
}

// ParseFailurePolicy parses a policy name, defaulting to fallback for
// the empty string.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "":
		return FailurePolicyFallback, nil
	case string(FailurePolicyFallback):
		return FailurePolicyFallback, nil
	case string(FailurePolicyPropagate):
		return FailurePolicyPropagate, nil
	}
	return "", fmt.Errorf("unknown failure policy: %s (want fallback or propagate)", s)
}

// Runner executes a single task and returns its output.
type Runner interface {
	RunTask(ctx context.Context, task *types.Task, ec *types.ExecutionContext) (string, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, task *types.Task, ec *types.ExecutionContext) (string, error)

// RunTask implements Runner.
func (f RunnerFunc) RunTask(ctx context.Context, task *types.Task, ec *types.ExecutionContext) (string, error) {
	return f(ctx, task, ec)
}

// TaskDoneFunc fires after a task resolves with its recorded output
// (real or fallback).
type TaskDoneFunc func(taskID, output string)

// Executor runs a validated workflow to completion. It holds no
// per-run state, so one instance serves concurrent workflow runs.
type Executor struct {
	runner Runner
	policy FailurePolicy
	logger *slog.Logger
}

// NewExecutor creates a workflow executor.
func NewExecutor(runner Runner, policy FailurePolicy, logger *slog.Logger) *Executor {
	if !policy.Valid() {
		policy = FailurePolicyFallback
	}
	return &Executor{
		runner: runner,
		policy: policy,
		logger: logger,
	}
}

// ExecuteWorkflow runs every task in declaration order. The workflow
// must be in the ready state. Outputs are memoized: each task runs at
// most once even when multiple tasks depend on it. Under the fallback
// policy a failed task keeps the pipeline alive with synthesized
// content; under propagate the first failure fails the workflow.
// onTaskDone, when non-nil, fires after each task resolves; it belongs
// to this run only and is never retained.
func (e *Executor) ExecuteWorkflow(ctx context.Context, wf *types.Workflow, ec *types.ExecutionContext, onTaskDone TaskDoneFunc) error {
	if err := wf.Start(); err != nil {
		return err
	}
	logger := logging.WithWorkflow(e.logger, wf.ID).With("workflow_type", wf.Type)
	logger.Info("workflow execution started", "tasks", len(wf.Tasks), "policy", string(e.policy))

	outputs := make(map[string]string, len(wf.Tasks))
	tasks := wf.TaskMap()

	var lastOutput string
	for _, task := range wf.Tasks {
		out, err := e.executeTask(ctx, task, tasks, outputs, ec, onTaskDone, logger)
		if err != nil {
			msg := err.Error()
			logger.Error("workflow execution failed", "task_id", task.ID, "error", msg)
			if ferr := wf.Fail(msg); ferr != nil {
				return ferr
			}
			return errors.WorkflowFailed(wf.ID, err)
		}
		lastOutput = out
	}

	if !wf.AllDone() {
		return errors.WorkflowFailed(wf.ID, fmt.Errorf("tasks not terminal after execution"))
	}
	if wf.HasFailed() {
		logger.Warn("workflow completed with fallback content for failed tasks")
	}
	if err := wf.Complete(lastOutput); err != nil {
		return err
	}
	logger.Info("workflow execution completed", "duration", wf.Duration())
	return nil
}

// executeTask resolves the task's dependencies depth-first, then runs
// the task itself. Already-resolved tasks return their memoized output.
func (e *Executor) executeTask(ctx context.Context, task *types.Task, tasks map[string]*types.Task, outputs map[string]string, ec *types.ExecutionContext, onTaskDone TaskDoneFunc, logger *slog.Logger) (string, error) {
	if out, done := outputs[task.ID]; done {
		return out, nil
	}

	for _, depID := range task.Dependencies {
		dep, ok := tasks[depID]
		if !ok {
			return "", errors.DanglingDependency(task.ID, depID)
		}
		if _, err := e.executeTask(ctx, dep, tasks, outputs, ec, onTaskDone, logger); err != nil {
			return "", err
		}
	}

	if err := task.Start(); err != nil {
		return "", err
	}
	tlogger := logging.WithTask(logger, task.ID, task.Name)
	tlogger.Info("task started", "agent_role", task.AgentRole)

	// Resolve {{...}} references against the context plus all outputs
	// recorded so far.
	vars := ec.Flatten()
	for id, out := range outputs {
		vars[id] = out
		vars[id+"_output"] = out
	}
	task.Description = template.Substitute(task.Description, vars)

	out, err := e.runner.RunTask(ctx, task, ec)
	if err != nil {
		if ferr := task.Fail(err.Error()); ferr != nil {
			return "", ferr
		}
		if e.policy == FailurePolicyPropagate {
			return "", errors.TaskFailed(task.ID, err)
		}

		tlogger.Warn("task failed, using fallback content", "error", err)
		out = FallbackContent(task, ec)
	} else {
		if cerr := task.Complete(out); cerr != nil {
			return "", cerr
		}
		tlogger.Info("task completed", "output_length", len(out), "duration", task.Duration())
	}

	outputs[task.ID] = out
	ec.SetOutput(task.ID, out)
	if onTaskDone != nil {
		onTaskDone(task.ID, out)
	}
	return out, nil
}
