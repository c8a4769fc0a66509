// Package workflows implements the workflow type registry, the handler
// lifecycle, and the concrete content-generation handlers.
package workflows

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/scribe-stack/scribe-machine/internal/errors"
	"github.com/scribe-stack/scribe-machine/internal/orchestrator"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

// Handler executes one workflow type end to end.
type Handler interface {
	// Type returns the workflow type identifier.
	Type() string
	// Template returns the immutable descriptor for this type.
	Template() *Template
	// Execute runs the full lifecycle against the execution context.
	Execute(ctx context.Context, ec *types.ExecutionContext) (*types.WorkflowResult, error)
}

// Hooks are the overridable lifecycle points of the base handler.
// DefaultHooks provides no-op defaults; concrete handlers embed it and
// override what they need.
type Hooks interface {
	// ValidateInputs runs after the template's required-variable check.
	ValidateInputs(ec *types.ExecutionContext) error
	// PrepareContext sets defaults and derived values before execution.
	PrepareContext(ec *types.ExecutionContext) error
	// ShouldSkipTask drops a template task from this run.
	ShouldSkipTask(taskID string, ec *types.ExecutionContext) bool
	// PostProcessTask runs after each task resolves.
	PostProcessTask(taskID, output string, ec *types.ExecutionContext)
	// PostProcessWorkflow runs once after all tasks resolve.
	PostProcessWorkflow(ec *types.ExecutionContext)
	// FinalTaskID names the task whose output is the workflow result.
	FinalTaskID() string
}

// DefaultHooks is the no-op Hooks implementation.
type DefaultHooks struct{}

func (DefaultHooks) ValidateInputs(*types.ExecutionContext) error                { return nil }
func (DefaultHooks) PrepareContext(*types.ExecutionContext) error                { return nil }
func (DefaultHooks) ShouldSkipTask(string, *types.ExecutionContext) bool         { return false }
func (DefaultHooks) PostProcessTask(string, string, *types.ExecutionContext)     {}
func (DefaultHooks) PostProcessWorkflow(*types.ExecutionContext)                 {}
func (DefaultHooks) FinalTaskID() string                                         { return "" }

// Base implements the handler lifecycle: validate inputs, prepare
// context, build the workflow from the template, execute the task
// graph, and post-process. Concrete handlers provide the hooks.
type Base struct {
	workflowType string
	template     *Template
	executor     *orchestrator.Executor
	hooks        Hooks
	logger       *slog.Logger
}

// NewBase creates the shared handler core.
func NewBase(workflowType string, tpl *Template, executor *orchestrator.Executor, hooks Hooks, logger *slog.Logger) *Base {
	return &Base{
		workflowType: workflowType,
		template:     tpl,
		executor:     executor,
		hooks:        hooks,
		logger:       logger.With("workflow_type", workflowType),
	}
}

// Type returns the workflow type identifier.
func (b *Base) Type() string { return b.workflowType }

// Template returns the descriptor.
func (b *Base) Template() *Template { return b.template }

// Execute runs the full lifecycle.
func (b *Base) Execute(ctx context.Context, ec *types.ExecutionContext) (*types.WorkflowResult, error) {
	b.logger.Info("workflow handler started")

	if err := b.validateRequiredVars(ec); err != nil {
		return nil, err
	}
	if err := b.hooks.ValidateInputs(ec); err != nil {
		return nil, err
	}
	if err := b.hooks.PrepareContext(ec); err != nil {
		return nil, err
	}

	wf, err := b.buildWorkflow(ec)
	if err != nil {
		return nil, err
	}
	ec.WorkflowID = wf.ID
	ec.WorkflowName = wf.Name

	// The executor is shared between handlers; the per-run hook rides
	// along as an argument so runs never see each other's context.
	execErr := b.executor.ExecuteWorkflow(ctx, wf, ec, func(taskID, output string) {
		b.hooks.PostProcessTask(taskID, output, ec)
	})

	if execErr == nil {
		wf.FinalOutput = b.selectFinalOutput(ec)
		b.hooks.PostProcessWorkflow(ec)
	}

	result := types.NewResultFromWorkflow(wf, ec)
	if execErr != nil {
		b.logger.Error("workflow handler failed", "error", execErr)
		return result, execErr
	}
	result.FinalOutput = wf.FinalOutput
	b.logger.Info("workflow handler completed", "final_output_length", len(result.FinalOutput))
	return result, nil
}

// validateRequiredVars enforces the template's required variables.
// Empty values count as missing, matching blank-on-missing substitution.
func (b *Base) validateRequiredVars(ec *types.ExecutionContext) error {
	var missing []string
	for _, name := range b.template.RequiredVars() {
		v, ok := ec.Get(name)
		if !ok || fmt.Sprintf("%v", v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.ValidationMissingVars(b.workflowType, missing)
	}
	return nil
}

// buildWorkflow instantiates tasks from the template, dropping skipped
// tasks and pruning their IDs from remaining dependency lists, then
// validates the graph and marks the workflow ready.
func (b *Base) buildWorkflow(ec *types.ExecutionContext) (*types.Workflow, error) {
	wf := types.NewWorkflow(
		uuid.NewString(),
		fmt.Sprintf("%s_%s", b.workflowType, ec.Topic),
		b.workflowType,
	)
	wf.Description = b.template.Description

	skipped := make(map[string]bool)
	for _, def := range b.template.Tasks {
		if b.hooks.ShouldSkipTask(def.ID, ec) {
			b.logger.Info("skipping task", "task_id", def.ID)
			skipped[def.ID] = true
		}
	}

	for _, def := range b.template.Tasks {
		if skipped[def.ID] {
			continue
		}
		deps := make([]string, 0, len(def.Dependencies))
		for _, dep := range def.Dependencies {
			if !skipped[dep] {
				deps = append(deps, dep)
			}
		}
		task := types.NewTask(def.ID, def.Name, def.DescriptionTemplate, def.Agent, deps)
		if err := wf.AddTask(task); err != nil {
			return nil, err
		}
	}

	if err := wf.MarkReady(); err != nil {
		return nil, err
	}
	b.logger.Debug("workflow built", "workflow_id", wf.ID, "tasks", len(wf.Tasks))
	return wf, nil
}

// selectFinalOutput prefers the designated final task's output and
// falls back to the longest recorded output.
func (b *Base) selectFinalOutput(ec *types.ExecutionContext) string {
	if id := b.hooks.FinalTaskID(); id != "" {
		if out, ok := ec.Output(id); ok {
			return out
		}
	}
	ids := make([]string, 0, len(ec.Outputs))
	for id := range ec.Outputs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var longest string
	for _, id := range ids {
		if out := ec.Outputs[id]; len(out) > len(longest) {
			longest = out
		}
	}
	return longest
}
