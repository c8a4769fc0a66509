package types

import (
	"fmt"
	"time"

	"github.com/scribe-stack/scribe-machine/internal/errors"
)

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft     WorkflowStatus = "draft"     // Being assembled, tasks may still be added
	WorkflowStatusReady     WorkflowStatus = "ready"     // Validated, graph is acyclic
	WorkflowStatusRunning   WorkflowStatus = "running"   // Executor is processing tasks
	WorkflowStatusCompleted WorkflowStatus = "completed" // All tasks finished
	WorkflowStatusFailed    WorkflowStatus = "failed"    // A task failed and policy propagated it
	WorkflowStatusCancelled WorkflowStatus = "cancelled" // Cancelled before completion
)

// Valid returns true if this is a recognized workflow status.
func (s WorkflowStatus) Valid() bool {
	switch s {
	case WorkflowStatusDraft, WorkflowStatusReady, WorkflowStatusRunning,
		WorkflowStatusCompleted, WorkflowStatusFailed, WorkflowStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if this status is final.
func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowStatusCompleted || s == WorkflowStatusFailed || s == WorkflowStatusCancelled
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s WorkflowStatus) CanTransitionTo(target WorkflowStatus) bool {
	switch s {
	case WorkflowStatusDraft:
		return target == WorkflowStatusReady || target == WorkflowStatusCancelled
	case WorkflowStatusReady:
		return target == WorkflowStatusRunning || target == WorkflowStatusCancelled
	case WorkflowStatusRunning:
		return target == WorkflowStatusCompleted || target == WorkflowStatusFailed || target == WorkflowStatusCancelled
	case WorkflowStatusCompleted, WorkflowStatusFailed, WorkflowStatusCancelled:
		return false // Terminal states
	}
	return false
}

// Workflow is an ordered collection of tasks with a dependency graph.
// Tasks execute in declaration order; the order is preserved from assembly.
type Workflow struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`

	Status      WorkflowStatus `yaml:"status"`
	CreatedAt   time.Time      `yaml:"created_at"`
	StartedAt   *time.Time     `yaml:"started_at,omitempty"`
	CompletedAt *time.Time     `yaml:"completed_at,omitempty"`

	// Tasks in declaration order
	Tasks []*Task `yaml:"tasks"`

	// FinalOutput is the workflow-level result selected after execution.
	FinalOutput string `yaml:"final_output,omitempty"`
	ErrorMsg    string `yaml:"error,omitempty"`
}

// NewWorkflow creates a draft workflow.
func NewWorkflow(id, name, workflowType string) *Workflow {
	return &Workflow{
		ID:        id,
		Name:      name,
		Type:      workflowType,
		Status:    WorkflowStatusDraft,
		CreatedAt: time.Now(),
	}
}

// AddTask appends a task to the workflow. Only draft workflows accept tasks.
func (w *Workflow) AddTask(task *Task) error {
	if w.Status != WorkflowStatusDraft {
		return fmt.Errorf("cannot add task to workflow in status %s", w.Status)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	for _, existing := range w.Tasks {
		if existing.ID == task.ID {
			return fmt.Errorf("task %s already exists", task.ID)
		}
	}
	w.Tasks = append(w.Tasks, task)
	return nil
}

// GetTask retrieves a task by ID.
func (w *Workflow) GetTask(id string) (*Task, bool) {
	for _, t := range w.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TaskMap returns the tasks keyed by ID.
func (w *Workflow) TaskMap() map[string]*Task {
	m := make(map[string]*Task, len(w.Tasks))
	for _, t := range w.Tasks {
		m[t.ID] = t
	}
	return m
}

// Validate checks the workflow has at least one task, no dangling
// dependencies, and no cycles. The cycle check is an iterative Kahn
// elimination over the dependency graph.
func (w *Workflow) Validate() error {
	if len(w.Tasks) == 0 {
		return errors.GraphEmpty(w.Name)
	}

	tasks := w.TaskMap()
	for _, t := range w.Tasks {
		for _, dep := range t.Dependencies {
			if _, ok := tasks[dep]; !ok {
				return errors.DanglingDependency(t.ID, dep)
			}
		}
	}

	// Kahn: repeatedly remove tasks whose dependencies are all removed.
	remaining := make(map[string][]string, len(w.Tasks))
	for _, t := range w.Tasks {
		remaining[t.ID] = t.Dependencies
	}
	for len(remaining) > 0 {
		progressed := false
		for id, deps := range remaining {
			resolved := true
			for _, dep := range deps {
				if _, pending := remaining[dep]; pending {
					resolved = false
					break
				}
			}
			if resolved {
				delete(remaining, id)
				progressed = true
			}
		}
		if !progressed {
			cycle := make([]string, 0, len(remaining))
			for id := range remaining {
				cycle = append(cycle, id)
			}
			return errors.CircularDependency(cycle)
		}
	}
	return nil
}

// MarkReady validates the workflow and transitions it to ready.
func (w *Workflow) MarkReady() error {
	if !w.Status.CanTransitionTo(WorkflowStatusReady) {
		return errors.WorkflowTransition(w.ID, string(w.Status), string(WorkflowStatusReady))
	}
	if err := w.Validate(); err != nil {
		return err
	}
	w.Status = WorkflowStatusReady
	return nil
}

// Start marks the workflow as running.
func (w *Workflow) Start() error {
	if !w.Status.CanTransitionTo(WorkflowStatusRunning) {
		return errors.WorkflowTransition(w.ID, string(w.Status), string(WorkflowStatusRunning))
	}
	now := time.Now()
	w.Status = WorkflowStatusRunning
	w.StartedAt = &now
	return nil
}

// Complete marks the workflow as completed with its final output.
func (w *Workflow) Complete(finalOutput string) error {
	if !w.Status.CanTransitionTo(WorkflowStatusCompleted) {
		return errors.WorkflowTransition(w.ID, string(w.Status), string(WorkflowStatusCompleted))
	}
	now := time.Now()
	w.Status = WorkflowStatusCompleted
	w.CompletedAt = &now
	w.FinalOutput = finalOutput
	return nil
}

// Fail marks the workflow as failed with an error message.
func (w *Workflow) Fail(msg string) error {
	if !w.Status.CanTransitionTo(WorkflowStatusFailed) {
		return errors.WorkflowTransition(w.ID, string(w.Status), string(WorkflowStatusFailed))
	}
	now := time.Now()
	w.Status = WorkflowStatusFailed
	w.CompletedAt = &now
	w.ErrorMsg = msg
	return nil
}

// Cancel marks the workflow as cancelled and cancels every non-terminal task.
func (w *Workflow) Cancel() error {
	if !w.Status.CanTransitionTo(WorkflowStatusCancelled) {
		return errors.WorkflowTransition(w.ID, string(w.Status), string(WorkflowStatusCancelled))
	}
	now := time.Now()
	w.Status = WorkflowStatusCancelled
	w.CompletedAt = &now
	for _, t := range w.Tasks {
		if !t.Status.IsTerminal() {
			_ = t.Cancel()
		}
	}
	return nil
}

// AllDone returns true if all tasks are in terminal state.
func (w *Workflow) AllDone() bool {
	for _, t := range w.Tasks {
		if !t.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// HasFailed returns true if any task has failed.
func (w *Workflow) HasFailed() bool {
	for _, t := range w.Tasks {
		if t.Status == TaskStatusFailed {
			return true
		}
	}
	return false
}

// Duration returns the elapsed execution time, or zero if not started.
func (w *Workflow) Duration() time.Duration {
	if w.StartedAt == nil {
		return 0
	}
	if w.CompletedAt != nil {
		return w.CompletedAt.Sub(*w.StartedAt)
	}
	return time.Since(*w.StartedAt)
}
