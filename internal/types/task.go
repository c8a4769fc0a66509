package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/scribe-stack/scribe-machine/internal/errors"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"   // Waiting for dependencies
	TaskStatusRunning   TaskStatus = "running"   // Currently executing
	TaskStatusCompleted TaskStatus = "completed" // Finished successfully
	TaskStatusFailed    TaskStatus = "failed"    // Execution failed
	TaskStatusCancelled TaskStatus = "cancelled" // Cancelled before completion
)

// Valid returns true if this is a recognized status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if this status is final.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusCancelled
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s TaskStatus) CanTransitionTo(target TaskStatus) bool {
	switch s {
	case TaskStatusPending:
		return target == TaskStatusRunning || target == TaskStatusCancelled
	case TaskStatusRunning:
		return target == TaskStatusCompleted || target == TaskStatusFailed || target == TaskStatusCancelled
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return false // Terminal states
	}
	return false
}

// Task is a single unit of work inside a workflow. Its description is
// fully substituted before execution; the assigned agent role selects
// which agent executes it.
type Task struct {
	// Identity
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	AgentRole   string `yaml:"agent_role"`

	// Dependencies by task ID, in declaration order
	Dependencies []string `yaml:"dependencies,omitempty"`

	// Lifecycle
	Status      TaskStatus `yaml:"status"`
	StartedAt   *time.Time `yaml:"started_at,omitempty"`
	CompletedAt *time.Time `yaml:"completed_at,omitempty"`

	// Data
	Output   string `yaml:"output,omitempty"`
	ErrorMsg string `yaml:"error,omitempty"`
}

// NewTask creates a pending task.
func NewTask(id, name, description, agentRole string, deps []string) *Task {
	return &Task{
		ID:           id,
		Name:         name,
		Description:  description,
		AgentRole:    agentRole,
		Dependencies: deps,
		Status:       TaskStatusPending,
	}
}

// Validate checks the task is well-formed.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task ID is required")
	}
	if strings.ContainsAny(t.ID, " \t\n") {
		return fmt.Errorf("task ID cannot contain whitespace")
	}
	if t.Name == "" {
		return fmt.Errorf("task %s: name is required", t.ID)
	}
	for _, dep := range t.Dependencies {
		if dep == t.ID {
			return fmt.Errorf("task %s cannot depend on itself", t.ID)
		}
	}
	return nil
}

// Start marks the task as running.
func (t *Task) Start() error {
	if !t.Status.CanTransitionTo(TaskStatusRunning) {
		return errors.TaskTransition(t.ID, string(t.Status), string(TaskStatusRunning))
	}
	now := time.Now()
	t.Status = TaskStatusRunning
	t.StartedAt = &now
	return nil
}

// Complete marks the task as completed with its output.
func (t *Task) Complete(output string) error {
	if !t.Status.CanTransitionTo(TaskStatusCompleted) {
		return errors.TaskTransition(t.ID, string(t.Status), string(TaskStatusCompleted))
	}
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.Output = output
	return nil
}

// Fail marks the task as failed with an error message.
func (t *Task) Fail(msg string) error {
	if !t.Status.CanTransitionTo(TaskStatusFailed) {
		return errors.TaskTransition(t.ID, string(t.Status), string(TaskStatusFailed))
	}
	now := time.Now()
	t.Status = TaskStatusFailed
	t.CompletedAt = &now
	t.ErrorMsg = msg
	return nil
}

// Cancel marks the task as cancelled.
func (t *Task) Cancel() error {
	if !t.Status.CanTransitionTo(TaskStatusCancelled) {
		return errors.TaskTransition(t.ID, string(t.Status), string(TaskStatusCancelled))
	}
	now := time.Now()
	t.Status = TaskStatusCancelled
	t.CompletedAt = &now
	return nil
}

// Duration returns the elapsed execution time, or zero if not started.
func (t *Task) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	if t.CompletedAt != nil {
		return t.CompletedAt.Sub(*t.StartedAt)
	}
	return time.Since(*t.StartedAt)
}
