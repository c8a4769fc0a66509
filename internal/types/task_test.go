package types

import (
	"testing"

	"github.com/scribe-stack/scribe-machine/internal/errors"
)

func TestTaskStatus_Valid(t *testing.T) {
	valid := []TaskStatus{TaskStatusPending, TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if TaskStatus("bogus").Valid() {
		t.Error("expected bogus status to be invalid")
	}
}

func TestTaskStatus_IsTerminal(t *testing.T) {
	if TaskStatusPending.IsTerminal() || TaskStatusRunning.IsTerminal() {
		t.Error("pending and running are not terminal")
	}
	for _, s := range []TaskStatus{TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
}

func TestTaskStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to TaskStatus
		want     bool
	}{
		{TaskStatusPending, TaskStatusRunning, true},
		{TaskStatusPending, TaskStatusCancelled, true},
		{TaskStatusPending, TaskStatusCompleted, false},
		{TaskStatusRunning, TaskStatusCompleted, true},
		{TaskStatusRunning, TaskStatusFailed, true},
		{TaskStatusRunning, TaskStatusCancelled, true},
		{TaskStatusRunning, TaskStatusPending, false},
		{TaskStatusCompleted, TaskStatusRunning, false},
		{TaskStatusFailed, TaskStatusRunning, false},
		{TaskStatusCancelled, TaskStatusRunning, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestTask_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		task := NewTask("task1_brief", "Brief", "Write a brief", "rag_specialist", nil)
		if err := task.Validate(); err != nil {
			t.Errorf("expected valid task, got %v", err)
		}
	})

	t.Run("missing ID", func(t *testing.T) {
		task := NewTask("", "Brief", "desc", "writer", nil)
		if err := task.Validate(); err == nil {
			t.Error("expected error for missing ID")
		}
	})

	t.Run("whitespace in ID", func(t *testing.T) {
		task := NewTask("task 1", "Brief", "desc", "writer", nil)
		if err := task.Validate(); err == nil {
			t.Error("expected error for whitespace in ID")
		}
	})

	t.Run("missing name", func(t *testing.T) {
		task := NewTask("task1", "", "desc", "writer", nil)
		if err := task.Validate(); err == nil {
			t.Error("expected error for missing name")
		}
	})

	t.Run("self dependency", func(t *testing.T) {
		task := NewTask("task1", "Brief", "desc", "writer", []string{"task1"})
		if err := task.Validate(); err == nil {
			t.Error("expected error for self dependency")
		}
	})
}

func TestTask_Lifecycle(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		task := NewTask("task1", "Brief", "desc", "writer", nil)

		if err := task.Start(); err != nil {
			t.Fatalf("start failed: %v", err)
		}
		if task.Status != TaskStatusRunning || task.StartedAt == nil {
			t.Error("expected running task with start time")
		}

		if err := task.Complete("the output"); err != nil {
			t.Fatalf("complete failed: %v", err)
		}
		if task.Status != TaskStatusCompleted {
			t.Errorf("expected completed, got %s", task.Status)
		}
		if task.Output != "the output" {
			t.Errorf("expected output recorded, got %q", task.Output)
		}
		if task.CompletedAt == nil {
			t.Error("expected completion time")
		}
	})

	t.Run("fail records message", func(t *testing.T) {
		task := NewTask("task1", "Brief", "desc", "writer", nil)
		if err := task.Start(); err != nil {
			t.Fatalf("start failed: %v", err)
		}
		if err := task.Fail("provider timeout"); err != nil {
			t.Fatalf("fail failed: %v", err)
		}
		if task.Status != TaskStatusFailed || task.ErrorMsg != "provider timeout" {
			t.Errorf("expected failed with message, got %s %q", task.Status, task.ErrorMsg)
		}
	})

	t.Run("cannot complete pending task", func(t *testing.T) {
		task := NewTask("task1", "Brief", "desc", "writer", nil)
		if err := task.Complete("x"); !errors.HasCode(err, errors.CodeTaskTransition) {
			t.Errorf("expected TASK_001 completing pending task, got %v", err)
		}
	})

	t.Run("cannot restart completed task", func(t *testing.T) {
		task := NewTask("task1", "Brief", "desc", "writer", nil)
		task.Start()
		task.Complete("x")
		if err := task.Start(); !errors.HasCode(err, errors.CodeTaskTransition) {
			t.Errorf("expected TASK_001 restarting completed task, got %v", err)
		}
	})

	t.Run("cancel pending", func(t *testing.T) {
		task := NewTask("task1", "Brief", "desc", "writer", nil)
		if err := task.Cancel(); err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		if task.Status != TaskStatusCancelled {
			t.Errorf("expected cancelled, got %s", task.Status)
		}
	})
}

func TestTask_Duration(t *testing.T) {
	task := NewTask("task1", "Brief", "desc", "writer", nil)
	if task.Duration() != 0 {
		t.Error("expected zero duration before start")
	}
	task.Start()
	task.Complete("x")
	if task.Duration() < 0 {
		t.Error("expected non-negative duration")
	}
}
