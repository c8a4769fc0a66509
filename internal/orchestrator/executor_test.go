package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/scribe-stack/scribe-machine/internal/errors"
	"github.com/scribe-stack/scribe-machine/internal/testutil"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

func readyWorkflow(t *testing.T) *types.Workflow {
	t.Helper()
	wf := types.NewWorkflow("wf-1", "test_article", "enhanced_article")
	tasks := []*types.Task{
		types.NewTask("task1_brief", "Content Brief", "Brief about {{topic}}", "rag_specialist", nil),
		types.NewTask("task2_research", "Topic Research", "Research using {{task1_brief_output}}", "web_searcher", []string{"task1_brief"}),
		types.NewTask("task3_content", "Final Content", "Write from {{task2_research_output}}", "copywriter", []string{"task1_brief", "task2_research"}),
	}
	for _, task := range tasks {
		if err := wf.AddTask(task); err != nil {
			t.Fatalf("adding task: %v", err)
		}
	}
	if err := wf.MarkReady(); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	return wf
}

func TestParseFailurePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FailurePolicy
		wantErr bool
	}{
		{"", FailurePolicyFallback, false},
		{"fallback", FailurePolicyFallback, false},
		{"propagate", FailurePolicyPropagate, false},
		{"explode", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFailurePolicy(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: expected %s, got %s (%v)", tt.in, tt.want, got, err)
		}
	}
}

func TestExecutor_ExecuteWorkflow(t *testing.T) {
	t.Run("runs all tasks in order with substitution", func(t *testing.T) {
		var seen []string
		runner := RunnerFunc(func(ctx context.Context, task *types.Task, ec *types.ExecutionContext) (string, error) {
			seen = append(seen, task.Description)
			return "out:" + task.ID, nil
		})
		exec := NewExecutor(runner, FailurePolicyFallback, testutil.DiscardLogger())

		wf := readyWorkflow(t)
		ec := types.NewExecutionContext()
		ec.Topic = "EV batteries"

		if err := exec.ExecuteWorkflow(context.Background(), wf, ec, nil); err != nil {
			t.Fatalf("execute failed: %v", err)
		}
		if wf.Status != types.WorkflowStatusCompleted {
			t.Errorf("expected completed workflow, got %s", wf.Status)
		}
		if len(seen) != 3 {
			t.Fatalf("expected 3 task runs, got %d", len(seen))
		}
		if seen[0] != "Brief about EV batteries" {
			t.Errorf("expected topic substituted, got %q", seen[0])
		}
		if seen[1] != "Research using out:task1_brief" {
			t.Errorf("expected upstream output substituted, got %q", seen[1])
		}
		if wf.FinalOutput != "out:task3_content" {
			t.Errorf("expected last output as workflow output, got %q", wf.FinalOutput)
		}
	})

	t.Run("memoizes shared dependencies", func(t *testing.T) {
		var briefRuns int32
		runner := RunnerFunc(func(ctx context.Context, task *types.Task, ec *types.ExecutionContext) (string, error) {
			if task.ID == "task1_brief" {
				atomic.AddInt32(&briefRuns, 1)
			}
			return "ok", nil
		})
		exec := NewExecutor(runner, FailurePolicyFallback, testutil.DiscardLogger())

		// task1 is a dependency of both task2 and task3.
		if err := exec.ExecuteWorkflow(context.Background(), readyWorkflow(t), types.NewExecutionContext(), nil); err != nil {
			t.Fatalf("execute failed: %v", err)
		}
		if briefRuns != 1 {
			t.Errorf("expected shared dependency to run once, ran %d times", briefRuns)
		}
	})

	t.Run("records outputs in context", func(t *testing.T) {
		runner := RunnerFunc(func(ctx context.Context, task *types.Task, ec *types.ExecutionContext) (string, error) {
			return "out:" + task.ID, nil
		})
		exec := NewExecutor(runner, FailurePolicyFallback, testutil.DiscardLogger())

		ec := types.NewExecutionContext()
		if err := exec.ExecuteWorkflow(context.Background(), readyWorkflow(t), ec, nil); err != nil {
			t.Fatalf("execute failed: %v", err)
		}
		for _, id := range []string{"task1_brief", "task2_research", "task3_content"} {
			if out, ok := ec.Output(id); !ok || out != "out:"+id {
				t.Errorf("expected output for %s in context, got %q %v", id, out, ok)
			}
		}
	})

	t.Run("task-done callback fires per task", func(t *testing.T) {
		runner := RunnerFunc(func(ctx context.Context, task *types.Task, ec *types.ExecutionContext) (string, error) {
			return "ok", nil
		})
		exec := NewExecutor(runner, FailurePolicyFallback, testutil.DiscardLogger())
		var done []string
		err := exec.ExecuteWorkflow(context.Background(), readyWorkflow(t), types.NewExecutionContext(), func(taskID, output string) {
			done = append(done, taskID)
		})
		if err != nil {
			t.Fatalf("execute failed: %v", err)
		}
		if len(done) != 3 || done[0] != "task1_brief" {
			t.Errorf("expected done callbacks in order, got %v", done)
		}
	})

	t.Run("rejects workflow not in ready state", func(t *testing.T) {
		runner := RunnerFunc(func(ctx context.Context, task *types.Task, ec *types.ExecutionContext) (string, error) {
			return "ok", nil
		})
		exec := NewExecutor(runner, FailurePolicyFallback, testutil.DiscardLogger())

		wf := types.NewWorkflow("wf-1", "draft", "enhanced_article")
		wf.AddTask(types.NewTask("task1", "A", "desc", "writer", nil))
		err := exec.ExecuteWorkflow(context.Background(), wf, types.NewExecutionContext(), nil)
		if !errors.HasCode(err, errors.CodeWorkflowTransition) {
			t.Errorf("expected WF_001, got %v", err)
		}
	})
}

func TestExecutor_FailurePolicies(t *testing.T) {
	failingRunner := RunnerFunc(func(ctx context.Context, task *types.Task, ec *types.ExecutionContext) (string, error) {
		if task.ID == "task2_research" {
			return "", fmt.Errorf("provider unavailable")
		}
		return "out:" + task.ID, nil
	})

	t.Run("fallback keeps pipeline alive", func(t *testing.T) {
		exec := NewExecutor(failingRunner, FailurePolicyFallback, testutil.DiscardLogger())
		wf := readyWorkflow(t)
		ec := types.NewExecutionContext()
		ec.Topic = "Fintech"

		if err := exec.ExecuteWorkflow(context.Background(), wf, ec, nil); err != nil {
			t.Fatalf("expected workflow to complete under fallback, got %v", err)
		}
		if wf.Status != types.WorkflowStatusCompleted {
			t.Errorf("expected completed, got %s", wf.Status)
		}

		failed, _ := wf.GetTask("task2_research")
		if failed.Status != types.TaskStatusFailed {
			t.Errorf("expected failed task recorded, got %s", failed.Status)
		}
		out, _ := ec.Output("task2_research")
		if !strings.Contains(out, "# Research Enhancement: Fintech") {
			t.Errorf("expected research fallback content, got %q", out)
		}
	})

	t.Run("propagate fails the workflow", func(t *testing.T) {
		exec := NewExecutor(failingRunner, FailurePolicyPropagate, testutil.DiscardLogger())
		wf := readyWorkflow(t)

		err := exec.ExecuteWorkflow(context.Background(), wf, types.NewExecutionContext(), nil)
		if !errors.HasCode(err, errors.CodeWorkflowFailed) {
			t.Fatalf("expected WF_002, got %v", err)
		}
		if wf.Status != types.WorkflowStatusFailed {
			t.Errorf("expected failed workflow, got %s", wf.Status)
		}
		last, _ := wf.GetTask("task3_content")
		if last.Status != types.TaskStatusPending {
			t.Errorf("expected downstream task untouched, got %s", last.Status)
		}
	})
}

func TestExecutor_ConcurrentWorkflows(t *testing.T) {
	// One executor serves overlapping runs; each run's callback must
	// only see that run's outputs.
	runner := RunnerFunc(func(ctx context.Context, task *types.Task, ec *types.ExecutionContext) (string, error) {
		return ec.Topic + ":" + task.ID, nil
	})
	exec := NewExecutor(runner, FailurePolicyFallback, testutil.DiscardLogger())

	topics := []string{"EV batteries", "Green bonds", "Fintech", "Urban farming"}
	results := make([][]string, len(topics))
	workflows := make([]*types.Workflow, len(topics))
	for i := range topics {
		workflows[i] = readyWorkflow(t)
	}

	var wg sync.WaitGroup
	for i, topic := range topics {
		wg.Add(1)
		go func(i int, topic string) {
			defer wg.Done()
			wf := workflows[i]
			ec := types.NewExecutionContext()
			ec.Topic = topic
			err := exec.ExecuteWorkflow(context.Background(), wf, ec, func(taskID, output string) {
				results[i] = append(results[i], output)
			})
			if err != nil {
				t.Errorf("%s: execute failed: %v", topic, err)
			}
		}(i, topic)
	}
	wg.Wait()

	for i, topic := range topics {
		if len(results[i]) != 3 {
			t.Fatalf("%s: expected 3 callbacks, got %d", topic, len(results[i]))
		}
		for _, out := range results[i] {
			if !strings.HasPrefix(out, topic+":") {
				t.Errorf("%s: callback received another run's output %q", topic, out)
			}
		}
	}
}

func TestFallbackContent(t *testing.T) {
	ec := types.NewExecutionContext()
	ec.Topic = "Green bonds"
	ec.TargetAudience = "retail investors"
	ec.TargetWordCount = 800

	t.Run("brief task", func(t *testing.T) {
		task := types.NewTask("task1_brief", "Content Brief", "", "writer", nil)
		out := FallbackContent(task, ec)
		if !strings.Contains(out, "# Project Brief: Green bonds") {
			t.Errorf("expected brief document, got %q", out)
		}
		if !strings.Contains(out, "800 words") {
			t.Error("expected target word count in brief")
		}
		if !strings.Contains(out, "retail investors") {
			t.Error("expected audience in brief")
		}
	})

	t.Run("research task", func(t *testing.T) {
		task := types.NewTask("task2_research", "Topic Research", "", "researcher", nil)
		out := FallbackContent(task, ec)
		if !strings.Contains(out, "# Research Enhancement: Green bonds") {
			t.Errorf("expected research document, got %q", out)
		}
	})

	t.Run("generic task", func(t *testing.T) {
		task := types.NewTask("task3_content", "Final Content", "", "writer", nil)
		out := FallbackContent(task, ec)
		if !strings.Contains(out, "# Green bonds: A Comprehensive Guide") {
			t.Errorf("expected guide document, got %q", out)
		}
	})

	t.Run("defaults for empty context", func(t *testing.T) {
		task := types.NewTask("task1_brief", "Brief", "", "writer", nil)
		out := FallbackContent(task, types.NewExecutionContext())
		if !strings.Contains(out, "Unknown Topic") {
			t.Error("expected topic default")
		}
		if !strings.Contains(out, "general audience") {
			t.Error("expected audience default")
		}
		if !strings.Contains(out, "300 words") {
			t.Error("expected word count default")
		}
	})
}
