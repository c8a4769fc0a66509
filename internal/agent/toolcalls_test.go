package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/scribe-stack/scribe-machine/internal/errors"
	"github.com/scribe-stack/scribe-machine/internal/testutil"
	"github.com/scribe-stack/scribe-machine/internal/tools"
)

func newEchoRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	reg.Register("echo", "echoes input", func(ctx context.Context, input string) (string, error) {
		return input, nil
	})
	reg.Register("broken", "always fails", func(ctx context.Context, input string) (string, error) {
		return "", fmt.Errorf("upstream timeout")
	})
	return reg
}

func TestScanToolCalls(t *testing.T) {
	t.Run("single call", func(t *testing.T) {
		calls := scanToolCalls("pre [echo]hi[/echo] post")
		if len(calls) != 1 {
			t.Fatalf("expected 1 call, got %d", len(calls))
		}
		if calls[0].name != "echo" || calls[0].input != "hi" {
			t.Errorf("unexpected call %+v", calls[0])
		}
	})

	t.Run("multiple calls", func(t *testing.T) {
		calls := scanToolCalls("[a]1[/a] middle [b]2[/b]")
		if len(calls) != 2 {
			t.Fatalf("expected 2 calls, got %d", len(calls))
		}
		if calls[0].name != "a" || calls[1].name != "b" {
			t.Errorf("unexpected calls %+v", calls)
		}
	})

	t.Run("unmatched open tag is literal", func(t *testing.T) {
		if calls := scanToolCalls("text [echo] never closed"); len(calls) != 0 {
			t.Errorf("expected no calls, got %+v", calls)
		}
	})

	t.Run("close tag without open is literal", func(t *testing.T) {
		if calls := scanToolCalls("text [/echo] alone"); len(calls) != 0 {
			t.Errorf("expected no calls, got %+v", calls)
		}
	})

	t.Run("non-word tag names skipped", func(t *testing.T) {
		if calls := scanToolCalls("[see note 1] plain brackets [/see note 1]"); len(calls) != 0 {
			t.Errorf("expected no calls, got %+v", calls)
		}
	})

	t.Run("multiline input", func(t *testing.T) {
		calls := scanToolCalls("[echo]line one\nline two[/echo]")
		if len(calls) != 1 || calls[0].input != "line one\nline two" {
			t.Errorf("expected multiline input preserved, got %+v", calls)
		}
	})

	t.Run("non-overlapping left to right", func(t *testing.T) {
		// The inner [echo] span belongs to the outer call's input.
		calls := scanToolCalls("[echo]outer [echo]inner[/echo]")
		if len(calls) != 1 {
			t.Fatalf("expected 1 call, got %d", len(calls))
		}
		if calls[0].input != "outer [echo]inner" {
			t.Errorf("expected greedy-free first match, got %q", calls[0].input)
		}
	})
}

func TestProcessToolCalls(t *testing.T) {
	reg := newEchoRegistry(t)
	logger := testutil.DiscardLogger()
	ctx := context.Background()

	t.Run("success splices result tags", func(t *testing.T) {
		got := processToolCalls(ctx, "pre [echo]hi[/echo] post", reg, logger)
		want := "pre [echo RESULT]\nhi\n[/echo RESULT] post"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("unknown tool", func(t *testing.T) {
		got := processToolCalls(ctx, "[mystery]x[/mystery]", reg, logger)
		want := "[mystery ERROR] Tool not found [/mystery ERROR]"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("tool failure splices error message", func(t *testing.T) {
		got := processToolCalls(ctx, "[broken]x[/broken]", reg, logger)
		want := "[broken ERROR] upstream timeout [/broken ERROR]"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("scribe error unwraps to cause", func(t *testing.T) {
		reg := tools.NewRegistry()
		reg.Register("wrapped", "", func(ctx context.Context, input string) (string, error) {
			return "", errors.ToolFailed("wrapped", fmt.Errorf("inner cause"))
		})
		got := processToolCalls(ctx, "[wrapped]x[/wrapped]", reg, logger)
		want := "[wrapped ERROR] inner cause [/wrapped ERROR]"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("input trimmed before invocation", func(t *testing.T) {
		got := processToolCalls(ctx, "[echo]  padded  [/echo]", reg, logger)
		want := "[echo RESULT]\npadded\n[/echo RESULT]"
		if got != want {
			t.Errorf("expected trimmed input, got %q", got)
		}
	})

	t.Run("no calls is identity", func(t *testing.T) {
		input := "plain response with no tools"
		if got := processToolCalls(ctx, input, reg, logger); got != input {
			t.Errorf("expected identity, got %q", got)
		}
	})
}
