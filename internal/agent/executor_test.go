package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/scribe-stack/scribe-machine/internal/llm"
	"github.com/scribe-stack/scribe-machine/internal/testutil"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

func newTestExecutor(t *testing.T, provider llm.Provider) *Executor {
	t.Helper()
	cfg := llm.ProviderConfig{Provider: llm.ProviderOpenAI}.WithDefaults()
	return NewExecutor(provider, cfg, newEchoRegistry(t), testutil.DiscardLogger())
}

func TestExecutor_Execute(t *testing.T) {
	t.Run("plain response passes through", func(t *testing.T) {
		provider := &testutil.StubProvider{Response: "generated article"}
		exec := newTestExecutor(t, provider)
		ag := testutil.NewTestAgent(t, "copywriter")

		out, err := exec.Execute(context.Background(), ag, "Write an article", types.NewExecutionContext())
		if err != nil {
			t.Fatalf("execute failed: %v", err)
		}
		if out != "generated article" {
			t.Errorf("expected provider response, got %q", out)
		}
	})

	t.Run("tool calls resolved in response", func(t *testing.T) {
		provider := &testutil.StubProvider{Response: "before [echo]data[/echo] after"}
		exec := newTestExecutor(t, provider)
		ag := testutil.NewTestAgent(t, "researcher", "echo")

		out, err := exec.Execute(context.Background(), ag, "Research", types.NewExecutionContext())
		if err != nil {
			t.Fatalf("execute failed: %v", err)
		}
		if out != "before [echo RESULT]\ndata\n[/echo RESULT] after" {
			t.Errorf("expected spliced tool result, got %q", out)
		}
	})

	t.Run("provider error propagates", func(t *testing.T) {
		provider := &testutil.StubProvider{Err: fmt.Errorf("rate limited")}
		exec := newTestExecutor(t, provider)
		ag := testutil.NewTestAgent(t, "copywriter")

		_, err := exec.Execute(context.Background(), ag, "Write", types.NewExecutionContext())
		if err == nil || !strings.Contains(err.Error(), "rate limited") {
			t.Errorf("expected provider error, got %v", err)
		}
	})
}

func TestExecutor_SystemMessage(t *testing.T) {
	provider := &testutil.StubProvider{}
	exec := newTestExecutor(t, provider)

	t.Run("role default with persona and context", func(t *testing.T) {
		ag := &types.Agent{
			Role:      "writer",
			Goal:      "Create engaging content",
			Backstory: "Veteran journalist.",
		}
		ec := types.NewExecutionContext()
		ec.ClientName = "acme"
		ec.TargetAudience = "retail investors"

		msg := exec.buildSystemMessage(ag, ec)
		if !strings.Contains(msg, "expert writer") {
			t.Error("expected role default system message")
		}
		if !strings.Contains(msg, "Veteran journalist.") {
			t.Error("expected backstory included")
		}
		if !strings.Contains(msg, "Your goal is: Create engaging content") {
			t.Error("expected goal included")
		}
		if !strings.Contains(msg, "working for client: acme") {
			t.Error("expected client in system message")
		}
		if !strings.Contains(msg, "target audience is: retail investors") {
			t.Error("expected audience in system message")
		}
	})

	t.Run("explicit system message wins over role", func(t *testing.T) {
		ag := &types.Agent{Role: "writer", Goal: "g", SystemMessage: "Custom persona."}
		msg := exec.buildSystemMessage(ag, nil)
		if !strings.HasPrefix(msg, "Custom persona.") {
			t.Errorf("expected custom system message first, got %q", msg)
		}
		if strings.Contains(msg, "expert writer") {
			t.Error("role default should be suppressed")
		}
	})

	t.Run("unknown role falls back to generic", func(t *testing.T) {
		ag := &types.Agent{Role: "astrologer", Goal: "g"}
		msg := exec.buildSystemMessage(ag, nil)
		if !strings.Contains(msg, "AI assistant helping with content generation") {
			t.Errorf("expected generic fallback, got %q", msg)
		}
	})

	t.Run("tool syntax instructions when tools present", func(t *testing.T) {
		ag := &types.Agent{Role: "researcher", Goal: "g", Tools: []string{"echo"}}
		msg := exec.buildSystemMessage(ag, nil)
		if !strings.Contains(msg, "echo: echoes input") {
			t.Error("expected tool description line")
		}
		if !strings.Contains(msg, "format your response EXACTLY") {
			t.Error("expected tool syntax instructions")
		}
	})
}

func TestExecutor_Prompt(t *testing.T) {
	provider := &testutil.StubProvider{}
	exec := newTestExecutor(t, provider)

	t.Run("context dump excludes system-handled keys", func(t *testing.T) {
		ag := &types.Agent{Role: "writer", Goal: "g"}
		ec := testutil.NewTestContext(t)

		prompt := exec.buildPrompt("Write it", ag, ec)
		if !strings.Contains(prompt, "Write it") {
			t.Error("expected task description in prompt")
		}
		if !strings.Contains(prompt, "topic: Sustainable Investing") {
			t.Error("expected topic in context dump")
		}
		if strings.Contains(prompt, "client_name") {
			t.Error("client_name belongs in the system message, not the prompt")
		}
		if !strings.Contains(prompt, "comprehensive response to the task") {
			t.Error("expected closing instruction")
		}
	})

	t.Run("per-tool syntax reminders", func(t *testing.T) {
		ag := &types.Agent{Role: "researcher", Goal: "g", Tools: []string{"echo", "unregistered"}}
		prompt := exec.buildPrompt("Research", ag, types.NewExecutionContext())
		if !strings.Contains(prompt, "## Available Tools") {
			t.Error("expected tools section")
		}
		if !strings.Contains(prompt, "[echo] your input [/echo]") {
			t.Error("expected generic syntax line for echo")
		}
		if strings.Contains(prompt, "unregistered") {
			t.Error("unregistered tools must not be offered")
		}
	})
}

func TestExecutor_ModelOverride(t *testing.T) {
	provider := &testutil.StubProvider{Response: "ok"}
	exec := newTestExecutor(t, provider)
	ag := &types.Agent{Role: "copywriter", Goal: "g", Model: "gpt-custom"}

	if _, err := exec.Execute(context.Background(), ag, "Write", types.NewExecutionContext()); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if provider.Calls() != 1 {
		t.Fatalf("expected one provider call, got %d", provider.Calls())
	}
	if provider.Configs[0].Model != "gpt-custom" {
		t.Errorf("expected agent model override, got %q", provider.Configs[0].Model)
	}
}
