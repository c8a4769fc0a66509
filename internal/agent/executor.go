// Package agent executes LLM-backed agents: it assembles system
// messages and prompts, calls the provider, and splices tool results
// into the response.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/scribe-stack/scribe-machine/internal/llm"
	"github.com/scribe-stack/scribe-machine/internal/logging"
	"github.com/scribe-stack/scribe-machine/internal/tools"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

// Default system messages by agent role.
var roleSystemMessages = map[string]string{
	"researcher": "You are an expert researcher who finds accurate, relevant information and presents it clearly.",
	"writer":     "You are an expert writer who creates engaging, well-structured content tailored to specific audiences.",
	"copywriter": "You are an expert writer who creates engaging, well-structured content tailored to specific audiences.",
	"editor":     "You are an expert editor who refines content for clarity, coherence, and alignment with style guidelines.",
	"analyst":    "You are an expert analyst who examines data and information to extract meaningful insights.",
	"planner":    "You are an expert planner who organizes complex tasks into clear, actionable steps.",
}

const genericSystemMessage = "You are an AI assistant helping with content generation."

// Reserved context keys handled in the system message rather than the
// prompt context dump.
var systemContextKeys = map[string]bool{
	types.KeyClientName:     true,
	types.KeyTargetAudience: true,
}

// Executor runs a single agent against a task description.
type Executor struct {
	provider llm.Provider
	cfg      llm.ProviderConfig
	registry *tools.Registry
	logger   *slog.Logger
}

// NewExecutor creates an agent executor.
func NewExecutor(provider llm.Provider, cfg llm.ProviderConfig, registry *tools.Registry, logger *slog.Logger) *Executor {
	return &Executor{
		provider: provider,
		cfg:      cfg,
		registry: registry,
		logger:   logger,
	}
}

// Execute runs the agent on a task description and returns the final
// response with all tool-call spans resolved.
func (e *Executor) Execute(ctx context.Context, ag *types.Agent, taskDescription string, ec *types.ExecutionContext) (string, error) {
	logger := logging.WithAgent(e.logger, ag.Role)
	logger.Debug("executing agent", "task_length", len(taskDescription), "tools", len(ag.Tools))

	systemMessage := e.buildSystemMessage(ag, ec)
	prompt := e.buildPrompt(taskDescription, ag, ec)

	cfg := e.cfg
	if ag.Provider != "" && ag.Provider != cfg.Provider {
		// Agent requested a different provider; keep the configured one
		// but note the mismatch.
		logger.Warn("agent provider override ignored", "requested", ag.Provider, "configured", cfg.Provider)
	}
	if ag.Model != "" {
		cfg.Model = ag.Model
	}

	start := time.Now()
	response, err := e.provider.GenerateContent(ctx, prompt, systemMessage, cfg)
	if err != nil {
		return "", err
	}

	tokens := llm.EstimateTokens(prompt, response)
	logger.Info("llm call completed",
		"provider", e.provider.Name(),
		"model", cfg.Model,
		"duration", time.Since(start),
		"estimated_tokens", tokens,
		"estimated_cost_usd", llm.EstimateCost(e.provider.Name(), tokens),
	)

	return processToolCalls(ctx, response, e.registry, logger), nil
}

// buildSystemMessage assembles the system message from the agent's
// persona and the execution context.
func (e *Executor) buildSystemMessage(ag *types.Agent, ec *types.ExecutionContext) string {
	var b strings.Builder

	if ag.SystemMessage != "" {
		b.WriteString(ag.SystemMessage)
	} else if msg, ok := roleSystemMessages[strings.ToLower(ag.Role)]; ok {
		b.WriteString(msg)
	} else {
		b.WriteString(genericSystemMessage)
	}

	if ag.Backstory != "" {
		b.WriteString("\n\n")
		b.WriteString(ag.Backstory)
	}
	if ag.Goal != "" {
		fmt.Fprintf(&b, "\n\nYour goal is: %s", ag.Goal)
	}
	if ec != nil {
		if ec.ClientName != "" {
			fmt.Fprintf(&b, "\n\nYou are working for client: %s", ec.ClientName)
		}
		if ec.TargetAudience != "" {
			fmt.Fprintf(&b, "\n\nThe target audience is: %s", ec.TargetAudience)
		}
	}

	if descriptions := e.toolDescriptions(ag); descriptions != "" {
		fmt.Fprintf(&b, "\n\nYou have access to the following tools:\n%s", descriptions)
		b.WriteString("\n\nIMPORTANT: When you need to use a tool, format your response EXACTLY like this:")
		b.WriteString("\n[kb_get_client_content] client_name [/kb_get_client_content]")
		b.WriteString("\n[web_search] your search query [/web_search]")
		b.WriteString("\n\nUse the exact tool name from the list above. Do NOT use generic placeholders like 'TOOL_NAME'.")
	}

	return b.String()
}

// buildPrompt assembles the user prompt: task description, context
// dump, and tool-syntax reminder.
func (e *Executor) buildPrompt(taskDescription string, ag *types.Agent, ec *types.ExecutionContext) string {
	var parts []string
	parts = append(parts, taskDescription)

	if ec != nil {
		if dump := contextDump(ec); dump != "" {
			parts = append(parts, dump)
		}
	}

	if available := e.availableTools(ag); len(available) > 0 {
		var b strings.Builder
		b.WriteString("\n\n## Available Tools\n")
		b.WriteString("You can use these tools to enhance your response:\n")
		for _, name := range available {
			switch name {
			case "kb_get_client_content":
				fmt.Fprintf(&b, "- %s: Use [kb_get_client_content] client_name [/kb_get_client_content] to retrieve all content for a client\n", name)
			case "kb_search_content":
				fmt.Fprintf(&b, "- %s: Use [kb_search_content] search_query [/kb_search_content] to search within knowledge base content\n", name)
			case "web_search":
				fmt.Fprintf(&b, "- %s: Use [web_search] your search query [/web_search] to search the web for current information\n", name)
			case "web_search_financial":
				fmt.Fprintf(&b, "- %s: Use [web_search_financial] topic [/web_search_financial] for recent financial content\n", name)
			default:
				fmt.Fprintf(&b, "- %s: Use [%s] your input [/%s]\n", name, name, name)
			}
		}
		b.WriteString("\nUse the EXACT tool names shown above.")
		parts = append(parts, b.String())
	}

	parts = append(parts, "\n\nPlease provide a comprehensive response to the task.")
	return strings.Join(parts, "\n")
}

// contextDump renders the non-reserved context values as a bullet list.
func contextDump(ec *types.ExecutionContext) string {
	flat := ec.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		if systemContextKeys[k] {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("\n\n## Context Information\n")
	for _, k := range keys {
		val := fmt.Sprintf("%v", flat[k])
		if val == "" {
			continue
		}
		fmt.Fprintf(&b, "\n- %s: %s", k, val)
	}
	return b.String()
}

// availableTools returns the agent's tools that exist in the registry,
// preserving the agent's declaration order.
func (e *Executor) availableTools(ag *types.Agent) []string {
	var available []string
	for _, name := range ag.Tools {
		if _, ok := e.registry.Get(name); ok {
			available = append(available, name)
		}
	}
	return available
}

// toolDescriptions returns "- name: description" lines for the agent's
// registered tools.
func (e *Executor) toolDescriptions(ag *types.Agent) string {
	var lines []string
	for _, name := range ag.Tools {
		if t, ok := e.registry.Get(name); ok {
			lines = append(lines, fmt.Sprintf("- %s: %s", t.Name, t.Description))
		}
	}
	return strings.Join(lines, "\n")
}
