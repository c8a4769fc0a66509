package cmd

import (
	"fmt"
	"log/slog"

	"github.com/scribe-stack/scribe-machine/internal/agent"
	"github.com/scribe-stack/scribe-machine/internal/config"
	"github.com/scribe-stack/scribe-machine/internal/llm"
	"github.com/scribe-stack/scribe-machine/internal/orchestrator"
	"github.com/scribe-stack/scribe-machine/internal/store"
	"github.com/scribe-stack/scribe-machine/internal/tools"
	"github.com/scribe-stack/scribe-machine/internal/workflows"
)

// runtime holds the wired components for a command run.
type runtime struct {
	Tools    *tools.Registry
	Agents   *store.AgentStore
	Registry *workflows.Registry
	Runs     *store.RunStore
}

// buildToolRegistry wires the tool set from configuration. Web search
// tools are only registered when a search API key is present.
func buildToolRegistry(cfg *config.Config, dir string, logger *slog.Logger) (*tools.Registry, error) {
	reg := tools.NewRegistry()

	kb := tools.NewKnowledgeBase(cfg.KnowledgeDir(dir))
	if err := tools.RegisterKnowledgeTools(reg, kb); err != nil {
		return nil, fmt.Errorf("registering knowledge tools: %w", err)
	}

	if key := config.SerperAPIKey(); key != "" {
		ws := tools.NewWebSearch(key)
		if err := tools.RegisterWebSearchTools(reg, ws); err != nil {
			return nil, fmt.Errorf("registering web search tools: %w", err)
		}
	} else {
		logger.Warn("SERPER_API_KEY not set, web search tools disabled")
	}

	reg.Seal()
	logger.Debug("tool registry sealed", "tools", reg.Names())
	return reg, nil
}

// buildRuntime assembles the full execution stack: tools, agents,
// LLM provider, orchestrator, and workflow handlers. An empty policy
// uses the configured failure policy.
func buildRuntime(cfg *config.Config, dir, policy string, logger *slog.Logger) (*runtime, error) {
	toolReg, err := buildToolRegistry(cfg, dir, logger)
	if err != nil {
		return nil, err
	}

	provider, err := llm.New(cfg.Provider.Name)
	if err != nil {
		return nil, err
	}
	providerCfg := llm.ProviderConfig{
		Provider:    cfg.Provider.Name,
		Model:       cfg.Provider.Model,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
		APIKey:      config.ProviderAPIKey(cfg.Provider.Name),
	}.WithDefaults()
	agentExec := agent.NewExecutor(provider, providerCfg, toolReg, logger)

	agents, err := store.LoadAgentStore(cfg.AgentsFile(dir))
	if err != nil {
		return nil, err
	}

	if policy == "" {
		policy = cfg.Orchestrator.FailurePolicy
	}
	failurePolicy, err := orchestrator.ParseFailurePolicy(policy)
	if err != nil {
		return nil, err
	}
	runner := workflows.NewAgentRunner(agents, agentExec, logger)
	executor := orchestrator.NewExecutor(runner, failurePolicy, logger)

	registry := workflows.NewRegistry()
	templateDir := cfg.TemplateDir(dir)

	articleTpl, err := workflows.LoadTemplate(workflows.TypeEnhancedArticle, templateDir)
	if err != nil {
		return nil, fmt.Errorf("loading article template: %w", err)
	}
	if err := registry.Register(workflows.NewEnhancedArticle(articleTpl, executor, logger)); err != nil {
		return nil, err
	}

	newsletterTpl, err := workflows.LoadTemplate(workflows.TypePremiumNewsletter, templateDir)
	if err != nil {
		return nil, fmt.Errorf("loading newsletter template: %w", err)
	}
	if err := registry.Register(workflows.NewPremiumNewsletter(newsletterTpl, executor, logger)); err != nil {
		return nil, err
	}
	registry.Seal()

	runs, err := store.NewRunStore(cfg.RunsDir(dir))
	if err != nil {
		return nil, err
	}

	return &runtime{
		Tools:    toolReg,
		Agents:   agents,
		Registry: registry,
		Runs:     runs,
	}, nil
}
