// Package testutil provides test infrastructure, fixtures, and helpers
// for scribe.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/scribe-stack/scribe-machine/internal/config"
	"github.com/scribe-stack/scribe-machine/internal/llm"
	"github.com/scribe-stack/scribe-machine/internal/types"
)

// NewTestConfig creates a test configuration rooted in a temp directory.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.TemplateDir = filepath.Join(tmpDir, "templates")
	cfg.Paths.AgentsFile = filepath.Join(tmpDir, "agents.yaml")
	cfg.Paths.RunsDir = filepath.Join(tmpDir, "runs")
	cfg.Paths.KnowledgeDir = filepath.Join(tmpDir, "knowledge")
	cfg.Paths.LogsDir = filepath.Join(tmpDir, "logs")
	cfg.Logging.Level = config.LogLevelDebug

	for _, dir := range []string{cfg.Paths.TemplateDir, cfg.Paths.RunsDir, cfg.Paths.KnowledgeDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
	return cfg
}

// NewTestAgent creates an agent descriptor for tests.
func NewTestAgent(t *testing.T, role string, tools ...string) *types.Agent {
	t.Helper()
	return &types.Agent{
		Role:      role,
		Goal:      "Test goal for " + role,
		Backstory: "Test backstory.",
		Tools:     tools,
	}
}

// NewTestContext creates an execution context with common article inputs.
func NewTestContext(t *testing.T) *types.ExecutionContext {
	t.Helper()
	ec := types.NewExecutionContext()
	ec.Topic = "Sustainable Investing"
	ec.ClientName = "acme"
	ec.TargetAudience = "young professionals"
	ec.TargetWordCount = 500
	return ec
}

// WriteKnowledgeDoc writes a markdown document into a knowledge base
// layout rooted at dir.
func WriteKnowledgeDoc(t *testing.T, dir, client, doc, content string) {
	t.Helper()
	clientDir := filepath.Join(dir, client)
	if err := os.MkdirAll(clientDir, 0755); err != nil {
		t.Fatalf("Failed to create client directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(clientDir, doc+".md"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write knowledge doc: %v", err)
	}
}

// StubProvider is an llm.Provider that returns canned responses and
// records the prompts it receives.
type StubProvider struct {
	mu        sync.Mutex
	Response  string
	Responses []string // consumed in order when non-empty
	Err       error

	Prompts  []string
	Systems  []string
	Configs  []llm.ProviderConfig
	numCalls int
}

var _ llm.Provider = (*StubProvider)(nil)

// Name returns the stub provider name.
func (p *StubProvider) Name() string { return "stub" }

// GenerateContent records the call and returns the configured response.
func (p *StubProvider) GenerateContent(ctx context.Context, prompt, systemMessage string, cfg llm.ProviderConfig) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Prompts = append(p.Prompts, prompt)
	p.Systems = append(p.Systems, systemMessage)
	p.Configs = append(p.Configs, cfg)
	p.numCalls++

	if p.Err != nil {
		return "", p.Err
	}
	if len(p.Responses) > 0 {
		resp := p.Responses[0]
		p.Responses = p.Responses[1:]
		return resp, nil
	}
	if p.Response != "" {
		return p.Response, nil
	}
	return "stub response", nil
}

// Calls returns the number of GenerateContent invocations.
func (p *StubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numCalls
}
