// Package llm provides the provider abstraction and chat-completion
// clients used by the agent executor.
package llm

import (
	"context"
	"strings"

	"github.com/scribe-stack/scribe-machine/internal/errors"
)

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderDeepSeek  = "deepseek"
)

// Default models per provider.
const (
	DefaultOpenAIModel    = "gpt-4o-2024-11-20"
	DefaultAnthropicModel = "claude-3-5-sonnet-20241022"
	DefaultDeepSeekModel  = "deepseek-chat"
)

// ProviderConfig holds per-call generation settings.
type ProviderConfig struct {
	Provider    string  `yaml:"provider" toml:"provider"`
	Model       string  `yaml:"model,omitempty" toml:"model"`
	Temperature float64 `yaml:"temperature,omitempty" toml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens,omitempty" toml:"max_tokens"`
	APIKey      string  `yaml:"-" toml:"-"`
	BaseURL     string  `yaml:"base_url,omitempty" toml:"base_url"`
}

// WithDefaults fills unset fields with provider defaults.
func (c ProviderConfig) WithDefaults() ProviderConfig {
	if c.Model == "" {
		switch c.Provider {
		case ProviderAnthropic:
			c.Model = DefaultAnthropicModel
		case ProviderDeepSeek:
			c.Model = DefaultDeepSeekModel
		default:
			c.Model = DefaultOpenAIModel
		}
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	return c
}

// Provider generates content from a prompt and system message.
type Provider interface {
	Name() string
	GenerateContent(ctx context.Context, prompt, systemMessage string, cfg ProviderConfig) (string, error)
}

// New returns the client for the named provider.
func New(name string) (Provider, error) {
	switch strings.ToLower(name) {
	case ProviderOpenAI:
		return NewOpenAI(), nil
	case ProviderAnthropic:
		return NewAnthropic(), nil
	case ProviderDeepSeek:
		return NewDeepSeek(), nil
	}
	return nil, errors.ProviderUnknown(name)
}

// Informational cost per 1K tokens, by provider.
var costPer1K = map[string]float64{
	ProviderOpenAI:    0.002,
	ProviderAnthropic: 0.008,
	ProviderDeepSeek:  0.0002,
}

// EstimateTokens approximates token usage as the word count of the
// prompt plus the response.
func EstimateTokens(prompt, response string) int {
	return len(strings.Fields(prompt)) + len(strings.Fields(response))
}

// EstimateCost returns the informational cost for the token estimate.
func EstimateCost(provider string, tokens int) float64 {
	rate, ok := costPer1K[strings.ToLower(provider)]
	if !ok {
		rate = costPer1K[ProviderOpenAI]
	}
	return float64(tokens) / 1000 * rate
}
