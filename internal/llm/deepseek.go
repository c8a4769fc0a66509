package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/scribe-stack/scribe-machine/internal/errors"
)

const deepSeekBaseURL = "https://api.deepseek.com"

// DeepSeek is a chat-completions client for the DeepSeek API, which is
// OpenAI-compatible.
type DeepSeek struct {
	client *http.Client
}

// NewDeepSeek creates a DeepSeek client.
func NewDeepSeek() *DeepSeek {
	return &DeepSeek{client: &http.Client{Timeout: 120 * time.Second}}
}

// Name returns the provider name.
func (d *DeepSeek) Name() string { return ProviderDeepSeek }

// GenerateContent sends a chat completion request and returns the text.
func (d *DeepSeek) GenerateContent(ctx context.Context, prompt, systemMessage string, cfg ProviderConfig) (string, error) {
	cfg = cfg.WithDefaults()
	if cfg.APIKey == "" {
		return "", errors.ProviderAuth(ProviderDeepSeek)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = deepSeekBaseURL
	}
	return chatCompletion(ctx, d.client, chatCompletionParams{
		url:      baseURL + "/v1/chat/completions",
		provider: ProviderDeepSeek,
		headers:  map[string]string{"Authorization": "Bearer " + cfg.APIKey},
		cfg:      cfg,
		prompt:   prompt,
		system:   systemMessage,
	})
}
