package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/scribe-stack/scribe-machine/internal/errors"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// Anthropic is a messages-API client for the Anthropic API.
type Anthropic struct {
	client *http.Client
}

// NewAnthropic creates an Anthropic client.
func NewAnthropic() *Anthropic {
	return &Anthropic{client: &http.Client{Timeout: 120 * time.Second}}
}

// Name returns the provider name.
func (a *Anthropic) Name() string { return ProviderAnthropic }

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateContent sends a messages request and returns the text.
func (a *Anthropic) GenerateContent(ctx context.Context, prompt, systemMessage string, cfg ProviderConfig) (string, error) {
	cfg = cfg.WithDefaults()
	if cfg.APIKey == "" {
		return "", errors.ProviderAuth(ProviderAnthropic)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		System:      systemMessage,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", errors.ProviderRequest(ProviderAnthropic, err)
	}
	defer resp.Body.Close()

	var ar anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return "", errors.ProviderRequest(ProviderAnthropic, fmt.Errorf("decoding response: %w", err))
	}
	if ar.Error != nil {
		return "", errors.ProviderRequest(ProviderAnthropic, fmt.Errorf("%s: %s", ar.Error.Type, ar.Error.Message))
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.ProviderRequest(ProviderAnthropic, fmt.Errorf("status %d", resp.StatusCode))
	}
	for _, block := range ar.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.ProviderRequest(ProviderAnthropic, fmt.Errorf("no text content in response"))
}
