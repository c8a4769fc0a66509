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

const openAIBaseURL = "https://api.openai.com"

// OpenAI is a chat-completions client for the OpenAI API.
type OpenAI struct {
	client *http.Client
}

// NewOpenAI creates an OpenAI client.
func NewOpenAI() *OpenAI {
	return &OpenAI{client: &http.Client{Timeout: 120 * time.Second}}
}

// Name returns the provider name.
func (o *OpenAI) Name() string { return ProviderOpenAI }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GenerateContent sends a chat completion request and returns the text.
func (o *OpenAI) GenerateContent(ctx context.Context, prompt, systemMessage string, cfg ProviderConfig) (string, error) {
	cfg = cfg.WithDefaults()
	if cfg.APIKey == "" {
		return "", errors.ProviderAuth(ProviderOpenAI)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	return chatCompletion(ctx, o.client, chatCompletionParams{
		url:      baseURL + "/v1/chat/completions",
		provider: ProviderOpenAI,
		headers:  map[string]string{"Authorization": "Bearer " + cfg.APIKey},
		cfg:      cfg,
		prompt:   prompt,
		system:   systemMessage,
	})
}

type chatCompletionParams struct {
	url      string
	provider string
	headers  map[string]string
	cfg      ProviderConfig
	prompt   string
	system   string
}

// chatCompletion implements the OpenAI-compatible chat endpoint shared
// by the OpenAI and DeepSeek clients.
func chatCompletion(ctx context.Context, client *http.Client, p chatCompletionParams) (string, error) {
	var messages []chatMessage
	if p.system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: p.system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: p.prompt})

	body, err := json.Marshal(chatRequest{
		Model:       p.cfg.Model,
		Messages:    messages,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", errors.ProviderRequest(p.provider, err)
	}
	defer resp.Body.Close()

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", errors.ProviderRequest(p.provider, fmt.Errorf("decoding response: %w", err))
	}
	if cr.Error != nil {
		return "", errors.ProviderRequest(p.provider, fmt.Errorf("%s: %s", cr.Error.Type, cr.Error.Message))
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.ProviderRequest(p.provider, fmt.Errorf("status %d", resp.StatusCode))
	}
	if len(cr.Choices) == 0 {
		return "", errors.ProviderRequest(p.provider, fmt.Errorf("empty choices in response"))
	}
	return cr.Choices[0].Message.Content, nil
}
