package corrector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient corrects units against an OpenAI-compatible chat completions
// endpoint (api.openai.com, OpenRouter, llama.cpp server, …).
type OpenAIClient struct {
	baseURL string
	client  *http.Client
	verify  *Verifier
}

// NewOpenAIClient creates a client for the given base URL. verify may be
// nil to accept sanitized output without language verification.
func NewOpenAIClient(baseURL string, verify *Verifier) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		verify:  verify,
	}
}

// Name implements Corrector.
func (c *OpenAIClient) Name() string { return "openai" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Correct implements Corrector. The unit text is the sole user content;
// the instruction contract rides in the system message.
func (c *OpenAIClient) Correct(ctx context.Context, cfg Config, text string) (string, error) {
	if cfg.APIKey == "" {
		return "", fmt.Errorf("OpenAI API key required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	work, prompt, captured := prepareInput(cfg, text)

	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: work},
		},
		Temperature: 0,
		MaxTokens:   maxTokensFor(cfg, work),
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/chat/completions", c.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return acceptOutput(cfg, c.verify, text, chatResp.Choices[0].Message.Content, captured)
}
