package corrector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DefaultOllamaModel is used when no model is configured.
const DefaultOllamaModel = "llama3.2"

// OllamaClient corrects units against a local Ollama instance.
type OllamaClient struct {
	baseURL string
	client  *http.Client
	verify  *Verifier
}

// NewOllamaClient creates a client for the given base URL. verify may be
// nil to accept sanitized output without language verification.
func NewOllamaClient(baseURL string, verify *Verifier) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		verify:  verify,
	}
}

// Name implements Corrector.
func (c *OllamaClient) Name() string { return "ollama" }

type ollamaRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// Correct implements Corrector.
func (c *OllamaClient) Correct(ctx context.Context, cfg Config, text string) (string, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}

	work, prompt, captured := prepareInput(cfg, text)

	body := ollamaRequest{
		Model:  model,
		System: prompt,
		Prompt: work,
		Stream: false,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", c.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return acceptOutput(cfg, c.verify, text, ollamaResp.Response, captured)
}
