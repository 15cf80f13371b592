package corrector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClient_New(t *testing.T) {
	c := NewOpenAIClient("", nil)
	if c.baseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base URL, got %q", c.baseURL)
	}
	if c.client == nil {
		t.Error("expected non-nil HTTP client")
	}

	c = NewOpenAIClient("http://localhost:8080/v1", nil)
	if c.baseURL != "http://localhost:8080/v1" {
		t.Errorf("expected custom base URL, got %q", c.baseURL)
	}
}

func TestOpenAIClient_Correct_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", got)
		}

		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Model != "gpt-4o-mini" {
			t.Errorf("expected default model, got %q", req.Model)
		}
		if req.Temperature != 0 {
			t.Errorf("expected temperature 0, got %v", req.Temperature)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" || !strings.Contains(req.Messages[0].Content, "copy editor") {
			t.Errorf("unexpected system message %+v", req.Messages[0])
		}
		if req.Messages[1].Role != "user" || req.Messages[1].Content != "a hour passed" {
			t.Errorf("unit text must be the sole user content, got %+v", req.Messages[1])
		}

		var resp chatResponse
		resp.Choices = make([]struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}, 1)
		resp.Choices[0].Message.Content = "Here is the corrected text: An hour passed."
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewOpenAIClient(server.URL, nil)
	got, err := c.Correct(context.Background(), Config{APIKey: "test-key"}, "a hour passed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Conversational wrapping must be stripped by the sanitizer.
	if got != "An hour passed." {
		t.Errorf("got %q, want %q", got, "An hour passed.")
	}
}

func TestOpenAIClient_Correct_RequiresAPIKey(t *testing.T) {
	c := NewOpenAIClient("http://example.invalid", nil)
	if _, err := c.Correct(context.Background(), Config{}, "text"); err == nil {
		t.Error("expected error without API key")
	}
}

func TestOpenAIClient_Correct_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewOpenAIClient(server.URL, nil)
	if _, err := c.Correct(context.Background(), Config{APIKey: "k"}, "text"); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestOpenAIClient_Correct_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer server.Close()

	c := NewOpenAIClient(server.URL, nil)
	if _, err := c.Correct(context.Background(), Config{APIKey: "k"}, "text"); err == nil {
		t.Error("expected error on empty choices")
	}
}

// A response the sanitizer cannot isolate a payload from must surface as
// an error so the pipeline keeps the pre-call text.
func TestOpenAIClient_Correct_UnsanitizableResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp chatResponse
		resp.Choices = make([]struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}, 1)
		resp.Choices[0].Message.Content = "Here is the corrected text:"
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewOpenAIClient(server.URL, nil)
	_, err := c.Correct(context.Background(), Config{APIKey: "k"}, "text")
	if err == nil {
		t.Fatal("expected sanitizer rejection")
	}
	if !strings.Contains(err.Error(), "sanitizer") {
		t.Errorf("error should mention the sanitizer, got %v", err)
	}
}

func TestOpenAIClient_Correct_ProtectsMarkup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)

		if strings.Contains(req.Messages[1].Content, "`") {
			t.Errorf("code span leaked to the model: %q", req.Messages[1].Content)
		}
		if !strings.Contains(req.Messages[0].Content, "[PHn]") {
			t.Error("system prompt should carry the marker instruction")
		}

		var resp chatResponse
		resp.Choices = make([]struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}, 1)
		// Echo the protected text with a correction around the marker.
		resp.Choices[0].Message.Content = strings.Replace(req.Messages[1].Content, "Run [PH0] before you commits", "Run [PH0] before you commit", 1)
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewOpenAIClient(server.URL, nil)
	got, err := c.Correct(context.Background(), Config{APIKey: "k", ProtectMarkup: true}, "Run `go build` before you commits the change.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Run `go build` before you commit the change." {
		t.Errorf("got %q", got)
	}
}

func TestOpenAIClient_Correct_RejectsDroppedMarkers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp chatResponse
		resp.Choices = make([]struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}, 1)
		resp.Choices[0].Message.Content = "The marker is gone now."
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewOpenAIClient(server.URL, nil)
	_, err := c.Correct(context.Background(), Config{APIKey: "k", ProtectMarkup: true}, "Keep `this` safe.")
	if err == nil {
		t.Fatal("expected rejection when a protected marker is dropped")
	}
	if !strings.Contains(err.Error(), "marker") {
		t.Errorf("error should mention markers, got %v", err)
	}
}

func TestCorrectorInterfaces(t *testing.T) {
	var _ Corrector = (*OpenAIClient)(nil)
	var _ Corrector = (*OllamaClient)(nil)
}

func TestMaxTokensFor(t *testing.T) {
	if got := maxTokensFor(Config{MaxTokens: 512}, "x"); got != 512 {
		t.Errorf("explicit budget ignored, got %d", got)
	}
	if got := maxTokensFor(Config{}, "short"); got != 256 {
		t.Errorf("floor not applied, got %d", got)
	}
	long := strings.Repeat("w", 1000)
	if got := maxTokensFor(Config{}, long); got != 550 {
		t.Errorf("length heuristic wrong, got %d", got)
	}
}
