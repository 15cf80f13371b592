// Package corrector sends single text units to a language model for grammar
// correction under a strict instruction contract, sanitizes the response,
// and optionally verifies that the model actually corrected rather than
// replaced the text. Any transport, API, sanitization, or verification
// failure is returned to the caller, which falls back to the pre-call text
// for that unit.
package corrector

import (
	"context"
	"time"
)

// Config is the immutable request configuration passed into a Corrector at
// call time. There is no process-wide client state: every call receives the
// full configuration it needs.
type Config struct {
	APIKey       string
	Model        string
	SystemPrompt string
	MaxTokens    int
	// ProtectMarkup shields code spans and raw tags behind [PHn] markers
	// for the duration of the call. A response missing any marker is
	// rejected.
	ProtectMarkup bool
}

// Corrector corrects exactly one unit of text per call. The input is
// guaranteed non-empty; eligibility is checked by the pipeline before the
// call.
type Corrector interface {
	Name() string
	Correct(ctx context.Context, cfg Config, text string) (string, error)
}

// DefaultSystemPrompt is the fixed instruction contract for the correction
// pass: preserve meaning and named entities, correct only grammar,
// punctuation, and phrasing, and emit nothing but the corrected text.
const DefaultSystemPrompt = "You are a careful copy editor. Correct grammar, punctuation, and phrasing in the text you are given while preserving its meaning. Keep named entities and proper nouns verbatim. Reply with the corrected text and nothing else: no preamble, no explanation, no surrounding quotes."

const defaultHTTPTimeout = 120 * time.Second

// maxTokensFor sizes the completion budget from the input length, with a
// floor that leaves room for short inputs that legitimately grow.
func maxTokensFor(cfg Config, text string) int {
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	n := len(text)/2 + 50
	if n < 256 {
		n = 256
	}
	return n
}

func systemPromptFor(cfg Config) string {
	if cfg.SystemPrompt != "" {
		return cfg.SystemPrompt
	}
	return DefaultSystemPrompt
}
