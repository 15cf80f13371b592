package corrector

import (
	"fmt"

	"github.com/mhryhorenko/pravka/internal/markup"
	"github.com/mhryhorenko/pravka/internal/sanitize"
)

// prepareInput returns the text to send and the system prompt to send it
// under, applying markup protection when configured.
func prepareInput(cfg Config, text string) (work, prompt string, captured []string) {
	work = text
	prompt = systemPromptFor(cfg)
	if cfg.ProtectMarkup {
		work, captured = markup.Protect(text)
		if len(captured) > 0 {
			prompt = prompt + "\n\n" + markup.InstructionHint()
		}
	}
	return work, prompt, captured
}

// acceptOutput runs the shared acceptance phases on raw model output:
// sanitization, marker restoration, and language verification. Any phase
// failing rejects the response so the caller's unit falls back to its
// pre-call text.
func acceptOutput(cfg Config, verify *Verifier, original, raw string, captured []string) (string, error) {
	cleaned, err := sanitize.Clean(raw)
	if err != nil {
		return "", fmt.Errorf("sanitizer rejected response: %w", err)
	}

	if cfg.ProtectMarkup && len(captured) > 0 {
		if missing := markup.Missing(cleaned, captured); len(missing) > 0 {
			return "", fmt.Errorf("response dropped %d protected marker(s)", len(missing))
		}
		cleaned = markup.Restore(cleaned, captured)
	}

	if verify != nil {
		if err := verify.SameLanguage(original, cleaned); err != nil {
			return "", fmt.Errorf("verification rejected response: %w", err)
		}
	}

	return cleaned, nil
}
