// Package markup shields non-prose content (inline code spans, fenced code
// blocks, raw tags) from the language-model correction pass by replacing it
// with numbered markers ([PH0], [PH1], …) the model is instructed to leave
// intact. After the corrected text comes back, Restore substitutes the
// original content for each marker. A marker the model dropped is detected
// by Missing, which lets the caller reject the response instead of
// silently losing content.
package markup

import (
	"fmt"
	"regexp"
	"strings"
)

// Protected patterns, longest construct first so fenced blocks swallow the
// backticks before the inline-code pattern sees them.
var protectedPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```.*?```"), // fenced code blocks
	regexp.MustCompile("`[^`]+`"),       // inline code spans
	regexp.MustCompile(`<[^>]+>`),       // raw HTML/XML tags
}

var markerRe = regexp.MustCompile(`\[PH(\d+)\]`)

// Protect replaces protected constructs with numbered markers in the order
// they appear and returns the modified text plus the captured originals for
// Restore.
func Protect(text string) (string, []string) {
	var captured []string
	for _, re := range protectedPatterns {
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			marker := fmt.Sprintf("[PH%d]", len(captured))
			captured = append(captured, match)
			return marker
		})
	}
	return text, captured
}

// Restore substitutes [PHn] markers back with the originals captured by
// Protect. Unrecognized indices are left as-is.
func Restore(text string, captured []string) string {
	return markerRe.ReplaceAllStringFunc(text, func(match string) string {
		sub := markerRe.FindStringSubmatch(match)
		idx := 0
		if _, err := fmt.Sscanf(sub[1], "%d", &idx); err != nil {
			return match
		}
		if idx < 0 || idx >= len(captured) {
			return match
		}
		return captured[idx]
	})
}

// Missing returns the indices of markers created by Protect that no longer
// appear in the corrected text.
func Missing(text string, captured []string) []int {
	var missing []int
	for i := range captured {
		if !strings.Contains(text, fmt.Sprintf("[PH%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}

// InstructionHint returns a sentence to append to the system prompt so the
// model knows markers are off-limits.
func InstructionHint() string {
	return "The text contains [PHn] markers standing in for protected content. Leave every marker exactly as it appears: do not correct, move, or remove them."
}
