package corrector

import (
	"fmt"
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// minVerifyRunes is the minimum rune count required to attempt language
// detection. Shorter texts produce unreliable results and pass without
// verification.
const minVerifyRunes = 20

// Verifier rejects model output that is not plausibly a correction of the
// input: a grammar pass never changes the language of the text, so a
// language mismatch means the model translated, refused, or fabricated.
// The underlying detector is expensive to build; construct one Verifier and
// share it across calls.
type Verifier struct {
	det lingua.LanguageDetector
}

// NewVerifier creates a Verifier backed by the lingua-go language detector.
func NewVerifier() *Verifier {
	det := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()
	return &Verifier{det: det}
}

// SameLanguage returns an error when corrected is detected as a different
// language than original. Texts too short to detect reliably, and texts
// whose language is ambiguous, pass without error.
func (v *Verifier) SameLanguage(original, corrected string) error {
	src := strings.TrimSpace(original)
	out := strings.TrimSpace(corrected)
	if len([]rune(src)) < minVerifyRunes || len([]rune(out)) < minVerifyRunes {
		return nil
	}

	srcLang, ok := v.det.DetectLanguageOf(src)
	if !ok {
		return nil
	}
	outLang, ok := v.det.DetectLanguageOf(out)
	if !ok {
		return nil
	}

	if srcLang != outLang {
		return fmt.Errorf("output language %s does not match input language %s", outLang, srcLang)
	}
	return nil
}
