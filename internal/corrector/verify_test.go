package corrector

import (
	"sync"
	"testing"
)

// The detector model load is slow; share one instance across tests.
var (
	verifierOnce sync.Once
	sharedVerify *Verifier
)

func testVerifier() *Verifier {
	verifierOnce.Do(func() {
		sharedVerify = NewVerifier()
	})
	return sharedVerify
}

func TestVerifier_SameLanguagePasses(t *testing.T) {
	v := testVerifier()
	err := v.SameLanguage(
		"The committee reviewed the proposal and approved the budget for next year.",
		"The committee reviewed the proposal and approved next year's budget.",
	)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVerifier_LanguageMismatchRejected(t *testing.T) {
	v := testVerifier()
	err := v.SameLanguage(
		"The committee reviewed the proposal and approved the budget for next year.",
		"Der Ausschuss hat den Vorschlag geprüft und das Budget für nächstes Jahr genehmigt.",
	)
	if err == nil {
		t.Error("expected error for translated output")
	}
}

func TestVerifier_ShortTextsPassWithoutDetection(t *testing.T) {
	v := testVerifier()
	// Below the detection threshold on either side: verification abstains.
	if err := v.SameLanguage("ok", "добре"); err != nil {
		t.Errorf("short texts should pass, got %v", err)
	}
	if err := v.SameLanguage("The committee reviewed the proposal carefully.", "так"); err != nil {
		t.Errorf("short output should pass, got %v", err)
	}
}
