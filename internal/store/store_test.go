package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/mhryhorenko/pravka/internal/document"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := Run{
		ID:         uuid.New().String(),
		InputFile:  "draft.docx",
		OutputFile: "draft.corrected.docx",
		Provider:   "openai",
		Model:      "gpt-4o-mini",
		Order:      "rules-first",
		UseRules:   true,
		UseLLM:     true,
		Units:      10,
		Corrected:  4,
		Skipped:    2,
	}
	if err := s.SaveRun(ctx, first); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	second := Run{
		ID:         uuid.New().String(),
		InputFile:  "notes.txt",
		OutputFile: "notes.out.txt",
		Order:      "rules-first",
		UseRules:   true,
		Units:      3,
		Corrected:  1,
	}
	if err := s.SaveRun(ctx, second); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}

	var got *Run
	for i := range runs {
		if runs[i].ID == first.ID {
			got = &runs[i]
		}
	}
	if got == nil {
		t.Fatal("first run not listed")
	}
	if got.InputFile != "draft.docx" || got.Model != "gpt-4o-mini" ||
		!got.UseRules || !got.UseLLM || got.Units != 10 || got.Corrected != 4 || got.Skipped != 2 {
		t.Errorf("run round trip mismatch: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestSaveAndGetRunUnits(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	runID := uuid.New().String()
	if err := s.SaveRun(ctx, Run{ID: runID, InputFile: "a", OutputFile: "b", Order: "rules-first"}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	units := []*document.Unit{
		{Index: 0, Original: "a hour ago", Current: "an hour ago", RulesApplied: []string{"article-a-an"}},
		{Index: 1, Original: "", Current: "", Skipped: true},
		{Index: 2, Original: "bad unit", Current: "bad unit", LLMError: "model unavailable"},
		{Index: 3, Original: "fine", Current: "Fine.", LLMApplied: true},
	}
	if err := s.SaveRunUnits(ctx, runID, units); err != nil {
		t.Fatalf("SaveRunUnits: %v", err)
	}

	got, err := s.GetRunUnits(ctx, runID)
	if err != nil {
		t.Fatalf("GetRunUnits: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d units, want 4", len(got))
	}
	for i, u := range got {
		if u.Index != i {
			t.Errorf("unit %d out of order, index %d", i, u.Index)
		}
	}
	if got[0].Corrected != "an hour ago" || got[0].RulesApplied != "article-a-an" {
		t.Errorf("unit 0 = %+v", got[0])
	}
	if !got[1].Skipped {
		t.Error("unit 1 skipped flag lost")
	}
	if got[2].LLMError != "model unavailable" {
		t.Errorf("unit 2 error = %q", got[2].LLMError)
	}
	if !got[3].LLMApplied {
		t.Error("unit 3 llm flag lost")
	}
}

func TestGetRunUnitsUnknownRun(t *testing.T) {
	s := testStore(t)

	units, err := s.GetRunUnits(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 0 {
		t.Errorf("expected no units, got %d", len(units))
	}
}

func TestClearRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	runID := uuid.New().String()
	if err := s.SaveRun(ctx, Run{ID: runID, InputFile: "a", OutputFile: "b", Order: "rules-first"}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := s.SaveRunUnits(ctx, runID, []*document.Unit{{Index: 0, Original: "x", Current: "x"}}); err != nil {
		t.Fatalf("SaveRunUnits: %v", err)
	}

	n, err := s.ClearRuns(ctx)
	if err != nil {
		t.Fatalf("ClearRuns: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared %d runs, want 1", n)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs after clear, got %d", len(runs))
	}
	units, err := s.GetRunUnits(ctx, runID)
	if err != nil {
		t.Fatalf("GetRunUnits: %v", err)
	}
	if len(units) != 0 {
		t.Errorf("expected no trace rows after clear, got %d", len(units))
	}
}

func TestCustomRuleLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	r1, err := s.AddCustomRule(ctx, "no-utilize", "utilize", "use", "case-insensitive", "style guide")
	if err != nil {
		t.Fatalf("AddCustomRule: %v", err)
	}
	r2, err := s.AddCustomRule(ctx, "tighten-commas", `\s+,`, ",", "regex", "")
	if err != nil {
		t.Fatalf("AddCustomRule: %v", err)
	}
	if r2.Position != r1.Position+1 {
		t.Errorf("positions = %d, %d; want consecutive", r1.Position, r2.Position)
	}

	rules, err := s.ListCustomRules(ctx)
	if err != nil {
		t.Fatalf("ListCustomRules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if rules[0].Name != "no-utilize" || rules[1].Name != "tighten-commas" {
		t.Errorf("application order wrong: %s, %s", rules[0].Name, rules[1].Name)
	}
	if rules[0].Notes != "style guide" || rules[0].MatchType != "case-insensitive" {
		t.Errorf("rule fields lost: %+v", rules[0])
	}

	if err := s.DeleteCustomRule(ctx, r1.ID); err != nil {
		t.Fatalf("DeleteCustomRule: %v", err)
	}
	rules, err = s.ListCustomRules(ctx)
	if err != nil {
		t.Fatalf("ListCustomRules: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != r2.ID {
		t.Errorf("unexpected rules after delete: %+v", rules)
	}

	if err := s.DeleteCustomRule(ctx, r1.ID); err == nil {
		t.Error("expected error deleting a missing rule")
	}
}

func TestAddCustomRuleRejectsDuplicatePattern(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.AddCustomRule(ctx, "first", "utilize", "use", "exact", ""); err != nil {
		t.Fatalf("AddCustomRule: %v", err)
	}
	// Same pattern after whitespace trimming and NFC normalization.
	if _, err := s.AddCustomRule(ctx, "second", "  utilize ", "employ", "exact", ""); err == nil {
		t.Error("expected unique constraint violation for duplicate pattern")
	}
	// Same pattern under a different match type is a distinct rule.
	if _, err := s.AddCustomRule(ctx, "third", "utilize", "use", "regex", ""); err != nil {
		t.Errorf("distinct match type should be allowed: %v", err)
	}
}

func TestNormalizeText(t *testing.T) {
	// Composed and decomposed forms of the same pattern must collide.
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	if normalizeText(composed) != normalizeText(decomposed) {
		t.Error("NFC normalization not applied")
	}
	if normalizeText("  padded  ") != "padded" {
		t.Error("whitespace not trimmed")
	}
}
