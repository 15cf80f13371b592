// Package rules implements the deterministic text-transformation stage of
// the correction pipeline. A rule is a pure text→text function: no side
// effects, no dependency on document position. Every rule must be
// idempotent (applying it twice equals applying it once), because the
// pipeline may run the rule stage both before and after the language-model
// stage on the same unit.
package rules

import "fmt"

// Rule is a single deterministic transformation.
type Rule interface {
	// ID identifies the rule in per-unit traces.
	ID() string
	// Apply transforms text and returns the result. It must be pure,
	// idempotent, and local to the given text.
	Apply(text string) string
}

// Set holds an ordered sequence of rules. Apply runs them in registration
// order, feeding each rule's output to the next.
type Set struct {
	rules []Rule
}

// NewSet creates a Set with the given rules in order.
func NewSet(rules ...Rule) *Set {
	return &Set{rules: rules}
}

// Default returns the built-in rule set: indefinite-article correction,
// the fixed-phrase substitutions, and the phrase expansion.
func Default() *Set {
	return NewSet(
		Article{},
		NewReplace("replace-absent-the", "absent the", "without the"),
		NewReplace("replace-absent-the-cap", "Absent the", "Without the"),
		NewExpand("expand-abu-dhabi", "Abu Dhabi", "Sovereign"),
	)
}

// Add appends a rule to the end of the set.
func (s *Set) Add(r Rule) {
	s.rules = append(s.rules, r)
}

// Rules returns the rules in application order.
func (s *Set) Rules() []Rule {
	return s.rules
}

// Apply runs every rule in order and returns the transformed text together
// with the IDs of the rules that changed it. A rule that panics does not
// abort the caller: the whole rule stage reverts to the input text, applied
// is nil, and the failure is returned as an error so the unit can be
// recorded as unmodified-by-rules.
func (s *Set) Apply(text string) (out string, applied []string, err error) {
	out = text
	for _, r := range s.rules {
		next, applyErr := applyOne(r, out)
		if applyErr != nil {
			return text, nil, applyErr
		}
		if next != out {
			applied = append(applied, r.ID())
		}
		out = next
	}
	return out, applied, nil
}

func applyOne(r Rule, text string) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("rule %s panicked: %v", r.ID(), p)
		}
	}()
	return r.Apply(text), nil
}
