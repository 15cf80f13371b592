package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchType selects how a custom rule's pattern is interpreted.
type MatchType string

const (
	MatchExact           MatchType = "exact"
	MatchCaseInsensitive MatchType = "case-insensitive"
	MatchRegex           MatchType = "regex"
)

// ParseMatchType validates a user-supplied match type string.
func ParseMatchType(s string) (MatchType, error) {
	switch MatchType(s) {
	case MatchExact, MatchCaseInsensitive, MatchRegex:
		return MatchType(s), nil
	}
	return "", fmt.Errorf("unknown match type %q (want exact, case-insensitive, or regex)", s)
}

// Custom is a user-defined substitution rule persisted in the store. The
// idempotence requirement still applies: a custom rule whose replacement
// re-matches its own pattern will keep rewriting on repeated passes, so
// such rules should be avoided.
type Custom struct {
	id          string
	matchType   MatchType
	pattern     string
	replacement string
	re          *regexp.Regexp
}

// NewCustom creates a custom rule. For case-insensitive and regex match
// types the pattern is compiled up front so a bad pattern fails at load
// time, not per unit.
func NewCustom(id string, matchType MatchType, pattern, replacement string) (Custom, error) {
	c := Custom{id: id, matchType: matchType, pattern: pattern, replacement: replacement}
	switch matchType {
	case MatchExact:
	case MatchCaseInsensitive:
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(pattern))
		if err != nil {
			return Custom{}, fmt.Errorf("rule %s: %w", id, err)
		}
		c.re = re
	case MatchRegex:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Custom{}, fmt.Errorf("rule %s: invalid pattern: %w", id, err)
		}
		c.re = re
	default:
		return Custom{}, fmt.Errorf("rule %s: unknown match type %q", id, matchType)
	}
	return c, nil
}

// ID implements Rule.
func (c Custom) ID() string { return c.id }

// Apply implements Rule.
func (c Custom) Apply(text string) string {
	switch c.matchType {
	case MatchExact:
		return strings.ReplaceAll(text, c.pattern, c.replacement)
	case MatchCaseInsensitive:
		return c.re.ReplaceAllLiteralString(text, c.replacement)
	case MatchRegex:
		return c.re.ReplaceAllString(text, c.replacement)
	}
	return text
}
