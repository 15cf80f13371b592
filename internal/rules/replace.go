package rules

import (
	"regexp"
	"strings"
)

// Replace performs exact, case-sensitive substring substitution of one
// phrase for another, leaving all other text untouched. It is idempotent
// as long as the replacement does not itself contain the pattern; built-in
// replacements are chosen to satisfy that.
type Replace struct {
	id   string
	from string
	to   string
}

// NewReplace creates a fixed-phrase substitution rule.
func NewReplace(id, from, to string) Replace {
	return Replace{id: id, from: from, to: to}
}

// ID implements Rule.
func (r Replace) ID() string { return r.id }

// Apply implements Rule.
func (r Replace) Apply(text string) string {
	return strings.ReplaceAll(text, r.from, r.to)
}

// Expand appends a fixed qualifier after every occurrence of a named
// phrase. Occurrences already followed by the qualifier are left alone,
// which makes the rule idempotent without lookahead (RE2 has none).
type Expand struct {
	id        string
	qualifier string
	re        *regexp.Regexp
}

// NewExpand creates a phrase-expansion rule that rewrites `phrase` to
// `phrase qualifier`.
func NewExpand(id, phrase, qualifier string) Expand {
	re := regexp.MustCompile(
		`\b` + regexp.QuoteMeta(phrase) + `(\s+` + regexp.QuoteMeta(qualifier) + `)?\b`)
	return Expand{id: id, qualifier: qualifier, re: re}
}

// ID implements Rule.
func (e Expand) ID() string { return e.id }

// Apply implements Rule.
func (e Expand) Apply(text string) string {
	return e.re.ReplaceAllStringFunc(text, func(match string) string {
		if strings.HasSuffix(match, e.qualifier) {
			return match
		}
		return match + " " + e.qualifier
	})
}
