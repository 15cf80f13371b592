// Package sanitize isolates a clean corrected payload from a raw
// language-model response, and decides whether a unit is eligible for model
// correction at all.
//
// Cleaning is a declarative sequence of trims applied to the text returned
// by any LLM backend: reasoning-block removal, acknowledgement-prefix
// removal, trailing-commentary removal, and wrapping-quote removal. When
// nothing recognizable remains after trimming, Clean reports ErrNoPayload
// instead of guessing, so the caller can fall back to the pre-call text.
package sanitize

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoPayload is returned by Clean when the response contains no
// recognizable corrected text after trimming.
var ErrNoPayload = errors.New("no recognizable corrected text in model response")

// Eligible reports whether text should be sent to the language model at
// all. Whitespace-only units are ineligible: the call would be wasted, and
// an empty prompt is a known trigger for fabricated content.
func Eligible(text string) bool {
	return strings.TrimSpace(text) != ""
}

// Clean strips non-substantive wrapper content from a raw model response
// and returns the corrected payload.
func Clean(raw string) (string, error) {
	text := removeReasoningBlocks(raw)
	text = removeAckPrefixes(text)
	text = removeTrailingCommentary(text)
	text = removeQuoteWrapping(text)
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoPayload
	}
	return text, nil
}

// --- reasoning blocks ---

// Each tag variant is listed explicitly because RE2 has no backreferences.
var reasoningBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// An opened reasoning tag with no closing tag means the model was cut off
// mid-thought; everything from the tag onward is dropped.
var truncatedReasoningRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeReasoningBlocks(text string) string {
	text = reasoningBlockRe.ReplaceAllString(text, "")
	text = truncatedReasoningRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- acknowledgement prefixes ---

// ackPrefixes match introductory phrases models prepend even when told not
// to. Each pattern is anchored to the start and requires a colon to reduce
// false positives on legitimate content.
var ackPrefixes = []*regexp.Regexp{
	// "Here is / Here's [the] corrected [text|version|sentence]:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)?(?: corrected| revised| edited| fixed)?\s*(?:text|version|sentence|passage)?\s*:`),
	// "[The] corrected [text|version|sentence]:"
	regexp.MustCompile(`(?i)^(?:the )?(?:corrected|revised|edited|fixed) (?:text|version|sentence|passage)\s*:`),
	// "Certainly / Sure / Of course[,] here is the corrected text:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course|okay)[,.!]?\s+here(?:'s| is)(?: the)?(?: corrected| revised| edited| fixed)?\s*(?:text|version|sentence|passage)?\s*:`),
}

func removeAckPrefixes(text string) string {
	for _, re := range ackPrefixes {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- trailing commentary ---

// trailingCommentaryRe matches an explanatory paragraph appended after the
// payload, separated by a blank line and opening with a telltale phrase.
var trailingCommentaryRe = regexp.MustCompile(
	`(?is)\n\s*\n\s*(?:note:|i (?:have |'ve )?(?:corrected|fixed|changed)|let me know\b|i hope this helps\b|the main changes\b|changes made\b).*$`,
)

func removeTrailingCommentary(text string) string {
	return strings.TrimSpace(trailingCommentaryRe.ReplaceAllString(text, ""))
}

// --- quote wrapping ---

// removeQuoteWrapping strips a matching pair of outer quotes when the
// entire text is wrapped in them. Supported pairs: "…" '…' «…» “…” ‘…’
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
