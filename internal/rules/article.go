package rules

import (
	"regexp"
	"strings"
)

// Article corrects "a" vs "an" based on the phonetic value of the following
// word, not its spelling: silent-h words take "an" ("an hour"), vowel-spelled
// words pronounced with a consonant sound take "a" ("a university"), and
// ALL-CAPS acronyms are read letter by letter ("an FBI agent", "a UFO").
type Article struct{}

// ID implements Rule.
func (Article) ID() string { return "article-a-an" }

// vowelSoundExceptions are words spelled with a consonant but pronounced
// with an initial vowel sound.
var vowelSoundExceptions = map[string]bool{
	"honest": true, "honestly": true, "honesty": true,
	"honor": true, "honored": true, "honorable": true, "honorary": true,
	"honour": true, "honours": true, "honouring": true,
	"hour": true, "hourglass": true,
	"heir": true, "heirloom": true, "heirship": true,
	"herb": true, "herbal": true, "herbs": true,
	"mba": true, "fbi": true, "mri": true, "sos": true,
}

// consonantSoundExceptions are words spelled with a vowel but pronounced
// with an initial consonant sound (the "y" in "university", the "w" in
// "one").
var consonantSoundExceptions = map[string]bool{
	"university": true, "unicorn": true, "uniform": true, "unilateral": true,
	"union": true, "unique": true, "unison": true, "unit": true,
	"united": true, "universe": true,
	"use": true, "user": true, "ubiquity": true,
	"one": true,
	"euro": true, "european": true, "eurovision": true, "eureka": true,
	"eulogy": true, "euphemism": true, "euphonium": true, "euphoria": true,
	"eucalyptus": true, "eugenics": true,
}

// acronymVowelInitials are the capital letters whose spoken letter names
// begin with a vowel sound ("F" is "ef", "M" is "em", …).
const acronymVowelInitials = "AEFHILMNORSX"

// articleRe matches an indefinite article and the word that follows it.
// The word capture stops before hyphens so only the pronounced head of a
// compound ("one" in "one-off") drives the choice.
var articleRe = regexp.MustCompile(`\b([Aa]n?)([ \t]+)([A-Za-z][A-Za-z']*)`)

// Apply implements Rule. Capitalization of the article is preserved.
func (Article) Apply(text string) string {
	return articleRe.ReplaceAllStringFunc(text, func(match string) string {
		sub := articleRe.FindStringSubmatch(match)
		article, space, next := sub[1], sub[2], sub[3]

		correct := "a"
		if startsWithVowelSound(next) {
			correct = "an"
		}
		if article[0] == 'A' {
			correct = strings.ToUpper(correct[:1]) + correct[1:]
		}
		return correct + space + next
	})
}

func startsWithVowelSound(word string) bool {
	if word == "" {
		return false
	}
	// Possessives and contractions sound like their base word.
	if i := strings.IndexByte(word, '\''); i > 0 {
		word = word[:i]
	}
	lower := strings.ToLower(word)

	if vowelSoundExceptions[lower] {
		return true
	}
	if consonantSoundExceptions[lower] {
		return false
	}

	// ALL-CAPS acronyms are pronounced letter by letter.
	if isUpperAlpha(word) {
		return strings.ContainsRune(acronymVowelInitials, rune(word[0]))
	}

	return strings.ContainsRune("aeiou", rune(lower[0]))
}

func isUpperAlpha(word string) bool {
	for _, r := range word {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return len(word) > 0
}
