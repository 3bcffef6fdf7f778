// Package textnorm cleans surface forms before they are used as keys in the
// corpus frequency table and the lexicon.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalizer maps a surface form to the key a lookup table stores it under.
type Normalizer func(string) string

var lower = cases.Lower(language.Und)

// Clean removes characters that carry no meaning for the word and lowercases
// the rest. Hyphens are kept anywhere; an apostrophe survives only as the
// second-to-last rune ("don't" keeps it, "'tis" and "dogs'" lose it).
func Clean(token string) string {
	runes := []rune(norm.NFC.String(token))
	var b strings.Builder
	b.Grow(len(token))
	for i, r := range runes {
		if !isWordRune(r) {
			if r != '\'' && r != '-' {
				continue
			}
			if r == '\'' && i != len(runes)-2 {
				continue
			}
		}
		b.WriteRune(r)
	}
	return lower.String(b.String())
}

// Identity leaves the surface form untouched.
func Identity(s string) string { return s }

// Apply runs n on s, treating a nil normalizer as Identity.
func Apply(n Normalizer, s string) string {
	if n == nil {
		return s
	}
	return n(s)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
