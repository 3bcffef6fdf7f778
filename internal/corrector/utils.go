package corrector

import (
	"regexp"
	"strings"
)

// A sentence ends after terminal punctuation (optionally followed by closing
// quotes or brackets) and whitespace, or at a line break.
var sentenceEnd = regexp.MustCompile(`[.!?]+["')\]]*\s+|\n+`)

// SplitSentences breaks text into trimmed, non-empty sentences.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// Tokenize splits a sentence on whitespace. Punctuation stays attached to
// its word; the lookup tables decide how to clean it.
func Tokenize(sentence string) []string { return strings.Fields(sentence) }
