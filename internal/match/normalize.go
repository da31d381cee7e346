// Package match implements transcript text normalization and the
// sliding-window fuzzy matcher that locates a clip inside a reference
// transcript.
package match

import (
	"regexp"
	"strings"
)

var (
	nonAlnumPattern   = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes raw transcript text into a comparable form:
// lowercase, punctuation and symbols stripped, whitespace runs collapsed
// to single spaces, leading/trailing space trimmed. The word list is the
// whitespace split of the normalized text.
//
// Normalize is pure and deterministic; both clips and references go
// through it so similarity scores and cache keys stay reproducible.
func Normalize(raw string) (string, []string) {
	text := strings.ToLower(raw)
	text = nonAlnumPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	return text, strings.Split(text, " ")
}

// NormalizeWord applies the same canonicalization to a single token.
func NormalizeWord(raw string) string {
	text, _ := Normalize(raw)
	return text
}
