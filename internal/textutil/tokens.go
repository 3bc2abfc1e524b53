package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// diacriticStripper decomposes characters and removes combining marks, so
// "Beyoncé" normalizes to "beyonce".
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases and trims text and strips diacritical marks, producing
// a canonical form for comparisons.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}
	if stripped, _, err := transform.String(diacriticStripper, text); err == nil {
		text = stripped
	}
	return text
}

// Tokenize splits text into lowercase alphanumeric tokens.
func Tokenize(text string) []string {
	raw := tokenSplitPattern.Split(Normalize(text), -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if token == "" {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// Overlap reports whether two normalized strings are equal or one contains
// the other. The loose containment test tolerates "Artist feat. X" style
// variants in catalog data.
func Overlap(a, b string) bool {
	a = Normalize(a)
	b = Normalize(b)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}
