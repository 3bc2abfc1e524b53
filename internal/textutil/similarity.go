package textutil

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// TokenSetRatio computes a 0-100 similarity score between two strings using
// token-set comparison: both inputs are tokenized, and the sorted token
// intersection and remainders are compared pairwise with an edit-distance
// ratio. Word order does not affect the score, and a string whose tokens are
// a subset of the other's scores 100.
func TokenSetRatio(a, b string) int {
	tokensA := Tokenize(a)
	tokensB := Tokenize(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := uniqueSorted(tokensA)
	setB := uniqueSorted(tokensB)

	var intersection, onlyA, onlyB []string
	inB := make(map[string]struct{}, len(setB))
	for _, token := range setB {
		inB[token] = struct{}{}
	}
	inBoth := make(map[string]struct{})
	for _, token := range setA {
		if _, ok := inB[token]; ok {
			intersection = append(intersection, token)
			inBoth[token] = struct{}{}
		} else {
			onlyA = append(onlyA, token)
		}
	}
	for _, token := range setB {
		if _, ok := inBoth[token]; !ok {
			onlyB = append(onlyB, token)
		}
	}

	base := strings.Join(intersection, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	score := ratio(combinedA, combinedB)
	if base != "" {
		if s := ratio(base, combinedA); s > score {
			score = s
		}
		if s := ratio(base, combinedB); s > score {
			score = s
		}
	}
	return score
}

func ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	similarity, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return int(similarity * 100)
}

func uniqueSorted(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}
