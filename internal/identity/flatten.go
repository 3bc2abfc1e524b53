package identity

import (
	"fmt"
	"strings"
)

// tagValueSeparators are the separators real tag writers embed inside a
// single field to encode multiple values.
var tagValueSeparators = []string{"\x00", ";", "/"}

// Flatten normalizes tag values of any shape into a deduplicated list of
// non-empty strings. Strings are split on embedded separators; slices and
// nested containers are recursed into; other scalars are rendered with
// fmt.Sprint. Order of first appearance is preserved.
func Flatten(values ...any) []string {
	var out []string
	seen := make(map[string]struct{})

	var add func(value any)
	add = func(value any) {
		switch v := value.(type) {
		case nil:
		case string:
			for _, part := range splitTagValue(v) {
				if _, ok := seen[part]; ok {
					continue
				}
				seen[part] = struct{}{}
				out = append(out, part)
			}
		case []string:
			for _, item := range v {
				add(item)
			}
		case []any:
			for _, item := range v {
				add(item)
			}
		case fmt.Stringer:
			add(v.String())
		default:
			add(fmt.Sprint(v))
		}
	}

	for _, value := range values {
		add(value)
	}
	return out
}

// FlattenArtists behaves like Flatten but additionally splits on commas,
// which tag writers use to join multiple artists in a single field. Album
// and title fields must not use it; commas there are part of the name.
func FlattenArtists(values ...any) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, value := range Flatten(values...) {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}

func splitTagValue(value string) []string {
	parts := []string{value}
	for _, sep := range tagValueSeparators {
		var next []string
		for _, part := range parts {
			next = append(next, strings.Split(part, sep)...)
		}
		parts = next
	}
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return cleaned
}
