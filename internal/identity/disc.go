package identity

import "strings"

// discKeywords denote a sub-unit of a multi-disc release when they lead a
// folder name, with or without a trailing number.
var discKeywords = []string{"blu-ray", "bluray", "disc", "disk", "vinyl", "sacd", "dvd", "cd", "lp"}

// boxKeywords require a trailing digit or roman numeral ("Box 2", "Set III")
// to avoid matching ordinary words.
var boxKeywords = []string{"box set", "boxset", "box", "set"}

// IsDiscSubfolder reports whether a folder name denotes a disc/volume
// subfolder ("CD1", "Disc 2", "DVD") whose own name carries no usable
// identity and should inherit from its parent.
func IsDiscSubfolder(name string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return false
	}

	for _, keyword := range discKeywords {
		if !strings.HasPrefix(normalized, keyword) {
			continue
		}
		rest := strings.TrimLeft(normalized[len(keyword):], " -_.")
		if rest == "" || startsWithOrdinal(rest) {
			return true
		}
	}

	for _, keyword := range boxKeywords {
		if !strings.HasPrefix(normalized, keyword) {
			continue
		}
		rest := strings.TrimLeft(normalized[len(keyword):], " -_.")
		if rest != "" && startsWithOrdinal(rest) {
			return true
		}
	}

	return false
}

// startsWithOrdinal reports whether s begins with a digit or a roman-numeral
// token.
func startsWithOrdinal(s string) bool {
	if s == "" {
		return false
	}
	if s[0] >= '0' && s[0] <= '9' {
		return true
	}
	token := s
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '-' || c == '_' || c == '.' {
			token = s[:i]
			break
		}
	}
	if token == "" {
		return false
	}
	for i := 0; i < len(token); i++ {
		switch token[i] {
		case 'i', 'v', 'x', 'l', 'c', 'd', 'm':
		default:
			return false
		}
	}
	return true
}
