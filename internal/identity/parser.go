package identity

import (
	"regexp"
	"strings"
)

var (
	bracketGroupPattern = regexp.MustCompile(`\s*\[[^\[\]]*\]\s*`)
	parenGroupPattern   = regexp.MustCompile(`\s*\(([^()]*)\)\s*`)
	bitDepthJoiner      = regexp.MustCompile(`(\d{1,2})\s*-?\s*bits?\b`)
	sampleRateJoiner    = regexp.MustCompile(`(\d{2,3}(?:[.,]\d)?)\s*-?\s*khz\b`)
	bitDepthToken       = regexp.MustCompile(`^\d{1,2}bits?$`)
	sampleRateToken     = regexp.MustCompile(`^\d{2,3}(?:[.,]\d)?khz$`)
	depthRateCombo      = regexp.MustCompile(`^\d{1,2}[-/]\d{2,3}$`)
)

// qualityVocabulary lists audio-quality and format descriptors that carry no
// release identity. Release-edition wording (deluxe, remastered, live, ...)
// is deliberately absent so titles like "Album (Deluxe Edition)" survive.
var qualityVocabulary = map[string]struct{}{
	"hi-res":   {},
	"hires":    {},
	"hd":       {},
	"lossless": {},
	"flac":     {},
	"alac":     {},
	"mp3":      {},
	"m4a":      {},
	"aac":      {},
	"ogg":      {},
	"opus":     {},
	"wav":      {},
	"ape":      {},
	"wv":       {},
	"dsd":      {},
	"dsd64":    {},
	"dsd128":   {},
	"dsd256":   {},
	"sacd":     {},
	"cd":       {},
	"vinyl":    {},
	"web":      {},
	"stereo":   {},
}

// formatTokens are audio formats removed wherever they appear as standalone
// tokens in an album name, optionally followed by one of formatFollowers.
var formatTokens = map[string]struct{}{
	"flac":  {},
	"mp3":   {},
	"m4a":   {},
	"aac":   {},
	"alac":  {},
	"ape":   {},
	"ogg":   {},
	"opus":  {},
	"wav":   {},
	"wv":    {},
	"dsd":   {},
	"sacd":  {},
	"vinyl": {},
	"cd":    {},
}

var formatFollowers = map[string]struct{}{
	"audio":   {},
	"rip":     {},
	"version": {},
}

// ParseFolderName derives an identity from an "Artist - Album" folder name.
// The name must contain a literal " - " separator; the remainder is cleaned
// of bracketed groups, quality-descriptor parentheticals, stacked trailing
// quality descriptors, and standalone format tokens. Returns ok=false when
// either side is empty after cleaning.
func ParseFolderName(name string) (Identity, bool) {
	name = strings.TrimRight(name, `/\`)

	idx := strings.Index(name, " - ")
	if idx < 0 {
		return Identity{}, false
	}

	artist := strings.TrimSpace(name[:idx])
	album := cleanAlbum(name[idx+3:])
	if artist == "" || album == "" {
		return Identity{}, false
	}
	return Identity{Artist: artist, Album: album}, true
}

func cleanAlbum(raw string) string {
	cleaned := bracketGroupPattern.ReplaceAllString(raw, " ")

	cleaned = parenGroupPattern.ReplaceAllStringFunc(cleaned, func(group string) string {
		inner := parenGroupPattern.FindStringSubmatch(group)[1]
		if isQualityDescriptor(inner) {
			return " "
		}
		return group
	})

	cleaned = stripTrailingDescriptors(cleaned)
	cleaned = stripFormatTokens(cleaned)

	return strings.Join(strings.Fields(cleaned), " ")
}

// stripTrailingDescriptors removes stacked " - <descriptor>" suffixes, so
// "Album - Hi-Res - 24Bit" reduces to "Album".
func stripTrailingDescriptors(s string) string {
	for {
		idx := strings.LastIndex(s, " - ")
		if idx < 0 {
			return s
		}
		tail := s[idx+3:]
		if !isQualityDescriptor(tail) {
			return s
		}
		s = strings.TrimSpace(s[:idx])
	}
}

func stripFormatTokens(s string) string {
	fields := strings.Fields(s)
	kept := make([]string, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		token := strings.ToLower(strings.Trim(fields[i], ".,"))
		if _, ok := formatTokens[token]; !ok {
			kept = append(kept, fields[i])
			continue
		}
		if i+1 < len(fields) {
			next := strings.ToLower(strings.Trim(fields[i+1], ".,"))
			if _, ok := formatFollowers[next]; ok {
				i++
			}
		}
	}
	return strings.Join(kept, " ")
}

// isQualityDescriptor reports whether every token of text belongs to the
// quality/format vocabulary. "24bit flac" qualifies; "Deluxe Edition" does not.
func isQualityDescriptor(text string) bool {
	normalized := strings.ToLower(text)
	normalized = bitDepthJoiner.ReplaceAllString(normalized, "${1}bit")
	normalized = sampleRateJoiner.ReplaceAllString(normalized, "${1}khz")

	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return false
	}
	for _, field := range fields {
		if !isQualityToken(strings.Trim(field, ".,")) {
			return false
		}
	}
	return true
}

func isQualityToken(token string) bool {
	if token == "" {
		return false
	}
	if _, ok := qualityVocabulary[token]; ok {
		return true
	}
	if bitDepthToken.MatchString(token) ||
		sampleRateToken.MatchString(token) ||
		depthRateCombo.MatchString(token) {
		return true
	}
	// Slash-joined descriptors like "flac/mp3" or "24bit/96khz".
	if strings.Contains(token, "/") {
		for _, part := range strings.Split(token, "/") {
			if !isQualityToken(part) {
				return false
			}
		}
		return true
	}
	return false
}
