package identity

import "strings"

// Identity is the (artist, album|title) tuple used to query the catalog.
// Album takes precedence over Title as the disambiguator when both are set.
type Identity struct {
	Artist string
	Album  string
	Title  string
}

// Valid reports whether the identity is usable for a catalog lookup.
func (i Identity) Valid() bool {
	return strings.TrimSpace(i.Artist) != "" &&
		(strings.TrimSpace(i.Album) != "" || strings.TrimSpace(i.Title) != "")
}

// Disambiguator returns the album when present, the title otherwise.
func (i Identity) Disambiguator() string {
	if strings.TrimSpace(i.Album) != "" {
		return i.Album
	}
	return i.Title
}

func (i Identity) String() string {
	return i.Artist + " - " + i.Disambiguator()
}
