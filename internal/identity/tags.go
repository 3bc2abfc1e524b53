package identity

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
)

// Tags holds the identity-bearing fields collected from an audio file. Each
// field may carry multiple values.
type Tags struct {
	Albums       []string
	AlbumArtists []string
	Artists      []string
	Titles       []string
}

// Empty reports whether no identity-bearing field is set.
func (t Tags) Empty() bool {
	return len(t.Albums) == 0 && len(t.AlbumArtists) == 0 &&
		len(t.Artists) == 0 && len(t.Titles) == 0
}

// TagSource reads tags for a release folder. Implementations return a zero
// Tags value, not an error, when the folder simply has nothing readable.
type TagSource interface {
	ReadTags(dir string) (Tags, error)
}

// audioExtensions are the container formats the tag reader recognizes.
var audioExtensions = map[string]struct{}{
	".flac": {},
	".mp3":  {},
	".m4a":  {},
	".m4b":  {},
	".m4p":  {},
	".mp4":  {},
	".ogg":  {},
	".opus": {},
	".wav":  {},
	".wv":   {},
	".ape":  {},
	".aiff": {},
	".dsf":  {},
}

// FileTagSource reads tags from the first audio file in a folder, in
// lexicographic order. Files the tag library cannot parse are skipped.
type FileTagSource struct{}

func (FileTagSource) ReadTags(dir string) (Tags, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Tags{}, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := audioExtensions[ext]; ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		tags, ok := readFileTags(filepath.Join(dir, name))
		if ok {
			return tags, nil
		}
	}
	return Tags{}, nil
}

func readFileTags(path string) (Tags, bool) {
	file, err := os.Open(path)
	if err != nil {
		return Tags{}, false
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return Tags{}, false
	}

	tags := Tags{
		Albums:       Flatten(metadata.Album()),
		AlbumArtists: FlattenArtists(metadata.AlbumArtist()),
		Artists:      FlattenArtists(metadata.Artist()),
		Titles:       Flatten(metadata.Title()),
	}
	if tags.Empty() {
		return Tags{}, false
	}
	return tags, true
}

// Combinations expands tags into candidate identities in lookup order:
// album artists before track artists, albums before titles, first-listed
// values first. Duplicate pairs are dropped.
func Combinations(tags Tags) []Identity {
	artists := append(append([]string{}, tags.AlbumArtists...), tags.Artists...)

	var out []Identity
	seen := make(map[string]struct{})
	add := func(id Identity) {
		if !id.Valid() {
			return
		}
		key := strings.ToLower(id.Artist) + "\x00" + strings.ToLower(id.Disambiguator())
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, id)
	}

	for _, album := range tags.Albums {
		for _, artist := range artists {
			add(Identity{Artist: artist, Album: album})
		}
	}
	for _, title := range tags.Titles {
		for _, artist := range artists {
			add(Identity{Artist: artist, Title: title})
		}
	}
	return out
}
