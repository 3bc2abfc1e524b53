package resolve

import (
	"strings"
	"testing"

	"artfetch/internal/identity"
	"artfetch/internal/itunes"
)

var testOpts = Options{Size: 9999, Quality: 100, FuzzyThreshold: 90}

func result(artist, collection, track string) itunes.Result {
	return itunes.Result{
		ArtistName:     artist,
		CollectionName: collection,
		TrackName:      track,
		ArtworkURL100:  "https://a.test/image/100x100bb.jpg",
	}
}

func TestResolveExactMatch(t *testing.T) {
	id := identity.Identity{Artist: "Artist", Album: "Album"}
	results := []itunes.Result{
		result("Artist", "Album (Deluxe)", ""),
		result("Artist", "album", ""),
	}

	match, ok := Resolve(nil, id, results, testOpts)
	if !ok {
		t.Fatal("Resolve() found no match")
	}
	if match.Confidence != ConfidenceExact {
		t.Errorf("confidence = %q, want exact", match.Confidence)
	}
	if match.Result.CollectionName != "album" {
		t.Errorf("matched %q, want case-insensitive exact result", match.Result.CollectionName)
	}
}

func TestResolveExactIgnoresDiacritics(t *testing.T) {
	id := identity.Identity{Artist: "Beyonce", Album: "Beyonce"}
	results := []itunes.Result{result("Beyoncé", "Beyoncé", "")}

	match, ok := Resolve(nil, id, results, testOpts)
	if !ok || match.Confidence != ConfidenceExact {
		t.Fatalf("Resolve() = (%+v, %v), want exact diacritic-insensitive match", match, ok)
	}
}

func TestResolveFuzzyMatch(t *testing.T) {
	id := identity.Identity{Artist: "Artist", Album: "The Great Album"}
	results := []itunes.Result{
		result("Artist", "Great Album, The", ""),
	}

	match, ok := Resolve(nil, id, results, testOpts)
	if !ok {
		t.Fatal("Resolve() found no match")
	}
	if match.Confidence != ConfidenceFuzzy {
		t.Errorf("confidence = %q, want fuzzy", match.Confidence)
	}
	if match.Score < testOpts.FuzzyThreshold {
		t.Errorf("score = %d, want >= %d", match.Score, testOpts.FuzzyThreshold)
	}
}

func TestResolveArtistOnlyFallback(t *testing.T) {
	id := identity.Identity{Artist: "Artist", Album: "Obscure Album"}
	results := []itunes.Result{
		result("Artist", "Completely Different Record", ""),
		result("Artist", "Another Unrelated One", ""),
	}

	match, ok := Resolve(nil, id, results, testOpts)
	if !ok {
		t.Fatal("Resolve() found no match")
	}
	if match.Confidence != ConfidenceArtistOnly {
		t.Errorf("confidence = %q, want artist-only", match.Confidence)
	}
	if match.Result.CollectionName != "Completely Different Record" {
		t.Errorf("matched %q, want first artist-overlapping result", match.Result.CollectionName)
	}
}

func TestResolveArtistGate(t *testing.T) {
	id := identity.Identity{Artist: "Artist", Album: "Album"}
	results := []itunes.Result{
		result("Somebody Else", "Album", ""),
	}

	if match, ok := Resolve(nil, id, results, testOpts); ok {
		t.Fatalf("Resolve() = %+v, want no match when artists share no tokens", match)
	}
}

func TestResolveSkipsResultsWithoutArtwork(t *testing.T) {
	id := identity.Identity{Artist: "Artist", Album: "Album"}
	results := []itunes.Result{
		{ArtistName: "Artist", CollectionName: "Album"},
	}

	if match, ok := Resolve(nil, id, results, testOpts); ok {
		t.Fatalf("Resolve() = %+v, want artwork-less result skipped", match)
	}
}

func TestResolveTitleIdentityComparesTrack(t *testing.T) {
	id := identity.Identity{Artist: "Artist", Title: "Song"}
	results := []itunes.Result{
		result("Artist", "Some Compilation", "Song"),
	}

	match, ok := Resolve(nil, id, results, testOpts)
	if !ok || match.Confidence != ConfidenceExact {
		t.Fatalf("Resolve() = (%+v, %v), want exact track match", match, ok)
	}
}

func TestFormatArtworkURL(t *testing.T) {
	raw := "https://a.test/image/100x100bb.jpg"
	if got := FormatArtworkURL(raw, 9999, 100); !strings.Contains(got, "9999x9999-100.jpg") {
		t.Errorf("FormatArtworkURL() = %q, want sized token with quality", got)
	}
	if got := FormatArtworkURL(raw, 600, 0); !strings.Contains(got, "600x600bb.jpg") {
		t.Errorf("FormatArtworkURL() = %q, want bb token at quality zero", got)
	}
}
