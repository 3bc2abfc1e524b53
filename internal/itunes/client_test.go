package itunes

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"artfetch/internal/fetch"
	"artfetch/internal/identity"
)

type stubGetter struct {
	responses map[string][]byte
	errs      map[string]error
	calls     []string
}

func (s *stubGetter) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	s.calls = append(s.calls, rawURL)
	if err, ok := s.errs[rawURL]; ok {
		return nil, err
	}
	body, ok := s.responses[rawURL]
	if !ok {
		return nil, fmt.Errorf("unexpected url %s", rawURL)
	}
	return body, nil
}

func queryURL(t *testing.T, term, entity string) string {
	t.Helper()
	return Query{Term: term, Entity: entity}.URL("https://example.test")
}

func TestBuildQueries(t *testing.T) {
	album := BuildQueries(identity.Identity{Artist: "Artist", Album: "Album"})
	if len(album) != 2 {
		t.Fatalf("album identity produced %d queries, want 2", len(album))
	}
	if album[0].Entity != EntityAlbum || album[1].Entity != EntityTrack {
		t.Errorf("album entities = %q, %q; want album then track", album[0].Entity, album[1].Entity)
	}
	if album[0].Term != "Artist Album" || album[1].Term != album[0].Term {
		t.Errorf("album terms = %q, %q; want identical %q", album[0].Term, album[1].Term, "Artist Album")
	}

	title := BuildQueries(identity.Identity{Artist: "Artist", Title: "Track"})
	if len(title) != 1 || title[0].Entity != EntityTrack || title[0].Term != "Artist Track" {
		t.Errorf("title queries = %+v, want single track query", title)
	}
}

func TestQueryURL(t *testing.T) {
	raw := Query{Term: "AC/DC Back in Black", Entity: EntityAlbum}.URL("https://example.test")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("URL() produced unparsable url: %v", err)
	}
	values := parsed.Query()
	if values.Get("term") != "AC/DC Back in Black" {
		t.Errorf("term = %q, want escaped round trip", values.Get("term"))
	}
	if values.Get("media") != "music" || values.Get("entity") != EntityAlbum {
		t.Errorf("media/entity = %q/%q", values.Get("media"), values.Get("entity"))
	}
	if !strings.HasPrefix(raw, "https://example.test/search?") {
		t.Errorf("url = %q, want /search path", raw)
	}
}

func TestSearchMalformedBody(t *testing.T) {
	u := queryURL(t, "Artist Album", EntityAlbum)
	getter := &stubGetter{responses: map[string][]byte{u: []byte("<html>busy</html>")}}
	client := NewClient(getter, "https://example.test", nil)

	response, err := client.Search(context.Background(), Query{Term: "Artist Album", Entity: EntityAlbum})
	if err != nil {
		t.Fatalf("Search() error = %v, want malformed body treated as empty", err)
	}
	if response.ResultCount != 0 || len(response.Results) != 0 {
		t.Errorf("Search() = %+v, want empty response", response)
	}
}

func TestLookupFallsBackToTrackEntity(t *testing.T) {
	albumURL := queryURL(t, "Artist Album", EntityAlbum)
	trackURL := queryURL(t, "Artist Album", EntityTrack)
	getter := &stubGetter{responses: map[string][]byte{
		albumURL: []byte(`{"resultCount":0,"results":[]}`),
		trackURL: []byte(`{"resultCount":1,"results":[{"artistName":"Artist","trackName":"Song","artworkUrl100":"https://a.test/100x100bb.jpg"}]}`),
	}}
	client := NewClient(getter, "https://example.test", nil)

	response, query, err := client.Lookup(context.Background(), identity.Identity{Artist: "Artist", Album: "Album"})
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if query.Entity != EntityTrack {
		t.Errorf("producing entity = %q, want track fallback", query.Entity)
	}
	if len(response.Results) != 1 || response.Results[0].TrackName != "Song" {
		t.Errorf("Lookup() results = %+v", response.Results)
	}
	if len(getter.calls) != 2 {
		t.Errorf("fetch calls = %d, want 2", len(getter.calls))
	}
}

func TestLookupSkipsFailedQuery(t *testing.T) {
	albumURL := queryURL(t, "Artist Album", EntityAlbum)
	trackURL := queryURL(t, "Artist Album", EntityTrack)
	getter := &stubGetter{
		errs: map[string]error{albumURL: &fetch.StatusError{URL: albumURL, StatusCode: 500}},
		responses: map[string][]byte{
			trackURL: []byte(`{"resultCount":1,"results":[{"artistName":"Artist","collectionName":"Album"}]}`),
		},
	}
	client := NewClient(getter, "https://example.test", nil)

	response, _, err := client.Lookup(context.Background(), identity.Identity{Artist: "Artist", Album: "Album"})
	if err != nil {
		t.Fatalf("Lookup() error = %v, want transient failure skipped", err)
	}
	if len(response.Results) != 1 {
		t.Errorf("Lookup() results = %+v, want track entity result", response.Results)
	}
}

func TestLookupPropagatesRateLimit(t *testing.T) {
	albumURL := queryURL(t, "Artist Album", EntityAlbum)
	getter := &stubGetter{errs: map[string]error{
		albumURL: fmt.Errorf("fetching: %w", fetch.ErrRateLimited),
	}}
	client := NewClient(getter, "https://example.test", nil)

	_, _, err := client.Lookup(context.Background(), identity.Identity{Artist: "Artist", Album: "Album"})
	if !errors.Is(err, fetch.ErrRateLimited) {
		t.Fatalf("Lookup() error = %v, want rate limit propagated", err)
	}
	if len(getter.calls) != 1 {
		t.Errorf("fetch calls = %d, want lookup aborted after first query", len(getter.calls))
	}
}

func TestLookupNoResults(t *testing.T) {
	getter := &stubGetter{responses: map[string][]byte{
		queryURL(t, "Artist Album", EntityAlbum): []byte(`{"resultCount":0,"results":[]}`),
		queryURL(t, "Artist Album", EntityTrack): []byte(`{"resultCount":0,"results":[]}`),
	}}
	client := NewClient(getter, "https://example.test", nil)

	response, _, err := client.Lookup(context.Background(), identity.Identity{Artist: "Artist", Album: "Album"})
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if len(response.Results) != 0 {
		t.Errorf("Lookup() results = %+v, want none", response.Results)
	}
}
