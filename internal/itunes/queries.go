package itunes

import (
	"net/url"

	"artfetch/internal/identity"
)

// Entity names accepted by the search endpoint.
const (
	EntityAlbum = "album"
	EntityTrack = "musicTrack"
)

// Query is a single search request against the catalog.
type Query struct {
	Term   string
	Entity string
}

// URL renders the query against the API base URL.
func (q Query) URL(baseURL string) string {
	params := url.Values{}
	params.Set("term", q.Term)
	params.Set("media", "music")
	params.Set("entity", q.Entity)
	return baseURL + "/search?" + params.Encode()
}

// BuildQueries returns the queries to try for an identity, in order. Album
// identities search the album entity first and fall back to the track entity
// with the same term; title-only identities search tracks directly.
func BuildQueries(id identity.Identity) []Query {
	if id.Album != "" {
		term := id.Artist + " " + id.Album
		return []Query{
			{Term: term, Entity: EntityAlbum},
			{Term: term, Entity: EntityTrack},
		}
	}
	return []Query{{Term: id.Artist + " " + id.Title, Entity: EntityTrack}}
}
