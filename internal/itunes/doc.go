// Package itunes queries the iTunes Search API for album and track
// metadata. Queries are built from a release identity and issued through the
// rate-limit-aware fetcher; album lookups fall back from the album entity to
// the track entity when the catalog has no album-level match.
package itunes
