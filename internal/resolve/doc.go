// Package resolve selects the best catalog result for a release identity
// and rewrites its artwork URL to the requested size and quality.
//
// Matching runs in three tiers: exact normalized equality of artist and
// album/title, token-set fuzzy similarity above a configurable threshold,
// and artist-only overlap as a last resort. The tier that produced a match
// is reported so callers can treat non-exact artwork as a fallback.
package resolve
