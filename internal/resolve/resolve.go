package resolve

import (
	"fmt"
	"log/slog"
	"strings"

	"artfetch/internal/identity"
	"artfetch/internal/itunes"
	"artfetch/internal/logging"
	"artfetch/internal/textutil"
)

// Confidence names the matching tier that produced a result.
type Confidence string

const (
	ConfidenceExact      Confidence = "exact"
	ConfidenceFuzzy      Confidence = "fuzzy"
	ConfidenceArtistOnly Confidence = "artist-only"
	ConfidenceNone       Confidence = "none"
)

// Exact reports whether the artwork can be saved under the primary output
// name rather than the fallback name.
func (c Confidence) Exact() bool { return c == ConfidenceExact }

// Options carries the artwork sizing and matching knobs.
type Options struct {
	Size           int
	Quality        int
	FuzzyThreshold int
}

// Match is a resolved catalog result with its rewritten artwork URL.
type Match struct {
	Result     itunes.Result
	Confidence Confidence
	Score      int
	ArtworkURL string
}

// Resolve picks the best result for an identity. Results whose artist has no
// token overlap with the identity's artist are ignored, as are results
// without artwork. An exact match on the album or title short-circuits;
// otherwise the highest fuzzy score at or above the threshold wins, then the
// first artist-overlapping result.
func Resolve(logger *slog.Logger, id identity.Identity, results []itunes.Result, opts Options) (Match, bool) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithComponent(logger, "resolve")

	target := id.Disambiguator()
	targetNormalized := textutil.Normalize(target)

	var (
		fuzzy      *itunes.Result
		fuzzyScore int
		artistOnly *itunes.Result
	)

	for idx := range results {
		result := &results[idx]
		if result.ArtworkURL100 == "" {
			continue
		}
		if !textutil.Overlap(id.Artist, result.ArtistName) {
			continue
		}

		candidate := candidateName(id, *result)
		score := textutil.TokenSetRatio(target, candidate)

		logger.Debug("scoring candidate",
			logging.String("identity", id.String()),
			logging.String("candidate_artist", result.ArtistName),
			logging.String("candidate", candidate),
			logging.Int("score", score))

		if candidate != "" && textutil.Normalize(candidate) == targetNormalized {
			logger.Debug("exact match",
				logging.String("identity", id.String()),
				logging.String("candidate", candidate))
			return finalize(*result, ConfidenceExact, 100, opts), true
		}
		if candidate != "" && score >= opts.FuzzyThreshold && score > fuzzyScore {
			fuzzy = result
			fuzzyScore = score
		}
		if artistOnly == nil {
			artistOnly = result
		}
	}

	switch {
	case fuzzy != nil:
		logger.Debug("fuzzy match",
			logging.String("identity", id.String()),
			logging.String("candidate", candidateName(id, *fuzzy)),
			logging.Int("score", fuzzyScore),
			logging.Int("threshold", opts.FuzzyThreshold))
		return finalize(*fuzzy, ConfidenceFuzzy, fuzzyScore, opts), true
	case artistOnly != nil:
		logger.Debug("artist-only match",
			logging.String("identity", id.String()),
			logging.String("candidate_artist", artistOnly.ArtistName))
		return finalize(*artistOnly, ConfidenceArtistOnly, 0, opts), true
	default:
		logger.Debug("no match", logging.String("identity", id.String()))
		return Match{Confidence: ConfidenceNone}, false
	}
}

// candidateName returns the result field the identity should be compared
// against: the collection for album identities, the track for title-only
// identities. Track-entity results still carry a collection name, so album
// lookups compare collections either way.
func candidateName(id identity.Identity, result itunes.Result) string {
	if id.Album != "" {
		return result.CollectionName
	}
	if result.TrackName != "" {
		return result.TrackName
	}
	return result.CollectionName
}

func finalize(result itunes.Result, confidence Confidence, score int, opts Options) Match {
	return Match{
		Result:     result,
		Confidence: confidence,
		Score:      score,
		ArtworkURL: FormatArtworkURL(result.ArtworkURL100, opts.Size, opts.Quality),
	}
}

// FormatArtworkURL rewrites the catalog's 100x100 thumbnail URL to request
// the configured size. Quality zero keeps the server's default encoding via
// the "bb" suffix.
func FormatArtworkURL(rawURL string, size, quality int) string {
	var token string
	if quality > 0 {
		token = fmt.Sprintf("%dx%d-%d", size, size, quality)
	} else {
		token = fmt.Sprintf("%dx%dbb", size, size)
	}
	return strings.Replace(rawURL, "100x100bb", token, 1)
}
