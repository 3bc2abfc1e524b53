package batch

import (
	"context"
	"log/slog"
	"path/filepath"

	"artfetch/internal/identity"
	"artfetch/internal/itunes"
	"artfetch/internal/logging"
	"artfetch/internal/resolve"
)

// Source names the derivation that produced a candidate identity.
type Source string

const (
	SourceFolder   Source = "folder"
	SourceParent   Source = "parent"
	SourceTags     Source = "tags"
	SourceOverride Source = "override"
)

// Candidate is one identity to try against the catalog.
type Candidate struct {
	Identity identity.Identity
	Source   Source
}

// Catalog looks up an identity in the artwork catalog.
type Catalog interface {
	Lookup(ctx context.Context, id identity.Identity) (itunes.Response, itunes.Query, error)
}

// Resolution is the outcome of resolving one folder against the catalog.
type Resolution struct {
	Identity identity.Identity
	Source   Source
	Match    resolve.Match
}

// Resolver turns a release folder into a resolved artwork match.
type Resolver struct {
	catalog  Catalog
	tags     identity.TagSource
	opts     resolve.Options
	logger   *slog.Logger
	override *identity.Identity
}

func NewResolver(catalog Catalog, tags identity.TagSource, opts resolve.Options, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		catalog: catalog,
		tags:    tags,
		opts:    opts,
		logger:  logging.WithComponent(logger, "batch"),
	}
}

// WithOverride returns a copy of the resolver that tries only the given
// identity, bypassing derivation from the folder.
func (r *Resolver) WithOverride(id identity.Identity) *Resolver {
	clone := *r
	clone.override = &id
	return &clone
}

// Candidates derives the identities to try for a folder, in precedence
// order: the folder's own name, the parent folder's name when the folder
// looks like a disc subfolder, then audio tags.
func (r *Resolver) Candidates(dir string) []Candidate {
	if r.override != nil {
		return []Candidate{{Identity: *r.override, Source: SourceOverride}}
	}
	return dedupeCandidates(append(r.nameCandidates(dir), r.tagCandidates(dir)...))
}

// nameCandidates derives identities from folder names alone, without
// touching the folder's contents.
func (r *Resolver) nameCandidates(dir string) []Candidate {
	base := filepath.Base(dir)
	if id, ok := identity.ParseFolderName(base); ok {
		return []Candidate{{Identity: id, Source: SourceFolder}}
	}
	if identity.IsDiscSubfolder(base) {
		parent := filepath.Base(filepath.Dir(dir))
		if id, ok := identity.ParseFolderName(parent); ok {
			return []Candidate{{Identity: id, Source: SourceParent}}
		}
	}
	return nil
}

// tagCandidates reads audio tags from the folder's files. Tag reading
// failures are soft; the caller falls through with no candidates.
func (r *Resolver) tagCandidates(dir string) []Candidate {
	if r.tags == nil {
		return nil
	}
	tags, err := r.tags.ReadTags(dir)
	if err != nil {
		r.logger.Warn("reading tags failed",
			logging.String("directory", dir),
			logging.Error(err))
		return nil
	}
	var out []Candidate
	for _, id := range identity.Combinations(tags) {
		out = append(out, Candidate{Identity: id, Source: SourceTags})
	}
	return out
}

// ResolveFolder tries the folder's candidates in precedence order and
// returns the first one the catalog matches. Audio tags are only read once
// the folder-name tiers have failed to match. ok is false when no candidate
// produced a match; the returned Resolution still carries the first identity
// tried, for failure reporting. err is reserved for aborting conditions such
// as rate-limit escalation.
func (r *Resolver) ResolveFolder(ctx context.Context, dir string) (Resolution, bool, error) {
	tiers := []func(string) []Candidate{r.nameCandidates, r.tagCandidates}
	if r.override != nil {
		override := *r.override
		tiers = []func(string) []Candidate{func(string) []Candidate {
			return []Candidate{{Identity: override, Source: SourceOverride}}
		}}
	}

	var first identity.Identity
	seen := make(map[string]struct{})
	for _, tier := range tiers {
		for _, candidate := range tier(dir) {
			key := candidate.Identity.String()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if first == (identity.Identity{}) {
				first = candidate.Identity
			}

			response, query, err := r.catalog.Lookup(ctx, candidate.Identity)
			if err != nil {
				return Resolution{Identity: first}, false, err
			}
			if len(response.Results) == 0 {
				r.logger.Debug("no catalog results",
					logging.String("identity", candidate.Identity.String()),
					logging.String("source", string(candidate.Source)))
				continue
			}

			match, ok := resolve.Resolve(r.logger, candidate.Identity, response.Results, r.opts)
			if !ok {
				continue
			}

			r.logger.Info("resolved artwork",
				logging.String("identity", candidate.Identity.String()),
				logging.String("source", string(candidate.Source)),
				logging.String("entity", query.Entity),
				logging.String("confidence", string(match.Confidence)))
			return Resolution{Identity: candidate.Identity, Source: candidate.Source, Match: match}, true, nil
		}
	}
	return Resolution{Identity: first}, false, nil
}

func dedupeCandidates(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, candidate := range candidates {
		key := candidate.Identity.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, candidate)
	}
	return out
}
