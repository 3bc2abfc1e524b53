package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"artfetch/internal/config"
	"artfetch/internal/fetch"
	"artfetch/internal/fileutil"
	"artfetch/internal/identity"
	"artfetch/internal/ledger"
	"artfetch/internal/logging"
	"artfetch/internal/textutil"
)

// ItemStatus classifies the outcome for one folder.
type ItemStatus string

const (
	StatusSuccess  ItemStatus = "success"
	StatusFallback ItemStatus = "fallback"
	StatusFailed   ItemStatus = "failed"
	StatusSkipped  ItemStatus = "skipped"
	StatusDryRun   ItemStatus = "dry-run"
)

// ItemResult reports the outcome for one folder.
type ItemResult struct {
	Path   string
	Status ItemStatus
	Detail string
}

// Summary aggregates a run. Aborted is set when the catalog rate-limited the
// run past the allowed escalation and remaining folders were left untouched.
type Summary struct {
	RunID     string
	Processed int
	Succeeded int
	Fallback  int
	Failed    int
	Skipped   int
	Aborted   bool
	Results   []ItemResult
}

// Downloader fetches artwork bytes and exposes the current inter-request
// delay.
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	CurrentDelay() time.Duration
}

// Options adjusts a run.
type Options struct {
	DryRun bool
	// Reporter receives each item's result as it completes.
	Reporter func(ItemResult)
}

// Runner processes release folders end to end.
type Runner struct {
	cfg        *config.Config
	resolver   *Resolver
	downloader Downloader
	ledger     *ledger.Ledger
	logger     *slog.Logger
	opts       Options
	sleep      func(time.Duration)

	// allowVirtual lets list entries that are not folders be treated as
	// "Artist - Album" release names saved into the working directory.
	allowVirtual bool
}

func NewRunner(cfg *config.Config, resolver *Resolver, downloader Downloader, led *ledger.Ledger, logger *slog.Logger, opts Options) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		resolver:   resolver,
		downloader: downloader,
		ledger:     led,
		logger:     logging.WithComponent(logger, "batch"),
		opts:       opts,
		sleep:      time.Sleep,
	}
}

// ProcessDirectory runs over every subdirectory of root, in name order.
func (r *Runner) ProcessDirectory(ctx context.Context, root string) (Summary, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return Summary{}, fmt.Errorf("reading directory %s: %w", root, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(root, entry.Name()))
	}
	return r.run(ctx, paths)
}

// ProcessList runs over the folder paths listed in a file, one per line.
// Blank lines and lines starting with # are ignored.
func (r *Runner) ProcessList(ctx context.Context, listPath string) (Summary, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return Summary{}, fmt.Errorf("opening list file: %w", err)
	}
	defer file.Close()

	var paths []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return Summary{}, fmt.Errorf("reading list file: %w", err)
	}

	r.allowVirtual = true
	defer func() { r.allowVirtual = false }()
	return r.run(ctx, paths)
}

// ProcessOne runs a single folder, bypassing the skip gates unless the
// ledger already records a success.
func (r *Runner) ProcessOne(ctx context.Context, dir string) (Summary, error) {
	return r.run(ctx, []string{dir})
}

func (r *Runner) run(ctx context.Context, paths []string) (Summary, error) {
	runID := uuid.NewString()
	logger := r.logger.With(logging.String("run_id", runID))
	logger.Info("starting run",
		logging.Int("folders", len(paths)),
		logging.Bool("dry_run", r.opts.DryRun))

	summary := Summary{RunID: runID}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := r.processItem(ctx, logger, filepath.Clean(path))
		if err != nil {
			// The summary covers completed items only; an aborted item is
			// neither counted nor recorded so a rerun picks it up.
			if errors.Is(err, fetch.ErrRateLimited) {
				logger.Error("rate limited, aborting run", logging.Error(err))
				summary.Aborted = true
			}
			return summary, err
		}

		r.record(&summary, result)
		if result.Status != StatusSkipped && result.Status != StatusDryRun {
			r.sleep(r.downloader.CurrentDelay())
		}
	}

	logger.Info("run complete",
		logging.Int("processed", summary.Processed),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("fallback", summary.Fallback),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped))
	return summary, nil
}

func (r *Runner) record(summary *Summary, result ItemResult) {
	summary.Results = append(summary.Results, result)
	switch result.Status {
	case StatusSuccess:
		summary.Processed++
		summary.Succeeded++
	case StatusFallback:
		summary.Processed++
		summary.Fallback++
	case StatusFailed:
		summary.Processed++
		summary.Failed++
	default:
		summary.Skipped++
	}
	if r.opts.Reporter != nil {
		r.opts.Reporter(result)
	}
}

func (r *Runner) processItem(ctx context.Context, logger *slog.Logger, dir string) (ItemResult, error) {
	if skip, reason := r.skipReason(dir); skip {
		logger.Debug("skipping folder",
			logging.String("directory", dir),
			logging.String("reason", reason))
		return ItemResult{Path: dir, Status: StatusSkipped, Detail: reason}, nil
	}

	if !fileutil.IsDir(dir) {
		if r.allowVirtual {
			if id, ok := identity.ParseFolderName(filepath.Base(dir)); ok {
				return r.processVirtual(ctx, logger, dir, id)
			}
		}
		return r.fail(logger, dir, identity.Identity{}, "not a directory")
	}

	if output := filepath.Join(dir, r.cfg.Artwork.OutputFilename); fileutil.PathExists(output) && !r.cfg.Artwork.Overwrite {
		if !r.opts.DryRun {
			r.backfillSuccess(logger, dir)
		}
		return ItemResult{Path: dir, Status: StatusSkipped, Detail: "artwork already present"}, nil
	}

	if r.opts.DryRun {
		return r.dryRunResult(dir), nil
	}

	resolution, ok, err := r.resolver.ResolveFolder(ctx, dir)
	if err != nil {
		return ItemResult{}, err
	}
	if !ok {
		return r.fail(logger, dir, resolution.Identity, "no catalog match")
	}

	data, err := r.downloader.Fetch(ctx, resolution.Match.ArtworkURL)
	if err != nil {
		if errors.Is(err, fetch.ErrRateLimited) {
			return ItemResult{}, err
		}
		return r.fail(logger, dir, resolution.Identity, fmt.Sprintf("download failed: %v", err))
	}

	name := r.cfg.Artwork.OutputFilename
	if !resolution.Match.Confidence.Exact() {
		name = fallbackName(r.cfg.Artwork.OutputFilename, r.cfg.Artwork.FallbackSuffix)
	}
	output := filepath.Join(dir, name)
	if err := fileutil.WriteFileAtomic(output, data, 0o644); err != nil {
		return r.fail(logger, dir, resolution.Identity, fmt.Sprintf("saving artwork: %v", err))
	}

	entry := ledger.Entry{
		Key:    dir,
		Artist: resolution.Identity.Artist,
		Album:  resolution.Identity.Disambiguator(),
		Output: output,
	}
	if resolution.Match.Confidence.Exact() {
		if err := r.ledger.RecordSuccess(entry); err != nil {
			return ItemResult{}, err
		}
		logger.Info("artwork saved",
			logging.String("directory", dir),
			logging.String("output", output))
		return ItemResult{Path: dir, Status: StatusSuccess, Detail: output}, nil
	}

	entry.Reason = string(resolution.Match.Confidence)
	if err := r.ledger.RecordFallback(entry); err != nil {
		return ItemResult{}, err
	}
	logger.Info("fallback artwork saved",
		logging.String("directory", dir),
		logging.String("output", output),
		logging.String("confidence", string(resolution.Match.Confidence)))
	return ItemResult{Path: dir, Status: StatusFallback, Detail: output}, nil
}

// processVirtual handles a list entry naming a release that has no folder on
// disk. The artwork is saved into the working directory under a sanitized
// "Artist - Album <output>" name; the ledger key stays the list entry.
func (r *Runner) processVirtual(ctx context.Context, logger *slog.Logger, key string, id identity.Identity) (ItemResult, error) {
	name := r.cfg.Artwork.OutputFilename
	primary := textutil.SanitizeFileName(id.String()) + " " + name
	if fileutil.PathExists(primary) && !r.cfg.Artwork.Overwrite {
		if !r.opts.DryRun && !r.ledger.IsSuccess(key) {
			entry := ledger.Entry{Key: key, Artist: id.Artist, Album: id.Disambiguator(), Output: primary}
			if err := r.ledger.RecordSuccess(entry); err != nil {
				return ItemResult{}, err
			}
		}
		return ItemResult{Path: key, Status: StatusSkipped, Detail: "artwork already present"}, nil
	}

	if r.opts.DryRun {
		return ItemResult{Path: key, Status: StatusDryRun, Detail: "would try: " + id.String()}, nil
	}

	resolution, ok, err := r.resolver.WithOverride(id).ResolveFolder(ctx, "")
	if err != nil {
		return ItemResult{}, err
	}
	if !ok {
		return r.fail(logger, key, id, "no catalog match")
	}

	data, err := r.downloader.Fetch(ctx, resolution.Match.ArtworkURL)
	if err != nil {
		if errors.Is(err, fetch.ErrRateLimited) {
			return ItemResult{}, err
		}
		return r.fail(logger, key, id, fmt.Sprintf("download failed: %v", err))
	}

	output := primary
	if !resolution.Match.Confidence.Exact() {
		output = textutil.SanitizeFileName(id.String()) + " " + fallbackName(name, r.cfg.Artwork.FallbackSuffix)
	}
	if err := fileutil.WriteFileAtomic(output, data, 0o644); err != nil {
		return r.fail(logger, key, id, fmt.Sprintf("saving artwork: %v", err))
	}

	entry := ledger.Entry{Key: key, Artist: id.Artist, Album: id.Disambiguator(), Output: output}
	if resolution.Match.Confidence.Exact() {
		if err := r.ledger.RecordSuccess(entry); err != nil {
			return ItemResult{}, err
		}
		logger.Info("artwork saved",
			logging.String("release", id.String()),
			logging.String("output", output))
		return ItemResult{Path: key, Status: StatusSuccess, Detail: output}, nil
	}

	entry.Reason = string(resolution.Match.Confidence)
	if err := r.ledger.RecordFallback(entry); err != nil {
		return ItemResult{}, err
	}
	logger.Info("fallback artwork saved",
		logging.String("release", id.String()),
		logging.String("output", output),
		logging.String("confidence", string(resolution.Match.Confidence)))
	return ItemResult{Path: key, Status: StatusFallback, Detail: output}, nil
}

func (r *Runner) skipReason(dir string) (bool, string) {
	gates := r.cfg.Ledger
	if gates.OnlyFailed && !r.ledger.IsFailed(dir) {
		return true, "not in failed ledger"
	}
	if gates.OnlyFallback && !r.ledger.IsFallback(dir) {
		return true, "not in fallback ledger"
	}
	if r.ledger.IsSuccess(dir) && !gates.IgnoreSuccess {
		return true, "already succeeded"
	}
	if r.ledger.IsFailed(dir) && !gates.RetryFailed && !gates.OnlyFailed {
		return true, "previously failed"
	}
	if r.ledger.IsFallback(dir) && !gates.RetryFallback && !gates.OnlyFallback {
		return true, "previous fallback"
	}
	return false, ""
}

func (r *Runner) fail(logger *slog.Logger, dir string, id identity.Identity, reason string) (ItemResult, error) {
	entry := ledger.Entry{Key: dir, Artist: id.Artist, Album: id.Disambiguator(), Reason: reason}
	if err := r.ledger.RecordFailure(entry); err != nil {
		return ItemResult{}, err
	}
	logger.Warn("folder failed",
		logging.String("directory", dir),
		logging.String("reason", reason))
	return ItemResult{Path: dir, Status: StatusFailed, Detail: reason}, nil
}

func (r *Runner) dryRunResult(dir string) ItemResult {
	candidates := r.resolver.Candidates(dir)
	if len(candidates) == 0 {
		return ItemResult{Path: dir, Status: StatusDryRun, Detail: "no identity derivable"}
	}
	names := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		names = append(names, candidate.Identity.String())
	}
	return ItemResult{Path: dir, Status: StatusDryRun, Detail: "would try: " + strings.Join(names, "; ")}
}

// backfillSuccess records an existing artwork file as a success so later
// runs skip the folder without re-checking the filesystem. Folders whose
// names do not parse are left out; a ledger row needs artist and album.
func (r *Runner) backfillSuccess(logger *slog.Logger, dir string) {
	if r.ledger.IsSuccess(dir) {
		return
	}
	id, ok := identity.ParseFolderName(filepath.Base(dir))
	if !ok {
		return
	}
	entry := ledger.Entry{
		Key:    dir,
		Artist: id.Artist,
		Album:  id.Disambiguator(),
		Output: filepath.Join(dir, r.cfg.Artwork.OutputFilename),
	}
	if err := r.ledger.RecordSuccess(entry); err != nil {
		logger.Warn("recording existing artwork failed",
			logging.String("directory", dir),
			logging.Error(err))
	}
}

// fallbackName inserts the fallback suffix before the file extension, so
// "xfolder.jpg" becomes "xfolder_fallback.jpg".
func fallbackName(name, suffix string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + suffix + ext
}
