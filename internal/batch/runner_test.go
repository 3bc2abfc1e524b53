package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"artfetch/internal/config"
	"artfetch/internal/fetch"
	"artfetch/internal/itunes"
	"artfetch/internal/ledger"
	"artfetch/internal/testsupport"
)

type stubDownloader struct {
	data  map[string][]byte
	err   error
	delay time.Duration
	calls []string
}

func (s *stubDownloader) Fetch(_ context.Context, url string) ([]byte, error) {
	s.calls = append(s.calls, url)
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.data[url]
	if !ok {
		return nil, fmt.Errorf("unexpected url %s", url)
	}
	return data, nil
}

func (s *stubDownloader) CurrentDelay() time.Duration { return s.delay }

type runnerFixture struct {
	runner     *Runner
	cfg        *config.Config
	ledger     *ledger.Ledger
	catalog    *stubCatalog
	downloader *stubDownloader
	root       string
}

func newRunnerFixture(t *testing.T, opts Options) *runnerFixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)

	led, err := ledger.Open(cfg.Ledger.Dir)
	if err != nil {
		t.Fatalf("ledger.Open() error = %v", err)
	}
	t.Cleanup(func() { led.Close() })

	catalog := &stubCatalog{responses: map[string]itunes.Response{}}
	downloader := &stubDownloader{data: map[string][]byte{}}
	resolver := NewResolver(catalog, nil, resolverOpts, nil)
	runner := NewRunner(cfg, resolver, downloader, led, nil, opts)
	runner.sleep = func(time.Duration) {}

	return &runnerFixture{
		runner:     runner,
		cfg:        cfg,
		ledger:     led,
		catalog:    catalog,
		downloader: downloader,
		root:       t.TempDir(),
	}
}

func (f *runnerFixture) addFolder(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(f.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func (f *runnerFixture) addCatalogMatch(identityString, collection string) string {
	f.catalog.responses[identityString] = itunes.Response{
		ResultCount: 1,
		Results: []itunes.Result{{
			ArtistName:     "Artist",
			CollectionName: collection,
			ArtworkURL100:  "https://a.test/100x100bb.jpg",
		}},
	}
	sized := "https://a.test/9999x9999-100.jpg"
	f.downloader.data[sized] = []byte("image-bytes")
	return sized
}

func TestRunnerExactSuccess(t *testing.T) {
	f := newRunnerFixture(t, Options{})
	dir := f.addFolder(t, "Artist - Album")
	f.addCatalogMatch("Artist - Album", "Album")

	summary, err := f.runner.ProcessDirectory(context.Background(), f.root)
	if err != nil {
		t.Fatalf("ProcessDirectory() error = %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 0 || summary.Fallback != 0 {
		t.Errorf("summary = %+v", summary)
	}

	output := filepath.Join(dir, "xfolder.jpg")
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("artwork not written: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("artwork bytes = %q", data)
	}
	if !f.ledger.IsSuccess(dir) {
		t.Error("success not recorded in ledger")
	}
}

func TestRunnerFallbackUsesSuffixedName(t *testing.T) {
	f := newRunnerFixture(t, Options{})
	dir := f.addFolder(t, "Artist - Album")
	f.addCatalogMatch("Artist - Album", "Completely Different Record")

	summary, err := f.runner.ProcessDirectory(context.Background(), f.root)
	if err != nil {
		t.Fatalf("ProcessDirectory() error = %v", err)
	}
	if summary.Fallback != 1 {
		t.Errorf("summary = %+v, want one fallback", summary)
	}

	output := filepath.Join(dir, "xfolder_fallback.jpg")
	if _, err := os.Stat(output); err != nil {
		t.Errorf("fallback artwork not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "xfolder.jpg")); !os.IsNotExist(err) {
		t.Error("primary output name used for non-exact match")
	}
	if !f.ledger.IsFallback(dir) || f.ledger.IsSuccess(dir) {
		t.Error("fallback not recorded correctly")
	}
}

func TestRunnerRecordsFailure(t *testing.T) {
	f := newRunnerFixture(t, Options{})
	dir := f.addFolder(t, "Artist - Album")

	summary, err := f.runner.ProcessDirectory(context.Background(), f.root)
	if err != nil {
		t.Fatalf("ProcessDirectory() error = %v", err)
	}
	if summary.Failed != 1 {
		t.Errorf("summary = %+v, want one failure", summary)
	}
	if !f.ledger.IsFailed(dir) {
		t.Error("failure not recorded in ledger")
	}
	entries := f.ledger.Entries(ledger.KindFailed)
	if len(entries) != 1 || entries[0].Reason != "no catalog match" {
		t.Errorf("failed entries = %+v", entries)
	}
}

func TestRunnerSkipGates(t *testing.T) {
	f := newRunnerFixture(t, Options{})
	dir := f.addFolder(t, "Artist - Album")
	if err := f.ledger.RecordSuccess(ledger.Entry{Key: dir, Artist: "Artist", Album: "Album"}); err != nil {
		t.Fatal(err)
	}

	summary, err := f.runner.ProcessDirectory(context.Background(), f.root)
	if err != nil {
		t.Fatalf("ProcessDirectory() error = %v", err)
	}
	if summary.Skipped != 1 || summary.Processed != 0 {
		t.Errorf("summary = %+v, want recorded success skipped", summary)
	}
	if len(f.catalog.lookups) != 0 {
		t.Errorf("lookups = %v, want none for skipped folder", f.catalog.lookups)
	}
}

func TestRunnerRetryFailed(t *testing.T) {
	f := newRunnerFixture(t, Options{})
	dir := f.addFolder(t, "Artist - Album")
	if err := f.ledger.RecordFailure(ledger.Entry{Key: dir, Reason: "no results"}); err != nil {
		t.Fatal(err)
	}
	f.addCatalogMatch("Artist - Album", "Album")

	// Without the retry flag the failed entry gates the folder out.
	summary, err := f.runner.ProcessDirectory(context.Background(), f.root)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 {
		t.Errorf("summary = %+v, want failed folder skipped", summary)
	}

	f.cfg.Ledger.RetryFailed = true
	summary, err = f.runner.ProcessDirectory(context.Background(), f.root)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Succeeded != 1 {
		t.Errorf("summary = %+v, want retried folder to succeed", summary)
	}
	if f.ledger.IsFailed(dir) {
		t.Error("failed entry not pruned after success")
	}
}

func TestRunnerOnlyFailedFilter(t *testing.T) {
	f := newRunnerFixture(t, Options{})
	failedDir := f.addFolder(t, "Artist - Album")
	f.addFolder(t, "Artist - Fresh Album")
	if err := f.ledger.RecordFailure(ledger.Entry{Key: failedDir, Reason: "no results"}); err != nil {
		t.Fatal(err)
	}
	f.addCatalogMatch("Artist - Album", "Album")
	f.cfg.Ledger.OnlyFailed = true

	summary, err := f.runner.ProcessDirectory(context.Background(), f.root)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Succeeded != 1 || summary.Skipped != 1 {
		t.Errorf("summary = %+v, want only the failed folder processed", summary)
	}
}

func TestRunnerExistingArtworkBackfillsSuccess(t *testing.T) {
	f := newRunnerFixture(t, Options{})
	dir := f.addFolder(t, "Artist - Album")
	if err := os.WriteFile(filepath.Join(dir, "xfolder.jpg"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := f.runner.ProcessDirectory(context.Background(), f.root)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 {
		t.Errorf("summary = %+v, want existing artwork skipped", summary)
	}
	if !f.ledger.IsSuccess(dir) {
		t.Error("existing artwork not backfilled into success ledger")
	}
	if len(f.downloader.calls) != 0 {
		t.Errorf("downloads = %v, want none", f.downloader.calls)
	}
}

func TestRunnerFailedFolderReadsTagsOnce(t *testing.T) {
	f := newRunnerFixture(t, Options{})
	tags := &countingTags{}
	f.runner.resolver = NewResolver(f.catalog, tags, resolverOpts, nil)
	dir := f.addFolder(t, "Artist - Album")

	summary, err := f.runner.ProcessDirectory(context.Background(), f.root)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 {
		t.Fatalf("summary = %+v, want one failure", summary)
	}
	if tags.reads != 1 {
		t.Errorf("tag reads = %d, want a single read per folder", tags.reads)
	}
	entries := f.ledger.Entries(ledger.KindFailed)
	if len(entries) != 1 || entries[0].Key != dir || entries[0].Artist != "Artist" {
		t.Errorf("failed entries = %+v, want folder-derived identity recorded", entries)
	}
}

func TestRunnerUnparseableFolderNotBackfilled(t *testing.T) {
	f := newRunnerFixture(t, Options{})
	dir := f.addFolder(t, "random downloads")
	if err := os.WriteFile(filepath.Join(dir, "xfolder.jpg"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := f.runner.ProcessDirectory(context.Background(), f.root)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 {
		t.Errorf("summary = %+v, want existing artwork skipped", summary)
	}
	if f.ledger.IsSuccess(dir) {
		t.Error("folder without a parseable name backfilled into success ledger")
	}
}

func TestRunnerRateLimitAborts(t *testing.T) {
	f := newRunnerFixture(t, Options{})
	f.addFolder(t, "Artist - Album")
	f.addFolder(t, "Artist - Second Album")
	f.addCatalogMatch("Artist - Album", "Album")
	f.downloader.err = fmt.Errorf("fetching: %w", fetch.ErrRateLimited)

	summary, err := f.runner.ProcessDirectory(context.Background(), f.root)
	if !errors.Is(err, fetch.ErrRateLimited) {
		t.Fatalf("ProcessDirectory() error = %v, want rate limit", err)
	}
	if !summary.Aborted {
		t.Error("summary not marked aborted")
	}
	// The interrupted folder never completed, so it stays out of the tallies
	// and a rerun picks it up again.
	if summary.Processed != 0 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want no items counted for the aborted run", summary)
	}
	if len(summary.Results) != 0 {
		t.Errorf("results = %+v, want interrupted folder left unrecorded", summary.Results)
	}
	if f.ledger.IsFailed(filepath.Join(f.root, "Artist - Album")) {
		t.Error("interrupted folder recorded as failed")
	}
}

func TestRunnerDryRun(t *testing.T) {
	f := newRunnerFixture(t, Options{DryRun: true})
	f.addFolder(t, "Artist - Album")

	summary, err := f.runner.ProcessDirectory(context.Background(), f.root)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Results) != 1 || summary.Results[0].Status != StatusDryRun {
		t.Errorf("results = %+v, want dry-run status", summary.Results)
	}
	if len(f.catalog.lookups) != 0 || len(f.downloader.calls) != 0 {
		t.Error("dry run touched the network")
	}
}

func TestRunnerProcessList(t *testing.T) {
	f := newRunnerFixture(t, Options{})
	dir := f.addFolder(t, "Artist - Album")
	f.addCatalogMatch("Artist - Album", "Album")

	listPath := filepath.Join(t.TempDir(), "folders.txt")
	content := fmt.Sprintf("# release folders\n\n%s\n", dir)
	if err := os.WriteFile(listPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := f.runner.ProcessList(context.Background(), listPath)
	if err != nil {
		t.Fatalf("ProcessList() error = %v", err)
	}
	if summary.Succeeded != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRunnerListVirtualEntry(t *testing.T) {
	t.Chdir(t.TempDir())
	f := newRunnerFixture(t, Options{})
	f.addCatalogMatch("Artist - Album", "Album")

	listPath := filepath.Join(t.TempDir(), "folders.txt")
	if err := os.WriteFile(listPath, []byte("Artist - Album\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := f.runner.ProcessList(context.Background(), listPath)
	if err != nil {
		t.Fatalf("ProcessList() error = %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("summary = %+v, want virtual entry fetched", summary)
	}

	if _, err := os.Stat("Artist - Album xfolder.jpg"); err != nil {
		t.Errorf("artwork not saved into working directory: %v", err)
	}
	if !f.ledger.IsSuccess("Artist - Album") {
		t.Error("virtual entry not recorded under the list key")
	}
}

func TestRunnerDirectoryModeRejectsMissingFolder(t *testing.T) {
	f := newRunnerFixture(t, Options{})

	summary, err := f.runner.ProcessOne(context.Background(), "/nonexistent/Artist - Album")
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 {
		t.Errorf("summary = %+v, want missing folder failed outside list mode", summary)
	}
}

func TestRunnerReporter(t *testing.T) {
	var reported []ItemResult
	f := newRunnerFixture(t, Options{Reporter: func(result ItemResult) {
		reported = append(reported, result)
	}})
	f.addFolder(t, "Artist - Album")
	f.addCatalogMatch("Artist - Album", "Album")

	if _, err := f.runner.ProcessDirectory(context.Background(), f.root); err != nil {
		t.Fatal(err)
	}
	if len(reported) != 1 || reported[0].Status != StatusSuccess {
		t.Errorf("reported = %+v", reported)
	}
}
