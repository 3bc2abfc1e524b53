package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"artfetch/internal/batch"
	"artfetch/internal/fileutil"
	"artfetch/internal/identity"
	"artfetch/internal/textutil"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var (
		artistFlag string
		albumFlag  string
		titleFlag  string
		outputFlag string
		dryRun     bool
		overwrite  bool
		ignoreLog  bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [DIR]",
		Short: "Fetch cover art for a single release",
		Long: `Fetch cover art for a single release. With a folder argument the
identity is derived from the folder name, its parent (for disc subfolders),
or audio tags, and the artwork is saved into the folder. Without a folder,
--artist plus --album or --title name the release directly and the artwork
is saved to --output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, err := overrideIdentity(artistFlag, albumFlag, titleFlag)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				if override == nil {
					return errors.New("provide a folder or --artist with --album/--title")
				}
				return fetchDirect(ctx, cmd, *override, outputFlag, dryRun, overwrite)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if overwrite {
				cfg.Artwork.Overwrite = true
			}
			if ignoreLog {
				cfg.Ledger.IgnoreSuccess = true
			}

			out := cmd.OutOrStdout()
			opts := batch.Options{
				DryRun:   dryRun,
				Reporter: newStatusReporter(out),
			}
			env, cleanup, err := ctx.newEnvironment(opts, override, filepath.Dir(args[0]))
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := env.runner.ProcessOne(cmd.Context(), args[0])
			printSummary(out, summary)
			return err
		},
	}

	cmd.Flags().StringVar(&artistFlag, "artist", "", "Override the artist instead of deriving it")
	cmd.Flags().StringVar(&albumFlag, "album", "", "Override the album instead of deriving it")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Override the track title instead of deriving it")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Artwork destination in folderless mode")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be fetched without network access or writes")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing artwork files")
	cmd.Flags().BoolVar(&ignoreLog, "ignore-log", false, "Process the folder even if the ledger records a success")
	return cmd
}

// fetchDirect resolves an explicitly named release and saves the artwork to
// the output path without touching the ledger.
func fetchDirect(ctx *commandContext, cmd *cobra.Command, id identity.Identity, output string, dryRun, overwrite bool) error {
	kit, err := ctx.newFetchKit()
	if err != nil {
		return err
	}

	if output == "" {
		output = textutil.SanitizeFileName(id.String()) + " " + kit.cfg.Artwork.OutputFilename
	}
	if fileutil.PathExists(output) && !overwrite && !kit.cfg.Artwork.Overwrite {
		return fmt.Errorf("%s already exists (use --overwrite to replace it)", output)
	}

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintf(out, "Would fetch artwork for %s to %s\n", id.String(), output)
		return nil
	}

	resolution, ok, err := kit.resolver.WithOverride(id).ResolveFolder(cmd.Context(), "")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no catalog match for %s", id.String())
	}

	data, err := kit.fetcher.Fetch(cmd.Context(), resolution.Match.ArtworkURL)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(output, data, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(out, "Saved %s artwork for %s to %s\n", resolution.Match.Confidence, id.String(), output)
	return nil
}

// overrideIdentity builds an explicit identity from the command flags. The
// album disambiguator takes precedence over the title when both are given.
func overrideIdentity(artist, album, title string) (*identity.Identity, error) {
	artist = strings.TrimSpace(artist)
	album = strings.TrimSpace(album)
	title = strings.TrimSpace(title)
	if artist == "" && album == "" && title == "" {
		return nil, nil
	}
	id := identity.Identity{Artist: artist, Album: album, Title: title}
	if !id.Valid() {
		return nil, errors.New("identity override requires --artist plus --album or --title")
	}
	return &id, nil
}
