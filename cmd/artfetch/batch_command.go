package main

import (
	"errors"

	"github.com/spf13/cobra"

	"artfetch/internal/batch"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		listFlag      string
		dryRun        bool
		overwrite     bool
		ignoreLog     bool
		retryFailed   bool
		retryFallback bool
		onlyFailed    bool
		onlyFallback  bool
	)

	cmd := &cobra.Command{
		Use:   "batch [DIR]",
		Short: "Fetch cover art for every release folder under a directory",
		Long: `Fetch cover art for every release folder under a directory, or for the
folders listed in a file when --list is given. Folders already recorded in
the ledger are skipped unless a retry flag asks otherwise.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if listFlag == "" && len(args) == 0 {
				return errors.New("provide a directory or --list FILE")
			}
			if listFlag != "" && len(args) > 0 {
				return errors.New("--list cannot be combined with a directory argument")
			}
			if onlyFailed && onlyFallback {
				return errors.New("--only-failed and --only-fallback are mutually exclusive")
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
			if retryFailed {
				cfg.Ledger.RetryFailed = true
			}
			if retryFallback {
				cfg.Ledger.RetryFallback = true
			}
			if onlyFailed {
				cfg.Ledger.OnlyFailed = true
			}
			if onlyFallback {
				cfg.Ledger.OnlyFallback = true
			}

			out := cmd.OutOrStdout()
			opts := batch.Options{
				DryRun:   dryRun,
				Reporter: newStatusReporter(out),
			}
			ledgerDir := "."
			if len(args) > 0 {
				ledgerDir = args[0]
			}
			env, cleanup, err := ctx.newEnvironment(opts, nil, ledgerDir)
			if err != nil {
				return err
			}
			defer cleanup()

			var summary batch.Summary
			if listFlag != "" {
				summary, err = env.runner.ProcessList(cmd.Context(), listFlag)
			} else {
				summary, err = env.runner.ProcessDirectory(cmd.Context(), args[0])
			}
			printSummary(out, summary)
			return err
		},
	}

	cmd.Flags().StringVar(&listFlag, "list", "", "File listing release folders to process, one per line")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be fetched without network access or writes")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing artwork files")
	cmd.Flags().BoolVar(&ignoreLog, "ignore-log", false, "Process folders even if the ledger records a success")
	cmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "Retry folders recorded as failed")
	cmd.Flags().BoolVar(&retryFallback, "retry-fallback", false, "Retry folders that only have fallback artwork")
	cmd.Flags().BoolVar(&onlyFailed, "only-failed", false, "Process only folders recorded as failed")
	cmd.Flags().BoolVar(&onlyFallback, "only-fallback", false, "Process only folders recorded as fallback")
	return cmd
}
