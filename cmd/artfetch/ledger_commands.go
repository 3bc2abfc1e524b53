package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"artfetch/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect recorded fetch outcomes",
	}

	ledgerCmd.AddCommand(newLedgerShowCommand(ctx))
	return ledgerCmd
}

func newLedgerShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "show [success|failed|fallback]",
		Short:     "Show ledger entries",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"success", "failed", "fallback"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			dir := cfg.Ledger.Dir
			if dir == "" {
				dir = "."
			}
			led, err := ledger.Open(dir)
			if err != nil {
				return err
			}
			defer led.Close()

			kinds := []ledger.Kind{ledger.KindSuccess, ledger.KindFailed, ledger.KindFallback}
			if len(args) == 1 {
				kinds = []ledger.Kind{ledger.Kind(args[0])}
			}

			out := cmd.OutOrStdout()
			for i, kind := range kinds {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printLedgerKind(out, led, kind)
			}
			return nil
		},
	}
}

func printLedgerKind(out io.Writer, led *ledger.Ledger, kind ledger.Kind) {
	entries := led.Entries(kind)
	fmt.Fprintf(out, "%s (%d)\n", kind, len(entries))
	if len(entries) == 0 {
		return
	}

	headers, rows := ledgerRows(kind, entries)
	aligns := make([]columnAlignment, len(headers))
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
}

func ledgerRows(kind ledger.Kind, entries []ledger.Entry) ([]string, [][]string) {
	timestamp := func(e ledger.Entry) string {
		if e.Timestamp.IsZero() {
			return ""
		}
		return e.Timestamp.UTC().Format(time.RFC3339)
	}

	switch kind {
	case ledger.KindSuccess:
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.Key, e.Artist, e.Album, e.Output, timestamp(e)})
		}
		return []string{"Path", "Artist", "Album", "Output", "When"}, rows
	case ledger.KindFailed:
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.Key, e.Artist, e.Album, e.Reason, timestamp(e)})
		}
		return []string{"Path", "Artist", "Album", "Reason", "When"}, rows
	default:
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.Key, e.Artist, e.Album, e.Output, e.Reason, timestamp(e)})
		}
		return []string{"Path", "Artist", "Album", "Output", "Reason", "When"}, rows
	}
}
