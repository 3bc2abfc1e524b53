package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"artfetch/internal/batch"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// newStatusReporter prints one line per processed folder, colorized when the
// writer is a terminal.
func newStatusReporter(w io.Writer) func(batch.ItemResult) {
	colorize := writerIsTerminal(w)
	return func(result batch.ItemResult) {
		fmt.Fprintln(w, renderItemLine(result, colorize))
	}
}

func renderItemLine(result batch.ItemResult, colorize bool) string {
	label := statusLabel(result.Status)
	line := fmt.Sprintf("[%-8s] %s", label, result.Path)
	if result.Detail != "" {
		line += " (" + result.Detail + ")"
	}
	if colorize {
		if color := statusColor(result.Status); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

func statusLabel(status batch.ItemStatus) string {
	switch status {
	case batch.StatusSuccess:
		return "OK"
	case batch.StatusFallback:
		return "FALLBACK"
	case batch.StatusFailed:
		return "FAILED"
	case batch.StatusDryRun:
		return "DRY-RUN"
	default:
		return "SKIP"
	}
}

func statusColor(status batch.ItemStatus) string {
	switch status {
	case batch.StatusSuccess:
		return ansiGreen
	case batch.StatusFallback:
		return ansiYellow
	case batch.StatusFailed:
		return ansiRed
	case batch.StatusDryRun:
		return ansiCyan
	default:
		return ""
	}
}

func writerIsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printSummary(w io.Writer, summary batch.Summary) {
	if len(summary.Results) == 0 {
		if summary.Aborted {
			fmt.Fprintln(w, "Run aborted: the catalog rate limited repeated requests. Remaining folders were not processed; rerun later.")
		} else {
			fmt.Fprintln(w, "Nothing to do.")
		}
		return
	}

	rows := [][]string{
		{"Succeeded", fmt.Sprintf("%d", summary.Succeeded)},
		{"Fallback", fmt.Sprintf("%d", summary.Fallback)},
		{"Failed", fmt.Sprintf("%d", summary.Failed)},
		{"Skipped", fmt.Sprintf("%d", summary.Skipped)},
	}
	fmt.Fprintln(w, renderTable([]string{"Outcome", "Folders"}, rows, []columnAlignment{alignLeft, alignRight}))

	if summary.Aborted {
		fmt.Fprintln(w, "Run aborted: the catalog rate limited repeated requests. Remaining folders were not processed; rerun later.")
	}
}
