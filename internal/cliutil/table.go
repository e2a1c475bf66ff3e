package cliutil

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Table prints a simple tab-aligned table to stdout (the text-mode
// rendering of list/files/dump output).
func Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if len(headers) > 0 {
		fmt.Fprintln(w, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

// List prints one item per line to stdout.
func List(items []string) {
	for _, item := range items {
		fmt.Fprintln(os.Stdout, item)
	}
}

// Progress prints rootup's single-line `<state> <path>` install/uninstall
// progress record to stderr, independent of the selected output Mode —
// this line is operational narration, not structured data.
func Progress(state byte, path string) {
	fmt.Fprintf(os.Stderr, "%c %s\n", state, path)
}
