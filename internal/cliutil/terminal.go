package cliutil

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether stdin is attached to an interactive
// terminal, gating the consistency-check prompt and ANSI state-line
// coloring.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
