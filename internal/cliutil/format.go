// Package cliutil holds rootup's dual text/JSON/YAML output plumbing,
// shared by every cmd/rootup subcommand.
package cliutil

import "sync/atomic"

// Mode is the global output mode used by Emit and EmitError.
type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
)

var mode atomic.Value

func init() {
	mode.Store(ModeText)
}

// SetMode sets the global output mode, called once from the root command
// after flags are parsed.
func SetMode(m Mode) {
	switch m {
	case ModeJSON, ModeYAML:
		mode.Store(m)
	default:
		mode.Store(ModeText)
	}
}

// GetMode returns the current global output mode.
func GetMode() Mode {
	if v, ok := mode.Load().(Mode); ok {
		return v
	}
	return ModeText
}

// IsStructured reports whether the mode is JSON or YAML, i.e. not the
// human-readable text/table mode.
func IsStructured() bool {
	m := GetMode()
	return m == ModeJSON || m == ModeYAML
}
