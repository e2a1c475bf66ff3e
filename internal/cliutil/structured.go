package cliutil

import (
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// ErrorPayload is the canonical structured error shape for JSON/YAML
// output modes.
type ErrorPayload struct {
	Error   string `json:"error" yaml:"error"`
	Message string `json:"message" yaml:"message"`
	Code    int    `json:"code" yaml:"code"`
}

// Emit writes v to stdout in the current global Mode: JSON, YAML, or (for
// text mode) v's fmt.Stringer/%v representation as a fallback for callers
// that don't have a dedicated text renderer.
func Emit(v any) error {
	switch GetMode() {
	case ModeJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case ModeYAML:
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(v)
	default:
		_, err := fmt.Fprintln(os.Stdout, v)
		return err
	}
}

// EmitError writes a structured error payload to stdout when in
// JSON/YAML mode, or a single human-readable line to stderr otherwise.
func EmitError(err error, code int) error {
	if IsStructured() {
		return Emit(ErrorPayload{Error: "error", Message: err.Error(), Code: code})
	}
	_, werr := fmt.Fprintln(os.Stderr, err.Error())
	return werr
}
