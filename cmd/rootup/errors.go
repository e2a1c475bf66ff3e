package main

import (
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/rootup/internal/cliutil"
)

// exitError pairs an error with the process exit code it should produce,
// per the external interfaces' exit-code table.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErrorf(format string, a ...any) error {
	return &exitError{code: 1, err: fmt.Errorf(format, a...)}
}

func invalidPrefixErrorf(format string, a ...any) error {
	return &exitError{code: 4, err: fmt.Errorf(format, a...)}
}

func upgradeTargetNotFoundErrorf(format string, a ...any) error {
	return &exitError{code: 5, err: fmt.Errorf(format, a...)}
}

// depotInitErrorf builds the depot-initialization failure for the given
// command, one of the 11-16 codes reserved per command.
func depotInitErrorf(code int, format string, a ...any) error {
	return &exitError{code: code, err: fmt.Errorf(format, a...)}
}

func consistencyErrorf(code int, format string, a ...any) error {
	return &exitError{code: code, err: fmt.Errorf(format, a...)}
}

func storageErrorf(code int, format string, a ...any) error {
	return &exitError{code: code, err: fmt.Errorf(format, a...)}
}

// exitCodeFor prints err (respecting the active output mode) and
// translates it into the process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	_ = cliutil.EmitError(err, codeOf(err))
	return codeOf(err)
}

func codeOf(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}
