package archive

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Dicklesworthstone/rootup/internal/procrunner"
)

// CreateBackingDir makes the expanded backing-store directory for a under
// depotRoot, owned by root, matching the original tool's
// mkdir(0777)+chown(0,0) sequence.
func (a Archive) CreateBackingDir(depotRoot string) error {
	dir := a.BackingDir(depotRoot)
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return fmt.Errorf("archive: create backing dir %s: %w", dir, err)
	}
	if err := os.Chown(dir, 0, 0); err != nil && !errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("archive: chown backing dir %s: %w", dir, err)
	}
	return nil
}

// Compact tars and bzip2-compresses a's expanded backing-store directory
// into its compacted tarball, then removes the expanded form. The
// standard library has no bzip2 writer, so compaction always goes
// through the external tar binary via runner.
func (a Archive) Compact(ctx context.Context, depotRoot string, runner procrunner.Runner) error {
	dir := a.BackingDir(depotRoot)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil // nothing expanded; already compact or empty
	}
	tarball := a.CompactedPath(depotRoot)
	if err := runner.Run(ctx, dir, "tar", "-cjf", tarball, "."); err != nil {
		return fmt.Errorf("archive: compact %s: %w", dir, err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("archive: remove expanded %s after compacting: %w", dir, err)
	}
	return nil
}

// Expand decompresses a's compacted tarball back into its backing-store
// directory. It is idempotent: if the directory already exists, it is a
// no-op, matching the on-demand expand retry policy's requirement that a
// second expand not double-expand.
func (a Archive) Expand(ctx context.Context, depotRoot string, runner procrunner.Runner) error {
	dir := a.BackingDir(depotRoot)
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	tarball := a.CompactedPath(depotRoot)
	if _, err := os.Stat(tarball); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("archive: no compacted backing store at %s", tarball)
	}
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return fmt.Errorf("archive: mkdir %s: %w", dir, err)
	}
	if err := runner.Run(ctx, dir, "tar", "-xjf", tarball); err != nil {
		return fmt.Errorf("archive: expand %s: %w", tarball, err)
	}
	return nil
}

// HasExpandedForm reports whether a's expanded backing-store directory
// currently exists. It does not check whether the compacted tarball
// exists as well.
func (a Archive) HasExpandedForm(depotRoot string) bool {
	_, err := os.Stat(a.BackingDir(depotRoot))
	return err == nil
}
