package depot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// copyPreservingMode deep-copies src to dst, preserving file mode for
// regular files and recreating symlinks verbatim, standing in for the
// original tool's copyfile(COPYFILE_ALL) backup step.
func copyPreservingMode(src, dst string) error {
	fi, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("depot: stat %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o777); err != nil {
		return fmt.Errorf("depot: mkdir %s: %w", filepath.Dir(dst), err)
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return fmt.Errorf("depot: readlink %s: %w", src, err)
		}
		if err := os.Symlink(target, dst); err != nil {
			return fmt.Errorf("depot: symlink %s: %w", dst, err)
		}
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("depot: open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fi.Mode().Perm())
	if err != nil {
		return fmt.Errorf("depot: create %s: %w", dst, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil { //nolint:gosec // local backup copy of a file already on disk, not attacker-bounded
		return fmt.Errorf("depot: copy %s to %s: %w", src, dst, err)
	}
	return nil
}
