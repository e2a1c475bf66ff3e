package fsnode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Remove deletes n from destPrefix. Regular files and symlinks are
// unlinked; directories are removed with rmdir, falling back to a
// recursive removal when non-empty. ENOENT is treated as success.
func (n Node) Remove(destPrefix string) error {
	path := filepath.Join(destPrefix, n.Path)

	var err error
	switch n.Kind {
	case KindDirectory:
		err = os.Remove(path)
		if err != nil && isNotEmpty(err) {
			err = os.RemoveAll(path)
		}
	case KindRegular, KindSymlink:
		err = os.Remove(path)
	default:
		return fmt.Errorf("fsnode: cannot remove node of kind %v", n.Kind)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("fsnode: remove %s: %w", path, err)
	}
	return nil
}

func isNotEmpty(err error) bool {
	var pe *os.PathError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Err.Error() == "directory not empty"
}

// RepairMetadata chowns/chmods n's destination to its stored uid/gid/mode.
// Symlinks only get an lchown; chmod of a symlink is skipped since many
// platforms don't support it.
func (n Node) RepairMetadata(destPrefix string) error {
	path := filepath.Join(destPrefix, n.Path)

	if n.Kind == KindSymlink {
		if err := lchown(path, int(n.UID), int(n.GID)); err != nil {
			return fmt.Errorf("fsnode: repair lchown %s: %w", path, err)
		}
		return nil
	}

	if err := chown(path, int(n.UID), int(n.GID)); err != nil {
		return fmt.Errorf("fsnode: repair chown %s: %w", path, err)
	}
	if n.Kind != KindAbsent {
		if err := os.Chmod(path, os.FileMode(n.Mode).Perm()); err != nil {
			return fmt.Errorf("fsnode: repair chmod %s: %w", path, err)
		}
	}
	return nil
}
