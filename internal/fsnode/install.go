package fsnode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// InstallOptions configures Node.Install. Force and Uninstall are threaded
// explicitly rather than read from a process-wide global, per the
// rewrite's context-record approach to what the original tool kept as
// globals.
type InstallOptions struct {
	StagingDir string // backing-store root; source lives at StagingDir+Path
	DestPrefix string // overlay prefix; destination lives at DestPrefix+Path
	Force      bool
	Uninstall  bool

	// Expand performs an on-demand expansion of the archive's compacted
	// backing store. It is invoked at most once, on the first ENOENT
	// seen for the source path, and must be idempotent if the tarball
	// is already expanded.
	Expand func() error
}

// Install atomically moves n from its backing-store location onto the
// live tree, applying ownership and (for directories) mode. Directories
// are created with mkdir rather than renamed so existing subtrees are
// left undisturbed.
func (n Node) Install(opts InstallOptions) error {
	dest := filepath.Join(opts.DestPrefix, n.Path)

	switch n.Kind {
	case KindDirectory:
		return n.installDirectory(dest, opts)
	case KindRegular, KindSymlink:
		return n.installMovable(dest, opts)
	case KindAbsent:
		return fmt.Errorf("fsnode: cannot install absent node at %s", n.Path)
	default:
		return fmt.Errorf("fsnode: unknown kind %v at %s", n.Kind, n.Path)
	}
}

func (n Node) installDirectory(dest string, opts InstallOptions) error {
	fi, err := os.Lstat(dest)
	switch {
	case err == nil && fi.IsDir():
		// already present; fall through to chmod/chown below
	case err == nil && !opts.Force && !opts.Uninstall:
		return fmt.Errorf("fsnode: %s exists and is not a directory", dest)
	case err == nil:
		if rmErr := os.RemoveAll(dest); rmErr != nil {
			return fmt.Errorf("fsnode: remove %s before mkdir: %w", dest, rmErr)
		}
		if mkErr := os.Mkdir(dest, 0o777); mkErr != nil {
			return fmt.Errorf("fsnode: mkdir %s: %w", dest, mkErr)
		}
	case errors.Is(err, os.ErrNotExist):
		if mkErr := os.MkdirAll(filepath.Dir(dest), 0o777); mkErr != nil {
			return fmt.Errorf("fsnode: mkdir parents of %s: %w", dest, mkErr)
		}
		if mkErr := os.Mkdir(dest, 0o777); mkErr != nil && !errors.Is(mkErr, os.ErrExist) {
			return fmt.Errorf("fsnode: mkdir %s: %w", dest, mkErr)
		}
	default:
		return fmt.Errorf("fsnode: stat %s: %w", dest, err)
	}

	if err := os.Chmod(dest, os.FileMode(n.Mode).Perm()); err != nil {
		return fmt.Errorf("fsnode: chmod %s: %w", dest, err)
	}
	if err := chown(dest, int(n.UID), int(n.GID)); err != nil {
		return fmt.Errorf("fsnode: chown %s: %w", dest, err)
	}
	return nil
}

func (n Node) installMovable(dest string, opts InstallOptions) error {
	src := filepath.Join(opts.StagingDir, n.Path)

	if err := n.prepareDestination(dest, opts); err != nil {
		return err
	}

	expanded := false
	for {
		err := os.Rename(src, dest)
		if err == nil {
			break
		}
		if errors.Is(err, os.ErrNotExist) && !expanded && opts.Expand != nil {
			if expErr := opts.Expand(); expErr != nil {
				return fmt.Errorf("fsnode: expand backing store for %s: %w", n.Path, expErr)
			}
			expanded = true
			continue
		}
		return fmt.Errorf("fsnode: move %s to %s: %w", src, dest, err)
	}

	if n.Kind == KindSymlink {
		if err := lchown(dest, int(n.UID), int(n.GID)); err != nil {
			return fmt.Errorf("fsnode: lchown %s: %w", dest, err)
		}
		return nil
	}

	if err := os.Chmod(dest, os.FileMode(n.Mode).Perm()); err != nil {
		return fmt.Errorf("fsnode: chmod %s: %w", dest, err)
	}
	if err := chown(dest, int(n.UID), int(n.GID)); err != nil {
		return fmt.Errorf("fsnode: chown %s: %w", dest, err)
	}
	return nil
}

func (n Node) prepareDestination(dest string, opts InstallOptions) error {
	fi, err := os.Lstat(dest)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("fsnode: stat %s: %w", dest, err)
	}
	if fi.IsDir() {
		if !opts.Force && !opts.Uninstall {
			return fmt.Errorf("fsnode: %s is a directory, refusing to replace without force", dest)
		}
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("fsnode: remove directory %s: %w", dest, err)
		}
		return nil
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("fsnode: remove %s: %w", dest, err)
	}
	return nil
}
