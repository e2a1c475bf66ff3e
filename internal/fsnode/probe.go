package fsnode

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/Dicklesworthstone/rootup/internal/digest"
)

// Probe stats path and returns the corresponding Node. A nonexistent path
// yields a KindAbsent node rather than an error. Digests are computed on
// demand for regular files and symlinks; directories never carry one.
func Probe(path string) (Node, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewAbsent(path), nil
		}
		return Node{}, fmt.Errorf("fsnode: stat %s: %w", path, err)
	}
	return fromFileInfo(path, fi)
}

func fromFileInfo(path string, fi os.FileInfo) (Node, error) {
	mode, uid, gid := rawStat(fi)
	n := Node{Path: path, Mode: mode, UID: uid, GID: gid, Kind: KindFromMode(mode)}

	switch n.Kind {
	case KindSymlink:
		d, err := digest.OfSymlinkTarget(path)
		if err != nil {
			return Node{}, err
		}
		if !d.IsNull() {
			var raw [20]byte
			copy(raw[:], d.Bytes())
			n = n.WithDigest(raw)
		}
	case KindDirectory:
		// no size or digest
	case KindRegular:
		n.Size = fi.Size()
		d, err := digest.OfFile(path)
		if err != nil {
			return Node{}, err
		}
		var raw [20]byte
		copy(raw[:], d.Bytes())
		n = n.WithDigest(raw)
	default:
		return Node{}, fmt.Errorf("fsnode: unsupported file type at %s: %v", path, fi.Mode())
	}
	return n, nil
}

// rawStat extracts the raw Unix mode_t, uid, and gid from fi, falling
// back to a mode synthesized from Go's portable os.FileMode bits on
// platforms with no syscall.Stat_t (e.g. non-Unix).
func rawStat(fi os.FileInfo) (mode, uid, gid uint32) {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return uint32(st.Mode), st.Uid, st.Gid
	}
	perm := uint32(fi.Mode().Perm())
	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		return typeLnk | perm, 0, 0
	case fi.IsDir():
		return typeDir | perm, 0, 0
	default:
		return typeReg | perm, 0, 0
	}
}

// FromWalkEntry builds a Node from a path already known to exist, as
// produced by a directory walk (avoiding a redundant Lstat when the
// caller already has one).
func FromWalkEntry(path string, fi os.FileInfo) (Node, error) {
	return fromFileInfo(path, fi)
}
