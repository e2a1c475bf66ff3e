// Package walk provides the depth-first, name-sorted directory traversal
// analyze relies on — the Go analogue of the original tool's FTS usage.
package walk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Dicklesworthstone/rootup/internal/fsnode"
)

// Entry is one visited filesystem object, relative to root but reported
// with a leading "/" so it matches overlay path conventions directly.
type Entry struct {
	RelPath string // "/etc/foo"
	Info    os.FileInfo
	AbsPath string
}

// DepthFirst walks root, visiting directories and their contents in
// name-sorted order, depth-first, excluding root itself. Symlinks are
// reported as entries, never followed.
func DepthFirst(root string) ([]Entry, error) {
	var out []Entry
	err := walkDir(root, "", &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func walkDir(absDir, relDir string, out *[]Entry) error {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return fmt.Errorf("walk: read dir %s: %w", absDir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, de := range entries {
		absPath := filepath.Join(absDir, de.Name())
		relPath := relDir + "/" + de.Name()

		info, err := de.Info()
		if err != nil {
			return fmt.Errorf("walk: stat %s: %w", absPath, err)
		}
		*out = append(*out, Entry{RelPath: relPath, Info: info, AbsPath: absPath})

		if info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
			if err := walkDir(absPath, relPath, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// ToNode builds the fsnode.Node for a walked entry, with Path set to the
// overlay-relative RelPath rather than the staging AbsPath it was probed
// at.
func ToNode(e Entry) (fsnode.Node, error) {
	n, err := fsnode.FromWalkEntry(e.AbsPath, e.Info)
	if err != nil {
		return fsnode.Node{}, fmt.Errorf("walk: node for %s: %w", e.AbsPath, err)
	}
	n.Path = e.RelPath
	return n, nil
}
