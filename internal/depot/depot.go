// Package depot is the overlay engine: lock, analyze, install, uninstall,
// verify, list. It owns the three-way diff, rollback generation, backing
// store lifecycle, and resolution of superseded/preceded file records.
package depot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Dicklesworthstone/rootup/internal/procrunner"
	"github.com/Dicklesworthstone/rootup/internal/store"
)

// DirName is the depot's state directory name under the overlay prefix.
const DirName = ".RootDepot"

// DatabaseFile is the store's filename within the depot directory,
// preserving the original tool's versioned naming convention.
const DatabaseFile = "Database-V100"

// Options threads the process-wide knobs (verbosity, force) through an
// explicit context record rather than globals, per the rewrite's
// explicit-context design note.
type Options struct {
	Force      bool
	Verbose    int
	SkipDyld   bool
	AutoResolveCrashes bool
}

// Depot is a single opened <prefix>/.RootDepot/ state directory: its
// store handle, backing-store root, and the process runner used for
// external-tool-backed operations (compaction, xar/cpio/pax extraction,
// remote fetch).
type Depot struct {
	Prefix  string
	Root    string // <prefix>/.RootDepot
	Store   *store.DB
	Runner  procrunner.Runner
	Opts    Options

	lockFile *os.File
}

// Open opens (creating if absent) the depot rooted at prefix. It does
// not acquire the advisory lock; call Lock/RLock for that.
func Open(prefix string, opts Options, runner procrunner.Runner) (*Depot, error) {
	root := filepath.Join(prefix, DirName)
	for _, sub := range []string{"", "Archives", "Downloads"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("depot: mkdir %s: %w", filepath.Join(root, sub), err)
		}
	}

	db, err := store.OpenAndMigrate(filepath.Join(root, DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("depot: open store: %w", err)
	}
	if err := db.ValidateSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("depot: %w", err)
	}

	if runner == nil {
		runner = procrunner.Exec{}
	}

	return &Depot{Prefix: prefix, Root: root, Store: db, Runner: runner, Opts: opts}, nil
}

// Close releases the lock (if held) and the store handle.
func (d *Depot) Close() error {
	_ = d.Unlock()
	if d.Store != nil {
		return d.Store.Close()
	}
	return nil
}

// DownloadDir is where Fetch stages remote sources before extraction.
func (d *Depot) DownloadDir() string { return filepath.Join(d.Root, "Downloads") }

// ArchivesDir is the parent of every archive's backing store.
func (d *Depot) ArchivesDir() string { return filepath.Join(d.Root, "Archives") }

// ctx is a convenience background context; the depot has no fine-grained
// cancellation, per the concurrency model's cooperative-only policy.
func ctx() context.Context { return context.Background() }
