// Package archive models an installed (or to-be-installed) root: its
// identity, its backing-store directory, and the format-specific
// extraction that populates a staging directory from a source path or URL.
package archive

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Info bits on the archives table. Rollback is the only defined bit.
const (
	InfoNone     uint32 = 0x0000
	InfoRollback uint32 = 0x0001
)

// RollbackName is the synthetic name used by synthetic rollback archives,
// recognized by selector queries.
const RollbackName = "<Rollback>"

// Archive is a set of files with identity (uuid, serial) and a
// backing-store copy, per the data model.
type Archive struct {
	Serial        int64
	UUID          uuid.UUID
	Name          string
	Info          uint32
	Active        bool
	DateInstalled int64
	OSBuild       string

	// SourcePath is transient: the path or URL the archive was
	// constructed from. It is never persisted to the store.
	SourcePath string
}

// IsRollback reports whether a is a synthetic rollback archive.
func (a Archive) IsRollback() bool { return a.Info&InfoRollback != 0 }

// New constructs a fresh user archive from a source path, assigning a
// random UUID and deriving Name from the source's basename.
func New(sourcePath string) Archive {
	return Archive{
		UUID:          uuid.New(),
		Name:          filepath.Base(sourcePath),
		DateInstalled: nowUnix(),
		SourcePath:    sourcePath,
	}
}

// NewRollback constructs a synthetic rollback archive; the caller pairs it
// with the user archive being installed.
func NewRollback() Archive {
	return Archive{
		UUID:          uuid.New(),
		Name:          RollbackName,
		Info:          InfoRollback,
		DateInstalled: nowUnix(),
	}
}

// nowUnix is a seam so tests can observe a fixed install time without the
// archive package importing a clock abstraction of its own.
var nowUnix = func() int64 { return time.Now().Unix() }

// BackingDir returns the expanded backing-store directory for a under
// depotRoot (<depot>/Archives/<uuid>/).
func (a Archive) BackingDir(depotRoot string) string {
	return filepath.Join(depotRoot, "Archives", a.UUID.String())
}

// CompactedPath returns the path of a's compacted tarball under depotRoot
// (<depot>/Archives/<uuid>.tar.bz2).
func (a Archive) CompactedPath(depotRoot string) string {
	return filepath.Join(depotRoot, "Archives", a.UUID.String()+".tar.bz2")
}

func (a Archive) String() string {
	return fmt.Sprintf("%d %s %s %s", a.Serial, a.UUID, time.Unix(a.DateInstalled, 0).UTC().Format(time.RFC3339), a.Name)
}
