package depot

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Dicklesworthstone/rootup/internal/archive"
	"github.com/Dicklesworthstone/rootup/internal/fsnode"
	"github.com/Dicklesworthstone/rootup/internal/store"
)

// rowFromNode converts a Node owned by archiveSerial into its persisted
// row shape.
func rowFromNode(n fsnode.Node, archiveSerial int64) store.FileRow {
	return store.FileRow{
		Archive: archiveSerial,
		Info:    n.Info,
		Mode:    n.Mode,
		UID:     n.UID,
		GID:     n.GID,
		Size:    n.Size,
		Digest:  n.DigestBytes(),
		Path:    n.Path,
	}
}

// nodeFromRow reconstructs a Node from a persisted row. The Kind is
// derived from the row's raw mode bits, matching how Probe derives Kind
// from a live stat.
func nodeFromRow(r store.FileRow) fsnode.Node {
	n := fsnode.Node{
		Kind:    fsnode.KindFromMode(r.Mode),
		Path:    r.Path,
		Serial:  r.Serial,
		Archive: r.Archive,
		Info:    r.Info,
		Mode:    r.Mode,
		UID:     r.UID,
		GID:     r.GID,
		Size:    r.Size,
	}
	if r.Info&fsnode.InfoNoEntry != 0 {
		n.Kind = fsnode.KindAbsent
	}
	if len(r.Digest) == 20 {
		var raw [20]byte
		copy(raw[:], r.Digest)
		n = n.WithDigest(raw)
	}
	return n
}

// rowFromArchive converts an Archive into its persisted row shape.
func rowFromArchive(a archive.Archive) store.ArchiveRow {
	return store.ArchiveRow{
		Serial:    a.Serial,
		UUID:      a.UUID.String(),
		Name:      a.Name,
		DateAdded: a.DateInstalled,
		Active:    a.Active,
		Info:      a.Info,
		OSBuild:   a.OSBuild,
	}
}

// archiveFromRow reconstructs an Archive from a persisted row.
func archiveFromRow(r store.ArchiveRow) (archive.Archive, error) {
	id, err := uuid.Parse(r.UUID)
	if err != nil {
		return archive.Archive{}, fmt.Errorf("depot: parse archive uuid %q: %w", r.UUID, err)
	}
	return archive.Archive{
		Serial:        r.Serial,
		UUID:          id,
		Name:          r.Name,
		Info:          r.Info,
		Active:        r.Active,
		DateInstalled: r.DateAdded,
		OSBuild:       r.OSBuild,
	}, nil
}

// absentRow is the NO_ENTRY placeholder file record rollback archives use
// to mark "nothing existed at this path before install".
func absentRow(archiveSerial int64, path string) store.FileRow {
	return store.FileRow{
		Archive: archiveSerial,
		Info:    fsnode.InfoNoEntry,
		Path:    path,
	}
}
