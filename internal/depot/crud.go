package depot

import (
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/rootup/internal/fsnode"
	"github.com/Dicklesworthstone/rootup/internal/store"
)

// upsertNode inserts n as a file record owned by archiveSerial, or updates
// the existing record at that (archive, path) if one was already created
// earlier in the same pass — the ancestor-directory walk in analyze can
// revisit the same parent path from multiple descendants.
func (d *Depot) upsertNode(q store.Execer, archiveSerial int64, n fsnode.Node) error {
	row := rowFromNode(n, archiveSerial)
	serial, err := d.Store.GetFileSerial(q, archiveSerial, n.Path)
	switch {
	case err == nil:
		row.Serial = serial
		return d.Store.UpdateFile(q, row)
	case errors.Is(err, store.ErrFileNotFound):
		return d.Store.InsertFile(q, &row)
	default:
		return fmt.Errorf("depot: upsert file %s: %w", n.Path, err)
	}
}
