package depot

import (
	"errors"
	"fmt"
	"os"

	"github.com/emirpasic/gods/sets/treeset"
	godsutils "github.com/emirpasic/gods/utils"

	"github.com/Dicklesworthstone/rootup/internal/archive"
	"github.com/Dicklesworthstone/rootup/internal/cliutil"
	"github.com/Dicklesworthstone/rootup/internal/fsnode"
	"github.com/Dicklesworthstone/rootup/internal/pathutil"
	"github.com/Dicklesworthstone/rootup/internal/store"
)

// Uninstall reverts a, restoring displaced content and removing its
// files and archive row. It refuses to uninstall a synthetic rollback
// archive directly.
func (d *Depot) Uninstall(a archive.Archive) error {
	if a.IsRollback() {
		return fmt.Errorf("depot: cannot uninstall a rollback archive")
	}

	if err := d.Lock(); err != nil {
		return err
	}
	defer d.Downgrade() //nolint:errcheck

	if err := d.pruneDirectories(); err != nil {
		return err
	}

	deactivateTx, err := d.Store.BeginTx()
	if err != nil {
		return err
	}
	if err := d.Store.Deactivate(deactivateTx, a.Serial); err != nil {
		deactivateTx.Rollback()
		return fmt.Errorf("depot: deactivate archive %d: %w", a.Serial, err)
	}
	if err := deactivateTx.Commit(); err != nil {
		return err
	}

	toRemove := treeset.NewWith(godsutils.Int64Comparator)
	rows, err := d.Store.GetFiles(d.Store, a.Serial, true)
	if err != nil {
		return fmt.Errorf("depot: list files for archive %d: %w", a.Serial, err)
	}
	for _, row := range rows {
		if err := d.uninstallFile(row, toRemove); err != nil {
			return err
		}
	}

	deleteTx, err := d.Store.BeginTx()
	if err != nil {
		return err
	}
	toRemove.Each(func(_ int, value any) {
		if err != nil {
			return
		}
		err = d.Store.DeleteFile(deleteTx, value.(int64))
	})
	if err != nil {
		deleteTx.Rollback()
		return fmt.Errorf("depot: delete deferred files: %w", err)
	}
	if err := deleteTx.Commit(); err != nil {
		return err
	}

	finalTx, err := d.Store.BeginTx()
	if err != nil {
		return err
	}
	if err := d.Store.DeleteFiles(finalTx, a.Serial); err != nil {
		finalTx.Rollback()
		return err
	}
	if err := d.Store.DeleteArchive(finalTx, a.Serial); err != nil {
		finalTx.Rollback()
		return err
	}
	if err := finalTx.Commit(); err != nil {
		return err
	}

	if err := d.pruneDirectories(); err != nil {
		return err
	}
	if _, err := d.Store.DeleteEmptyArchives(d.Store); err != nil {
		return err
	}
	return nil
}

// uninstallFile handles one file record in the reverse-path-order
// traversal: skip base-system records, skip paths the user modified
// since install, leave paths a newer archive now owns, and otherwise
// restore or remove the prior state, accumulating the serials of
// non-base-system preceding placeholder/rollback-data records into toRemove.
func (d *Depot) uninstallFile(row store.FileRow, toRemove *treeset.Set) error {
	if row.Info&fsnode.InfoBaseSystem != 0 {
		return nil
	}

	file := nodeFromRow(row)
	destPath, err := pathutil.Join(d.Prefix, row.Path)
	if err != nil {
		return err
	}
	actual, err := fsnode.Probe(destPath)
	if err != nil {
		return err
	}
	actual.Path = row.Path

	state := byte(' ')

	if actual.Kind != fsnode.KindAbsent && fsnode.Differs(fsnode.Compare(file, actual)) {
		cliutil.Progress(state, row.Path)
		return nil
	}

	superseded, err := d.Store.GetNextFile(d.Store, row, store.Superseded)
	if err != nil && !errors.Is(err, store.ErrFileNotFound) {
		return fmt.Errorf("depot: file_superseded_by %s: %w", row.Path, err)
	}
	if superseded != nil {
		cliutil.Progress(state, row.Path)
		return nil
	}

	precedingRow, err := d.Store.GetNextFile(d.Store, row, store.Preceded)
	if err != nil {
		return fmt.Errorf("depot: file_preceded_by %s: %w", row.Path, err)
	}
	preceding := nodeFromRow(*precedingRow)

	if precedingRow.Info&fsnode.InfoNoEntry != 0 {
		state = 'R'
		if err := file.Remove(d.Prefix); err != nil {
			return err
		}
	} else {
		flags := fsnode.Compare(file, preceding)
		switch {
		case flags&fsnode.CompareDataDiffers != 0:
			state = 'U'
			if err := preceding.Install(fsnode.InstallOptions{
				StagingDir: archiveBackingDirForSerial(d, precedingRow.Archive),
				DestPrefix: d.Prefix,
				Uninstall:  true,
				Expand:     d.expandBySerial(precedingRow.Archive),
			}); err != nil {
				return err
			}
		case flags&(fsnode.CompareModeDiffers|fsnode.CompareUIDDiffers|fsnode.CompareGIDDiffers) != 0:
			if err := preceding.RepairMetadata(d.Prefix); err != nil {
				return err
			}
		}
	}

	if precedingRow.Info&(fsnode.InfoNoEntry|fsnode.InfoRollbackData) != 0 && precedingRow.Info&fsnode.InfoBaseSystem == 0 {
		toRemove.Add(precedingRow.Serial)
	}

	cliutil.Progress(state, row.Path)
	return nil
}

// archiveBackingDirForSerial resolves serial's backing-store directory
// without a full Archive row fetch, since only the uuid-derived path is
// needed for a staging move.
func archiveBackingDirForSerial(d *Depot, serial int64) string {
	row, err := d.Store.GetArchive(d.Store, store.Selector{Serial: serial})
	if err != nil {
		return ""
	}
	a, err := archiveFromRow(*row)
	if err != nil {
		return ""
	}
	return a.BackingDir(d.Root)
}

func (d *Depot) expandBySerial(serial int64) func() error {
	return func() error {
		row, err := d.Store.GetArchive(d.Store, store.Selector{Serial: serial})
		if err != nil {
			return err
		}
		a, err := archiveFromRow(*row)
		if err != nil {
			return err
		}
		return a.Expand(ctx(), d.Root, d.Runner)
	}
}

// pruneDirectories removes every expanded backing-store directory under
// Archives/, leaving only compacted tarballs — the invariant made
// explicit that no archive is ever left with only an expanded form once
// a command completes.
func (d *Depot) pruneDirectories() error {
	entries, err := os.ReadDir(d.ArchivesDir())
	if err != nil {
		return fmt.Errorf("depot: read %s: %w", d.ArchivesDir(), err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := os.RemoveAll(d.ArchivesDir() + "/" + e.Name()); err != nil {
			return fmt.Errorf("depot: prune %s: %w", e.Name(), err)
		}
	}
	return nil
}
