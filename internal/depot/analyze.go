package depot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Dicklesworthstone/rootup/internal/archive"
	"github.com/Dicklesworthstone/rootup/internal/cliutil"
	"github.com/Dicklesworthstone/rootup/internal/fsnode"
	"github.com/Dicklesworthstone/rootup/internal/pathutil"
	"github.com/Dicklesworthstone/rootup/internal/store"
	"github.com/Dicklesworthstone/rootup/internal/walk"
)

// analyzeStage performs the three-way diff between the archive's staged
// files, the live overlay, and the nearest preceding record on record,
// inserting file rows into both userArchive and rollback within tx.
// Returns the number of staged paths that produced a rollback record;
// ancestor-directory records added alongside them are not counted.
func (d *Depot) analyzeStage(tx *store.Tx, stagingDir string, userArchive, rollback *archive.Archive) (int, error) {
	entries, err := walk.DepthFirst(stagingDir)
	if err != nil {
		return 0, fmt.Errorf("depot: walk stage %s: %w", stagingDir, err)
	}

	rollbackFiles := 0
	for _, ent := range entries {
		file, err := walk.ToNode(ent)
		if err != nil {
			return 0, err
		}
		file.Archive = userArchive.Serial

		destPath, err := pathutil.Join(d.Prefix, ent.RelPath)
		if err != nil {
			return 0, err
		}
		actual, err := fsnode.Probe(destPath)
		if err != nil {
			return 0, err
		}
		actual.Path = ent.RelPath

		precedingRow, err := d.Store.GetNextFile(tx, store.FileRow{Path: ent.RelPath, Archive: userArchive.Serial}, store.Preceded)
		var preceding fsnode.Node
		havePreceding := err == nil
		if err != nil && err != store.ErrFileNotFound {
			return 0, fmt.Errorf("depot: file_preceded_by %s: %w", ent.RelPath, err)
		}
		if havePreceding {
			preceding = nodeFromRow(*precedingRow)
		}

		state := byte('?')

		if !havePreceding {
			// Nothing known about this path: it becomes a base-system
			// rollback record. Back up its live data unless it's a
			// directory or already absent.
			actual.Info |= fsnode.InfoBaseSystem
			if actual.Kind != fsnode.KindDirectory && actual.Kind != fsnode.KindAbsent {
				actual.Info |= fsnode.InfoRollbackData
				file.Info |= fsnode.InfoInstallData
			}
			preceding = actual
			havePreceding = true
		}

		actualFlags := fsnode.Compare(file, actual)
		precedingFlags := fsnode.Compare(actual, preceding)

		switch {
		case !fsnode.Differs(actualFlags) && !fsnode.Differs(precedingFlags):
			state = ' '
		case fsnode.Differs(actualFlags):
			if actual.Kind == fsnode.KindAbsent {
				state = 'A'
			} else {
				state = 'U'
			}
			if actualFlags&(fsnode.CompareTypeDiffers|fsnode.CompareDataDiffers) != 0 {
				file.Info |= fsnode.InfoInstallData
				if precedingFlags&(fsnode.CompareTypeDiffers|fsnode.CompareDataDiffers) != 0 && actual.Kind != fsnode.KindAbsent {
					actual.Info |= fsnode.InfoRollbackData
				}
			}
		}

		if actual.Info&fsnode.InfoRollbackData != 0 {
			if err := d.ensureBackupDir(rollback, ent.RelPath); err != nil {
				return 0, err
			}
		}

		if (state != ' ' && fsnode.Differs(precedingFlags)) || actual.Info&(fsnode.InfoBaseSystem|fsnode.InfoRollbackData) != 0 {
			rollbackFiles++
			rollbackNode := actual
			rollbackNode.Path = ent.RelPath
			if err := d.upsertNode(tx, rollback.Serial, rollbackNode); err != nil {
				return 0, err
			}
			if err := d.insertAncestors(tx, rollback.Serial, ent.RelPath); err != nil {
				return 0, err
			}
		}

		cliutil.Progress(state, file.Path)

		if err := d.upsertNode(tx, userArchive.Serial, file); err != nil {
			return 0, err
		}
	}
	return rollbackFiles, nil
}

// ensureBackupDir creates the rollback backing store's directory
// hierarchy up to and including the parent directory of relPath, created
// with the system umask.
func (d *Depot) ensureBackupDir(rollback *archive.Archive, relPath string) error {
	dir := filepath.Join(rollback.BackingDir(d.Root), filepath.Dir(relPath))
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return fmt.Errorf("depot: mkdir rollback backing dir %s: %w", dir, err)
	}
	return nil
}

// insertAncestors walks relPath's ancestors, inserting every existing
// parent directory into rollbackSerial so the rollback can recreate
// directory metadata. It stops as soon as an ancestor does not exist:
// base-system rollback for a missing parent is unnecessary since that
// parent will never have been part of the original tree.
func (d *Depot) insertAncestors(tx *store.Tx, rollbackSerial int64, relPath string) error {
	for _, parentRel := range pathutil.Parents(relPath) {
		abs, err := pathutil.Join(d.Prefix, parentRel)
		if err != nil {
			return err
		}
		parent, err := fsnode.Probe(abs)
		if err != nil {
			return err
		}
		if parent.Kind == fsnode.KindAbsent {
			break
		}
		parent.Path = parentRel
		if err := d.upsertNode(tx, rollbackSerial, parent); err != nil {
			return err
		}
	}
	return nil
}
