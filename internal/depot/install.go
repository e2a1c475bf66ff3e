package depot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Dicklesworthstone/rootup/internal/archive"
	"github.com/Dicklesworthstone/rootup/internal/fsnode"
)

// Install runs the full install pipeline for a newly constructed Archive
// whose SourcePath names the archive to extract.
func (d *Depot) Install(a archive.Archive, extractor archive.Extractor) error {
	rollback := archive.NewRollback()

	if err := d.Lock(); err != nil {
		return err
	}
	defer d.Downgrade() //nolint:errcheck // best-effort; the command's exit code is what matters

	tx, err := d.Store.BeginTx()
	if err != nil {
		return err
	}

	rollbackRow := rowFromArchive(rollback)
	if err := d.Store.InsertArchive(tx, &rollbackRow); err != nil {
		tx.Rollback()
		return fmt.Errorf("depot: insert rollback archive: %w", err)
	}
	rollback.Serial = rollbackRow.Serial

	userRow := rowFromArchive(a)
	if err := d.Store.InsertArchive(tx, &userRow); err != nil {
		tx.Rollback()
		return fmt.Errorf("depot: insert archive: %w", err)
	}
	a.Serial = userRow.Serial

	if err := a.CreateBackingDir(d.Root); err != nil {
		tx.Rollback()
		return err
	}
	if err := rollback.CreateBackingDir(d.Root); err != nil {
		tx.Rollback()
		return err
	}

	stageDir := a.BackingDir(d.Root)
	if err := extractor.Extract(ctx(), a.SourcePath, stageDir); err != nil {
		tx.Rollback()
		return fmt.Errorf("depot: extract %s: %w", a.SourcePath, err)
	}

	rollbackFiles, err := d.analyzeStage(tx, stageDir, &a, &rollback)
	if err != nil {
		tx.Rollback()
		return err
	}

	if rollbackFiles == 0 {
		if err := d.Store.DeleteArchive(tx, rollback.Serial); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if err := a.Compact(ctx(), d.Root, d.Runner); err != nil {
		return err
	}

	if rollbackFiles > 0 {
		if err := d.backupFiles(&rollback); err != nil {
			return err
		}
		if err := rollback.Compact(ctx(), d.Root, d.Runner); err != nil {
			return err
		}
	}

	if err := d.installFiles(&a); err != nil {
		return err
	}

	activateTx, err := d.Store.BeginTx()
	if err != nil {
		return err
	}
	if rollbackFiles > 0 {
		if err := d.Store.Activate(activateTx, rollback.Serial); err != nil {
			activateTx.Rollback()
			return fmt.Errorf("depot: activate rollback: %w", err)
		}
	}
	if err := d.Store.Activate(activateTx, a.Serial); err != nil {
		activateTx.Rollback()
		return fmt.Errorf("depot: activate archive: %w", err)
	}
	if err := activateTx.Commit(); err != nil {
		return err
	}

	_ = os.RemoveAll(a.BackingDir(d.Root))
	_ = os.RemoveAll(rollback.BackingDir(d.Root))

	return nil
}

// backupFiles copies every ROLLBACK_DATA file in rollback from its live
// location into the rollback's backing store, preserving relative paths.
func (d *Depot) backupFiles(rollback *archive.Archive) error {
	rows, err := d.Store.GetFiles(d.Store, rollback.Serial, false)
	if err != nil {
		return fmt.Errorf("depot: list rollback files: %w", err)
	}
	for _, row := range rows {
		if row.Info&fsnode.InfoRollbackData == 0 {
			continue
		}
		src := filepath.Join(d.Prefix, row.Path)
		dst := filepath.Join(rollback.BackingDir(d.Root), row.Path)
		if err := copyPreservingMode(src, dst); err != nil {
			return fmt.Errorf("depot: backup %s: %w", row.Path, err)
		}
	}
	return nil
}

// installFiles moves every INSTALL_DATA file from a's staging directory
// onto the live tree; files without INSTALL_DATA only get their metadata
// reapplied (install_info in the original pipeline).
func (d *Depot) installFiles(a *archive.Archive) error {
	rows, err := d.Store.GetFiles(d.Store, a.Serial, false)
	if err != nil {
		return fmt.Errorf("depot: list archive files: %w", err)
	}
	expanded := false
	opts := fsnode.InstallOptions{
		StagingDir: a.BackingDir(d.Root),
		DestPrefix: d.Prefix,
		Force:      d.Opts.Force,
		Expand: func() error {
			if expanded {
				return nil
			}
			expanded = true
			return a.Expand(ctx(), d.Root, d.Runner)
		},
	}
	for _, row := range rows {
		n := nodeFromRow(row)
		var err error
		if row.Info&fsnode.InfoInstallData != 0 {
			if err = n.Install(opts); err == nil {
				err = n.Unquarantine(d.Prefix)
			}
		} else {
			err = n.RepairMetadata(d.Prefix)
		}
		if err != nil {
			return fmt.Errorf("depot: install %s: %w", row.Path, err)
		}
	}
	return nil
}
