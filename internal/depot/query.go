package depot

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dicklesworthstone/rootup/internal/archive"
	"github.com/Dicklesworthstone/rootup/internal/cliutil"
	"github.com/Dicklesworthstone/rootup/internal/fsnode"
	"github.com/Dicklesworthstone/rootup/internal/pathutil"
	"github.com/Dicklesworthstone/rootup/internal/store"
)

// ArchiveListing is the archive row shape list and dump render.
type ArchiveListing struct {
	Serial  int64  `json:"serial" yaml:"serial"`
	UUID    string `json:"uuid" yaml:"uuid"`
	Date    string `json:"date_installed" yaml:"date_installed"`
	Name    string `json:"name" yaml:"name"`
}

// FileListing is one rendered file record.
type FileListing struct {
	Mode   string `json:"mode" yaml:"mode"`
	UID    uint32 `json:"uid" yaml:"uid"`
	GID    uint32 `json:"gid" yaml:"gid"`
	Size   int64  `json:"size" yaml:"size"`
	Path   string `json:"path" yaml:"path"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
}

// List returns every archive, newest first.
func (d *Depot) List(includeRollbacks bool) ([]ArchiveListing, error) {
	if err := d.RLock(); err != nil {
		return nil, err
	}
	defer d.Unlock() //nolint:errcheck

	rows, err := d.Store.GetArchives(d.Store, includeRollbacks)
	if err != nil {
		return nil, err
	}
	out := make([]ArchiveListing, 0, len(rows))
	for _, r := range rows {
		out = append(out, listingFromRow(r))
	}
	return out, nil
}

// Files returns a's file records in path order.
func (d *Depot) Files(a archive.Archive) ([]FileListing, error) {
	if err := d.RLock(); err != nil {
		return nil, err
	}
	defer d.Unlock() //nolint:errcheck

	rows, err := d.Store.GetFiles(d.Store, a.Serial, false)
	if err != nil {
		return nil, err
	}
	out := make([]FileListing, 0, len(rows))
	for _, r := range rows {
		out = append(out, fileListingFromRow(r, ""))
	}
	return out, nil
}

// Verify compares every file record in a against the live overlay,
// tagging each with "M" (modified), "R" (missing), or "" (unchanged).
func (d *Depot) Verify(a archive.Archive) ([]FileListing, error) {
	if err := d.RLock(); err != nil {
		return nil, err
	}
	defer d.Unlock() //nolint:errcheck

	rows, err := d.Store.GetFiles(d.Store, a.Serial, false)
	if err != nil {
		return nil, err
	}
	out := make([]FileListing, 0, len(rows))
	for _, r := range rows {
		file := nodeFromRow(r)
		destPath, err := pathutil.Join(d.Prefix, r.Path)
		if err != nil {
			return nil, err
		}
		actual, err := fsnode.Probe(destPath)
		if err != nil {
			return nil, err
		}
		actual.Path = r.Path

		status := ""
		switch {
		case actual.Kind == fsnode.KindAbsent:
			status = "R"
		case fsnode.Differs(fsnode.Compare(file, actual)):
			status = "M"
		}
		out = append(out, fileListingFromRow(r, status))
	}
	return out, nil
}

// SupersededArchives returns every non-rollback archive every one of
// whose file records has since been superseded by a later archive, the
// "superseded" CLI selector's plural resolution.
func (d *Depot) SupersededArchives() ([]archive.Archive, error) {
	if err := d.RLock(); err != nil {
		return nil, err
	}
	defer d.Unlock() //nolint:errcheck

	rows, err := d.Store.GetArchives(d.Store, false)
	if err != nil {
		return nil, err
	}
	var out []archive.Archive
	for _, row := range rows {
		files, err := d.Store.GetFiles(d.Store, row.Serial, false)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}
		allSuperseded := true
		for _, f := range files {
			if _, err := d.Store.GetNextFile(d.Store, f, store.Superseded); err != nil {
				if errors.Is(err, store.ErrFileNotFound) {
					allSuperseded = false
					break
				}
				return nil, err
			}
		}
		if allSuperseded {
			a, err := archiveFromRow(row)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		}
	}
	return out, nil
}

// GetArchive resolves sel against the store under a shared lock.
func (d *Depot) GetArchive(sel store.Selector) (archive.Archive, error) {
	if err := d.RLock(); err != nil {
		return archive.Archive{}, err
	}
	defer d.Unlock() //nolint:errcheck

	row, err := d.Store.GetArchive(d.Store, sel)
	if err != nil {
		return archive.Archive{}, err
	}
	return archiveFromRow(*row)
}

// PrintArchives renders listings to stdout via the shared table helper.
func PrintArchives(listings []ArchiveListing) {
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, []string{fmt.Sprint(l.Serial), l.UUID, l.Date, l.Name})
	}
	cliutil.Table([]string{"Serial", "UUID", "Date Installed", "Name"}, rows)
}

// PrintFiles renders file listings to stdout via the shared table helper.
func PrintFiles(listings []FileListing) {
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		prefix := l.Status
		if prefix == "" {
			prefix = " "
		}
		rows = append(rows, []string{prefix, l.Mode, fmt.Sprint(l.UID), fmt.Sprint(l.GID), fmt.Sprint(l.Size), l.Path})
	}
	cliutil.Table(nil, rows)
}

func listingFromRow(r store.ArchiveRow) ArchiveListing {
	return ArchiveListing{
		Serial: r.Serial,
		UUID:   r.UUID,
		Date:   time.Unix(r.DateAdded, 0).UTC().Format(time.RFC3339),
		Name:   r.Name,
	}
}

func fileListingFromRow(r store.FileRow, status string) FileListing {
	return FileListing{
		Mode:   fmt.Sprintf("%06o", r.Mode),
		UID:    r.UID,
		GID:    r.GID,
		Size:   r.Size,
		Path:   r.Path,
		Status: status,
	}
}
