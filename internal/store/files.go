package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// FileRow is the typed result of a files-table row.
type FileRow struct {
	Serial  int64
	Archive int64
	Info    uint32
	Mode    uint32
	UID     uint32
	GID     uint32
	Size    int64
	Digest  []byte
	Path    string
}

// ErrFileNotFound is returned when a file lookup matches no row.
var ErrFileNotFound = errors.New("store: file not found")

const fileSelectSQL = `SELECT serial, archive, info, mode, uid, gid, size, digest, path FROM files`

// InsertFile inserts row, enforcing the (archive, path) uniqueness
// invariant via the schema's unique index, and assigns its Serial.
func (db *DB) InsertFile(q Execer, row *FileRow) error {
	res, err := exec(q).Exec(`
		INSERT INTO files (archive, info, mode, uid, gid, size, digest, path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.Archive, row.Info, row.Mode, row.UID, row.GID, row.Size, nullableBlob(row.Digest), row.Path)
	if err != nil {
		return fmt.Errorf("store: insert file (archive=%d path=%s): %w", row.Archive, row.Path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: last insert id for file %s: %w", row.Path, err)
	}
	row.Serial = id
	return nil
}

// UpdateFile persists row's mutable fields, keyed by Serial. Analyze's
// ancestor-directory walk is the one case that updates a file record's
// content fields in place, when the same path is revisited from a second
// descendant before the transaction commits.
func (db *DB) UpdateFile(q Execer, row FileRow) error {
	_, err := exec(q).Exec(`
		UPDATE files SET archive=?, info=?, mode=?, uid=?, gid=?, size=?, digest=? WHERE serial=?`,
		row.Archive, row.Info, row.Mode, row.UID, row.GID, row.Size, nullableBlob(row.Digest), row.Serial)
	if err != nil {
		return fmt.Errorf("store: update file %d: %w", row.Serial, err)
	}
	return nil
}

// DeleteFile removes the file row with the given serial.
func (db *DB) DeleteFile(q Execer, serial int64) error {
	if _, err := exec(q).Exec(`DELETE FROM files WHERE serial=?`, serial); err != nil {
		return fmt.Errorf("store: delete file %d: %w", serial, err)
	}
	return nil
}

// DeleteFiles removes every file row belonging to archive.
func (db *DB) DeleteFiles(q Execer, archive int64) error {
	if _, err := exec(q).Exec(`DELETE FROM files WHERE archive=?`, archive); err != nil {
		return fmt.Errorf("store: delete files for archive %d: %w", archive, err)
	}
	return nil
}

// GetFiles returns every file row owned by archive, in path order
// (descending when reverse is set, for the uninstall traversal that must
// process deepest paths first).
func (db *DB) GetFiles(q Execer, archive int64, reverse bool) ([]FileRow, error) {
	order := "ASC"
	if reverse {
		order = "DESC"
	}
	rows, err := q.Query(fileSelectSQL+` WHERE archive=? ORDER BY path `+order, archive)
	if err != nil {
		return nil, fmt.Errorf("store: list files for archive %d: %w", archive, err)
	}
	defer rows.Close()
	return scanFileRows(rows)
}

// GetFileSerial returns the serial of the file row at (archive, path).
func (db *DB) GetFileSerial(q Execer, archive int64, path string) (int64, error) {
	var s int64
	err := q.QueryRow(`SELECT serial FROM files WHERE archive=? AND path=?`, archive, path).Scan(&s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrFileNotFound
		}
		return 0, fmt.Errorf("store: get file serial (archive=%d path=%s): %w", archive, path, err)
	}
	return s, nil
}

// CountFiles counts file rows at path within archive (0 or 1 given the
// unique index, but exposed as a count per the original contract).
func (db *DB) CountFiles(q Execer, archive int64, path string) (int, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM files WHERE archive=? AND path=?`, archive, path).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count files (archive=%d path=%s): %w", archive, path, err)
	}
	return n, nil
}

// GetFileSerials returns every file serial in the store, ascending.
func (db *DB) GetFileSerials(q Execer) ([]int64, error) {
	rows, err := q.Query(`SELECT serial FROM files ORDER BY serial ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list file serials: %w", err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var s int64
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Direction selects which neighbor GetNextFile looks for.
type Direction int

const (
	// Superseded finds the file record on the same path belonging to the
	// archive with the next-greater serial — a newer archive that now
	// owns the path.
	Superseded Direction = iota
	// Preceded finds the file record on the same path belonging to the
	// archive with the next-lesser serial — the prior state of the path.
	Preceded
)

// GetNextFile returns the file record at file.Path belonging to the
// archive whose serial is immediately greater (Superseded) or lesser
// (Preceded) than the archive owning file, or ErrFileNotFound if none
// exists.
func (db *DB) GetNextFile(q Execer, file FileRow, dir Direction) (*FileRow, error) {
	const cols = `files.serial, files.archive, files.info, files.mode, files.uid, files.gid, files.size, files.digest, files.path`
	var sqlText string
	if dir == Superseded {
		sqlText = `SELECT ` + cols + ` FROM files
			JOIN archives a ON a.serial = files.archive
			WHERE files.path = ? AND a.serial > ?
			ORDER BY a.serial ASC LIMIT 1`
	} else {
		sqlText = `SELECT ` + cols + ` FROM files
			JOIN archives a ON a.serial = files.archive
			WHERE files.path = ? AND a.serial < ?
			ORDER BY a.serial DESC LIMIT 1`
	}
	row := q.QueryRow(sqlText, file.Path, file.Archive)
	out, err := scanFileRow(row)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return out, nil
}

func scanFileRow(row *sql.Row) (*FileRow, error) {
	var r FileRow
	if err := row.Scan(&r.Serial, &r.Archive, &r.Info, &r.Mode, &r.UID, &r.GID, &r.Size, &r.Digest, &r.Path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("store: scan file: %w", err)
	}
	return &r, nil
}

func scanFileRows(rows *sql.Rows) ([]FileRow, error) {
	var out []FileRow
	for rows.Next() {
		var r FileRow
		if err := rows.Scan(&r.Serial, &r.Archive, &r.Info, &r.Mode, &r.UID, &r.GID, &r.Size, &r.Digest, &r.Path); err != nil {
			return nil, fmt.Errorf("store: scan file row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullableBlob(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
