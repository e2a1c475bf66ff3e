package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ArchiveRow is the typed result of an archives-table row.
type ArchiveRow struct {
	Serial    int64
	UUID      string
	Name      string
	DateAdded int64
	Active    bool
	Info      uint32
	OSBuild   string
}

// ErrArchiveNotFound is returned when a selector matches no archive row.
var ErrArchiveNotFound = errors.New("store: archive not found")

// InsertArchive inserts row and assigns its Serial from the new primary
// key.
func (db *DB) InsertArchive(q Execer, row *ArchiveRow) error {
	res, err := exec(q).Exec(`
		INSERT INTO archives (uuid, name, date_added, active, info, osbuild)
		VALUES (?, ?, ?, ?, ?, ?)`,
		row.UUID, row.Name, row.DateAdded, boolToInt(row.Active), row.Info, nullable(row.OSBuild))
	if err != nil {
		return fmt.Errorf("store: insert archive %s: %w", row.UUID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: last insert id for archive %s: %w", row.UUID, err)
	}
	row.Serial = id
	return nil
}

// UpdateArchive persists every mutable field of row, keyed by Serial.
func (db *DB) UpdateArchive(q Execer, row ArchiveRow) error {
	_, err := exec(q).Exec(`
		UPDATE archives SET name=?, active=?, info=?, osbuild=? WHERE serial=?`,
		row.Name, boolToInt(row.Active), row.Info, nullable(row.OSBuild), row.Serial)
	if err != nil {
		return fmt.Errorf("store: update archive %d: %w", row.Serial, err)
	}
	return nil
}

// Activate sets active=1 on the archive with the given serial.
func (db *DB) Activate(q Execer, serial int64) error {
	return db.setActive(q, serial, true)
}

// Deactivate sets active=0 on the archive with the given serial.
func (db *DB) Deactivate(q Execer, serial int64) error {
	return db.setActive(q, serial, false)
}

func (db *DB) setActive(q Execer, serial int64, active bool) error {
	if _, err := exec(q).Exec(`UPDATE archives SET active=? WHERE serial=?`, boolToInt(active), serial); err != nil {
		return fmt.Errorf("store: set active=%v on archive %d: %w", active, serial, err)
	}
	return nil
}

// DeleteArchive removes the archives row with the given serial. Callers
// must delete its file rows first (DeleteFiles) to respect the archive
// foreign key.
func (db *DB) DeleteArchive(q Execer, serial int64) error {
	if _, err := exec(q).Exec(`DELETE FROM archives WHERE serial=?`, serial); err != nil {
		return fmt.Errorf("store: delete archive %d: %w", serial, err)
	}
	return nil
}

// DeleteEmptyArchives removes every archive with zero file rows,
// returning their serials. Used after uninstall to garbage-collect a
// rollback archive whose files have all been superseded or removed.
func (db *DB) DeleteEmptyArchives(q Execer) ([]int64, error) {
	rows, err := query(q).Query(`
		SELECT serial FROM archives
		WHERE serial NOT IN (SELECT DISTINCT archive FROM files)`)
	if err != nil {
		return nil, fmt.Errorf("store: find empty archives: %w", err)
	}
	var serials []int64
	for rows.Next() {
		var s int64
		if err := rows.Scan(&s); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: scan empty archive serial: %w", err)
		}
		serials = append(serials, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, s := range serials {
		if err := db.DeleteArchive(q, s); err != nil {
			return nil, err
		}
	}
	return serials, nil
}

// Selector names how to look up a single archive via GetArchive.
type Selector struct {
	UUID   string
	Serial int64 // used when nonzero and UUID, Name, Newest, Oldest are unset
	Name   string
	Newest bool
	Oldest bool
}

// GetArchive resolves sel to a single archive row. q is typically db
// itself for standalone reads (list/files/verify under the shared lock)
// or an open *Tx when called mid-transaction (install/uninstall).
func (db *DB) GetArchive(q Execer, sel Selector) (*ArchiveRow, error) {
	var row *sql.Row
	switch {
	case sel.UUID != "":
		row = q.QueryRow(archiveSelectSQL+` WHERE uuid=?`, sel.UUID)
	case sel.Name != "":
		row = q.QueryRow(archiveSelectSQL+` WHERE name=? ORDER BY serial DESC LIMIT 1`, sel.Name)
	case sel.Newest:
		row = q.QueryRow(archiveSelectSQL + ` ORDER BY serial DESC LIMIT 1`)
	case sel.Oldest:
		row = q.QueryRow(archiveSelectSQL + ` ORDER BY serial ASC LIMIT 1`)
	case sel.Serial != 0:
		row = q.QueryRow(archiveSelectSQL+` WHERE serial=?`, sel.Serial)
	default:
		return nil, fmt.Errorf("store: empty selector")
	}
	return scanArchive(row)
}

const archiveSelectSQL = `SELECT serial, uuid, name, date_added, active, info, COALESCE(osbuild, '') FROM archives`

// GetArchives lists every archive, newest first, optionally including
// synthetic rollback archives.
func (db *DB) GetArchives(q Execer, includeRollbacks bool) ([]ArchiveRow, error) {
	sqlText := archiveSelectSQL
	if !includeRollbacks {
		sqlText += ` WHERE info & 1 = 0`
	}
	sqlText += ` ORDER BY serial DESC`
	rows, err := q.Query(sqlText)
	if err != nil {
		return nil, fmt.Errorf("store: list archives: %w", err)
	}
	defer rows.Close()

	var out []ArchiveRow
	for rows.Next() {
		var r ArchiveRow
		var active int
		if err := rows.Scan(&r.Serial, &r.UUID, &r.Name, &r.DateAdded, &active, &r.Info, &r.OSBuild); err != nil {
			return nil, fmt.Errorf("store: scan archive: %w", err)
		}
		r.Active = active != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetInactiveArchiveSerials returns the serials of every archive with
// active=0 — the set check_consistency must resolve before any mutation.
func (db *DB) GetInactiveArchiveSerials(q Execer) ([]int64, error) {
	rows, err := q.Query(`SELECT serial FROM archives WHERE active = 0 ORDER BY serial ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list inactive archives: %w", err)
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

// CountArchives counts archives, optionally including rollbacks.
func (db *DB) CountArchives(q Execer, includeRollbacks bool) (int, error) {
	sqlText := `SELECT COUNT(*) FROM archives`
	if !includeRollbacks {
		sqlText += ` WHERE info & 1 = 0`
	}
	var n int
	if err := q.QueryRow(sqlText).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count archives: %w", err)
	}
	return n, nil
}

func scanArchive(row *sql.Row) (*ArchiveRow, error) {
	var r ArchiveRow
	var active int
	if err := row.Scan(&r.Serial, &r.UUID, &r.Name, &r.DateAdded, &active, &r.Info, &r.OSBuild); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArchiveNotFound
		}
		return nil, fmt.Errorf("store: scan archive: %w", err)
	}
	r.Active = active != 0
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
