// Package store is the embedded relational store behind rootup's depot:
// two tables, archives and files, with schema migration, transactional
// writes, and typed row results.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SchemaVersion is the current schema version this build expects. Only
// forward migration is required.
const SchemaVersion = 1

// DB wraps a database/sql handle bound to one depot's store file.
type DB struct {
	*sql.DB
	path string
}

// Open opens the database file at path; the sqlite driver creates the file
// if it is absent. Open does not create the schema (see OpenAndMigrate).
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1) // a single writer per process; store serializes internally
	if _, err := sqlDB.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}
	return &DB{DB: sqlDB, path: path}, nil
}

// OpenAndMigrate opens path, creating the schema if absent and applying
// any pending migrations.
func OpenAndMigrate(path string) (*DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the filesystem path of the underlying database file.
func (db *DB) Path() string { return db.path }

// ValidateSchema compares the persisted schema version against
// SchemaVersion and reports a mismatch.
func (db *DB) ValidateSchema() error {
	v, err := db.GetSchemaVersion()
	if err != nil {
		return err
	}
	if v > SchemaVersion {
		return fmt.Errorf("store: database schema version %d is newer than this build supports (%d)", v, SchemaVersion)
	}
	return nil
}

// GetSchemaVersion returns the persisted schema version, or 0 if the
// schema_migrations table is empty or absent.
func (db *DB) GetSchemaVersion() (int, error) {
	var v int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil {
		if isNoSuchTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("store: read schema version: %w", err)
	}
	return v, nil
}

// Stats summarizes the store's current contents.
type Stats struct {
	SchemaVersion  int
	ArchiveCount   int
	ActiveArchives int
	FileCount      int
}

// GetStats reports aggregate counts across both tables.
func (db *DB) GetStats() (Stats, error) {
	var s Stats
	var err error
	if s.SchemaVersion, err = db.GetSchemaVersion(); err != nil {
		return Stats{}, err
	}
	if err = db.QueryRow(`SELECT COUNT(*) FROM archives`).Scan(&s.ArchiveCount); err != nil {
		return Stats{}, fmt.Errorf("store: count archives: %w", err)
	}
	if err = db.QueryRow(`SELECT COUNT(*) FROM archives WHERE active = 1`).Scan(&s.ActiveArchives); err != nil {
		return Stats{}, fmt.Errorf("store: count active archives: %w", err)
	}
	if err = db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&s.FileCount); err != nil {
		return Stats{}, fmt.Errorf("store: count files: %w", err)
	}
	return s, nil
}

func isNoSuchTable(err error) bool {
	return err != nil && !errors.Is(err, sql.ErrNoRows) && containsNoSuchTable(err.Error())
}

func containsNoSuchTable(msg string) bool {
	return len(msg) > 0 && (contains(msg, "no such table"))
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// Execer is satisfied by both *DB and *sql.Tx, letting CRUD helpers run
// either standalone or inside an explicit transaction (BeginTx).
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

func exec(q Execer) Execer  { return q }
func query(q Execer) Execer { return q }

// Tx wraps *sql.Tx so call sites spell transactions the same way
// regardless of whether they hold a *DB or a *Tx.
type Tx struct{ *sql.Tx }

// BeginTx starts a new transaction. Nesting is not supported, matching
// the store's single-writer-per-process model.
func (db *DB) BeginTx() (*Tx, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin transaction: %w", err)
	}
	return &Tx{Tx: tx}, nil
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	if err := tx.Tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Rollback aborts the transaction.
func (tx *Tx) Rollback() error {
	if err := tx.Tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("store: rollback: %w", err)
	}
	return nil
}
