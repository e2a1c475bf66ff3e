package store

import "fmt"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS archives (
	serial      INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid        TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL,
	date_added  INTEGER NOT NULL,
	active      INTEGER NOT NULL DEFAULT 1,
	info        INTEGER NOT NULL DEFAULT 0,
	osbuild     TEXT
);
CREATE INDEX IF NOT EXISTS idx_archives_uuid ON archives(uuid);

CREATE TABLE IF NOT EXISTS files (
	serial   INTEGER PRIMARY KEY AUTOINCREMENT,
	archive  INTEGER NOT NULL REFERENCES archives(serial),
	info     INTEGER NOT NULL DEFAULT 0,
	mode     INTEGER NOT NULL,
	uid      INTEGER NOT NULL,
	gid      INTEGER NOT NULL,
	size     INTEGER NOT NULL,
	digest   BLOB,
	path     TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_files_archive_path ON files(archive, path);
CREATE INDEX IF NOT EXISTS idx_files_archive ON files(archive);
CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);
`

func (db *DB) initSchema() error {
	if _, err := db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	return nil
}

// migration is one forward schema step, applied in order, each wrapped
// in its own transaction.
type migration struct {
	version int
	apply   func(*DB) error
}

// migrations holds every step beyond the version created by initSchema
// (version 1, the baseline two-table schema). Future schema changes are
// appended here, never edited in place.
var migrations = []migration{}

func (db *DB) migrate() error {
	current, err := db.GetSchemaVersion()
	if err != nil {
		return err
	}
	if current == 0 {
		if _, err := db.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, SchemaVersion); err != nil {
			return fmt.Errorf("store: record baseline schema version: %w", err)
		}
		current = SchemaVersion
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := m.apply(db); err != nil {
			return fmt.Errorf("store: migration to version %d: %w", m.version, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
			return fmt.Errorf("store: record migration version %d: %w", m.version, err)
		}
	}
	return nil
}
