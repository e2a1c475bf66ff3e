package store

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	db, err := OpenAndMigrate(path)
	if err != nil {
		t.Fatalf("OpenAndMigrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAndMigrateSetsSchemaVersion(t *testing.T) {
	db := openTestDB(t)
	v, err := db.GetSchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if v != SchemaVersion {
		t.Fatalf("schema version = %d, want %d", v, SchemaVersion)
	}
	if err := db.ValidateSchema(); err != nil {
		t.Fatal(err)
	}
}

func TestInsertArchiveAssignsMonotonicSerials(t *testing.T) {
	db := openTestDB(t)

	rollback := &ArchiveRow{UUID: "uuid-rollback", Name: "<Rollback>", Active: true, Info: 1}
	if err := db.InsertArchive(db, rollback); err != nil {
		t.Fatal(err)
	}
	user := &ArchiveRow{UUID: "uuid-user", Name: "foo.tar", Active: true}
	if err := db.InsertArchive(db, user); err != nil {
		t.Fatal(err)
	}
	if rollback.Serial >= user.Serial {
		t.Fatalf("rollback serial %d must be less than user serial %d", rollback.Serial, user.Serial)
	}
}

func TestInsertFileDuplicatePathFails(t *testing.T) {
	db := openTestDB(t)
	a := &ArchiveRow{UUID: "uuid-a", Name: "a", Active: true}
	if err := db.InsertArchive(db, a); err != nil {
		t.Fatal(err)
	}

	f1 := &FileRow{Archive: a.Serial, Path: "/etc/foo", Mode: 0o100644}
	if err := db.InsertFile(db, f1); err != nil {
		t.Fatal(err)
	}
	f2 := &FileRow{Archive: a.Serial, Path: "/etc/foo", Mode: 0o100644}
	if err := db.InsertFile(db, f2); err == nil {
		t.Fatal("expected duplicate (archive, path) insert to fail")
	}
}

func TestPrecededAndSupersededCorrectness(t *testing.T) {
	db := openTestDB(t)

	a1 := &ArchiveRow{UUID: "a1", Name: "a1", Active: true}
	a2 := &ArchiveRow{UUID: "a2", Name: "a2", Active: true}
	a3 := &ArchiveRow{UUID: "a3", Name: "a3", Active: true}
	for _, a := range []*ArchiveRow{a1, a2, a3} {
		if err := db.InsertArchive(db, a); err != nil {
			t.Fatal(err)
		}
	}

	f1 := &FileRow{Archive: a1.Serial, Path: "/x", Mode: 0o100644}
	f2 := &FileRow{Archive: a2.Serial, Path: "/x", Mode: 0o100644}
	f3 := &FileRow{Archive: a3.Serial, Path: "/x", Mode: 0o100644}
	for _, f := range []*FileRow{f1, f2, f3} {
		if err := db.InsertFile(db, f); err != nil {
			t.Fatal(err)
		}
	}

	preceded, err := db.GetNextFile(db, *f2, Preceded)
	if err != nil {
		t.Fatal(err)
	}
	if preceded.Archive != a1.Serial {
		t.Fatalf("preceded-by from a2 = archive %d, want %d", preceded.Archive, a1.Serial)
	}

	superseded, err := db.GetNextFile(db, *f2, Superseded)
	if err != nil {
		t.Fatal(err)
	}
	if superseded.Archive != a3.Serial {
		t.Fatalf("superseded-by from a2 = archive %d, want %d", superseded.Archive, a3.Serial)
	}

	if _, err := db.GetNextFile(db, *f1, Preceded); err != ErrFileNotFound {
		t.Fatalf("expected ErrFileNotFound preceding the oldest archive, got %v", err)
	}
}

func TestGetFilesOrderingReversible(t *testing.T) {
	db := openTestDB(t)
	a := &ArchiveRow{UUID: "a", Name: "a", Active: true}
	if err := db.InsertArchive(db, a); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"/b", "/a", "/c"} {
		if err := db.InsertFile(db, &FileRow{Archive: a.Serial, Path: p, Mode: 0o100644}); err != nil {
			t.Fatal(err)
		}
	}
	forward, err := db.GetFiles(db, a.Serial, false)
	if err != nil {
		t.Fatal(err)
	}
	if forward[0].Path != "/a" || forward[2].Path != "/c" {
		t.Fatalf("forward order = %v", forward)
	}
	reverse, err := db.GetFiles(db, a.Serial, true)
	if err != nil {
		t.Fatal(err)
	}
	if reverse[0].Path != "/c" || reverse[2].Path != "/a" {
		t.Fatalf("reverse order = %v", reverse)
	}
}

func TestDeleteEmptyArchivesGarbageCollectsRollback(t *testing.T) {
	db := openTestDB(t)
	rollback := &ArchiveRow{UUID: "r", Name: "<Rollback>", Active: true, Info: 1}
	if err := db.InsertArchive(db, rollback); err != nil {
		t.Fatal(err)
	}
	serials, err := db.DeleteEmptyArchives(db)
	if err != nil {
		t.Fatal(err)
	}
	if len(serials) != 1 || serials[0] != rollback.Serial {
		t.Fatalf("expected rollback archive garbage collected, got %v", serials)
	}
	if _, err := db.GetArchive(db, Selector{Serial: rollback.Serial}); err != ErrArchiveNotFound {
		t.Fatalf("expected archive gone, got %v", err)
	}
}

func TestTransactionRollbackDiscardsInsert(t *testing.T) {
	db := openTestDB(t)
	tx, err := db.BeginTx()
	if err != nil {
		t.Fatal(err)
	}
	a := &ArchiveRow{UUID: "tx-a", Name: "a", Active: true}
	if err := db.InsertArchive(tx, a); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetArchive(db, Selector{UUID: "tx-a"}); err != ErrArchiveNotFound {
		t.Fatalf("expected rolled-back insert to be invisible, got %v", err)
	}
}
