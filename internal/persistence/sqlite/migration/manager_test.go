package migration

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
)

func newTestDB(t *testing.T) *SQLiteExecutor {
	t.Helper()
	db, err := Open(InMemoryTestSQLiteConfig())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteExecutor(db)
}

func TestScanner(t *testing.T) {
	t.Run("sorts by numeric version and reads descriptions", func(t *testing.T) {
		files := fstest.MapFS{
			"migrations/010_later.sql":          {Data: []byte("CREATE TABLE b (id TEXT);")},
			"migrations/002_second.sql":         {Data: []byte("-- Description: add table a\nCREATE TABLE a (id TEXT);")},
			"migrations/001_initial_schema.sql": {Data: []byte("CREATE TABLE z (id TEXT);")},
			"migrations/README.md":              {Data: []byte("ignored")},
		}
		migrations, err := NewScanner(files, "migrations").ScanMigrations()
		if err != nil {
			t.Fatalf("ScanMigrations failed: %v", err)
		}
		if len(migrations) != 3 {
			t.Fatalf("expected 3 migrations, got %d", len(migrations))
		}
		if migrations[0].Version != "001" || migrations[1].Version != "002" || migrations[2].Version != "010" {
			t.Fatalf("unexpected order: %v %v %v", migrations[0].Version, migrations[1].Version, migrations[2].Version)
		}
		if migrations[0].Description != "initial schema" {
			t.Fatalf("expected filename description, got %q", migrations[0].Description)
		}
		if migrations[1].Description != "add table a" {
			t.Fatalf("expected content description, got %q", migrations[1].Description)
		}
		if migrations[0].Checksum == "" {
			t.Fatalf("expected checksum")
		}
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		files := fstest.MapFS{"migrations/initial.sql": {Data: []byte("SELECT 1;")}}
		_, err := NewScanner(files, "migrations").ScanMigrations()
		if !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		files := fstest.MapFS{
			"migrations/001_a.sql": {Data: []byte("SELECT 1;")},
			"migrations/1_b.sql":   {Data: []byte("SELECT 1;")},
		}
		_, err := NewScanner(files, "migrations").ScanMigrations()
		if !errors.Is(err, ErrDuplicateVersion) {
			t.Fatalf("expected ErrDuplicateVersion, got %v", err)
		}
	})

	t.Run("rejects empty files", func(t *testing.T) {
		files := fstest.MapFS{"migrations/001_empty.sql": {Data: []byte("-- nothing here\n")}}
		_, err := NewScanner(files, "migrations").ScanMigrations()
		if !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})
}

func TestManagerRunMigrations(t *testing.T) {
	ctx := context.Background()

	files := fstest.MapFS{
		"migrations/001_rooms.sql":   {Data: []byte("CREATE TABLE rooms (id TEXT PRIMARY KEY);")},
		"migrations/002_clients.sql": {Data: []byte("CREATE TABLE clients (id TEXT PRIMARY KEY);\nCREATE INDEX idx_clients ON clients (id);")},
	}

	t.Run("applies pending migrations once", func(t *testing.T) {
		executor := newTestDB(t)
		manager := NewManager(NewScanner(files, "migrations"), executor, nil)

		if err := manager.RunMigrations(ctx); err != nil {
			t.Fatalf("RunMigrations failed: %v", err)
		}
		if err := manager.RunMigrations(ctx); err != nil {
			t.Fatalf("second RunMigrations failed: %v", err)
		}

		status, err := manager.Status(ctx)
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if status.CurrentVersion != "002" || len(status.Pending) != 0 || len(status.Applied) != 2 {
			t.Fatalf("unexpected status: %+v", status)
		}
	})

	t.Run("failed migration rolls back", func(t *testing.T) {
		executor := newTestDB(t)
		broken := fstest.MapFS{
			"migrations/001_rooms.sql": {Data: []byte("CREATE TABLE rooms (id TEXT PRIMARY KEY);\nINSERT INTO missing VALUES (1);")},
		}
		manager := NewManager(NewScanner(broken, "migrations"), executor, nil)

		err := manager.RunMigrations(ctx)
		if !errors.Is(err, ErrMigrationFailed) {
			t.Fatalf("expected ErrMigrationFailed, got %v", err)
		}
		var name string
		err = executor.db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'rooms'").Scan(&name)
		if err == nil {
			t.Fatalf("expected rooms table to be rolled back")
		}
		applied, err := executor.AppliedVersions(ctx)
		if err != nil {
			t.Fatalf("AppliedVersions failed: %v", err)
		}
		if len(applied) != 0 {
			t.Fatalf("expected no applied versions, got %v", applied)
		}
	})

	t.Run("detects gaps", func(t *testing.T) {
		executor := newTestDB(t)
		gapped := fstest.MapFS{
			"migrations/001_rooms.sql":   {Data: []byte("CREATE TABLE rooms (id TEXT);")},
			"migrations/003_clients.sql": {Data: []byte("CREATE TABLE clients (id TEXT);")},
		}
		err := NewManager(NewScanner(gapped, "migrations"), executor, nil).RunMigrations(ctx)
		if !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
	})

	t.Run("detects edited migrations", func(t *testing.T) {
		executor := newTestDB(t)
		if err := NewManager(NewScanner(files, "migrations"), executor, nil).RunMigrations(ctx); err != nil {
			t.Fatalf("RunMigrations failed: %v", err)
		}
		edited := fstest.MapFS{
			"migrations/001_rooms.sql":   {Data: []byte("CREATE TABLE rooms (id TEXT PRIMARY KEY, name TEXT);")},
			"migrations/002_clients.sql": files["migrations/002_clients.sql"],
		}
		err := NewManager(NewScanner(edited, "migrations"), executor, nil).RunMigrations(ctx)
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Fatalf("expected ErrChecksumMismatch, got %v", err)
		}
	})
}
