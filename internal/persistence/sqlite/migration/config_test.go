package migration

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSQLiteConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SQLiteConfig)
		want   string
	}{
		{"empty dsn", func(c *SQLiteConfig) { c.DSN = " " }, "DSN cannot be empty"},
		{"negative timeout", func(c *SQLiteConfig) { c.BusyTimeout = -1 }, "BusyTimeout cannot be negative"},
		{"journal mode", func(c *SQLiteConfig) { c.JournalMode = "FAST" }, "invalid journal mode: FAST"},
		{"synchronous", func(c *SQLiteConfig) { c.Synchronous = "SOMETIMES" }, "invalid synchronous mode: SOMETIMES"},
		{"pool", func(c *SQLiteConfig) { c.MaxOpenConns = -1 }, "connection pool settings cannot be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultSQLiteConfig("clinic.db")
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || err.Error() != tc.want {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}

	if err := DefaultSQLiteConfig("clinic.db").Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "clinic.db")
	db, err := Open(DefaultSQLiteConfig(path))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("expected WAL journal, got %q", mode)
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("expected foreign keys enabled")
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	if _, err := Open(SQLiteConfig{}); err == nil {
		t.Fatalf("expected error for empty config")
	}
}
