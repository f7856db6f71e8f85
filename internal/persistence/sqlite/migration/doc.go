// Package migration applies versioned SQL migrations to a SQLite database.
//
// Migration files are read from an fs.FS (usually an embedded directory) and follow
// the naming convention {version}_{description}.sql, e.g. "001_initial_schema.sql".
// Applied versions are tracked in a schema_migrations table so each file runs once.
//
// Example usage:
//
//	manager := NewManager(NewScanner(files, "migrations"), NewSQLiteExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
