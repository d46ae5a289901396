// Package migration applies versioned SQL migrations to a SQLite database.
//
// Migrations are read from an fs.FS (usually an embed.FS compiled into the
// binary) and must follow the naming convention {version}_{description}.sql,
// for example "001_create_collections.sql". An optional "-- Description:"
// comment at the top of the file overrides the description derived from the
// file name.
//
// Applied versions are tracked in the schema_migrations table together with
// the checksum of the file that was applied. Each migration runs in its own
// transaction and is recorded in that same transaction.
//
// Example usage:
//
//	migrations, err := migration.Scan(files, "migrations")
//	if err != nil {
//		return err
//	}
//	manager := migration.NewManager(migration.NewSQLiteExecutor(db), migrations, logger)
//	if _, err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration
