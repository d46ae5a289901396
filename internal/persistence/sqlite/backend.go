package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/detailing-backoffice/internal/persistence"
	"github.com/example/detailing-backoffice/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Backend stores named collection payloads in the collections table.
type Backend struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects to the database described by cfg.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewBackend(db), nil
}

// NewBackend wraps an already opened database.
func NewBackend(db *sql.DB) *Backend {
	return &Backend{db: db, now: time.Now}
}

// Close releases the connection pool.
func (b *Backend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Migrate applies the embedded schema migrations.
func (b *Backend) Migrate(ctx context.Context, logger *slog.Logger) error {
	migrations, err := migration.Scan(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: load migrations: %w", err)
	}
	if _, err := migration.NewManager(migration.NewSQLiteExecutor(b.db), migrations, logger).Run(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Get returns the payload stored under name.
func (b *Backend) Get(ctx context.Context, name string) ([]byte, error) {
	var payload string
	err := b.db.QueryRowContext(ctx, `SELECT payload FROM collections WHERE name = ?`, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: get %s: %w", name, err)
	}
	return []byte(payload), nil
}

// Put inserts or replaces the payload stored under name and bumps its revision.
func (b *Backend) Put(ctx context.Context, name string, payload []byte) error {
	const upsertSQL = `
		INSERT INTO collections (name, payload, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			revision = collections.revision + 1,
			updated_at = excluded.updated_at`

	if _, err := b.db.ExecContext(ctx, upsertSQL, name, string(payload), b.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("sqlite: put %s: %w", name, err)
	}
	return nil
}
