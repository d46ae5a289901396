package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/detailing-backoffice/internal/persistence"
	"github.com/example/detailing-backoffice/internal/persistence/sqlite"
)

// SQLiteHarness provides a Store backed by a temporary, migrated SQLite
// database for integration-style tests.
type SQLiteHarness struct {
	Path    string
	Backend *sqlite.Backend
	Store   *persistence.Store

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a migrated database in a temporary directory.
// Callers may optionally invoke Close, but the helper also registers a
// cleanup callback with tb.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "detailing.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	backend, err := sqlite.Open(ctx, sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := backend.Migrate(ctx, logger); err != nil {
		_ = backend.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Path:    path,
		Backend: backend,
		Store:   persistence.NewStore(backend, logger),
		cleanup: func() {
			_ = backend.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
