package sqlite_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/detailing-backoffice/internal/persistence"
	"github.com/example/detailing-backoffice/internal/persistence/sqlite"
)

func openBackend(t *testing.T, cfg sqlite.Config) *sqlite.Backend {
	t.Helper()

	ctx := context.Background()
	backend, err := sqlite.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { backend.Close() })

	if err := backend.Migrate(ctx, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	return backend
}

func TestBackend_GetPut(t *testing.T) {
	backend := openBackend(t, sqlite.InMemoryConfig())
	ctx := context.Background()

	if _, err := backend.Get(ctx, "lm-bookings"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing collection, got %v", err)
	}

	if err := backend.Put(ctx, "lm-bookings", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := backend.Put(ctx, "lm-bookings", []byte(`[{"id":"2"}]`)); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	payload, err := backend.Get(ctx, "lm-bookings")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(payload) != `[{"id":"2"}]` {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestBackend_MigrateIsIdempotent(t *testing.T) {
	backend := openBackend(t, sqlite.InMemoryConfig())
	if err := backend.Migrate(context.Background(), nil); err != nil {
		t.Fatalf("second Migrate returned error: %v", err)
	}
}

func TestBackend_StorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "detailing.db")
	ctx := context.Background()

	type contact struct {
		ID  string `json:"id"`
		Nom string `json:"nom"`
	}

	first := openBackend(t, sqlite.DefaultConfig(path))
	store := persistence.NewStore(first, nil)
	coll := persistence.NewCollection[contact](store, "lm-contacts")
	if err := coll.Save(ctx, []contact{{ID: "c1", Nom: "Hoarau"}}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	second := openBackend(t, sqlite.DefaultConfig(path))
	loaded, err := persistence.NewCollection[contact](persistence.NewStore(second, nil), "lm-contacts").Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Nom != "Hoarau" {
		t.Fatalf("unexpected contacts after reopen: %+v", loaded)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     sqlite.Config
		wantErr bool
	}{
		{name: "default", cfg: sqlite.DefaultConfig("detailing.db")},
		{name: "memory", cfg: sqlite.InMemoryConfig()},
		{name: "empty dsn", cfg: sqlite.Config{}, wantErr: true},
		{name: "bad journal", cfg: sqlite.Config{DSN: "x.db", JournalMode: "FAST"}, wantErr: true},
		{name: "bad sync", cfg: sqlite.Config{DSN: "x.db", Synchronous: "SOMETIMES"}, wantErr: true},
		{name: "negative pool", cfg: sqlite.Config{DSN: "x.db", MaxOpenConns: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
