package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Config holds SQLite connection settings.
type Config struct {
	// DSN is the database file path or ":memory:".
	DSN string

	// BusyTimeout sets how long to wait for database locks.
	BusyTimeout time.Duration

	// JournalMode sets the SQLite journal mode (WAL, DELETE, MEMORY...).
	JournalMode string

	// Synchronous sets the synchronous mode (FULL, NORMAL, OFF).
	Synchronous string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the settings used for an on-disk database.
func DefaultConfig(path string) Config {
	return Config{
		DSN:             path,
		BusyTimeout:     5 * time.Second,
		JournalMode:     "WAL",
		Synchronous:     "NORMAL",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// InMemoryConfig returns settings for a private in-memory database. A single
// connection is kept open because every connection to ":memory:" gets its own
// database.
func InMemoryConfig() Config {
	return Config{
		DSN:          ":memory:",
		BusyTimeout:  time.Second,
		JournalMode:  "MEMORY",
		Synchronous:  "OFF",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

var (
	validJournalModes = map[string]bool{"DELETE": true, "TRUNCATE": true, "PERSIST": true, "MEMORY": true, "WAL": true, "OFF": true}
	validSyncModes    = map[string]bool{"OFF": true, "NORMAL": true, "FULL": true, "EXTRA": true}
)

// Validate checks the configuration before a connection is attempted.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("DSN cannot be empty")
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("BusyTimeout cannot be negative")
	}
	if c.JournalMode != "" && !validJournalModes[strings.ToUpper(c.JournalMode)] {
		return fmt.Errorf("invalid journal mode: %s", c.JournalMode)
	}
	if c.Synchronous != "" && !validSyncModes[strings.ToUpper(c.Synchronous)] {
		return fmt.Errorf("invalid synchronous mode: %s", c.Synchronous)
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 || c.ConnMaxLifetime < 0 {
		return fmt.Errorf("connection pool settings cannot be negative")
	}
	return nil
}

// OpenDB opens and configures a SQLite connection pool.
func OpenDB(ctx context.Context, cfg Config) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SQLite configuration: %w", err)
	}

	if cfg.DSN != ":memory:" {
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", cfg.dataSource())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := configure(ctx, db, cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure SQLite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return db, nil
}

func (c Config) pragmas() []string {
	pragmas := []string{fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds())}
	if c.JournalMode != "" {
		pragmas = append(pragmas, "journal_mode("+strings.ToUpper(c.JournalMode)+")")
	}
	if c.Synchronous != "" {
		pragmas = append(pragmas, "synchronous("+strings.ToUpper(c.Synchronous)+")")
	}
	return pragmas
}

// dataSource encodes the pragmas in the DSN so every pooled connection gets
// them. The in-memory database keeps a single connection and is configured
// with plain PRAGMA statements instead.
func (c Config) dataSource() string {
	if c.DSN == ":memory:" {
		return c.DSN
	}
	values := url.Values{}
	for _, pragma := range c.pragmas() {
		values.Add("_pragma", pragma)
	}
	return "file:" + c.DSN + "?" + values.Encode()
}

func configure(ctx context.Context, db *sql.DB, cfg Config) error {
	if cfg.DSN != ":memory:" {
		return nil
	}
	var pragmas []string
	for _, pragma := range cfg.pragmas() {
		name, value, _ := strings.Cut(strings.TrimSuffix(pragma, ")"), "(")
		pragmas = append(pragmas, "PRAGMA "+name+" = "+value)
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return nil
}
