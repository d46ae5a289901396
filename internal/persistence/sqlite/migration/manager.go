package migration

import (
	"context"
	"fmt"
	"log/slog"
)

// Executor is the database side of the migration process.
type Executor interface {
	InitializeVersionTable(ctx context.Context) error
	ExecuteMigration(ctx context.Context, migration Migration) error
	AppliedMigrations(ctx context.Context) ([]AppliedMigration, error)
}

// Manager applies pending migrations in version order.
type Manager struct {
	executor   Executor
	migrations []Migration
	logger     *slog.Logger
}

// NewManager creates a Manager for the given migrations. A nil logger falls
// back to slog.Default.
func NewManager(executor Executor, migrations []Migration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{executor: executor, migrations: migrations, logger: logger.With("component", "migration")}
}

// Run executes every pending migration and returns how many were applied.
// Applied migrations whose checksum no longer matches the source abort the run.
func (m *Manager) Run(ctx context.Context) (int, error) {
	status, err := m.Status(ctx)
	if err != nil {
		return 0, err
	}

	m.logger.InfoContext(ctx, "schema version checked",
		"current_version", status.CurrentVersion,
		"pending_count", len(status.Pending),
	)

	for i, migration := range status.Pending {
		logger := m.logger.With(
			"version", migration.Version,
			"description", migration.Description,
			"position", fmt.Sprintf("%d/%d", i+1, len(status.Pending)),
		)
		logger.InfoContext(ctx, "applying migration")

		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return i, NewMigrationError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}
		logger.InfoContext(ctx, "migration applied")
	}

	return len(status.Pending), nil
}

// Status compares the migration source against the version table.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, fmt.Errorf("failed to initialize version table: %w", err)
	}

	applied, err := m.executor.AppliedMigrations(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to get applied versions: %w", err)
	}

	byVersion := make(map[string]AppliedMigration, len(applied))
	for _, a := range applied {
		byVersion[a.Version] = a
	}

	status := Status{Applied: applied}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}

	for _, migration := range m.migrations {
		done, ok := byVersion[migration.Version]
		if !ok {
			status.Pending = append(status.Pending, migration)
			continue
		}
		if done.Checksum != "" && done.Checksum != migration.Checksum {
			return Status{}, NewMigrationError(migration.Version, migration.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}

	return status, nil
}
