package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationsPath is the default on-disk location of the .sql migration
// files embedding spec §6's persistent schema, mirroring the original
// source's `embed_migrations!("./migrations")`.
const MigrationsPath = "file://internal/store/migrations"

// RunMigrations applies every pending migration under path against db. It
// is a no-op unless enabled is true — the Go equivalent of the original
// source's ENABLE_MIGRATIONS gate in db/migration.rs, here decided by the
// caller (cmd/radishd) reading internal/config.Config.EnableMigrations
// rather than re-reading the environment here.
func RunMigrations(db *sql.DB, path string, enabled bool, logger *slog.Logger) error {
	if !enabled {
		logger.Info("skipping database migrations")
		return nil
	}

	logger.Info("running database migrations")
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration run: %w", err)
	}

	logger.Info("database migrations finished")
	return nil
}
