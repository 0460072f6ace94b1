package db

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// DefaultMigrationsDir is relative to the repository root.
const DefaultMigrationsDir = "internal/db/migrations"

// MigrateUp applies every pending migration in dir. No pending
// migrations is not an error.
func MigrateUp(dsn, dir string) error {
	return runMigrations(dsn, dir, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back steps migrations, or all of them when steps < 1.
func MigrateDown(dsn, dir string, steps int) error {
	return runMigrations(dsn, dir, func(m *migrate.Migrate) error {
		if steps < 1 {
			return m.Down()
		}
		return m.Steps(-steps)
	})
}

func runMigrations(dsn, dir string, apply func(*migrate.Migrate) error) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	migrator, err := migrate.New("file://"+filepath.ToSlash(abs), dsn)
	if err != nil {
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := apply(migrator); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate failed: %w", err)
	}
	return nil
}
