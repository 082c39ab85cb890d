package db

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// setupGoose configures goose for the embedded migration set.
func setupGoose() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations directory: %w", err)
	}
	goose.SetBaseFS(migrationsDir)
	return nil
}

// Migrate applies all pending migrations. Goose needs a database/sql
// handle, so one is borrowed from the pgx pool for the duration.
func Migrate(pool *pgxpool.Pool) error {
	if err := setupGoose(); err != nil {
		return err
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	if err := goose.Up(sqlDB, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("migrations completed")
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(pool *pgxpool.Pool) error {
	if err := setupGoose(); err != nil {
		return err
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	if err := goose.Down(sqlDB, "."); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	slog.Info("rolled back one migration")
	return nil
}

// MigrationStatus prints the applied/pending state of every migration.
func MigrationStatus(pool *pgxpool.Pool) error {
	if err := setupGoose(); err != nil {
		return err
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	if err := goose.Status(sqlDB, "."); err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	return nil
}
