package main

import (
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"photo-archive/internal/app"
	"photo-archive/internal/config"
	"photo-archive/internal/db"
	"photo-archive/internal/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "photo-archive",
		Short: "Geographic photo archiving service",
		Long: `photo-archive stores uploaded photos and videos together with the
location they were taken at, and serves them back over a REST API for
map-based browsing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run()
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	migrateCmd.AddCommand(
		migrationCmd("up", "Apply all pending migrations", db.Migrate),
		migrationCmd("down", "Roll back the most recent migration", db.MigrateDown),
		migrationCmd("status", "Print the state of every migration", db.MigrationStatus),
	)

	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// migrationCmd wraps a migration function with config loading and a
// database connection.
func migrationCmd(use, short string, fn func(*pgxpool.Pool) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.LogLevel, cfg.LogFormat, "")

			pool, err := db.Connect(cmd.Context(), cfg.DatabaseURL, cfg.PoolMaxConns, cfg.PoolMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			return fn(pool)
		},
	}
}
