package cli

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/sparki/internal/infra/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Run:   migrationRunner("apply migrations", postgres.MigrateUp),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	Run:   migrationRunner("roll back migration", postgres.MigrateDown),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of every migration",
	Run:   migrationRunner("read migration status", postgres.MigrationStatus),
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func migrationRunner(action string, fn func(context.Context, *sql.DB) error) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		ctx := context.Background()
		db, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() {
			_ = db.Close()
		}()

		if err := fn(ctx, db.DB); err != nil {
			slog.Error("Failed to "+action, "error", err)
			os.Exit(1)
		}

		if v, err := postgres.MigrationVersion(ctx, db.DB); err == nil {
			slog.Info("Schema version", "version", v)
		}
	}
}
