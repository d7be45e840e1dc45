package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/sparki/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database reachability, schema version and table sizes",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mgr := postgres.NewManager(cfg.Database)
	if err := mgr.Open(ctx); err != nil {
		fmt.Println("DATABASE\tunreachable")
		os.Exit(1)
	}
	defer func() {
		_ = mgr.Close()
	}()
	exec := postgres.NewExecutor(mgr, postgres.RetryConfigFrom(cfg.Database))

	var version int64
	if err := exec.Get(ctx, &version,
		"SELECT COALESCE(MAX(version_id), 0) FROM goose_db_version WHERE is_applied",
	); err != nil {
		slog.Warn("Failed to read schema version", "error", err)
	}

	counts, err := postgres.CountRows(ctx, exec)
	if err != nil {
		slog.Error("Failed to count rows", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintf(w, "DATABASE\treachable\n")
	_, _ = fmt.Fprintf(w, "SCHEMA\t%d\n", version)
	_, _ = fmt.Fprintln(w, "TABLE\tROWS")
	for _, c := range counts {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", c.Table, c.Rows)
	}
	_ = w.Flush()
}
