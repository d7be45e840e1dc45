package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/sparki/internal/core/worker"
	"github.com/vietddude/sparki/internal/infra/storage/postgres"
)

var pruneOTPsCmd = &cobra.Command{
	Use:   "prune-otps [retention]",
	Short: "Clear OTP codes issued longer ago than retention (e.g. 24h)",
	Args:  cobra.ExactArgs(1),
	Run:   runPruneOTPs,
}

func init() {
	rootCmd.AddCommand(pruneOTPsCmd)
}

func runPruneOTPs(cmd *cobra.Command, args []string) {
	retention, err := time.ParseDuration(args[0])
	if err != nil || retention <= 0 {
		fmt.Printf("Invalid retention %q: expected a positive duration\n", args[0])
		os.Exit(1)
	}

	cfg := loadConfig()

	ctx := context.Background()
	mgr := postgres.NewManager(cfg.Database)
	if err := mgr.Open(ctx); err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = mgr.Close()
	}()

	exec := postgres.NewExecutor(mgr, postgres.RetryConfigFrom(cfg.Database))
	n := worker.NewOTPPruner(postgres.NewUserRepo(exec), retention).Prune(ctx)

	fmt.Printf("Cleared %d OTP codes older than %s\n", n, retention)
}
