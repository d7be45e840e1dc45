package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/vietddude/sparki/internal/api"
	"github.com/vietddude/sparki/internal/core/config"
	"github.com/vietddude/sparki/internal/core/worker"
	"github.com/vietddude/sparki/internal/health"
	redisclient "github.com/vietddude/sparki/internal/infra/redis"
	"github.com/vietddude/sparki/internal/infra/storage"
	"github.com/vietddude/sparki/internal/infra/storage/postgres"
)

// App is the main application struct that manages the service lifecycle.
type App struct {
	cfg Config

	db          *postgres.Manager
	exec        *postgres.Executor
	redisClient *redisclient.Client

	api          *api.Server
	healthMon    *health.Monitor
	healthServer *health.Server
	grpcHealth   *health.GRPCServer
	pruner       *worker.OTPPruner

	cancel context.CancelFunc
	wg     conc.WaitGroup
}

// Config holds the application configuration.
type Config struct {
	App     *config.AppConfig
	Migrate bool // apply pending migrations before serving
}

// NewApp creates a new App with all dependencies initialized. No
// connection is made until Start.
func NewApp(cfg Config) (*App, error) {
	if cfg.App == nil {
		return nil, errors.New("missing application config")
	}
	appCfg := cfg.App

	// 1. Initialize Storage
	db := postgres.NewManager(appCfg.Database)
	exec := postgres.NewExecutor(db, postgres.RetryConfigFrom(appCfg.Database))

	users := postgres.NewUserRepo(exec)
	var wholesalers storage.WholesalerRepository = postgres.NewWholesalerRepo(exec)

	// 2. Optional wholesaler directory cache
	var redisClient *redisclient.Client
	if appCfg.Redis.Enabled() {
		client, err := redisclient.NewClient(appCfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, wholesaler cache disabled", "error", err)
		} else {
			redisClient = client
			wholesalers = redisclient.NewCachedWholesalerRepo(
				wholesalers,
				redisclient.NewDirectoryCache(client, appCfg.Redis.TTL),
			)
			slog.Info("Wholesaler directory cache enabled", "ttl", appCfg.Redis.TTL)
		}
	}

	// 3. API
	apiServer := api.NewServer(api.Config{
		Port:           appCfg.Server.Port,
		RateLimit:      appCfg.Server.RateLimit,
		RateLimitBurst: appCfg.Server.RateLimitBurst,
		OTPTTL:         appCfg.Accounts.OTPTTL,
		MinAccountAge:  appCfg.Accounts.MinAccountAge,
	}, api.Deps{
		Users:       users,
		Education:   postgres.NewEducationRepo(exec),
		Content:     postgres.NewContentRepo(exec),
		Tracks:      postgres.NewTrackRepo(exec),
		Questions:   postgres.NewQuestionRepo(exec),
		Wholesalers: wholesalers,
	})

	// 4. Health
	healthMon := health.NewMonitor(db, 5*time.Second)
	healthServer := health.NewServer(healthMon, appCfg.Server.HealthPort)
	var grpcHealth *health.GRPCServer
	if appCfg.Server.GRPCPort > 0 {
		grpcHealth = health.NewGRPCServer(healthMon, appCfg.Server.GRPCPort, 10*time.Second)
	}

	return &App{
		cfg:          cfg,
		db:           db,
		exec:         exec,
		redisClient:  redisClient,
		api:          apiServer,
		healthMon:    healthMon,
		healthServer: healthServer,
		grpcHealth:   grpcHealth,
		pruner:       worker.NewOTPPruner(users, appCfg.Accounts.OTPRetention),
	}, nil
}

// Start connects to the database and starts all components. It fails fast
// when the database is unreachable.
func (a *App) Start(ctx context.Context) error {
	dbCfg := a.cfg.App.Database

	if a.cfg.Migrate {
		if err := migrate(ctx, dbCfg); err != nil {
			return err
		}
	}

	if err := a.db.Open(ctx); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	ctx, a.cancel = context.WithCancel(ctx)
	a.db.Start(ctx)
	a.db.StartMetricsCollector(ctx)

	a.wg.Go(func() {
		if err := a.api.Start(); err != nil {
			slog.Error("API server failed", "error", err)
		}
	})
	a.wg.Go(func() {
		if err := a.healthServer.Start(); err != nil {
			slog.Error("Health server failed", "error", err)
		}
	})
	if a.grpcHealth != nil {
		a.wg.Go(func() {
			if err := a.grpcHealth.Start(ctx); err != nil {
				slog.Error("gRPC health server failed", "error", err)
			}
		})
	}
	a.wg.Go(func() {
		a.pruner.Start(ctx)
	})

	return nil
}

func migrate(ctx context.Context, cfg postgres.Config) error {
	conn, err := postgres.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect for migrations: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()
	if err := postgres.MigrateUp(ctx, conn.DB); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}
	return nil
}

// Stop shuts the servers down, waits for background workers and closes
// the connections.
func (a *App) Stop(ctx context.Context) error {
	slog.Info("Stopping sparki...")

	var errs []error
	if err := a.api.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("api server: %w", err))
	}
	if err := a.healthServer.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("health server: %w", err))
	}
	if a.grpcHealth != nil {
		a.grpcHealth.Stop()
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			slog.Warn("Failed to close Redis", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	return errors.Join(errs...)
}

// Executor exposes the query executor for one-off commands.
func (a *App) Executor() *postgres.Executor {
	return a.exec
}
