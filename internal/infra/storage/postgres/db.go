package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver
)

// Conn is the connection handle shared by all queries. *sqlx.DB satisfies it.
type Conn interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
	Close() error
}

// StatsProvider is implemented by handles that expose pool statistics.
type StatsProvider interface {
	Stats() sql.DBStats
}

// Dialer creates a fresh connection handle.
type Dialer func(ctx context.Context) (Conn, error)

// NewHandle creates a pooled handle without contacting the server.
func NewHandle(cfg Config) (*sqlx.DB, error) {
	cfg.ApplyDefaults()
	db, err := sqlx.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set pool configuration
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	} else {
		db.SetMaxOpenConns(10)
	}

	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	} else {
		db.SetMaxIdleConns(2)
	}

	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	return db, nil
}

// Connect opens a pool and verifies it with a ping bounded by the connect
// timeout.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	cfg.ApplyDefaults()
	db, err := NewHandle(cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	// Test connection
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// DialContext returns a Dialer backed by Connect.
func DialContext(cfg Config) Dialer {
	return func(ctx context.Context) (Conn, error) {
		db, err := Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
}
