package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jmoiron/sqlx"

	"github.com/vietddude/sparki/internal/metrics"
)

// ConnProvider hands out the current connection handle and receives the
// errors observed on it. *Manager implements it.
type ConnProvider interface {
	Conn() Conn
	ReportFailure(conn Conn, err error)
}

// RetryConfig defines retry behavior for connection-lost errors.
type RetryConfig struct {
	MaxRetries   int
	Delay        time.Duration
	Multiplier   float64 // 1 keeps the delay fixed
	MaxDelay     time.Duration
	QueryTimeout time.Duration // per attempt, 0 = none
}

// DefaultRetryConfig retries three times, one second apart.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:   3,
	Delay:        1 * time.Second,
	Multiplier:   1,
	QueryTimeout: 10 * time.Second,
}

// RetryConfigFrom derives the executor settings from the database config.
func RetryConfigFrom(cfg Config) RetryConfig {
	cfg.ApplyDefaults()
	return RetryConfig{
		MaxRetries:   cfg.MaxRetries,
		Delay:        cfg.RetryDelay,
		Multiplier:   cfg.RetryMultiplier,
		QueryTimeout: cfg.QueryTimeout,
	}
}

// RetryExhaustedError is returned when every attempt failed with a
// connection-lost error. It unwraps to the last driver error.
type RetryExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("query failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// WriteResult carries the metadata of a write statement.
type WriteResult struct {
	RowsAffected int64
}

// Executor runs parameterized statements against the handle supplied by a
// ConnProvider, re-issuing retryable statements after connection loss.
// Statements use ? placeholders.
type Executor struct {
	provider ConnProvider
	cfg      RetryConfig
}

// NewExecutor creates a new query executor.
func NewExecutor(provider ConnProvider, cfg RetryConfig) *Executor {
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Executor{provider: provider, cfg: cfg}
}

// Select runs a read statement and scans all rows into dest (a slice pointer).
func (e *Executor) Select(ctx context.Context, dest any, query string, args ...any) error {
	return e.run(ctx, "select", true, func(ctx context.Context, c Conn) error {
		return c.SelectContext(ctx, dest, rebind(query), args...)
	})
}

// Get runs a read statement and scans a single row into dest. It returns
// sql.ErrNoRows when nothing matched.
func (e *Executor) Get(ctx context.Context, dest any, query string, args ...any) error {
	return e.run(ctx, "get", true, func(ctx context.Context, c Conn) error {
		return c.GetContext(ctx, dest, rebind(query), args...)
	})
}

// Exec runs a write statement exactly once. A connection lost mid-statement
// is reported but never retried, so the write cannot be applied twice.
func (e *Executor) Exec(ctx context.Context, query string, args ...any) (WriteResult, error) {
	return e.exec(ctx, "exec", false, query, args)
}

// ExecIdempotent runs a write statement the caller guarantees can be applied
// more than once with the same effect, retrying it like a read.
func (e *Executor) ExecIdempotent(ctx context.Context, query string, args ...any) (WriteResult, error) {
	return e.exec(ctx, "exec_idempotent", true, query, args)
}

// InsertReturning runs an INSERT ... RETURNING statement exactly once and
// scans the returned row into dest.
func (e *Executor) InsertReturning(ctx context.Context, dest any, query string, args ...any) error {
	return e.run(ctx, "insert", false, func(ctx context.Context, c Conn) error {
		return c.GetContext(ctx, dest, rebind(query), args...)
	})
}

func (e *Executor) exec(ctx context.Context, kind string, retry bool, query string, args []any) (WriteResult, error) {
	var res WriteResult
	err := e.run(ctx, kind, retry, func(ctx context.Context, c Conn) error {
		r, err := c.ExecContext(ctx, rebind(query), args...)
		if err != nil {
			return err
		}
		n, err := r.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		res.RowsAffected = n
		return nil
	})
	return res, err
}

// run issues op at most MaxRetries+1 times when retry is set, once otherwise.
func (e *Executor) run(
	ctx context.Context,
	kind string,
	retry bool,
	op func(context.Context, Conn) error,
) error {
	start := time.Now()
	defer func() {
		metrics.DBQueryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	maxTries := uint(1)
	if retry {
		maxTries = uint(e.cfg.MaxRetries) + 1
	}

	attempts := 0
	attempt := func() (struct{}, error) {
		attempts++
		err := e.attempt(ctx, op)
		if err == nil {
			metrics.DBQueryAttempts.WithLabelValues(kind, "success").Inc()
			return struct{}{}, nil
		}

		if ClassifyError(err) != ActionRetry {
			metrics.DBQueryAttempts.WithLabelValues(kind, "error").Inc()
			return struct{}{}, backoff.Permanent(err)
		}
		metrics.DBQueryAttempts.WithLabelValues(kind, "connection_lost").Inc()
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(e.newBackOff()),
		backoff.WithMaxTries(maxTries),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			metrics.DBQueryRetries.WithLabelValues(kind).Inc()
			slog.Warn("Query failed, retrying",
				"kind", kind,
				"retry", attempts,
				"max_retries", e.cfg.MaxRetries,
				"delay", next,
				"error", err,
			)
		}),
	)
	if err == nil {
		return nil
	}

	// The attempt limit is checked before permanent errors are unwrapped.
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Unwrap()
	}
	if retry && ClassifyError(err) == ActionRetry {
		return &RetryExhaustedError{Attempts: attempts, Err: err}
	}
	return err
}

func (e *Executor) attempt(ctx context.Context, op func(context.Context, Conn) error) error {
	conn := e.provider.Conn()
	if conn == nil {
		return ErrNoConnection
	}

	if e.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.QueryTimeout)
		defer cancel()
	}

	err := op(ctx, conn)
	if err != nil {
		e.provider.ReportFailure(conn, err)
	}
	return err
}

func (e *Executor) newBackOff() backoff.BackOff {
	if e.cfg.Multiplier <= 1 {
		return backoff.NewConstantBackOff(e.cfg.Delay)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.cfg.Delay
	b.Multiplier = e.cfg.Multiplier
	b.RandomizationFactor = 0
	if e.cfg.MaxDelay > 0 {
		b.MaxInterval = e.cfg.MaxDelay
	}
	return b
}

func rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}
