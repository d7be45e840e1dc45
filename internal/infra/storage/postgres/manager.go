package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/vietddude/sparki/internal/metrics"
)

var (
	// ErrNoConnection is returned when no usable handle exists, either because a
	// reconnect is in flight or because the reconnect budget is exhausted.
	ErrNoConnection = errors.New("no database connection available")

	// ErrReconnectInProgress is returned by Reconnect while the supervisor is
	// already replacing the handle.
	ErrReconnectInProgress = errors.New("reconnect already in progress")

	// ErrManagerClosed is returned after Close.
	ErrManagerClosed = errors.New("connection manager closed")
)

// ReconnectState is a snapshot of the reconnect bookkeeping.
type ReconnectState struct {
	Attempting   bool `json:"attempting"`
	AttemptCount int  `json:"attempt_count"`
	MaxAttempts  int  `json:"max_attempts"`
	GaveUp       bool `json:"gave_up"`
}

// Manager owns the process-wide connection handle. It creates the handle on
// demand and replaces it when a connection-lost error is reported, within a
// bounded number of delayed attempts.
type Manager struct {
	dial Dialer
	open func() (Conn, error)

	connectTimeout time.Duration
	maxAttempts    int
	delay          time.Duration

	mu   sync.RWMutex
	conn Conn

	attempting   atomic.Bool
	attemptCount atomic.Int64
	gaveUp       atomic.Bool
	running      atomic.Bool
	closed       atomic.Bool

	failures chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithDialer replaces the function used by Open and reconnects.
func WithDialer(d Dialer) ManagerOption {
	return func(m *Manager) { m.dial = d }
}

// WithLazyOpener replaces the function Conn uses to create a handle without
// waiting for the server.
func WithLazyOpener(open func() (Conn, error)) ManagerOption {
	return func(m *Manager) { m.open = open }
}

// NewManager creates a connection manager. No connection is made until Open
// or Conn is called.
func NewManager(cfg Config, opts ...ManagerOption) *Manager {
	cfg.ApplyDefaults()

	m := &Manager{
		dial: DialContext(cfg),
		open: func() (Conn, error) {
			return NewHandle(cfg)
		},
		connectTimeout: cfg.ConnectTimeout,
		maxAttempts:    max(cfg.ReconnectMaxAttempts, 0),
		delay:          cfg.ReconnectDelay,
		failures:       make(chan struct{}, 1),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open dials the database and installs the handle, failing fast when the
// server is unreachable.
func (m *Manager) Open(ctx context.Context) error {
	if m.closed.Load() {
		return ErrManagerClosed
	}

	slog.Info("Connecting to database")
	conn, err := m.dial(ctx)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		return err
	}
	m.install(conn)
	slog.Info("Database connection established")
	return nil
}

// Start launches the supervisor that performs reconnects.
func (m *Manager) Start(ctx context.Context) {
	if !m.running.CompareAndSwap(false, true) {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.running.Store(false)
		m.supervise(ctx)
	}()
}

// Conn returns the current handle. When none exists it creates one and
// verifies it in the background without waiting. It returns nil while a
// reconnect is in flight, after the budget is exhausted, or after Close.
func (m *Manager) Conn() Conn {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()
	if conn != nil {
		return conn
	}

	if m.closed.Load() || m.attempting.Load() || m.gaveUp.Load() {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		return m.conn
	}

	conn, err := m.open()
	if err != nil {
		slog.Error("Failed to create database handle", "error", err)
		return nil
	}
	m.conn = conn
	slog.Debug("Created database handle on demand")

	go m.verify(conn)
	return conn
}

func (m *Manager) verify(conn Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), m.connectTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		slog.Warn("Database handle failed initial ping", "error", err)
		m.ReportFailure(conn, err)
		return
	}
	slog.Info("Database connection established")
}

// ReportFailure tells the manager that err was observed on conn. Only
// connection-lost errors on the current handle trigger a reconnect; triggers
// that arrive while one is already running are dropped.
func (m *Manager) ReportFailure(conn Conn, err error) {
	if conn == nil || !IsConnectionLost(err) {
		return
	}

	m.mu.RLock()
	current := m.conn
	m.mu.RUnlock()
	if current != conn {
		// The handle was already replaced.
		return
	}

	if !m.attempting.CompareAndSwap(false, true) {
		slog.Debug("Reconnect already in progress, ignoring failure", "error", err)
		return
	}

	if !m.running.Load() {
		m.attempting.Store(false)
		slog.Warn("Connection lost but reconnect supervisor is not running", "error", err)
		return
	}

	slog.Warn("Database connection lost, scheduling reconnect", "error", err)
	select {
	case m.failures <- struct{}{}:
	default:
	}
}

func (m *Manager) supervise(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-m.failures:
			m.reconnect(ctx)
		}
	}
}

// reconnect replaces the handle. The caller must have set the attempting flag;
// it is cleared on return.
func (m *Manager) reconnect(ctx context.Context) {
	defer m.attempting.Store(false)

	// The budget is checked before the current handle is dropped.
	if m.exhausted() {
		return
	}
	m.destroy()

	pace := backoff.NewConstantBackOff(m.delay)
	for {
		if m.exhausted() {
			return
		}
		attempts := int(m.attemptCount.Load())

		slog.Info("Reconnecting to database",
			"attempt", attempts+1,
			"max_attempts", m.maxAttempts,
			"delay", m.delay,
		)

		timer := time.NewTimer(pace.NextBackOff())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-m.done:
			timer.Stop()
			return
		case <-timer.C:
		}

		conn, err := m.dial(ctx)
		if err != nil {
			n := m.attemptCount.Add(1)
			metrics.DBReconnectAttempts.WithLabelValues("failure").Inc()
			metrics.DBReconnectFailures.Set(float64(n))
			slog.Warn("Reconnect attempt failed",
				"attempt", n,
				"max_attempts", m.maxAttempts,
				"error", err,
			)
			continue
		}

		m.install(conn)
		m.attemptCount.Store(0)
		m.gaveUp.Store(false)
		metrics.DBReconnectAttempts.WithLabelValues("success").Inc()
		metrics.DBReconnectFailures.Set(0)
		slog.Info("Database connection re-established")
		return
	}
}

// exhausted marks the manager as given up once the attempt budget is spent.
func (m *Manager) exhausted() bool {
	attempts := int(m.attemptCount.Load())
	if attempts < m.maxAttempts {
		return false
	}
	m.gaveUp.Store(true)
	metrics.DBReconnectAttempts.WithLabelValues("gave_up").Inc()
	slog.Error("Reconnect budget exhausted, giving up",
		"attempts", attempts,
		"max_attempts", m.maxAttempts,
	)
	return true
}

// Reconnect dials once regardless of the exhausted budget. On success the
// attempt count is reset.
func (m *Manager) Reconnect(ctx context.Context) error {
	if m.closed.Load() {
		return ErrManagerClosed
	}
	if !m.attempting.CompareAndSwap(false, true) {
		return ErrReconnectInProgress
	}
	defer m.attempting.Store(false)

	slog.Info("Manual reconnect requested", "attempt_count", m.attemptCount.Load())

	conn, err := m.dial(ctx)
	if err != nil {
		metrics.DBReconnectAttempts.WithLabelValues("failure").Inc()
		slog.Error("Manual reconnect failed", "error", err)
		return err
	}

	m.destroy()
	m.install(conn)
	m.attemptCount.Store(0)
	m.gaveUp.Store(false)
	metrics.DBReconnectAttempts.WithLabelValues("success").Inc()
	metrics.DBReconnectFailures.Set(0)
	slog.Info("Database connection re-established")
	return nil
}

// Health pings the current handle.
func (m *Manager) Health(ctx context.Context) error {
	conn := m.Conn()
	if conn == nil {
		return ErrNoConnection
	}
	return conn.PingContext(ctx)
}

// State returns a snapshot of the reconnect bookkeeping.
func (m *Manager) State() ReconnectState {
	return ReconnectState{
		Attempting:   m.attempting.Load(),
		AttemptCount: int(m.attemptCount.Load()),
		MaxAttempts:  m.maxAttempts,
		GaveUp:       m.gaveUp.Load(),
	}
}

// PoolStats returns the pool statistics of the current handle, if it
// exposes them.
func (m *Manager) PoolStats() (sql.DBStats, bool) {
	sp, ok := m.currentConn().(StatsProvider)
	if !ok {
		return sql.DBStats{}, false
	}
	return sp.Stats(), true
}

// Close stops the supervisor and closes the handle.
func (m *Manager) Close() error {
	var err error
	m.stopOnce.Do(func() {
		m.closed.Store(true)
		close(m.done)
		m.wg.Wait()

		m.mu.Lock()
		conn := m.conn
		m.conn = nil
		m.mu.Unlock()
		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}

// StartMetricsCollector starts a background goroutine to collect pool metrics.
func (m *Manager) StartMetricsCollector(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.DBReconnectFailures.Set(float64(m.attemptCount.Load()))

				stats, ok := m.PoolStats()
				if !ok {
					continue
				}
				// MaxOpenConnections is 0 when unlimited
				if stats.MaxOpenConnections > 0 {
					usage := float64(stats.OpenConnections) / float64(stats.MaxOpenConnections) * 100
					metrics.DBConnectionPoolUsage.Set(usage)
				}
			}
		}
	}()
}

func (m *Manager) currentConn() Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn
}

func (m *Manager) install(conn Conn) {
	m.mu.Lock()
	old := m.conn
	m.conn = conn
	m.mu.Unlock()
	if old != nil && old != conn {
		_ = old.Close()
	}
}

// destroy drops the current handle, ignoring close errors.
func (m *Manager) destroy() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()
	if conn != nil {
		if err := conn.Close(); err != nil {
			slog.Debug("Ignoring error while closing database handle", "error", err)
		}
	}
}
