package health

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/vietddude/sparki/internal/infra/storage/postgres"
)

// Database is the view of the connection manager the monitor needs.
// *postgres.Manager implements it.
type Database interface {
	Health(ctx context.Context) error
	State() postgres.ReconnectState
	PoolStats() (sql.DBStats, bool)
	Reconnect(ctx context.Context) error
}

// Monitor aggregates health status from the database connection manager.
type Monitor struct {
	db       Database
	cacheFor time.Duration
	timeout  time.Duration

	mu         sync.Mutex
	lastCheck  time.Time
	lastReport *Report
}

// NewMonitor creates a new health monitor. Reports are reused for cacheFor
// so probes do not ping the database on every request.
func NewMonitor(db Database, cacheFor time.Duration) *Monitor {
	return &Monitor{
		db:       db,
		cacheFor: cacheFor,
		timeout:  3 * time.Second,
	}
}

// CheckHealth pings the database and evaluates the reconnect state.
func (m *Monitor) CheckHealth(ctx context.Context) Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastReport != nil && time.Since(m.lastCheck) < m.cacheFor {
		return *m.lastReport
	}

	report := Report{Database: m.checkDatabase(ctx)}
	report.SystemStatus = report.Database.Status

	m.lastCheck = time.Now()
	m.lastReport = &report
	return report
}

func (m *Monitor) checkDatabase(ctx context.Context) DatabaseHealth {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	health := DatabaseHealth{Status: StatusHealthy}
	pingErr := m.db.Health(ctx)
	health.Reachable = pingErr == nil
	if pingErr != nil {
		health.Error = pingErr.Error()
	}
	health.Reconnect = m.db.State()

	if stats, ok := m.db.PoolStats(); ok {
		health.Pool = &PoolStats{
			MaxOpen: stats.MaxOpenConnections,
			Open:    stats.OpenConnections,
			InUse:   stats.InUse,
			Idle:    stats.Idle,
		}
	}

	// Evaluate status
	switch {
	case !health.Reachable || health.Reconnect.GaveUp:
		health.Status = StatusCritical
	case health.Reconnect.Attempting || health.Reconnect.AttemptCount > 0:
		health.Status = StatusDegraded
	}
	return health
}

// Reconnect forces a reconnect and drops the cached report.
func (m *Monitor) Reconnect(ctx context.Context) error {
	err := m.db.Reconnect(ctx)
	m.mu.Lock()
	m.lastReport = nil
	m.mu.Unlock()
	return err
}
