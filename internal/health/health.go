// Package health provides system health monitoring and status reporting.
package health

import (
	"github.com/vietddude/sparki/internal/infra/storage/postgres"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// PoolStats is the subset of the connection pool statistics worth reporting.
type PoolStats struct {
	MaxOpen int `json:"max_open"`
	Open    int `json:"open"`
	InUse   int `json:"in_use"`
	Idle    int `json:"idle"`
}

// DatabaseHealth contains the health of the database connection.
type DatabaseHealth struct {
	Status    SystemStatus            `json:"status"`
	Reachable bool                    `json:"reachable"`
	Error     string                  `json:"error,omitempty"`
	Reconnect postgres.ReconnectState `json:"reconnect"`
	Pool      *PoolStats              `json:"pool,omitempty"`
}

// Report contains the full system health report.
type Report struct {
	SystemStatus SystemStatus   `json:"system_status"`
	Database     DatabaseHealth `json:"database"`
}
