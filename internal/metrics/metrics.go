// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks API requests by route and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparki_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks API latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparki_http_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RateLimitRejects counts requests rejected by the rate limiter
	RateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sparki_http_rate_limit_rejects_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// PanicRecoveries counts handler panics turned into 500 responses
	PanicRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sparki_http_panic_recoveries_total",
			Help: "Total number of recovered handler panics",
		},
	)

	// DBQueryAttempts tracks every attempt issued by the query executor
	DBQueryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparki_db_query_attempts_total",
			Help: "Total number of query attempts",
		},
		[]string{"kind", "outcome"},
	)

	// DBQueryRetries tracks re-issued queries after a connection-lost error
	DBQueryRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparki_db_query_retries_total",
			Help: "Total number of query retries after connection loss",
		},
		[]string{"kind"},
	)

	// DBQueryDuration tracks the wall time of a logical query including retries
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparki_db_query_duration_seconds",
			Help:    "Query latency in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// DBReconnectAttempts tracks reconnect attempts by result
	DBReconnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparki_db_reconnect_attempts_total",
			Help: "Total number of database reconnect attempts",
		},
		[]string{"result"},
	)

	// DBReconnectFailures mirrors the manager's consecutive failed attempt count
	DBReconnectFailures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sparki_db_reconnect_consecutive_failures",
			Help: "Consecutive failed reconnect attempts since the last success",
		},
	)

	// DBConnectionPoolUsage tracks open connections as a share of the pool limit
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sparki_db_connection_pool_usage_percent",
			Help: "Open connections as a percentage of max open connections",
		},
	)

	// DirectoryCacheRequests tracks wholesaler directory cache lookups
	DirectoryCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparki_directory_cache_requests_total",
			Help: "Wholesaler directory cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	// OTPsPruned counts OTP codes cleared by the pruner
	OTPsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sparki_otps_pruned_total",
			Help: "Total number of expired OTP codes cleared",
		},
	)
)
