// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Health check metrics track probe outcomes and latency per provider
var (
	// HealthChecksTotal counts credential health checks by provider and result
	HealthChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credential_health_checks_total",
			Help: "Total number of credential health checks",
		},
		[]string{"provider", "result"}, // result: success, failure
	)

	// HealthCheckDuration measures probe round-trip time per provider
	HealthCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "credential_health_check_duration_seconds",
			Help:    "Credential probe round-trip time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"provider"},
	)

	// CredentialsByStatus tracks how many active credentials sit in each
	// health state. Updated after every batch health run.
	CredentialsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "credentials_by_status",
			Help: "Number of active credentials per provider and health status",
		},
		[]string{"provider", "status"},
	)
)

// Failover metrics track which tier served each credential selection
var (
	// FailoverSelectionsTotal counts credential selections by tier
	FailoverSelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credential_failover_selections_total",
			Help: "Total number of credential selections by failover tier",
		},
		[]string{"provider", "tier"}, // tier: primary, backup, last_resort
	)

	// NoUsableCredentialTotal counts selections that found nothing usable
	NoUsableCredentialTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credential_selection_exhausted_total",
			Help: "Total number of selections with no usable credential",
		},
		[]string{"provider"},
	)
)

// Resilience metrics expose breaker state per protected service
var (
	// BreakerOpen reports 1 while a service's circuit breaker is open
	BreakerOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_open",
			Help: "Whether the circuit breaker for a service is currently open",
		},
		[]string{"service"},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
