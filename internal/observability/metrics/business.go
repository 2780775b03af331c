package metrics

import (
	"time"
)

// RecordHealthCheck records the outcome and duration of one credential probe.
// Status should be either "success" or "failure".
func RecordHealthCheck(provider string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	HealthChecksTotal.WithLabelValues(provider, result).Inc()
	HealthCheckDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordFailoverSelection records which tier served a credential selection.
// Tier is one of "primary", "backup", or "last_resort".
func RecordFailoverSelection(provider, tier string) {
	FailoverSelectionsTotal.WithLabelValues(provider, tier).Inc()
}

// RecordNoUsableCredential records a selection that exhausted every tier.
func RecordNoUsableCredential(provider string) {
	NoUsableCredentialTotal.WithLabelValues(provider).Inc()
}

// UpdateCredentialsByStatus updates the per-status credential gauge.
// This should be called after each batch health run with fresh counts.
func UpdateCredentialsByStatus(provider, status string, count int) {
	CredentialsByStatus.WithLabelValues(provider, status).Set(float64(count))
}

// UpdateBreakerOpen reflects a service breaker's current state.
func UpdateBreakerOpen(service string, open bool) {
	value := 0.0
	if open {
		value = 1.0
	}
	BreakerOpen.WithLabelValues(service).Set(value)
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_credentials", "update_health").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
