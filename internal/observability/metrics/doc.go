// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Health check metrics (probe outcomes, durations, per-status counts)
//   - Failover metrics (selections by tier, exhausted selections)
//   - Resilience metrics (circuit breaker state)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the worker's /metrics endpoint.
//
// Example usage:
//
//	import "credshield/internal/observability/metrics"
//
//	func probeCredential(provider string) {
//	    start := time.Now()
//	    err := doProbe()
//	    metrics.RecordHealthCheck(provider, err == nil, time.Since(start))
//	}
package metrics
