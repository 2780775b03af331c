// Package observability provides production-grade observability infrastructure
// including structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//   - tracing: OpenTelemetry tracing integration
//
// Example usage:
//
//	import (
//	    "credshield/internal/observability/logging"
//	    "credshield/internal/observability/metrics"
//	)
//
//	func checkCredential(ctx context.Context) {
//	    logger := logging.FromContext(ctx)
//	    logger.Info("probing credential")
//	    metrics.RecordHealthCheck("anthropic", true, elapsed)
//	}
package observability
