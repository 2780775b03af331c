// Package tracing provides OpenTelemetry tracing integration.
//
// It exposes the application-wide tracer used for spans around health
// probes and batch runs, and an HTTP middleware that traces the worker's
// operational endpoints.
//
// Example usage:
//
//	import "credshield/internal/observability/tracing"
//
//	func runBatch(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "health.check_all")
//	    defer span.End()
//	    // ... run batch ...
//	}
package tracing
