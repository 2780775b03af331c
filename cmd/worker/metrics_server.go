package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"credshield/internal/domain/entity"
	"credshield/internal/observability/tracing"
	"credshield/internal/resilience"
	"credshield/internal/resilience/circuitbreaker"
	"credshield/pkg/config"
)

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// BreakerHealthResponse reports the state of every circuit breaker the
// worker maintains.
type BreakerHealthResponse struct {
	Healthy  bool            `json:"healthy"`
	Breakers []BreakerStatus `json:"breakers"`
}

// BreakerStatus is the state of a single circuit breaker.
type BreakerStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Open  bool   `json:"open"`
}

// startMetricsServer starts the Prometheus metrics HTTP server.
// It runs in a separate goroutine and supports graceful shutdown via context.
//
// The server exposes the following endpoints:
//   - GET /metrics - Prometheus metrics endpoint (scraped by Prometheus server)
//   - GET /health - Simple liveness probe (always returns 200 OK)
//   - GET /health/breakers - Per-provider and database circuit breaker state
//
// Environment variables:
//   - METRICS_PORT: Port to listen on (default: 9090)
//
// Graceful shutdown:
//   - When ctx is canceled, the server gracefully shuts down within 5 seconds
//   - All in-flight requests are allowed to complete
//   - Shutdown errors are logged but do not block process termination
func startMetricsServer(ctx context.Context, logger *slog.Logger, limits *resilience.Registry, guardedDB *circuitbreaker.DBCircuitBreaker) *http.Server {
	port := getMetricsPort()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/health/breakers", breakerHealthHandler(limits, guardedDB))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      tracing.Middleware(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("metrics server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

// getMetricsPort retrieves the metrics server port from environment variable.
// Defaults to 9090 if not set or invalid.
func getMetricsPort() int {
	port := config.GetEnvInt("METRICS_PORT", 9090)
	if port <= 0 || port > 65535 {
		return 9090
	}
	return port
}

// healthHandler handles GET /health requests (liveness probe).
// Always returns 200 OK with {"status": "healthy"}.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
}

// breakerHealthHandler creates a handler for GET /health/breakers.
// Returns 200 OK while every circuit breaker is closed or half-open, and
// 503 Service Unavailable once any breaker is open.
func breakerHealthHandler(limits *resilience.Registry, guardedDB *circuitbreaker.DBCircuitBreaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		breakers := make([]BreakerStatus, 0, len(entity.Providers())+1)
		healthy := true

		for _, provider := range entity.Providers() {
			cb := limits.Breaker(string(provider))
			open := cb.IsOpen()
			breakers = append(breakers, BreakerStatus{
				Name:  string(provider),
				State: cb.State().String(),
				Open:  open,
			})
			if open {
				healthy = false
			}
		}

		dbOpen := guardedDB.IsOpen()
		dbState := "closed"
		if dbOpen {
			dbState = "open"
			healthy = false
		}
		breakers = append(breakers, BreakerStatus{Name: "database", State: dbState, Open: dbOpen})

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(BreakerHealthResponse{
			Healthy:  healthy,
			Breakers: breakers,
		})
	}
}
