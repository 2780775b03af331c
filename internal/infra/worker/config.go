package worker

import (
	"fmt"
	"log/slog"
	"time"

	"credshield/internal/pkg/config"
)

// WorkerConfig holds the configuration for the health-check worker.
// It controls the cron schedule, timezone, probe concurrency and timeout,
// and the port of the liveness/readiness HTTP server.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have defaults and validation rules so the worker can operate
// safely even with invalid or missing configuration.
type WorkerConfig struct {
	// CronSchedule is the cron expression for the periodic health-check run.
	// Format: "minute hour day month weekday"
	// Example: "*/5 * * * *" (every five minutes)
	// Default: "*/5 * * * *"
	CronSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Example: "UTC", "Asia/Tokyo", "America/New_York"
	// Default: "UTC"
	Timezone string

	// ProbeConcurrency is the maximum number of credentials probed in
	// parallel during a batch run.
	// Range: 1-50
	// Default: 5
	ProbeConcurrency int

	// ProbeTimeout is the maximum duration for one full batch run. After
	// this timeout the run's context is cancelled and in-flight probes
	// abort.
	// Default: 2 minutes
	ProbeTimeout time.Duration

	// HealthPort is the port number for the liveness/readiness HTTP server.
	// Range: 1024-65535 (avoid privileged ports)
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production-ready default values:
// probe every five minutes in UTC, five parallel probes, a two-minute cap per
// batch, and the readiness server on 9091.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:     "*/5 * * * *",
		Timezone:         "UTC",
		ProbeConcurrency: 5,
		ProbeTimeout:     2 * time.Minute,
		HealthPort:       9091,
	}
}

// Validate checks the configuration values using the reusable validators from
// internal/pkg/config. If multiple fields are invalid, all errors are
// collected and returned together.
//
// Validation rules:
//   - CronSchedule: valid cron expression (validated by the robfig/cron parser)
//   - Timezone: valid IANA timezone name (validated by time.LoadLocation)
//   - ProbeConcurrency: between 1 and 50 (inclusive)
//   - ProbeTimeout: positive (> 0)
//   - HealthPort: between 1024 and 65535
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errors = append(errors, fmt.Errorf("cron schedule: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidateIntRange(c.ProbeConcurrency, 1, 50); err != nil {
		errors = append(errors, fmt.Errorf("probe concurrency: %w", err))
	}

	if err := config.ValidatePositiveDuration(c.ProbeTimeout); err != nil {
		errors = append(errors, fmt.Errorf("probe timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to default values on failure.
//
// This function implements the fail-open strategy:
//  1. Start with DefaultConfig() as base
//  2. Load each field from environment variables
//  3. Validate each loaded value
//  4. If validation fails: use default value, log warning, increment metrics
//  5. Never return error - always return a valid configuration
//
// Environment variables:
//   - HEALTH_CRON_SCHEDULE: Cron expression (default: "*/5 * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - PROBE_CONCURRENCY: Integer 1-50 (default: 5)
//   - PROBE_TIMEOUT: Duration string, e.g. "2m" (default: 2 minutes)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//
// Metrics updated:
//   - ValidationErrorsTotal: Incremented for each validation failure
//   - FallbacksTotal: Incremented for each fallback applied
//   - FallbackActive: Set to 1 if any fallback is active, 0 otherwise
//   - LoadTimestamp: Set to current time after successful load
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvWithFallback("HEALTH_CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("cron_schedule")
		metrics.RecordFallback("cron_schedule", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "CronSchedule"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("timezone")
		metrics.RecordFallback("timezone", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "Timezone"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("PROBE_CONCURRENCY", cfg.ProbeConcurrency, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.ProbeConcurrency = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("probe_concurrency")
		metrics.RecordFallback("probe_concurrency", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "ProbeConcurrency"),
				slog.String("warning", warning))
		}
	}

	// Batch timeout bounded to 10s-30m; probes are short calls.
	result = config.LoadEnvDuration("PROBE_TIMEOUT", cfg.ProbeTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 10*time.Second, 30*time.Minute)
	})
	cfg.ProbeTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("probe_timeout")
		metrics.RecordFallback("probe_timeout", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "ProbeTimeout"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "HealthPort"),
				slog.String("warning", warning))
		}
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return valid config (fail-open strategy)
	return &cfg, nil
}
