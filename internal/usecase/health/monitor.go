// Package health runs connectivity checks against stored credentials and
// keeps their health state machines current. A check decrypts the secret,
// probes the provider with it, and persists the transition: success resets
// the credential to healthy, failure advances it warning → unhealthy →
// critical by consecutive-failure count.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"credshield/internal/domain/entity"
	"credshield/internal/observability/metrics"
	"credshield/internal/observability/tracing"
	"credshield/internal/repository"
	"credshield/internal/resilience"
	"credshield/internal/resilience/failure"
	"credshield/internal/resilience/parallel"
	"credshield/internal/secret"
)

const (
	// defaultConcurrency bounds parallel probes in a batch run.
	defaultConcurrency = 5

	// maxStoredErrorLen caps the persisted error message.
	maxStoredErrorLen = 500
)

// Prober verifies one provider credential with a live call.
type Prober interface {
	Check(ctx context.Context, apiKey string) error
}

// ProbeResolver returns the prober for a provider.
type ProbeResolver func(entity.Provider) (Prober, error)

// CheckResult is the outcome of one credential health check.
type CheckResult struct {
	CredentialID uuid.UUID
	Provider     entity.Provider
	Healthy      bool
	Status       entity.HealthStatus
	ResponseTime time.Duration
	Err          error
}

// Summary aggregates a batch health run.
type Summary struct {
	Total    int
	Healthy  int
	Failed   int
	ByStatus map[entity.HealthStatus]int
	Duration time.Duration
}

// Monitor runs health checks over stored credentials.
//
// Probes deliberately bypass the circuit breakers: a probe IS the health
// measurement, and refusing to measure a struggling provider would freeze
// the very state the breaker feeds on. They do respect the per-service rate
// limiter when a Registry is configured, so batch runs cannot hammer a
// provider.
type Monitor struct {
	Repo        repository.CredentialRepository
	Secrets     *secret.Store
	Probes      ProbeResolver
	Limits      *resilience.Registry
	Concurrency int
}

// HealthCheck probes the credential by id and persists the resulting health
// transition. The returned result carries the classified probe error on
// failure; the call itself errs only when the credential cannot be loaded or
// the new state cannot be stored.
func (m *Monitor) HealthCheck(ctx context.Context, id uuid.UUID) (*CheckResult, error) {
	cred, err := m.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return m.check(ctx, cred)
}

// HealthCheckAll probes every active credential, optionally scoped to one
// owner, with bounded concurrency. One credential's failure never aborts the
// batch; the summary counts both outcomes.
func (m *Monitor) HealthCheckAll(ctx context.Context, ownerID *uuid.UUID) (*Summary, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "health.check_all")
	defer span.End()

	start := time.Now()

	creds, err := m.Repo.ListActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("health check all: %w", err)
	}
	span.SetAttributes(attribute.Int("credentials", len(creds)))

	concurrency := m.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	results := parallel.Process(ctx, creds, concurrency,
		func(ctx context.Context, cred *entity.Credential) (*CheckResult, error) {
			return m.check(ctx, cred)
		})

	summary := &Summary{ByStatus: map[entity.HealthStatus]int{}}
	statusCounts := map[entity.Provider]map[entity.HealthStatus]int{}
	for i, r := range results {
		summary.Total++
		if r.Err != nil || r.Value == nil {
			// Load or persistence failure; the probe outcome is unknown.
			summary.Failed++
			slog.WarnContext(ctx, "health check did not complete",
				slog.String("credential_id", creds[i].ID.String()),
				slog.String("error", fmt.Sprint(r.Err)))
			continue
		}
		if r.Value.Healthy {
			summary.Healthy++
		} else {
			summary.Failed++
		}
		summary.ByStatus[r.Value.Status]++

		if statusCounts[r.Value.Provider] == nil {
			statusCounts[r.Value.Provider] = map[entity.HealthStatus]int{}
		}
		statusCounts[r.Value.Provider][r.Value.Status]++
	}
	summary.Duration = time.Since(start)

	for provider, counts := range statusCounts {
		for status, count := range counts {
			metrics.UpdateCredentialsByStatus(string(provider), string(status), count)
		}
	}

	slog.InfoContext(ctx, "health check batch finished",
		slog.Int("total", summary.Total),
		slog.Int("healthy", summary.Healthy),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", summary.Duration))
	return summary, nil
}

// check probes one credential and persists the transition.
func (m *Monitor) check(ctx context.Context, cred *entity.Credential) (*CheckResult, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "health.check")
	span.SetAttributes(
		attribute.String("credential_id", cred.ID.String()),
		attribute.String("provider", string(cred.Provider)),
	)
	defer span.End()

	result := &CheckResult{
		CredentialID: cred.ID,
		Provider:     cred.Provider,
	}

	probeErr := m.probe(ctx, cred, result)

	now := time.Now().UTC()
	if probeErr == nil {
		cred.ApplyProbeSuccess(now)
		result.Healthy = true
	} else {
		classified := failure.Classify(probeErr, "probe."+string(cred.Provider))
		cred.ApplyProbeFailure(now, truncate(classified.Error(), maxStoredErrorLen))
		result.Err = classified

		slog.WarnContext(ctx, "credential health check failed",
			slog.String("credential_id", cred.ID.String()),
			slog.String("provider", string(cred.Provider)),
			slog.String("kind", string(classified.Kind)),
			slog.String("status", string(cred.HealthStatus)),
			slog.Int("consecutive_failures", cred.ConsecutiveFailures))
	}
	result.Status = cred.HealthStatus

	metrics.RecordHealthCheck(string(cred.Provider), probeErr == nil, result.ResponseTime)

	if err := m.Repo.UpdateHealth(ctx, cred); err != nil {
		return nil, fmt.Errorf("persist health state: %w", err)
	}
	return result, nil
}

// probe decrypts the secret and runs the provider call, timing it.
func (m *Monitor) probe(ctx context.Context, cred *entity.Credential, result *CheckResult) error {
	key, err := m.Secrets.Decrypt(cred.SecretCiphertext)
	if err != nil {
		return fmt.Errorf("credential unusable: %w", err)
	}

	prober, err := m.Probes(cred.Provider)
	if err != nil {
		return err
	}

	if m.Limits != nil {
		if err := m.Limits.Bucket(string(cred.Provider)).WaitForToken(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()
	err = prober.Check(ctx, key)
	result.ResponseTime = time.Since(start)
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
