// Package retry provides retry logic with exponential backoff and jitter.
// It helps handle transient failures gracefully by automatically retrying
// failed operations, with a pluggable predicate deciding which errors are
// worth another attempt.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// jitterFraction is the upper bound of the random addition to each delay,
// as a fraction of the computed delay. Jitter is drawn uniformly from
// [0, jitterFraction*delay) to avoid synchronized retry storms.
const jitterFraction = 0.3

// Condition decides whether an error is worth retrying. Returning false
// aborts the retry loop immediately and rethrows the error.
type Condition func(error) bool

// Config holds the configuration for retry logic.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt,
	// so an operation runs at most MaxRetries+1 times.
	MaxRetries int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the exponential delay between retries (before jitter).
	MaxDelay time.Duration

	// Multiplier is the multiplier for exponential backoff.
	Multiplier float64

	// RetryCondition gates each retry. When nil, every error is retried
	// until MaxRetries is exhausted.
	RetryCondition Condition
}

// ProviderAPIConfig returns configuration for third-party provider calls.
// Moderate retry due to cost and provider-side rate limits.
func ProviderAPIConfig() Config {
	return Config{
		MaxRetries:     3,
		BaseDelay:      2 * time.Second,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		RetryCondition: ConditionFor(ClassProviderAPI),
	}
}

// DatastoreConfig returns configuration for database operations.
// Fast retry for transient connection issues.
func DatastoreConfig() Config {
	return Config{
		MaxRetries:     3,
		BaseDelay:      100 * time.Millisecond,
		MaxDelay:       1 * time.Second,
		Multiplier:     2.0,
		RetryCondition: ConditionFor(ClassDatastore),
	}
}

// FileIOConfig returns configuration for local file operations.
func FileIOConfig() Config {
	return Config{
		MaxRetries:     2,
		BaseDelay:      50 * time.Millisecond,
		MaxDelay:       500 * time.Millisecond,
		Multiplier:     2.0,
		RetryCondition: ConditionFor(ClassFileIO),
	}
}

// WithBackoff executes fn with retry logic and exponential backoff.
// fn runs at most cfg.MaxRetries+1 times. After a failure the loop sleeps
// min(BaseDelay*Multiplier^attempt, MaxDelay) plus uniform jitter, unless
// the retry condition rejects the error, in which case the error is
// rethrown immediately. The sleep is the only suspension point; fn always
// runs to completion before the next decision.
func WithBackoff(ctx context.Context, cfg Config, label string, fn func() error) error {
	var lastErr error

	for attempt := 0; ; attempt++ {
		lastErr = fn()

		if lastErr == nil {
			if attempt > 0 {
				slog.Info("operation succeeded after retry",
					slog.String("operation", label),
					slog.Int("attempt", attempt+1))
			}
			return nil
		}

		if attempt == cfg.MaxRetries {
			break
		}

		if cfg.RetryCondition != nil && !cfg.RetryCondition(lastErr) {
			slog.Warn("non-retryable error, aborting",
				slog.String("operation", label),
				slog.Int("attempt", attempt+1),
				slog.Any("error", lastErr))
			return lastErr
		}

		delay := Delay(cfg, attempt)
		slog.Warn("operation failed, retrying",
			slog.String("operation", label),
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", cfg.MaxRetries+1),
			slog.Duration("delay", delay),
			slog.Any("error", lastErr))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxRetries+1, lastErr)
}

// Delay returns the sleep duration before the retry following the given
// zero-based attempt: min(BaseDelay*Multiplier^attempt, MaxDelay) plus
// uniform jitter in [0, 0.3*delay).
func Delay(cfg Config, attempt int) time.Duration {
	backoff := float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt))
	if max := float64(cfg.MaxDelay); backoff > max {
		backoff = max
	}

	// #nosec G404 -- math/rand is acceptable for jitter; cryptographic
	// randomness is not required for backoff spacing.
	jitter := rand.Float64() * jitterFraction * backoff
	return time.Duration(backoff + jitter)
}
