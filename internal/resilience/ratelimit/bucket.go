// Package ratelimit provides per-service token-bucket admission control for
// calls to external services. Each named service owns an independent bucket
// refilled continuously at its configured rate; a call consumes one token or
// waits for one to accrue.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Config holds the token-bucket parameters for one service.
type Config struct {
	// Capacity is the maximum number of tokens the bucket holds. The
	// token count never exceeds it, regardless of how long refills run.
	Capacity int

	// RefillRate is the continuous refill rate in tokens per second.
	RefillRate float64
}

// DefaultConfig is a cautious bucket for services without an explicit entry.
func DefaultConfig() Config {
	return Config{Capacity: 10, RefillRate: 1.0}
}

// TokenBucket is the admission gate for one external service. It is safe
// for concurrent use; state is process-local and resets on restart.
type TokenBucket struct {
	limiter *rate.Limiter
	cfg     Config
}

// NewTokenBucket creates a bucket that starts full.
func NewTokenBucket(cfg Config) *TokenBucket {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	if cfg.RefillRate <= 0 {
		cfg.RefillRate = DefaultConfig().RefillRate
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(cfg.RefillRate), cfg.Capacity),
		cfg:     cfg,
	}
}

// WaitForToken consumes one token, returning immediately when one is
// available and otherwise blocking for approximately
// (1 - tokens) / refillRate seconds until one accrues. It returns early
// with the context's error on cancellation.
func (b *TokenBucket) WaitForToken(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// TryAcquire consumes one token without blocking and reports whether it
// succeeded.
func (b *TokenBucket) TryAcquire() bool {
	return b.limiter.Allow()
}

// Tokens returns the number of tokens currently available, capped at the
// configured capacity.
func (b *TokenBucket) Tokens() float64 {
	return b.limiter.TokensAt(time.Now())
}

// Capacity returns the configured bucket capacity.
func (b *TokenBucket) Capacity() int {
	return b.cfg.Capacity
}

// RefillRate returns the configured refill rate in tokens per second.
func (b *TokenBucket) RefillRate() float64 {
	return b.cfg.RefillRate
}
