package resilience

import (
	"context"
	"sync"

	"credshield/internal/resilience/circuitbreaker"
	"credshield/internal/resilience/ratelimit"
	"credshield/internal/resilience/retry"
)

// ServicePolicy bundles the circuit breaker and token bucket settings for
// one named external service.
type ServicePolicy struct {
	Breaker circuitbreaker.Config
	Bucket  ratelimit.Config
}

// DefaultPolicies returns the built-in per-provider policies: a cautious
// bucket for anthropic and perplexity, a looser one for openai.
func DefaultPolicies() map[string]ServicePolicy {
	return map[string]ServicePolicy{
		"anthropic": {
			Breaker: circuitbreaker.DefaultConfig("anthropic"),
			Bucket:  ratelimit.Config{Capacity: 10, RefillRate: 1.0},
		},
		"openai": {
			Breaker: circuitbreaker.DefaultConfig("openai"),
			Bucket:  ratelimit.Config{Capacity: 20, RefillRate: 2.0},
		},
		"perplexity": {
			Breaker: circuitbreaker.DefaultConfig("perplexity"),
			Bucket:  ratelimit.Config{Capacity: 10, RefillRate: 1.0},
		},
	}
}

// Registry owns the per-service circuit breakers and token buckets.
// It replaces module-global singleton maps: construct one at process start
// and pass it to every call site. Instances are created lazily per service
// name and live until process exit; services never share state, and all
// state is process-local (multiple instances of this subsystem each keep
// their own registry — a documented limitation, not a defect).
type Registry struct {
	policies map[string]ServicePolicy

	mu       sync.Mutex
	breakers map[string]*circuitbreaker.CircuitBreaker
	buckets  map[string]*ratelimit.TokenBucket
}

// NewRegistry creates a registry with the given per-service policies.
// Services missing from the map fall back to defaults.
func NewRegistry(policies map[string]ServicePolicy) *Registry {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &Registry{
		policies: policies,
		breakers: make(map[string]*circuitbreaker.CircuitBreaker),
		buckets:  make(map[string]*ratelimit.TokenBucket),
	}
}

// Breaker returns the circuit breaker for the named service, creating it
// on first use.
func (r *Registry) Breaker(service string) *circuitbreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[service]; ok {
		return cb
	}

	cfg := circuitbreaker.DefaultConfig(service)
	if policy, ok := r.policies[service]; ok {
		cfg = policy.Breaker
		if cfg.Name == "" {
			cfg.Name = service
		}
	}
	cb := circuitbreaker.New(cfg)
	r.breakers[service] = cb
	return cb
}

// Bucket returns the token bucket for the named service, creating it on
// first use.
func (r *Registry) Bucket(service string) *ratelimit.TokenBucket {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.buckets[service]; ok {
		return b
	}

	cfg := ratelimit.DefaultConfig()
	if policy, ok := r.policies[service]; ok && policy.Bucket.Capacity > 0 {
		cfg = policy.Bucket
	}
	b := ratelimit.NewTokenBucket(cfg)
	r.buckets[service] = b
	return b
}

// Call runs fn against the named service with the full protection stack:
// the retrier wraps the circuit breaker, which wraps rate-limit admission,
// which wraps the call itself.
func (r *Registry) Call(ctx context.Context, service string, cfg retry.Config, fn func(context.Context) error) error {
	breaker := r.Breaker(service)
	bucket := r.Bucket(service)

	return retry.WithBackoff(ctx, cfg, service, func() error {
		return breaker.Execute(func() error {
			if err := bucket.WaitForToken(ctx); err != nil {
				return err
			}
			return fn(ctx)
		})
	})
}
