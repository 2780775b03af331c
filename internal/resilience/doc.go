// Package resilience provides reliability and fault tolerance patterns for
// calls made with stored provider credentials. It bundles per-service
// circuit breakers and token buckets behind an explicit Registry, retry
// logic with exponential backoff and jitter, error classification with a
// recoverable flag, bounded-concurrency batch execution, and a timeout
// wrapper.
//
// Call sites protect a provider call by nesting the primitives
// retrier → circuit breaker → rate limiter, which Registry.Call does in
// one step:
//
//	reg := resilience.NewRegistry(resilience.DefaultPolicies())
//	err := reg.Call(ctx, "anthropic", retry.ProviderAPIConfig(), func(ctx context.Context) error {
//	    return probeProvider(ctx)
//	})
//
// All breaker and bucket state is in-memory and per process; separate
// instances of the application do not share it.
package resilience
