// Package circuitbreaker provides a fail-fast gate for calls to external
// services. After a run of consecutive failures the circuit opens and
// callers are rejected immediately instead of waiting on a service that is
// already down; after a cool-down one trial call probes for recovery.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the circuit rejects a call without
// invoking the wrapped operation.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the current state of the circuit breaker.
type State int

const (
	// StateClosed indicates normal operation; calls execute and failures
	// are counted.
	StateClosed State = iota

	// StateOpen indicates the circuit is rejecting calls. The wrapped
	// operation is never invoked while open.
	StateOpen

	// StateHalfOpen indicates the cool-down elapsed and a single trial
	// call is probing for recovery.
	StateHalfOpen
)

// String returns a string representation of the circuit state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Clock provides time abstraction for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used outside tests.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name identifies the protected service in logs and metrics.
	Name string

	// Threshold is the number of recent consecutive failures that opens
	// the circuit. Default: 5.
	Threshold int

	// OpenTimeout is how long the circuit stays open before admitting a
	// half-open trial call. Default: 60 seconds.
	OpenTimeout time.Duration

	// MonitoringPeriod is the failure-count decay window: a failure more
	// than this long after the previous one restarts the count at 1.
	// Default: 2 minutes.
	MonitoringPeriod time.Duration

	// Clock provides time abstraction for testing. Default: SystemClock.
	Clock Clock
}

// DefaultConfig returns a default configuration for the named service.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		Threshold:        5,
		OpenTimeout:      60 * time.Second,
		MonitoringPeriod: 2 * time.Minute,
	}
}

// CircuitBreaker is a per-service fail-fast gate. Breakers for different
// services never share state; updates to one instance are serialized by its
// own mutex. State is process-local: multiple instances of this subsystem
// each keep an independent breaker per service.
type CircuitBreaker struct {
	config Config

	mu            sync.Mutex
	state         State
	failures      int
	lastFailure   time.Time
	openedAt      time.Time
	trialInFlight bool
}

// New creates a new circuit breaker with the given configuration,
// applying defaults for zero-valued fields.
func New(cfg Config) *CircuitBreaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	if cfg.MonitoringPeriod <= 0 {
		cfg.MonitoringPeriod = 2 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}

	return &CircuitBreaker{
		config: cfg,
		state:  StateClosed,
	}
}

// Execute runs fn through the circuit breaker.
//
// Behavior by state:
//   - Closed: fn executes; failures count toward the threshold, with the
//     count restarting at 1 when the previous failure is older than the
//     monitoring period.
//   - Open: fn is never invoked; ErrCircuitOpen is returned immediately.
//     Once the open timeout elapses the circuit moves to half-open and the
//     next call becomes the trial.
//   - Half-open: exactly one trial executes; concurrent callers are
//     rejected with ErrCircuitOpen. Trial success closes the circuit and
//     zeroes the count; trial failure reopens it and restamps the timeout.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn()
	cb.settle(err)
	return err
}

// admit decides whether the caller may run the wrapped operation,
// transitioning open→half-open when the cool-down has elapsed.
func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.config.Clock.Now()

	if cb.state == StateOpen {
		if now.Sub(cb.openedAt) <= cb.config.OpenTimeout {
			return ErrCircuitOpen
		}
		cb.transition(StateHalfOpen, now)
	}

	if cb.state == StateHalfOpen {
		if cb.trialInFlight {
			return ErrCircuitOpen
		}
		cb.trialInFlight = true
	}

	return nil
}

// settle records the outcome of an admitted call.
func (cb *CircuitBreaker) settle(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.config.Clock.Now()

	switch cb.state {
	case StateHalfOpen:
		cb.trialInFlight = false
		if err != nil {
			cb.openedAt = now
			cb.lastFailure = now
			cb.transition(StateOpen, now)
			return
		}
		cb.failures = 0
		cb.transition(StateClosed, now)

	case StateClosed:
		if err == nil {
			cb.failures = 0
			return
		}
		if !cb.lastFailure.IsZero() && now.Sub(cb.lastFailure) > cb.config.MonitoringPeriod {
			cb.failures = 1
		} else {
			cb.failures++
		}
		cb.lastFailure = now
		if cb.failures >= cb.config.Threshold {
			cb.openedAt = now
			cb.transition(StateOpen, now)
		}
	}
}

// transition changes state and logs it. Callers hold cb.mu.
func (cb *CircuitBreaker) transition(to State, now time.Time) {
	from := cb.state
	cb.state = to
	slog.Warn("circuit breaker state changed",
		slog.String("circuit", cb.config.Name),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.Int("failures", cb.failures),
		slog.Time("at", now))
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current consecutive-failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Name returns the name of the protected service.
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

// IsOpen returns true if the circuit breaker is in the open state.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

// Reset returns the circuit to closed with a zero failure count.
// Useful for tests and manual intervention.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.lastFailure = time.Time{}
	cb.openedAt = time.Time{}
	cb.trialInFlight = false
}
