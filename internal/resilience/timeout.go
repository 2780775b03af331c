package resilience

import (
	"context"
	"fmt"
	"time"
)

// ErrTimeout wraps the label of an operation that exceeded its deadline.
type ErrTimeout struct {
	Label   string
	Timeout time.Duration
}

// Error implements the error interface.
func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Label, e.Timeout)
}

// WithTimeout races fn against a timer and returns an *ErrTimeout when the
// timer wins. The underlying operation is NOT cancelled: it may still
// complete or hold resources after the timeout is reported, so callers must
// not assume it stopped. fn receives a context that is cancelled at the
// deadline for operations that do honor cancellation.
func WithTimeout(ctx context.Context, timeout time.Duration, label string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return &ErrTimeout{Label: label, Timeout: timeout}
	}
}
