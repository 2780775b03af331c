// Package parallel executes batches of independent operations with a
// concurrency ceiling while preserving input order in the results.
package parallel

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Result holds the outcome of one item's processor. Exactly one of Value
// and Err is meaningful.
type Result[R any] struct {
	Value R
	Err   error
}

// Process runs fn over every item with at most concurrency operations in
// flight at once. Each result lands at its item's original index, so the
// output order matches the input order regardless of completion order. A
// failing item records its error in its slot and never aborts the batch;
// Process returns only when every item has settled.
//
// A concurrency limit below 1 is treated as 1.
func Process[T, R any](ctx context.Context, items []T, concurrency int, fn func(context.Context, T) (R, error)) []Result[R] {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result[R], len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result[R]{Err: fmt.Errorf("skipped: %w", err)}
				return nil
			}
			value, err := fn(ctx, item)
			results[i] = Result[R]{Value: value, Err: err}
			return nil
		})
	}

	// Workers never return errors, so Wait only synchronizes completion.
	_ = g.Wait()
	return results
}
