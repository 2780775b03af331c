package failure

import (
	"context"
	"log/slog"
)

// Strategy is an alternate code path tried after retries have exhausted,
// for example falling back to a cached response or a degraded feature.
type Strategy func(ctx context.Context) error

// Recover runs the supplied strategies in order and returns nil on the
// first success. If every strategy fails (or none are supplied), the
// original classified error is returned.
func Recover(ctx context.Context, cause *Classified, strategies ...Strategy) error {
	for i, strategy := range strategies {
		if err := strategy(ctx); err != nil {
			slog.Warn("recovery strategy failed",
				slog.String("operation", cause.Op),
				slog.String("kind", string(cause.Kind)),
				slog.Int("strategy", i+1),
				slog.Any("error", err))
			continue
		}
		slog.Info("recovery strategy succeeded",
			slog.String("operation", cause.Op),
			slog.Int("strategy", i+1))
		return nil
	}
	return cause
}
