// Package probe performs minimal authenticated calls against AI provider
// APIs to verify that a stored credential still works. Each probe spends as
// little quota as possible and maps provider failures onto
// failure.StatusError so the classifier can tell an invalid key from a
// rate limit or an outage.
package probe

import (
	"context"
	"fmt"

	"credshield/internal/domain/entity"
)

// Prober verifies one provider credential with a live API call.
// The plaintext key is passed per call and must never be retained.
type Prober interface {
	// Check returns nil when the key authenticates successfully. Provider
	// rejections surface as failure.StatusError; transport problems pass
	// through unchanged for classification.
	Check(ctx context.Context, apiKey string) error
}

// ForProvider returns the prober for the given provider.
func ForProvider(provider entity.Provider) (Prober, error) {
	switch provider {
	case entity.ProviderAnthropic:
		return NewAnthropicProbe(), nil
	case entity.ProviderOpenAI:
		return NewOpenAIProbe(), nil
	case entity.ProviderPerplexity:
		return NewPerplexityProbe(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", entity.ErrInvalidInput, provider)
	}
}
