package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"credshield/internal/resilience/failure"
)

const (
	// Cheapest available model: probes spend one output token.
	anthropicProbeModel     = "claude-3-5-haiku-latest"
	anthropicProbeMaxTokens = 1
	anthropicProbeTimeout   = 30 * time.Second
)

// AnthropicProbe verifies Anthropic API keys with a one-token message call.
type AnthropicProbe struct {
	opts []option.RequestOption
}

// NewAnthropicProbe creates a probe for the Anthropic API. Extra request
// options are appended after the API key, so tests can redirect the base URL.
func NewAnthropicProbe(opts ...option.RequestOption) *AnthropicProbe {
	return &AnthropicProbe{opts: opts}
}

func (p *AnthropicProbe) Check(ctx context.Context, apiKey string) error {
	ctx, cancel := context.WithTimeout(ctx, anthropicProbeTimeout)
	defer cancel()

	opts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, p.opts...)
	client := anthropic.NewClient(opts...)

	_, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(anthropicProbeModel),
		MaxTokens: anthropicProbeMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock("ping"),
			),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return &failure.StatusError{
				StatusCode: apiErr.StatusCode,
				Message:    "anthropic probe rejected",
			}
		}
		return fmt.Errorf("anthropic probe: %w", err)
	}
	return nil
}
