package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"credshield/internal/resilience/failure"
)

const openaiProbeTimeout = 30 * time.Second

// OpenAIProbe verifies OpenAI API keys by listing models, which consumes no
// tokens.
type OpenAIProbe struct {
	baseURL string
}

// NewOpenAIProbe creates a probe for the OpenAI API.
func NewOpenAIProbe() *OpenAIProbe {
	return &OpenAIProbe{}
}

// NewOpenAIProbeWithBaseURL creates a probe that targets a custom endpoint.
func NewOpenAIProbeWithBaseURL(baseURL string) *OpenAIProbe {
	return &OpenAIProbe{baseURL: baseURL}
}

func (p *OpenAIProbe) Check(ctx context.Context, apiKey string) error {
	ctx, cancel := context.WithTimeout(ctx, openaiProbeTimeout)
	defer cancel()

	cfg := openai.DefaultConfig(apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	client := openai.NewClientWithConfig(cfg)

	if _, err := client.ListModels(ctx); err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return &failure.StatusError{
				StatusCode: apiErr.HTTPStatusCode,
				Message:    "openai probe rejected",
			}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return &failure.StatusError{
				StatusCode: reqErr.HTTPStatusCode,
				Message:    "openai probe rejected",
			}
		}
		return fmt.Errorf("openai probe: %w", err)
	}
	return nil
}
