package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"credshield/internal/resilience/failure"
)

const (
	perplexityBaseURL      = "https://api.perplexity.ai"
	perplexityProbeModel   = "sonar"
	perplexityProbeTimeout = 30 * time.Second
)

// PerplexityProbe verifies Perplexity API keys with a one-token chat
// completion. Perplexity has no official Go SDK, so the probe speaks its
// OpenAI-compatible HTTP API directly.
type PerplexityProbe struct {
	baseURL string
	client  *http.Client
}

// NewPerplexityProbe creates a probe for the Perplexity API.
func NewPerplexityProbe() *PerplexityProbe {
	return &PerplexityProbe{
		baseURL: perplexityBaseURL,
		client:  &http.Client{Timeout: perplexityProbeTimeout},
	}
}

// NewPerplexityProbeWithBaseURL creates a probe that targets a custom endpoint.
func NewPerplexityProbeWithBaseURL(baseURL string) *PerplexityProbe {
	probe := NewPerplexityProbe()
	probe.baseURL = baseURL
	return probe
}

type perplexityRequest struct {
	Model     string              `json:"model"`
	Messages  []perplexityMessage `json:"messages"`
	MaxTokens int                 `json:"max_tokens"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p *PerplexityProbe) Check(ctx context.Context, apiKey string) error {
	ctx, cancel := context.WithTimeout(ctx, perplexityProbeTimeout)
	defer cancel()

	body, err := json.Marshal(perplexityRequest{
		Model:     perplexityProbeModel,
		Messages:  []perplexityMessage{{Role: "user", Content: "ping"}},
		MaxTokens: 1,
	})
	if err != nil {
		return fmt.Errorf("perplexity probe: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("perplexity probe: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("perplexity probe: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &failure.StatusError{
			StatusCode: resp.StatusCode,
			Message:    "perplexity probe rejected",
		}
	}
	return nil
}
