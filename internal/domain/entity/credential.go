package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Provider identifies a third-party API vendor a credential belongs to.
// The set is closed: persistence and probes only know these values.
type Provider string

const (
	// ProviderAnthropic is the Anthropic messages API.
	ProviderAnthropic Provider = "anthropic"
	// ProviderOpenAI is the OpenAI API.
	ProviderOpenAI Provider = "openai"
	// ProviderPerplexity is the Perplexity chat completions API.
	ProviderPerplexity Provider = "perplexity"
)

// Providers lists every supported provider in a stable order.
func Providers() []Provider {
	return []Provider{ProviderAnthropic, ProviderOpenAI, ProviderPerplexity}
}

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderAnthropic, ProviderOpenAI, ProviderPerplexity:
		return true
	}
	return false
}

// HealthStatus classifies a credential's recent reliability.
// It is derived from the consecutive-failure counter and is never set
// independently of it except by explicit external override.
type HealthStatus string

const (
	// HealthUnknown is the state of a credential that has never been probed,
	// including freshly registered and freshly rotated credentials.
	HealthUnknown HealthStatus = "unknown"
	// HealthHealthy means the last probe succeeded.
	HealthHealthy HealthStatus = "healthy"
	// HealthWarning means exactly one consecutive probe failure.
	HealthWarning HealthStatus = "warning"
	// HealthUnhealthy means two consecutive probe failures.
	HealthUnhealthy HealthStatus = "unhealthy"
	// HealthCritical means three or more consecutive probe failures.
	// Critical credentials are skipped by the selector until no alternative remains.
	HealthCritical HealthStatus = "critical"
)

// HealthStatusForFailures maps a consecutive-failure count to the status a
// credential must carry after a failed probe. Zero maps to healthy, which is
// the post-success state; a never-probed credential is HealthUnknown instead.
func HealthStatusForFailures(failures int) HealthStatus {
	switch {
	case failures <= 0:
		return HealthHealthy
	case failures == 1:
		return HealthWarning
	case failures == 2:
		return HealthUnhealthy
	default:
		return HealthCritical
	}
}

// Credential is one stored secret for one (owner, provider) pair, with
// routing flags and derived health metadata. The secret is held only as
// ciphertext; plaintext exists transiently in the selector and probes.
type Credential struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	Provider         Provider
	DisplayName      string
	SecretCiphertext string

	IsPrimary bool
	IsActive  bool

	HealthStatus        HealthStatus
	ConsecutiveFailures int
	LastHealthCheck     *time.Time
	LastErrorMessage    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCredential builds a credential in its registration state: health
// unknown, zero failures, active, non-primary.
func NewCredential(ownerID uuid.UUID, provider Provider, displayName, ciphertext string) (*Credential, error) {
	if !provider.Valid() {
		return nil, &ValidationError{Field: "provider", Message: fmt.Sprintf("unsupported provider %q", provider)}
	}
	if displayName == "" {
		return nil, &ValidationError{Field: "display_name", Message: "must not be empty"}
	}
	if ciphertext == "" {
		return nil, &ValidationError{Field: "secret_ciphertext", Message: "must not be empty"}
	}

	now := time.Now().UTC()
	return &Credential{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		Provider:         provider,
		DisplayName:      displayName,
		SecretCiphertext: ciphertext,
		IsActive:         true,
		HealthStatus:     HealthUnknown,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// ApplyProbeSuccess records a successful connectivity probe: status becomes
// healthy, the failure counter resets, and the stored error message clears.
func (c *Credential) ApplyProbeSuccess(at time.Time) {
	c.HealthStatus = HealthHealthy
	c.ConsecutiveFailures = 0
	c.LastHealthCheck = &at
	c.LastErrorMessage = nil
	c.UpdatedAt = at
}

// ApplyProbeFailure records a failed connectivity probe: the failure counter
// increments and the status is re-derived from the new count.
func (c *Credential) ApplyProbeFailure(at time.Time, message string) {
	c.ConsecutiveFailures++
	c.HealthStatus = HealthStatusForFailures(c.ConsecutiveFailures)
	c.LastHealthCheck = &at
	c.LastErrorMessage = &message
	c.UpdatedAt = at
}

// ApplyRotation records a secret rotation: the new ciphertext replaces the
// old one and health returns to the registration state.
func (c *Credential) ApplyRotation(at time.Time, ciphertext string) {
	c.SecretCiphertext = ciphertext
	c.HealthStatus = HealthUnknown
	c.ConsecutiveFailures = 0
	c.LastHealthCheck = nil
	c.LastErrorMessage = nil
	c.UpdatedAt = at
}
