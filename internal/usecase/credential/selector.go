package credential

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"credshield/internal/domain/entity"
	"credshield/internal/observability/metrics"
	"credshield/internal/repository"
	"credshield/internal/secret"
)

// Tier names the failover tier a selection came from.
type Tier string

const (
	// TierPrimary is the owner's designated primary credential.
	TierPrimary Tier = "primary"
	// TierBackup is a non-primary credential chosen by fewest failures.
	TierBackup Tier = "backup"
	// TierLastResort is a critical primary used because nothing else works.
	TierLastResort Tier = "last_resort"
)

// Selection is a usable credential with its decrypted key. The key must be
// used for the call at hand and discarded, never persisted or logged.
type Selection struct {
	Credential *entity.Credential
	APIKey     string
	Tier       Tier
}

// Selector picks the credential to use for an (owner, provider) call,
// walking the failover tiers in order.
type Selector struct {
	Repo    repository.CredentialRepository
	Secrets *secret.Store
}

// SelectActive returns the best usable credential for the pair:
//
//  1. the active primary, unless its health is critical
//  2. active backups, fewest consecutive failures first
//  3. the critical primary, as a last resort
//
// A credential whose ciphertext fails to decrypt is skipped and the walk
// continues. When every tier is exhausted the result is
// entity.ErrNoUsableCredential.
func (s *Selector) SelectActive(ctx context.Context, ownerID uuid.UUID, provider entity.Provider) (*Selection, error) {
	if !provider.Valid() {
		return nil, &entity.ValidationError{Field: "provider", Message: fmt.Sprintf("unsupported provider %q", provider)}
	}

	primary, err := s.Repo.GetActivePrimary(ctx, ownerID, provider)
	if err != nil {
		return nil, fmt.Errorf("select credential: %w", err)
	}

	if primary != nil && primary.HealthStatus != entity.HealthCritical {
		if key, err := s.Secrets.Decrypt(primary.SecretCiphertext); err == nil {
			metrics.RecordFailoverSelection(string(provider), string(TierPrimary))
			return &Selection{Credential: primary, APIKey: key, Tier: TierPrimary}, nil
		}
		slog.WarnContext(ctx, "primary credential ciphertext no longer decrypts, trying backups",
			slog.String("credential_id", primary.ID.String()),
			slog.String("provider", string(provider)))
	}

	backups, err := s.Repo.ListActiveBackups(ctx, ownerID, provider)
	if err != nil {
		return nil, fmt.Errorf("select credential: %w", err)
	}
	for _, backup := range backups {
		key, err := s.Secrets.Decrypt(backup.SecretCiphertext)
		if err != nil {
			slog.WarnContext(ctx, "backup credential ciphertext no longer decrypts, skipping",
				slog.String("credential_id", backup.ID.String()),
				slog.String("provider", string(provider)))
			continue
		}
		slog.InfoContext(ctx, "failing over to backup credential",
			slog.String("credential_id", backup.ID.String()),
			slog.String("provider", string(provider)),
			slog.Int("consecutive_failures", backup.ConsecutiveFailures))
		metrics.RecordFailoverSelection(string(provider), string(TierBackup))
		return &Selection{Credential: backup, APIKey: key, Tier: TierBackup}, nil
	}

	// A critical primary still beats returning nothing.
	if primary != nil && primary.HealthStatus == entity.HealthCritical {
		if key, err := s.Secrets.Decrypt(primary.SecretCiphertext); err == nil {
			slog.WarnContext(ctx, "using critical primary credential as last resort",
				slog.String("credential_id", primary.ID.String()),
				slog.String("provider", string(provider)),
				slog.Int("consecutive_failures", primary.ConsecutiveFailures))
			metrics.RecordFailoverSelection(string(provider), string(TierLastResort))
			return &Selection{Credential: primary, APIKey: key, Tier: TierLastResort}, nil
		}
		slog.WarnContext(ctx, "critical primary ciphertext no longer decrypts",
			slog.String("credential_id", primary.ID.String()),
			slog.String("provider", string(provider)))
	}

	metrics.RecordNoUsableCredential(string(provider))
	return nil, fmt.Errorf("owner %s provider %s: %w", ownerID, provider, entity.ErrNoUsableCredential)
}
