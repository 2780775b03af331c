// Package credential provides use cases for managing stored provider
// credentials: registration, secret rotation, primary promotion,
// deactivation, deletion, and masked listing. Plaintext secrets enter this
// package only as call arguments and leave it only inside a Selection; they
// are never logged or returned in listings.
package credential

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"credshield/internal/domain/entity"
	"credshield/internal/repository"
	"credshield/internal/secret"
)

// RegisterInput represents the input parameters for registering a credential.
type RegisterInput struct {
	OwnerID     uuid.UUID
	Provider    entity.Provider
	DisplayName string
	Secret      string
	MakePrimary bool
}

// View is a credential as exposed to callers: the secret appears only in
// masked form.
type View struct {
	ID                  uuid.UUID
	Provider            entity.Provider
	DisplayName         string
	MaskedSecret        string
	IsPrimary           bool
	IsActive            bool
	HealthStatus        entity.HealthStatus
	ConsecutiveFailures int
	LastHealthCheck     *time.Time
	LastErrorMessage    *string
	CreatedAt           time.Time
}

// Service provides credential lifecycle use cases.
// It encrypts secrets before they reach the repository and delegates
// persistence invariants (one active primary) to it.
type Service struct {
	Repo    repository.CredentialRepository
	Secrets *secret.Store
}

// Register encrypts the secret and stores a new credential in its
// registration state. With MakePrimary set, the insert claims the primary
// slot and fails with entity.ErrPrimaryConflict when it is already taken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.Credential, error) {
	if in.OwnerID == uuid.Nil {
		return nil, &entity.ValidationError{Field: "owner_id", Message: "is required"}
	}

	ciphertext, err := s.Secrets.Encrypt(in.Secret)
	if err != nil {
		return nil, fmt.Errorf("encrypt secret: %w", err)
	}

	cred, err := entity.NewCredential(in.OwnerID, in.Provider, in.DisplayName, ciphertext)
	if err != nil {
		return nil, err
	}
	cred.IsPrimary = in.MakePrimary

	if err := s.Repo.Create(ctx, cred); err != nil {
		return nil, fmt.Errorf("create credential: %w", err)
	}

	slog.InfoContext(ctx, "credential registered",
		slog.String("credential_id", cred.ID.String()),
		slog.String("provider", string(cred.Provider)),
		slog.Bool("is_primary", cred.IsPrimary))
	return cred, nil
}

// RotateSecret replaces a credential's secret with a freshly encrypted one
// and resets its health to the registration state, so the next health check
// re-evaluates the new key from scratch.
func (s *Service) RotateSecret(ctx context.Context, id uuid.UUID, newSecret string) error {
	if id == uuid.Nil {
		return &entity.ValidationError{Field: "id", Message: "is required"}
	}

	ciphertext, err := s.Secrets.Encrypt(newSecret)
	if err != nil {
		return fmt.Errorf("encrypt secret: %w", err)
	}

	if err := s.Repo.UpdateSecret(ctx, id, ciphertext); err != nil {
		return fmt.Errorf("rotate secret: %w", err)
	}

	slog.InfoContext(ctx, "credential secret rotated",
		slog.String("credential_id", id.String()))
	return nil
}

// SetPrimary promotes the credential to primary for its (owner, provider)
// pair. The demotion of the current primary happens in the same transaction;
// a concurrent winner surfaces as entity.ErrPrimaryConflict.
func (s *Service) SetPrimary(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return &entity.ValidationError{Field: "id", Message: "is required"}
	}

	if err := s.Repo.SetPrimary(ctx, id); err != nil {
		return fmt.Errorf("set primary: %w", err)
	}

	slog.InfoContext(ctx, "credential promoted to primary",
		slog.String("credential_id", id.String()))
	return nil
}

// Deactivate takes the credential out of rotation without deleting it.
// A deactivated primary also loses its primary flag.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return &entity.ValidationError{Field: "id", Message: "is required"}
	}

	if err := s.Repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("deactivate credential: %w", err)
	}

	slog.InfoContext(ctx, "credential deactivated",
		slog.String("credential_id", id.String()))
	return nil
}

// Delete removes the credential permanently.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return &entity.ValidationError{Field: "id", Message: "is required"}
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	slog.InfoContext(ctx, "credential deleted",
		slog.String("credential_id", id.String()))
	return nil
}

// List returns every credential of the owner with masked secrets. A
// credential whose ciphertext no longer decrypts is still listed, with the
// fallback mask, so a corrupted entry stays visible to its owner.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]View, error) {
	if ownerID == uuid.Nil {
		return nil, &entity.ValidationError{Field: "owner_id", Message: "is required"}
	}

	creds, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	views := make([]View, 0, len(creds))
	for _, cred := range creds {
		masked := secret.FallbackMask
		if plaintext, err := s.Secrets.Decrypt(cred.SecretCiphertext); err == nil {
			masked = secret.Mask(plaintext)
		} else {
			slog.WarnContext(ctx, "credential ciphertext no longer decrypts",
				slog.String("credential_id", cred.ID.String()))
		}

		views = append(views, View{
			ID:                  cred.ID,
			Provider:            cred.Provider,
			DisplayName:         cred.DisplayName,
			MaskedSecret:        masked,
			IsPrimary:           cred.IsPrimary,
			IsActive:            cred.IsActive,
			HealthStatus:        cred.HealthStatus,
			ConsecutiveFailures: cred.ConsecutiveFailures,
			LastHealthCheck:     cred.LastHealthCheck,
			LastErrorMessage:    cred.LastErrorMessage,
			CreatedAt:           cred.CreatedAt,
		})
	}
	return views, nil
}
