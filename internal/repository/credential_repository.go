// Package repository defines persistence ports for the credential domain.
// Adapters live under internal/infra/adapter/persistence.
package repository

import (
	"context"

	"github.com/google/uuid"

	"credshield/internal/domain/entity"
)

// CredentialRepository is the persistence port for stored credentials.
//
// Implementations must surface a unique-constraint violation on the
// one-active-primary-per-(owner, provider) invariant as
// entity.ErrPrimaryConflict, distinct from generic write failures, and
// treat concurrent health updates to the same credential as
// last-writer-wins.
type CredentialRepository interface {
	// Get returns the credential by id, or entity.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*entity.Credential, error)

	// GetActivePrimary returns the active primary credential for the
	// (owner, provider) pair, or (nil, nil) when none exists — an absent
	// primary is a normal routing state, not an error.
	GetActivePrimary(ctx context.Context, ownerID uuid.UUID, provider entity.Provider) (*entity.Credential, error)

	// ListActiveBackups returns the active non-primary credentials for the
	// (owner, provider) pair, ordered by fewest consecutive failures with
	// ties broken by creation order.
	ListActiveBackups(ctx context.Context, ownerID uuid.UUID, provider entity.Provider) ([]*entity.Credential, error)

	// ListByOwner returns every credential belonging to the owner.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Credential, error)

	// ListActive returns every active credential, optionally scoped to one
	// owner (nil ownerID means all owners). Used by batch health checks.
	ListActive(ctx context.Context, ownerID *uuid.UUID) ([]*entity.Credential, error)

	// Create inserts a new credential. Inserting a second active primary
	// for the same (owner, provider) fails with entity.ErrPrimaryConflict.
	Create(ctx context.Context, cred *entity.Credential) error

	// UpdateSecret replaces the ciphertext and resets health to the
	// registration state (unknown, zero failures).
	UpdateSecret(ctx context.Context, id uuid.UUID, ciphertext string) error

	// UpdateHealth persists the credential's health fields
	// (status, consecutive failures, last check, last error message).
	UpdateHealth(ctx context.Context, cred *entity.Credential) error

	// SetPrimary promotes the credential to primary for its (owner,
	// provider) pair, demoting the current primary in the same
	// transaction. A concurrent promotion that wins first surfaces as
	// entity.ErrPrimaryConflict.
	SetPrimary(ctx context.Context, id uuid.UUID) error

	// Deactivate clears is_active (and is_primary) on the credential.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Delete removes the credential, or entity.ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}
