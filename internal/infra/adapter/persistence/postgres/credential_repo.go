package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"credshield/internal/domain/entity"
	"credshield/internal/repository"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index enforcing one active primary per (owner_id, provider).
const uniqueViolation = "23505"

// DB is the database surface the repository needs. Both *sql.DB and the
// circuit-breaker wrapper around it satisfy this interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type CredentialRepo struct{ db DB }

func NewCredentialRepo(db DB) repository.CredentialRepository {
	return &CredentialRepo{db: db}
}

const credentialColumns = `
id, owner_id, provider, display_name, secret_ciphertext,
is_primary, is_active, health_status, consecutive_failures,
last_health_check, last_error_message, created_at, updated_at`

// scanCredential scans one credential row in credentialColumns order.
func scanCredential(row interface{ Scan(...any) error }) (*entity.Credential, error) {
	var cred entity.Credential
	if err := row.Scan(
		&cred.ID, &cred.OwnerID, &cred.Provider, &cred.DisplayName, &cred.SecretCiphertext,
		&cred.IsPrimary, &cred.IsActive, &cred.HealthStatus, &cred.ConsecutiveFailures,
		&cred.LastHealthCheck, &cred.LastErrorMessage, &cred.CreatedAt, &cred.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (repo *CredentialRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Credential, error) {
	const query = `
SELECT ` + credentialColumns + `
FROM credentials
WHERE id = $1
LIMIT 1`
	cred, err := scanCredential(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return cred, nil
}

func (repo *CredentialRepo) GetActivePrimary(ctx context.Context, ownerID uuid.UUID, provider entity.Provider) (*entity.Credential, error) {
	const query = `
SELECT ` + credentialColumns + `
FROM credentials
WHERE owner_id = $1 AND provider = $2 AND is_primary = TRUE AND is_active = TRUE
LIMIT 1`
	cred, err := scanCredential(repo.db.QueryRowContext(ctx, query, ownerID, provider))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetActivePrimary: %w", err)
	}
	return cred, nil
}

func (repo *CredentialRepo) ListActiveBackups(ctx context.Context, ownerID uuid.UUID, provider entity.Provider) ([]*entity.Credential, error) {
	const query = `
SELECT ` + credentialColumns + `
FROM credentials
WHERE owner_id = $1 AND provider = $2 AND is_primary = FALSE AND is_active = TRUE
ORDER BY consecutive_failures ASC, created_at ASC, id ASC`
	rows, err := repo.db.QueryContext(ctx, query, ownerID, provider)
	if err != nil {
		return nil, fmt.Errorf("ListActiveBackups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	creds := make([]*entity.Credential, 0, 8)
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActiveBackups: %w", err)
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

func (repo *CredentialRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Credential, error) {
	const query = `
SELECT ` + credentialColumns + `
FROM credentials
WHERE owner_id = $1
ORDER BY provider ASC, created_at ASC, id ASC`
	rows, err := repo.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	defer func() { _ = rows.Close() }()

	creds := make([]*entity.Credential, 0, 8)
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByOwner: %w", err)
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

func (repo *CredentialRepo) ListActive(ctx context.Context, ownerID *uuid.UUID) ([]*entity.Credential, error) {
	query := `
SELECT ` + credentialColumns + `
FROM credentials
WHERE is_active = TRUE`
	args := []any{}
	if ownerID != nil {
		query += ` AND owner_id = $1`
		args = append(args, *ownerID)
	}
	query += `
ORDER BY owner_id ASC, provider ASC, created_at ASC, id ASC`

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	creds := make([]*entity.Credential, 0, 32)
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive: %w", err)
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

func (repo *CredentialRepo) Create(ctx context.Context, cred *entity.Credential) error {
	const query = `
INSERT INTO credentials (
	id, owner_id, provider, display_name, secret_ciphertext,
	is_primary, is_active, health_status, consecutive_failures,
	last_health_check, last_error_message, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := repo.db.ExecContext(ctx, query,
		cred.ID, cred.OwnerID, cred.Provider, cred.DisplayName, cred.SecretCiphertext,
		cred.IsPrimary, cred.IsActive, cred.HealthStatus, cred.ConsecutiveFailures,
		cred.LastHealthCheck, cred.LastErrorMessage, cred.CreatedAt, cred.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("Create: %w", entity.ErrPrimaryConflict)
	}
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *CredentialRepo) UpdateSecret(ctx context.Context, id uuid.UUID, ciphertext string) error {
	const query = `
UPDATE credentials SET
       secret_ciphertext    = $1,
       health_status        = $2,
       consecutive_failures = 0,
       last_error_message   = NULL,
       updated_at           = NOW()
WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, query, ciphertext, entity.HealthUnknown, id)
	if err != nil {
		return fmt.Errorf("UpdateSecret: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateSecret: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *CredentialRepo) UpdateHealth(ctx context.Context, cred *entity.Credential) error {
	const query = `
UPDATE credentials SET
       health_status        = $1,
       consecutive_failures = $2,
       last_health_check    = $3,
       last_error_message   = $4,
       updated_at           = NOW()
WHERE id = $5`
	res, err := repo.db.ExecContext(ctx, query,
		cred.HealthStatus, cred.ConsecutiveFailures,
		cred.LastHealthCheck, cred.LastErrorMessage, cred.ID,
	)
	if err != nil {
		return fmt.Errorf("UpdateHealth: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateHealth: %w", entity.ErrNotFound)
	}
	return nil
}

// SetPrimary demotes the current primary and promotes the target in one
// transaction, so readers never observe zero or two primaries. The row is
// locked first to pin its (owner, provider) pair against concurrent
// promotions.
func (repo *CredentialRepo) SetPrimary(ctx context.Context, id uuid.UUID) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SetPrimary: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const lockQuery = `
SELECT owner_id, provider, is_active
FROM credentials
WHERE id = $1
FOR UPDATE`
	var ownerID uuid.UUID
	var provider entity.Provider
	var isActive bool
	err = tx.QueryRowContext(ctx, lockQuery, id).Scan(&ownerID, &provider, &isActive)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("SetPrimary: %w", entity.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("SetPrimary: %w", err)
	}
	if !isActive {
		return fmt.Errorf("SetPrimary: %w: credential is inactive", entity.ErrInvalidInput)
	}

	const demoteQuery = `
UPDATE credentials SET is_primary = FALSE, updated_at = NOW()
WHERE owner_id = $1 AND provider = $2 AND is_primary = TRUE AND id <> $3`
	if _, err := tx.ExecContext(ctx, demoteQuery, ownerID, provider, id); err != nil {
		return fmt.Errorf("SetPrimary: demote: %w", err)
	}

	const promoteQuery = `
UPDATE credentials SET is_primary = TRUE, updated_at = NOW()
WHERE id = $1`
	if _, err := tx.ExecContext(ctx, promoteQuery, id); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("SetPrimary: %w", entity.ErrPrimaryConflict)
		}
		return fmt.Errorf("SetPrimary: promote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("SetPrimary: %w", entity.ErrPrimaryConflict)
		}
		return fmt.Errorf("SetPrimary: commit: %w", err)
	}
	return nil
}

func (repo *CredentialRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	const query = `
UPDATE credentials SET is_active = FALSE, is_primary = FALSE, updated_at = NOW()
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Deactivate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Deactivate: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *CredentialRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM credentials WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
