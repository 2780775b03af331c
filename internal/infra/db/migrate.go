package db

import (
	"database/sql"
)

func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS credentials (
    id                   UUID PRIMARY KEY,
    owner_id             UUID NOT NULL,
    provider             VARCHAR(20) NOT NULL,
    display_name         TEXT NOT NULL,
    secret_ciphertext    TEXT NOT NULL,
    is_primary           BOOLEAN NOT NULL DEFAULT FALSE,
    is_active            BOOLEAN NOT NULL DEFAULT TRUE,
    health_status        VARCHAR(20) NOT NULL DEFAULT 'unknown',
    consecutive_failures INT NOT NULL DEFAULT 0,
    last_health_check    TIMESTAMPTZ,
    last_error_message   TEXT,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// Enforces at most one active primary per (owner, provider).
		// Concurrent promotions surface as a unique violation instead of
		// leaving two primaries behind.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_credentials_active_primary
    ON credentials(owner_id, provider)
    WHERE is_primary = TRUE AND is_active = TRUE`,
		// Selector lookups filter on (owner, provider) among active rows.
		`CREATE INDEX IF NOT EXISTS idx_credentials_owner_provider
    ON credentials(owner_id, provider)
    WHERE is_active = TRUE`,
		// Batch health checks scan active rows by owner.
		`CREATE INDEX IF NOT EXISTS idx_credentials_owner_active
    ON credentials(owner_id)
    WHERE is_active = TRUE`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// Postgres-specific constraint syntax, so the error is ignored when the
	// constraint already exists.
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_credentials_provider'
    ) THEN
        ALTER TABLE credentials ADD CONSTRAINT chk_credentials_provider
        CHECK (provider IN ('anthropic', 'openai', 'perplexity'));
    END IF;
END $$;
`)

	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_credentials_health_status'
    ) THEN
        ALTER TABLE credentials ADD CONSTRAINT chk_credentials_health_status
        CHECK (health_status IN ('unknown', 'healthy', 'warning', 'unhealthy', 'critical'));
    END IF;
END $$;
`)

	return nil
}

// MigrateDown rolls back the database schema.
// Use with caution: this deletes all stored credentials.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS uq_credentials_active_primary`,
		`DROP INDEX IF EXISTS idx_credentials_owner_provider`,
		`DROP INDEX IF EXISTS idx_credentials_owner_active`,
		`DROP TABLE IF EXISTS credentials CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
