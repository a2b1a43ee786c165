package database

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		email         TEXT PRIMARY KEY,
		name          TEXT,
		role          TEXT NOT NULL DEFAULT 'standard',
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		email       TEXT,
		phone       TEXT,
		owner_email TEXT NOT NULL,
		value       NUMERIC,
		source      TEXT,
		notes       TEXT,
		stage       TEXT NOT NULL DEFAULT 'new',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_owner_stage ON leads (owner_email, stage)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_stage ON leads (stage)`,
	// bancos criados com NUMERIC(14,2) estouravam em 1e12 e arredondavam centavos
	`ALTER TABLE leads ALTER COLUMN value TYPE NUMERIC`,
	`CREATE TABLE IF NOT EXISTS revoked_sessions (
		jti        TEXT PRIMARY KEY,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_revoked_sessions_expires ON revoked_sessions (expires_at)`,
}

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema step %d: %w", i+1, err)
		}
	}
	return nil
}
