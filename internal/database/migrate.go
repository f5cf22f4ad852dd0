package database

import (
	"context"
	"fmt"
)

// schema holds the bootstrap DDL, applied in order on startup. Statements are
// idempotent so repeated startups are safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT,
		name TEXT,
		picture TEXT,
		provider TEXT,
		provider_id TEXT,
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_provider_id
		ON users (provider, provider_id) WHERE provider_id IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS notes (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		summary TEXT,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes (user_id) WHERE NOT deleted`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		note_id UUID,
		description TEXT NOT NULL,
		due_date TIMESTAMPTZ,
		status TEXT NOT NULL,
		ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_note_id ON tasks (note_id) WHERE note_id IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS oauth_config (
		id UUID PRIMARY KEY,
		provider TEXT NOT NULL UNIQUE,
		client_id TEXT NOT NULL,
		client_secret TEXT NOT NULL,
		auth_url TEXT NOT NULL,
		token_url TEXT NOT NULL,
		userinfo_url TEXT NOT NULL,
		redirect_uri TEXT NOT NULL,
		scopes TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cors_config (
		config_key TEXT PRIMARY KEY,
		allowed_origins TEXT NOT NULL,
		allow_credentials BOOLEAN NOT NULL DEFAULT TRUE,
		max_age INTEGER NOT NULL DEFAULT 86400,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ratelimit_config (
		config_key TEXT PRIMARY KEY,
		rate TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies the bootstrap schema.
func Migrate(ctx context.Context, db *DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
