package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		last_seen  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         TEXT PRIMARY KEY,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		user_id    TEXT NOT NULL REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_user_id ON messages (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_users_last_seen ON users (last_seen DESC)`,
}

// EnsureSchema creates the tables and indexes on startup when they are
// missing. Statements are idempotent so repeated starts are safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
