package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// schema is applied on every startup; statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		telegram_id      BIGINT PRIMARY KEY,
		username         TEXT NOT NULL DEFAULT '',
		first_name       TEXT NOT NULL DEFAULT '',
		banned           BOOLEAN NOT NULL DEFAULT FALSE,
		free_redeem_used BOOLEAN NOT NULL DEFAULT FALSE,
		premium_until    TIMESTAMPTZ,
		pending_action   TEXT NOT NULL DEFAULT '',
		registered_at    TIMESTAMPTZ NOT NULL,
		last_active_at   TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS activation_keys (
		code       TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS redeem_requests (
		id          TEXT PRIMARY KEY,
		telegram_id BIGINT NOT NULL,
		username    TEXT NOT NULL DEFAULT '',
		details     TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_redeem_requests_created_at
		ON redeem_requests (created_at DESC);`,
}

// EnsureSchema creates the three tables if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
