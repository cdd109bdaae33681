package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id UUID PRIMARY KEY,
        name TEXT NOT NULL,
        mobile TEXT NOT NULL UNIQUE,
        email TEXT NOT NULL,
        gender TEXT NOT NULL,
        device_id TEXT NOT NULL DEFAULT '',
        token_version INTEGER NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL,
        last_login TIMESTAMPTZ
    )`,
	`CREATE TABLE IF NOT EXISTS addresses (
        id UUID PRIMARY KEY,
        user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        line TEXT NOT NULL,
        house_no TEXT NOT NULL DEFAULT '',
        landmark TEXT NOT NULL DEFAULT '',
        location TEXT NOT NULL,
        pincode TEXT NOT NULL,
        city TEXT NOT NULL,
        state TEXT NOT NULL DEFAULT '',
        latitude TEXT NOT NULL DEFAULT '',
        longitude TEXT NOT NULL DEFAULT '',
        address_type TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS addresses_user_id_idx ON addresses (user_id, created_at)`,
}

// EnsureSchema creates the sandbox tables when they are missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
