package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied on startup, one statement per entry because the
// extended query protocol takes a single statement at a time. Every
// statement is idempotent so restarting against an existing database
// is safe.
var schema = []string{`
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
`, `
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id              TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	push_token           TEXT,
	enable_notifications BOOLEAN NOT NULL DEFAULT TRUE,
	created_at           TIMESTAMPTZ NOT NULL
);
`, `
CREATE TABLE IF NOT EXISTS stations (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	name_kana    TEXT NOT NULL DEFAULT '',
	latitude     DOUBLE PRECISION NOT NULL,
	longitude    DOUBLE PRECISION NOT NULL,
	polygon_data TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL
);
`, `
CREATE TABLE IF NOT EXISTS station_visits (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	station_id       TEXT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
	arrived_at       TIMESTAMPTZ NOT NULL,
	departed_at      TIMESTAMPTZ,
	duration_minutes INTEGER,
	weather          TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	latitude         DOUBLE PRECISION NOT NULL,
	longitude        DOUBLE PRECISION NOT NULL,
	UNIQUE (user_id, station_id, arrived_at)
);
`, `
CREATE INDEX IF NOT EXISTS idx_station_visits_user_arrived
	ON station_visits (user_id, arrived_at DESC);
`}

// Connect opens a pgx pool, verifies the connection and applies the schema.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return db, nil
}
