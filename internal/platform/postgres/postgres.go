// Package postgres opens the database and maintains the ledger schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// schema is idempotent; counters are seeded once and never reset.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS counters (
		name       TEXT PRIMARY KEY,
		next_value BIGINT NOT NULL
	)`,
	`INSERT INTO counters (name, next_value) VALUES ('asset', 1), ('transaction', 1)
	 ON CONFLICT (name) DO NOTHING`,
	`CREATE TABLE IF NOT EXISTS assets (
		id               BIGINT PRIMARY KEY,
		primary_owner    TEXT NOT NULL,
		total_units      BIGINT NOT NULL CHECK (total_units > 0),
		tradeable_units  BIGINT NOT NULL CHECK (tradeable_units > 0 AND tradeable_units <= total_units),
		metadata_hash    TEXT NOT NULL,
		transfer_enabled BOOLEAN NOT NULL,
		creation_height  BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS holdings (
		asset_id BIGINT NOT NULL REFERENCES assets (id),
		holder   TEXT NOT NULL,
		units    BIGINT NOT NULL CHECK (units >= 0),
		PRIMARY KEY (asset_id, holder)
	)`,
	`CREATE TABLE IF NOT EXISTS compliance_records (
		asset_id        BIGINT NOT NULL REFERENCES assets (id),
		participant     TEXT NOT NULL,
		approved        BOOLEAN NOT NULL,
		verified_height BIGINT NOT NULL,
		authority       TEXT NOT NULL,
		PRIMARY KEY (asset_id, participant)
	)`,
	`CREATE TABLE IF NOT EXISTS certificates (
		asset_id BIGINT PRIMARY KEY REFERENCES assets (id),
		holder   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		tx_id     BIGINT PRIMARY KEY,
		action    TEXT NOT NULL,
		asset_id  BIGINT NOT NULL,
		party     TEXT NOT NULL,
		height    BIGINT NOT NULL,
		prev_hash TEXT NOT NULL,
		hash      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS event_outbox (
		id           UUID PRIMARY KEY,
		tx_id        BIGINT NOT NULL,
		asset_id     BIGINT NOT NULL,
		payload      BYTEA NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		published_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS event_outbox_pending_idx
	 ON event_outbox (tx_id) WHERE published_at IS NULL`,
}

// EnsureSchema creates the ledger tables and seeds the counters.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
