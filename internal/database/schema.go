package database

import (
	"context"
	"fmt"
)

// schema is written in the subset of SQL shared by Postgres and SQLite
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username VARCHAR(30) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		price_range_min INTEGER NOT NULL,
		price_range_max INTEGER NOT NULL,
		max_distance_miles DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_ideas (
		user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		ideas TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		category VARCHAR(255) NOT NULL,
		venue_id VARCHAR(255) NOT NULL,
		venue TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, category, venue_id)
	)`,
	`CREATE TABLE IF NOT EXISTS date_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		location TEXT,
		date TIMESTAMP NOT NULL,
		weather TEXT,
		coordinates TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_date_events_user_date ON date_events (user_id, date)`,
	`CREATE TABLE IF NOT EXISTS cors_config (
		config_key VARCHAR(64) PRIMARY KEY,
		allowed_origins TEXT NOT NULL,
		allow_credentials BOOLEAN NOT NULL DEFAULT TRUE,
		max_age INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ratelimit_config (
		config_key VARCHAR(64) PRIMARY KEY,
		rate VARCHAR(64) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

// Migrate creates any missing tables. It is safe to run on every start.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
