package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createReservationsTable,
		createNotifiedEventsTable,
		createPreferencesTable,
		createReservationsUserIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id UUID PRIMARY KEY,
    event_id VARCHAR(128) NOT NULL,
    user_id VARCHAR(128) NOT NULL,
    user_name VARCHAR(255) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (event_id, user_id)
);`

const createNotifiedEventsTable = `
CREATE TABLE IF NOT EXISTS notified_events (
    event_id VARCHAR(128) PRIMARY KEY,
    notified_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createPreferencesTable = `
CREATE TABLE IF NOT EXISTS preferences (
    key VARCHAR(64) PRIMARY KEY,
    value TEXT NOT NULL
);`

const createReservationsUserIndex = `
CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations(user_id);`
