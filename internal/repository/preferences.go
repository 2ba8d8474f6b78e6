package repository

import (
	"context"
	"database/sql"
	"strconv"

	"citypulse/internal/database"
)

// Preference keys
const (
	PrefNotificationsEnabled = "notifications_enabled"
)

type PreferenceRepository struct {
	db *database.DB
}

func NewPreferenceRepository(db *database.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) GetBool(ctx context.Context, key string, defaultValue bool) (bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return defaultValue, nil
	}
	if err != nil {
		return defaultValue, err
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, nil
	}
	return parsed, nil
}

func (r *PreferenceRepository) SetBool(ctx context.Context, key string, value bool) error {
	query := `
		INSERT INTO preferences (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	_, err := r.db.ExecContext(ctx, query, key, strconv.FormatBool(value))
	return err
}
