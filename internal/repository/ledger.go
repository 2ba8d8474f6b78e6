package repository

import (
	"context"

	"citypulse/internal/database"
)

// LedgerRepository is the durable notified-event set. Rows are only ever
// inserted or wiped wholesale; there is no per-row delete.
type LedgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Load(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT event_id FROM notified_events`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *LedgerRepository) Add(ctx context.Context, eventID string) error {
	query := `
		INSERT INTO notified_events (event_id)
		VALUES ($1)
		ON CONFLICT (event_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, eventID)
	return err
}

func (r *LedgerRepository) Reset(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notified_events`)
	return err
}
