package repository

import (
	"context"

	"citypulse/internal/database"
	"citypulse/internal/models"
)

type ReservationRepository struct {
	db *database.DB
}

func NewReservationRepository(db *database.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, reservation models.Reservation) error {
	query := `
		INSERT INTO reservations (id, event_id, user_id, user_name, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		reservation.ID,
		reservation.EventID,
		reservation.UserID,
		reservation.UserName,
		reservation.CreatedAt,
	)
	return err
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	query := `
		SELECT id, event_id, user_id, user_name, created_at
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		err := rows.Scan(
			&res.ID,
			&res.EventID,
			&res.UserID,
			&res.UserName,
			&res.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}

	return reservations, rows.Err()
}

func (r *ReservationRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reservations WHERE event_id = $1 AND user_id = $2
		)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, eventID, userID).Scan(&exists)
	return exists, err
}
