package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"citypulse/internal/clock"
	"citypulse/internal/models"
	"citypulse/internal/store"
)

// ReservationStore is the durable reservation collection.
type ReservationStore interface {
	Create(ctx context.Context, r models.Reservation) error
	ListByUser(ctx context.Context, userID string) ([]models.Reservation, error)
	Exists(ctx context.Context, eventID, userID string) (bool, error)
}

// SeatWriter carries the +1 booked-seat request back to the
// authoritative store.
type SeatWriter interface {
	IncrementBookedSeats(ctx context.Context, eventID string, delta int) error
}

// Guard validates a seat reservation against the most recently observed
// snapshot before writing it. The increment is read-then-write against
// the external store and is not serialized against other clients; the
// precondition checks shrink that window, they cannot close it.
type Guard struct {
	events       *store.EventStore
	reservations ReservationStore
	seats        SeatWriter
	clock        clock.Clock
}

func NewGuard(events *store.EventStore, reservations ReservationStore, seats SeatWriter, clk clock.Clock) *Guard {
	return &Guard{
		events:       events,
		reservations: reservations,
		seats:        seats,
		clock:        clk,
	}
}

// Reserve books one seat for the user, refusing with ErrSoldOut,
// ErrEventEnded or ErrAlreadyReserved when a precondition fails.
func (g *Guard) Reserve(ctx context.Context, eventID, userID, userName string) (models.Reservation, error) {
	event, ok := g.events.Get(eventID)
	if !ok {
		return models.Reservation{}, ErrEventNotFound
	}

	if event.StartsAt().Before(g.clock.Now()) {
		return models.Reservation{}, ErrEventEnded
	}
	if event.AvailableSeats() <= 0 {
		return models.Reservation{}, ErrSoldOut
	}

	held, err := g.reservations.Exists(ctx, eventID, userID)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("failed to check existing reservation: %w", err)
	}
	if held {
		return models.Reservation{}, ErrAlreadyReserved
	}

	reservation := models.Reservation{
		ID:        uuid.New().String(),
		EventID:   eventID,
		UserID:    userID,
		UserName:  userName,
		CreatedAt: g.clock.Now(),
	}

	if err := g.reservations.Create(ctx, reservation); err != nil {
		return models.Reservation{}, fmt.Errorf("failed to create reservation: %w", err)
	}

	// The reservation stands even if the seat write lags; the feed will
	// reconcile the count on the next snapshot.
	if err := g.seats.IncrementBookedSeats(ctx, eventID, 1); err != nil {
		slog.Error("Failed to increment booked seats",
			"error", err,
			"event_id", eventID)
	}
	g.events.ApplyBookedSeats(eventID, 1)

	return reservation, nil
}

// Reservations lists the user's reservations.
func (g *Guard) Reservations(ctx context.Context, userID string) ([]models.Reservation, error) {
	list, err := g.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return list, nil
}
