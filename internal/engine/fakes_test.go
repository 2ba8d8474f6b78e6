package engine

import (
	"context"
	"errors"
	"sync"

	"citypulse/internal/models"
)

type memLedger struct {
	mu      sync.Mutex
	ids     []string
	failAdd bool
}

func (l *memLedger) Load(context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out, nil
}

func (l *memLedger) Add(_ context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAdd {
		return errors.New("ledger unavailable")
	}
	l.ids = append(l.ids, eventID)
	return nil
}

func (l *memLedger) Reset(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = nil
	return nil
}

type memSink struct {
	mu      sync.Mutex
	intents []models.NearbyNotification
}

func (s *memSink) Emit(n models.NearbyNotification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents = append(s.intents, n)
}

func (s *memSink) all() []models.NearbyNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.NearbyNotification, len(s.intents))
	copy(out, s.intents)
	return out
}

type memReservations struct {
	mu   sync.Mutex
	rows []models.Reservation
}

func (m *memReservations) Create(_ context.Context, r models.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, r)
	return nil
}

func (m *memReservations) ListByUser(_ context.Context, userID string) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reservation
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReservations) Exists(_ context.Context, eventID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.EventID == eventID && r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type memSeats struct {
	mu     sync.Mutex
	deltas map[string]int
}

func (m *memSeats) IncrementBookedSeats(_ context.Context, eventID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deltas == nil {
		m.deltas = make(map[string]int)
	}
	m.deltas[eventID] += delta
	return nil
}
