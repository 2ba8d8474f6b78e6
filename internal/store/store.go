package store

import (
	"sync"

	"citypulse/internal/models"
)

// Subscriber receives the full snapshot after every replacement.
type Subscriber func(events []models.Event)

// EventStore holds the in-memory snapshot of all events, keyed by id.
// The upstream feed always delivers complete snapshots, so ReplaceAll
// swaps the whole collection atomically; there is no merge path.
//
// Dependent components register a Subscriber instead of polling. Fan-out
// runs synchronously on the goroutine delivering the snapshot, which
// keeps the ordering guarantee trivial: a subscriber only ever observes
// the latest delivered snapshot.
type EventStore struct {
	mu      sync.RWMutex
	events  []models.Event
	byID    map[string]models.Event
	version uint64

	subMu sync.Mutex
	subs  []Subscriber
}

func New() *EventStore {
	return &EventStore{
		byID: make(map[string]models.Event),
	}
}

// ReplaceAll swaps the entire snapshot and notifies subscribers.
func (s *EventStore) ReplaceAll(events []models.Event) {
	snapshot := make([]models.Event, len(events))
	copy(snapshot, events)

	byID := make(map[string]models.Event, len(snapshot))
	for _, e := range snapshot {
		byID[e.ID] = e
	}

	s.mu.Lock()
	s.events = snapshot
	s.byID = byID
	s.version++
	s.mu.Unlock()

	s.notify(snapshot)
}

// Get returns the event with the given id from the current snapshot.
func (s *EventStore) Get(id string) (models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	return e, ok
}

// All returns a copy of the current snapshot in feed order.
func (s *EventStore) All() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Version counts snapshot replacements; it keys derived caches.
func (s *EventStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// ApplyBookedSeats adjusts the booked-seat count of a single event in the
// local snapshot so the next read reflects a reservation made through
// this process before the feed catches up. Returns false if the event is
// not in the snapshot. Subscribers are re-notified since rankings depend
// on booked seats.
func (s *EventStore) ApplyBookedSeats(id string, delta int) bool {
	s.mu.Lock()
	e, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	e.BookedSeats += delta
	s.byID[id] = e
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i] = e
			break
		}
	}
	s.version++
	snapshot := make([]models.Event, len(s.events))
	copy(snapshot, s.events)
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

// Subscribe registers a callback invoked after every snapshot change.
func (s *EventStore) Subscribe(fn Subscriber) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *EventStore) notify(snapshot []models.Event) {
	s.subMu.Lock()
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
