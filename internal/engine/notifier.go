package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"citypulse/internal/clock"
	"citypulse/internal/geo"
	"citypulse/internal/models"
)

// DefaultProximityRadiusMeters is the proximity threshold used when no
// override is configured.
const DefaultProximityRadiusMeters = 2000.0

// Ledger is the durable half of the notified-event set. It outlives the
// process; an identifier, once added, stays until Reset.
type Ledger interface {
	Load(ctx context.Context) ([]string, error)
	Add(ctx context.Context, eventID string) error
	Reset(ctx context.Context) error
}

// Sink receives notification intents. Fire-and-forget: delivery
// mechanics are outside the engine.
type Sink interface {
	Emit(n models.NearbyNotification)
}

// Notifier decides which events have crossed the proximity threshold and
// have not been surfaced yet. Per event id the state machine is
// unseen -> notified, one way; only Reset re-arms.
type Notifier struct {
	mu       sync.Mutex
	enabled  bool
	notified map[string]struct{}

	ledger Ledger
	sink   Sink
	clock  clock.Clock
	radius float64
}

// NewNotifier restores the notified set from the ledger. A load failure
// starts with an empty set rather than failing the session; worst case
// is a repeated notification, not a crash.
func NewNotifier(ctx context.Context, ledger Ledger, sink Sink, clk clock.Clock, radius float64, enabled bool) (*Notifier, error) {
	n := &Notifier{
		enabled:  enabled,
		notified: make(map[string]struct{}),
		ledger:   ledger,
		sink:     sink,
		clock:    clk,
		radius:   radius,
	}

	ids, err := ledger.Load(ctx)
	if err != nil {
		return n, fmt.Errorf("failed to load notification ledger: %w", err)
	}
	for _, id := range ids {
		n.notified[id] = struct{}{}
	}
	return n, nil
}

// Recompute scans the snapshot against the current location and emits an
// intent for every unseen upcoming event within the radius, marking it
// notified. Idempotent: a second run with no new crossing emits nothing.
// Returns the number of intents emitted.
func (n *Notifier) Recompute(ctx context.Context, events []models.Event, loc *models.LatLng) int {
	if loc == nil {
		return 0
	}

	// Check-then-add runs under the lock so a re-entrant update cannot
	// notify the same event twice.
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return 0
	}

	now := n.clock.Now()
	emitted := 0
	for _, e := range events {
		if _, done := n.notified[e.ID]; done {
			continue
		}
		// Upcoming events only; an alert for a started event is not
		// actionable.
		if e.StartsAt().Before(now) {
			continue
		}
		d := geo.DistanceMeters(*loc, e.Location())
		if d > n.radius {
			continue
		}

		n.sink.Emit(models.NearbyNotification{
			Event:          e,
			DistanceMeters: d,
			DistanceText:   FormatDistance(d),
			Timestamp:      now,
		})
		n.notified[e.ID] = struct{}{}
		emitted++

		if err := n.ledger.Add(ctx, e.ID); err != nil {
			// The in-memory mark stands; only a restart could repeat
			// this notification.
			slog.Error("Failed to persist notified event",
				"error", err,
				"event_id", e.ID)
		}
	}
	return emitted
}

// Reset clears the ledger, re-arming every event.
func (n *Notifier) Reset(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.ledger.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset notification ledger: %w", err)
	}
	n.notified = make(map[string]struct{})
	return nil
}

// SetEnabled toggles notification delivery. The ledger is untouched.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// Enabled reports whether notifications are delivered.
func (n *Notifier) Enabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled
}

// NotifiedCount returns the size of the notified set.
func (n *Notifier) NotifiedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notified)
}

// FormatDistance renders a distance the way the notification text shows
// it: meters under a kilometer, kilometers above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f meters away", meters)
	}
	return fmt.Sprintf("%.1f km away", meters/1000)
}
