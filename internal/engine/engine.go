package engine

import (
	"context"
	"sync"
	"time"

	"citypulse/internal/clock"
	"citypulse/internal/models"
	"citypulse/internal/store"
)

// Engine owns the session state: the filter criteria, the resolved
// location and the components deriving views and notifications from the
// event snapshot. Public operations run to completion under the session
// lock; the only mutable shared state outside it is the store snapshot
// and the notifier's ledger, each with their own discipline.
type Engine struct {
	mu              sync.RWMutex
	criteria        Criteria
	criteriaVersion uint64

	store     *store.EventStore
	projector *Projector
	notifier  *Notifier
}

// New wires the session and subscribes it to snapshot updates so the
// notifier recomputes on every replacement.
func New(st *store.EventStore, clk clock.Clock, notifier *Notifier) *Engine {
	e := &Engine{
		criteria:  DefaultCriteria(),
		store:     st,
		projector: NewProjector(clk),
		notifier:  notifier,
	}

	st.Subscribe(func(events []models.Event) {
		e.notifier.Recompute(context.Background(), events, e.location())
	})

	return e
}

// SetCriteria replaces the category selection and search query. Views
// are derived on read, so the change takes effect on the next request;
// the version bump invalidates cached responses.
func (e *Engine) SetCriteria(categories []models.Category, query string) {
	cats := make(map[models.Category]struct{}, len(categories))
	for _, c := range categories {
		cats[c] = struct{}{}
	}

	e.mu.Lock()
	e.criteria.Categories = cats
	e.criteria.Query = query
	e.criteriaVersion++
	e.mu.Unlock()
}

// SetLocation stores the resolved location (nil when resolution failed)
// and triggers a notifier recomputation against the current snapshot.
func (e *Engine) SetLocation(ctx context.Context, loc *models.LatLng) {
	e.mu.Lock()
	if loc != nil {
		l := *loc
		e.criteria.Location = &l
	} else {
		e.criteria.Location = nil
	}
	e.criteriaVersion++
	e.mu.Unlock()

	e.notifier.Recompute(ctx, e.store.All(), loc)
}

// Criteria returns a copy of the session criteria.
func (e *Engine) Criteria() Criteria {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.criteria.Clone()
}

// Versions returns the snapshot and criteria versions; together they key
// cached view responses.
func (e *Engine) Versions() (snapshot, criteria uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Version(), e.criteriaVersion
}

func (e *Engine) location() *models.LatLng {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.criteria.Location == nil {
		return nil
	}
	l := *e.criteria.Location
	return &l
}

// Trending derives the trending view from the current snapshot.
func (e *Engine) Trending() []models.Event {
	return e.projector.Trending(e.store.All(), e.Criteria())
}

// AllEvents derives the all-events view from the current snapshot.
func (e *Engine) AllEvents() []models.Event {
	return e.projector.AllEvents(e.store.All(), e.Criteria())
}

// NearYou derives the near-you view and its status.
func (e *Engine) NearYou() (string, []models.EventDistance) {
	return e.projector.NearYou(e.store.All(), e.Criteria())
}

// EventDays returns the calendar days of a month with events.
func (e *Engine) EventDays(year int, month time.Month) []int {
	return e.projector.EventDays(e.store.All(), e.Criteria(), year, month)
}

// EventsOn returns the events on a calendar day.
func (e *Engine) EventsOn(day time.Time) []models.Event {
	return e.projector.EventsOn(e.store.All(), e.Criteria(), day)
}

// MapPins returns the filtered events for map rendering.
func (e *Engine) MapPins() []models.Event {
	return e.projector.MapPins(e.store.All(), e.Criteria())
}

// Notifier exposes the session notifier for reset and toggle operations.
func (e *Engine) Notifier() *Notifier {
	return e.notifier
}
