package engine

import (
	"sort"
	"time"

	"citypulse/internal/clock"
	"citypulse/internal/geo"
	"citypulse/internal/models"
)

const (
	// NearRadiusMeters bounds the "Near You" view. Distinct from and
	// larger than the proximity notification radius.
	NearRadiusMeters = 5000.0

	// TrendingLimit caps the "Trending" view.
	TrendingLimit = 10
)

// Near You view statuses. An empty view always carries one of these
// instead of an unexplained empty list.
const (
	NearYouStatusOK                  = "ok"
	NearYouStatusLocationUnavailable = "location_unavailable"
	NearYouStatusNoEventsNearby      = "no_events_nearby"
)

// Projector derives the ranked views from a snapshot and criteria. All
// derivations are pure: same inputs, same output ordering and membership.
type Projector struct {
	clock clock.Clock
}

func NewProjector(clk clock.Clock) *Projector {
	return &Projector{clock: clk}
}

// Trending returns upcoming events passing the filter, most booked
// first, capped at TrendingLimit. Ties keep feed order.
func (p *Projector) Trending(events []models.Event, c Criteria) []models.Event {
	now := p.clock.Now()

	filtered := make([]models.Event, 0, len(events))
	for _, e := range events {
		if c.matches(e) && !e.StartsAt().Before(now) {
			filtered = append(filtered, e)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].BookedSeats > filtered[j].BookedSeats
	})

	if len(filtered) > TrendingLimit {
		filtered = filtered[:TrendingLimit]
	}
	return filtered
}

// AllEvents returns upcoming events passing the filter, soonest first.
func (p *Projector) AllEvents(events []models.Event, c Criteria) []models.Event {
	now := p.clock.Now()

	filtered := make([]models.Event, 0, len(events))
	for _, e := range events {
		if c.matches(e) && !e.StartsAt().Before(now) {
			filtered = append(filtered, e)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartTime < filtered[j].StartTime
	})
	return filtered
}

// NearYou returns upcoming filtered events within NearRadiusMeters of
// the session location, closest first. Distances are derived fresh on
// every call, never cached from an earlier location.
func (p *Projector) NearYou(events []models.Event, c Criteria) (string, []models.EventDistance) {
	if c.Location == nil {
		return NearYouStatusLocationUnavailable, nil
	}

	now := p.clock.Now()
	ref := *c.Location

	nearby := make([]models.EventDistance, 0, len(events))
	for _, e := range events {
		if !c.matches(e) || e.StartsAt().Before(now) {
			continue
		}
		d := geo.DistanceMeters(ref, e.Location())
		if d <= NearRadiusMeters {
			nearby = append(nearby, models.EventDistance{Event: e, DistanceMeters: d})
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceMeters < nearby[j].DistanceMeters
	})

	if len(nearby) == 0 {
		return NearYouStatusNoEventsNearby, nil
	}
	return NearYouStatusOK, nearby
}

// EventDays returns the days of the given month that have at least one
// event passing the filter. The calendar shows history, so no future
// bound applies. Days are UTC and sorted ascending.
func (p *Projector) EventDays(events []models.Event, c Criteria, year int, month time.Month) []int {
	seen := make(map[int]struct{})
	for _, e := range events {
		if !c.matches(e) {
			continue
		}
		start := e.StartsAt()
		if start.Year() == year && start.Month() == month {
			seen[start.Day()] = struct{}{}
		}
	}

	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// EventsOn returns the filtered events on a given UTC day, earliest
// first.
func (p *Projector) EventsOn(events []models.Event, c Criteria, day time.Time) []models.Event {
	y, m, d := day.UTC().Date()

	onDay := make([]models.Event, 0)
	for _, e := range events {
		ey, em, ed := e.StartsAt().Date()
		if c.matches(e) && ey == y && em == m && ed == d {
			onDay = append(onDay, e)
		}
	}

	sort.SliceStable(onDay, func(i, j int) bool {
		return onDay[i].StartTime < onDay[j].StartTime
	})
	return onDay
}

// MapPins returns every event passing the filter, for marker rendering.
// The map shows past events too.
func (p *Projector) MapPins(events []models.Event, c Criteria) []models.Event {
	pins := make([]models.Event, 0, len(events))
	for _, e := range events {
		if c.matches(e) {
			pins = append(pins, e)
		}
	}
	return pins
}
