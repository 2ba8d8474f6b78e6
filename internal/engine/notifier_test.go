package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citypulse/internal/clock"
	"citypulse/internal/models"
)

func testNotifier(t *testing.T, ledger Ledger, sink Sink) *Notifier {
	t.Helper()
	n, err := NewNotifier(context.Background(), ledger, sink,
		clock.NewFixed(testNow), DefaultProximityRadiusMeters, true)
	require.NoError(t, err)
	return n
}

// offsetNorth returns a point roughly the given number of meters north.
func offsetNorth(p models.LatLng, meters float64) models.LatLng {
	return models.LatLng{Lat: p.Lat + meters/111195.0, Lng: p.Lng}
}

func TestNotifyWithinRadiusOnce(t *testing.T) {
	here := models.LatLng{Lat: 0, Lng: 0}
	e := concert("close", 0, 10, time.Hour)
	loc := offsetNorth(here, 1800)
	e.Latitude, e.Longitude = loc.Lat, loc.Lng

	ledger := &memLedger{}
	sink := &memSink{}
	n := testNotifier(t, ledger, sink)

	emitted := n.Recompute(context.Background(), []models.Event{e}, &here)
	assert.Equal(t, 1, emitted)

	intents := sink.all()
	require.Len(t, intents, 1)
	assert.Equal(t, "close", intents[0].Event.ID)
	assert.InDelta(t, 1800, intents[0].DistanceMeters, 20)
	assert.Equal(t, []string{"close"}, mustLoad(t, ledger))

	// Unchanged location: idempotent, nothing new.
	emitted = n.Recompute(context.Background(), []models.Event{e}, &here)
	assert.Equal(t, 0, emitted)
	assert.Len(t, sink.all(), 1)
}

func TestNotifySkipsBeyondRadius(t *testing.T) {
	here := models.LatLng{Lat: 0, Lng: 0}
	e := concert("far", 0, 10, time.Hour)
	loc := offsetNorth(here, 2500)
	e.Latitude, e.Longitude = loc.Lat, loc.Lng

	sink := &memSink{}
	n := testNotifier(t, &memLedger{}, sink)

	assert.Equal(t, 0, n.Recompute(context.Background(), []models.Event{e}, &here))
	assert.Empty(t, sink.all())
}

func TestNotifySkipsWithoutLocation(t *testing.T) {
	sink := &memSink{}
	n := testNotifier(t, &memLedger{}, sink)

	e := concert("a", 0, 10, time.Hour)
	assert.Equal(t, 0, n.Recompute(context.Background(), []models.Event{e}, nil))
	assert.Empty(t, sink.all())
}

func TestNotifySkipsWhenDisabled(t *testing.T) {
	here := models.LatLng{Lat: 0, Lng: 0}
	e := concert("a", 0, 10, time.Hour)
	e.Latitude, e.Longitude = here.Lat, here.Lng

	sink := &memSink{}
	n := testNotifier(t, &memLedger{}, sink)
	n.SetEnabled(false)

	assert.Equal(t, 0, n.Recompute(context.Background(), []models.Event{e}, &here))
	assert.Empty(t, sink.all())

	n.SetEnabled(true)
	assert.Equal(t, 1, n.Recompute(context.Background(), []models.Event{e}, &here))
}

func TestNotifySkipsStartedEvents(t *testing.T) {
	here := models.LatLng{Lat: 0, Lng: 0}
	e := concert("started", 0, 10, -time.Minute)
	e.Latitude, e.Longitude = here.Lat, here.Lng

	sink := &memSink{}
	n := testNotifier(t, &memLedger{}, sink)

	assert.Equal(t, 0, n.Recompute(context.Background(), []models.Event{e}, &here))
	assert.Empty(t, sink.all())
}

func TestLedgerRestoredAcrossSessions(t *testing.T) {
	here := models.LatLng{Lat: 0, Lng: 0}
	e := concert("seen", 0, 10, time.Hour)
	e.Latitude, e.Longitude = here.Lat, here.Lng

	ledger := &memLedger{ids: []string{"seen"}}
	sink := &memSink{}
	n := testNotifier(t, ledger, sink)

	assert.Equal(t, 0, n.Recompute(context.Background(), []models.Event{e}, &here))
	assert.Empty(t, sink.all())
	assert.Equal(t, 1, n.NotifiedCount())
}

func TestResetReArmsEvents(t *testing.T) {
	here := models.LatLng{Lat: 0, Lng: 0}
	e := concert("a", 0, 10, time.Hour)
	e.Latitude, e.Longitude = here.Lat, here.Lng

	ledger := &memLedger{}
	sink := &memSink{}
	n := testNotifier(t, ledger, sink)

	n.Recompute(context.Background(), []models.Event{e}, &here)
	require.Len(t, sink.all(), 1)

	require.NoError(t, n.Reset(context.Background()))
	assert.Empty(t, mustLoad(t, ledger))
	assert.Equal(t, 0, n.NotifiedCount())

	n.Recompute(context.Background(), []models.Event{e}, &here)
	assert.Len(t, sink.all(), 2)
}

func TestLedgerWriteFailureStillMarksInMemory(t *testing.T) {
	here := models.LatLng{Lat: 0, Lng: 0}
	e := concert("a", 0, 10, time.Hour)
	e.Latitude, e.Longitude = here.Lat, here.Lng

	ledger := &memLedger{failAdd: true}
	sink := &memSink{}
	n := testNotifier(t, ledger, sink)

	assert.Equal(t, 1, n.Recompute(context.Background(), []models.Event{e}, &here))
	assert.Equal(t, 0, n.Recompute(context.Background(), []models.Event{e}, &here))
	assert.Len(t, sink.all(), 1)
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "850 meters away", FormatDistance(850.4))
	assert.Equal(t, "1.8 km away", FormatDistance(1800))
	assert.Equal(t, "0 meters away", FormatDistance(0))
}

func mustLoad(t *testing.T, l Ledger) []string {
	t.Helper()
	ids, err := l.Load(context.Background())
	require.NoError(t, err)
	return ids
}
