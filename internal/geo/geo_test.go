package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"citypulse/internal/models"
)

func TestDistanceSamePoint(t *testing.T) {
	p := models.LatLng{Lat: 37.9838, Lng: 23.7275}
	assert.Equal(t, 0.0, DistanceMeters(p, p))
}

func TestDistanceSymmetry(t *testing.T) {
	a := models.LatLng{Lat: 37.9838, Lng: 23.7275}  // Athens
	b := models.LatLng{Lat: 37.9420, Lng: 23.6460}  // Piraeus
	assert.InDelta(t, DistanceMeters(a, b), DistanceMeters(b, a), 1e-9)
}

func TestDistanceKnownValues(t *testing.T) {
	// Athens center to Piraeus, roughly 8.5 km.
	athens := models.LatLng{Lat: 37.9838, Lng: 23.7275}
	piraeus := models.LatLng{Lat: 37.9420, Lng: 23.6460}
	d := DistanceMeters(athens, piraeus)
	assert.InDelta(t, 8500, d, 500)

	// One degree of latitude on the equator is about 111.2 km.
	d = DistanceMeters(models.LatLng{Lat: 0, Lng: 0}, models.LatLng{Lat: 1, Lng: 0})
	assert.InDelta(t, 111195, d, 100)
}

func TestDistanceShortRange(t *testing.T) {
	// ~200 m apart, the scale the proximity radius operates at.
	a := models.LatLng{Lat: 37.98380, Lng: 23.72750}
	b := models.LatLng{Lat: 37.98560, Lng: 23.72750}
	assert.InDelta(t, 200, DistanceMeters(a, b), 5)
}
