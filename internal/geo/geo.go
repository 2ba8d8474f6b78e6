package geo

import (
	"math"

	"citypulse/internal/models"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters computes the great-circle distance between two
// coordinates using the haversine formula. Commutative;
// DistanceMeters(a, a) == 0. Coordinates are not validated.
func DistanceMeters(a, b models.LatLng) float64 {
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)
	deltaLat := degreesToRadians(b.Lat - a.Lat)
	deltaLng := degreesToRadians(b.Lng - a.Lng)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
