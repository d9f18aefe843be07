package services

import (
	"freight-service/internal/domain"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between a and b using the
// haversine formula, rounded half-up to two decimals.
// Non-finite inputs yield NaN.
func DistanceKm(a, b domain.Coordinates) float64 {
	for _, v := range []float64{a.Lat, a.Lng, b.Lat, b.Lng} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return math.NaN()
		}
	}

	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return roundHalfUp(EarthRadiusKm*c, 2)
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func roundHalfUp(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Floor(v*p+0.5) / p
}
