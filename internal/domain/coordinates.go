package domain

import "math"

// Immutable geographic coordinates in decimal degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Valid reports whether both components are finite and inside the
// latitude/longitude ranges.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}
