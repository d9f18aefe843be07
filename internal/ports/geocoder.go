package ports

import (
	"context"
	"errors"
	"freight-service/internal/domain"
)

// ErrNoGeocodeResult is returned when a provider answers with an empty result set.
var ErrNoGeocodeResult = errors.New("no geocode result")

// Contract for turning free-text addresses into coordinates.
type Geocoder interface {
	// Return the first (highest-confidence) match for the address.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}
