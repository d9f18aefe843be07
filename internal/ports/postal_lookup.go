package ports

import (
	"context"
	"errors"
	"freight-service/internal/domain"
)

// ErrPostalCodeNotFound is returned when the lookup service reports the
// postal code as non-existent.
var ErrPostalCodeNotFound = errors.New("postal code not found")

// Contract for resolving a normalized 8-digit postal code to a structured address.
type PostalLookup interface {
	LookupPostalCode(ctx context.Context, code string) (domain.PostalAddress, error)
}
