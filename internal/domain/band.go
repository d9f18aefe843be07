package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

var (
	ErrInvalidRadius = errors.New("radius must be a positive number of kilometers")
	ErrInvalidPrice  = errors.New("delivery price must be zero or greater")
)

// Represents a store-configured distance tier.
// A band covers distances from the previous band's radius (or zero) up to
// and including RadiusKm, and charges a flat Price.
type DeliveryBand struct {
	ID       string
	StoreID  string
	Name     string
	RadiusKm float64
	Price    float64
}

// Validate checks the values of a single band.
func (b DeliveryBand) Validate() error {
	if math.IsNaN(b.RadiusKm) || math.IsInf(b.RadiusKm, 0) || b.RadiusKm <= 0 {
		return ErrInvalidRadius
	}
	if math.IsNaN(b.Price) || math.IsInf(b.Price, 0) || b.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// DefaultBandName is used when a band is created without a name.
func DefaultBandName(radiusKm float64) string {
	return "Up to " + strconv.FormatFloat(radiusKm, 'f', -1, 64) + " km"
}

// SortBands orders bands by ascending radius, keeping the relative order of
// equal radii. It reports whether the input was already sorted.
func SortBands(bands []DeliveryBand) bool {
	less := func(i, j int) bool { return bands[i].RadiusKm < bands[j].RadiusKm }
	if sort.SliceIsSorted(bands, less) {
		return true
	}
	sort.SliceStable(bands, less)
	return false
}

// ValidateBandChain checks that bands, in the given order, form a strictly
// ascending chain of valid bands.
func ValidateBandChain(bands []DeliveryBand) error {
	prev := 0.0
	for i, b := range bands {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("band #%d: %w", i+1, err)
		}
		if i > 0 && b.RadiusKm <= prev {
			return fmt.Errorf("band #%d: radius %.2f km does not exceed previous radius %.2f km", i+1, b.RadiusKm, prev)
		}
		prev = b.RadiusKm
	}
	return nil
}
