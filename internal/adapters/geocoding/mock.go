package geocoding

import (
	"context"
	"fmt"
	"freight-service/internal/domain"
	"freight-service/internal/ports"
	"sync"
)

// MockGeocoder answers from a fixed address table and counts calls.
type MockGeocoder struct {
	mu     sync.Mutex
	coords map[string]domain.Coordinates
	calls  map[string]int
	Err    error
}

func NewMockGeocoder(coords map[string]domain.Coordinates) *MockGeocoder {
	return &MockGeocoder{coords: coords, calls: map[string]int{}}
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[address]++
	if m.Err != nil {
		return domain.Coordinates{}, m.Err
	}
	c, ok := m.coords[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, ports.ErrNoGeocodeResult)
	}
	return c, nil
}

// Calls returns the number of Geocode calls; with no argument, across all addresses.
func (m *MockGeocoder) Calls(address ...string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for a, c := range m.calls {
		if len(address) == 0 || a == address[0] {
			n += c
		}
	}
	return n
}

// MockPostalLookup answers from a fixed postal-code table and counts calls.
type MockPostalLookup struct {
	mu        sync.Mutex
	addresses map[string]domain.PostalAddress
	calls     int
	Err       error
}

func NewMockPostalLookup(addresses map[string]domain.PostalAddress) *MockPostalLookup {
	return &MockPostalLookup{addresses: addresses}
}

func (m *MockPostalLookup) LookupPostalCode(ctx context.Context, code string) (domain.PostalAddress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.Err != nil {
		return domain.PostalAddress{}, m.Err
	}
	a, ok := m.addresses[code]
	if !ok {
		return domain.PostalAddress{}, ports.ErrPostalCodeNotFound
	}
	return a, nil
}

func (m *MockPostalLookup) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
