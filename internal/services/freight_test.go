package services

import (
	"context"
	"errors"
	"freight-service/internal/adapters/cache"
	"freight-service/internal/adapters/geocoding"
	"freight-service/internal/adapters/repositories"
	"freight-service/internal/domain"
	"freight-service/internal/platform/metrics"
	"freight-service/internal/ports"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// fakeLocator places the store at (0, 0) and each destination postal code
// at a fixed point.
type fakeLocator struct {
	store        domain.Coordinates
	storeOK      bool
	destinations map[string]domain.Coordinates
	addressCalls int
	postalCalls  int
}

func (l *fakeLocator) ResolveAddress(context.Context, string) (domain.Coordinates, bool) {
	l.addressCalls++
	return l.store, l.storeOK
}

func (l *fakeLocator) ResolvePostalCode(_ context.Context, code string) (domain.Coordinates, bool) {
	l.postalCalls++
	c, ok := l.destinations[code]
	return c, ok
}

// stubStores serves one store and a fixed band list.
type stubStores struct {
	store    *domain.Store
	storeErr error
	bands    []domain.DeliveryBand
	bandsErr error
}

func (s *stubStores) GetStore(context.Context, string) (*domain.Store, error) {
	if s.storeErr != nil {
		return nil, s.storeErr
	}
	if s.store == nil {
		return nil, ports.ErrStoreNotFound
	}
	return s.store, nil
}

func (s *stubStores) ListBands(context.Context, string) ([]domain.DeliveryBand, error) {
	return s.bands, s.bandsErr
}

var twoBands = []domain.DeliveryBand{
	{ID: "near", Name: "Up to 5 km", RadiusKm: 5, Price: 5},
	{ID: "far", Name: "Up to 10 km", RadiusKm: 10, Price: 8},
}

func newCalculator(stores ports.StoreRepository, distances ...float64) (*FreightCalculator, *fakeLocator) {
	loc := &fakeLocator{storeOK: true, destinations: map[string]domain.Coordinates{}}
	for _, d := range distances {
		loc.destinations[cepFor(d)] = pointEast(d)
	}
	return NewFreightCalculator(stores, loc, nil), loc
}

func cepFor(d float64) string { return "d=" + formatKm(d) }

func TestCalculateFreightBandBoundaries(t *testing.T) {
	stores := &stubStores{store: &domain.Store{ID: "s1", Address: "Rua A, 1"}, bands: twoBands}

	tests := []struct {
		distance float64
		price    float64
		band     string
	}{
		{0, 5, "near"},
		{2.5, 5, "near"},
		{5, 5, "near"},
		{5.01, 8, "far"},
		{10, 8, "far"},
	}

	distances := []float64{10.01}
	for _, tt := range tests {
		distances = append(distances, tt.distance)
	}
	calc, _ := newCalculator(stores, distances...)

	for _, tt := range tests {
		res := calc.CalculateFreight(context.Background(), "s1", cepFor(tt.distance))
		require.True(t, res.Priced(), "distance %v", tt.distance)
		require.True(t, res.InArea)
		require.Equal(t, tt.price, *res.Price)
		require.Equal(t, tt.distance, *res.DistanceKm)
		require.Equal(t, tt.band, res.Band.ID)
		require.Equal(t, domain.FailureNone, res.Failure)
		require.Empty(t, res.Reason)
	}

	res := calc.CalculateFreight(context.Background(), "s1", cepFor(10.01))
	require.Nil(t, res.Price)
	require.False(t, res.InArea)
	require.Equal(t, 10.01, *res.DistanceKm)
	require.Equal(t, domain.FailureOutOfArea, res.Failure)
	require.Equal(t, ReasonOutOfArea, res.Reason)
}

func TestCalculateFreightFailures(t *testing.T) {
	withAddress := &domain.Store{ID: "s1", Address: "Rua A, 1"}

	tests := []struct {
		name         string
		stores       *stubStores
		storeOK      bool
		cep          string
		failure      domain.FailureKind
		reason       string
		withDistance bool
	}{
		{
			name:    "store missing",
			stores:  &stubStores{},
			storeOK: true,
			cep:     cepFor(1),
			failure: domain.FailureNotFound,
			reason:  ReasonStoreNotFound,
		},
		{
			name:    "store fetch error",
			stores:  &stubStores{storeErr: errors.New("db down")},
			storeOK: true,
			cep:     cepFor(1),
			failure: domain.FailureNotFound,
			reason:  ReasonStoreNotFound,
		},
		{
			name:    "blank address",
			stores:  &stubStores{store: &domain.Store{ID: "s1", Address: "  "}, bands: twoBands},
			storeOK: true,
			cep:     cepFor(1),
			failure: domain.FailureConfigMissing,
			reason:  ReasonStoreAddressMissing,
		},
		{
			name:    "store not geocoded",
			stores:  &stubStores{store: withAddress, bands: twoBands},
			cep:     cepFor(1),
			failure: domain.FailureResolution,
			reason:  ReasonStoreUnresolved,
		},
		{
			name:    "destination not resolved",
			stores:  &stubStores{store: withAddress, bands: twoBands},
			storeOK: true,
			cep:     "00000000",
			failure: domain.FailureResolution,
			reason:  ReasonDestinationUnresolved,
		},
		{
			name:         "band fetch error",
			stores:       &stubStores{store: withAddress, bandsErr: errors.New("db down")},
			storeOK:      true,
			cep:          cepFor(1),
			failure:      domain.FailureNotFound,
			reason:       ReasonBandsUnavailable,
			withDistance: true,
		},
		{
			name:         "no bands",
			stores:       &stubStores{store: withAddress},
			storeOK:      true,
			cep:          cepFor(1),
			failure:      domain.FailureConfigMissing,
			reason:       ReasonNoBands,
			withDistance: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, loc := newCalculator(tt.stores, 1)
			loc.storeOK = tt.storeOK

			res := calc.CalculateFreight(context.Background(), "s1", tt.cep)
			require.Nil(t, res.Price)
			require.False(t, res.InArea)
			require.Nil(t, res.Band)
			require.Equal(t, tt.failure, res.Failure)
			require.Equal(t, tt.reason, res.Reason)
			if tt.withDistance {
				require.NotNil(t, res.DistanceKm)
				require.Equal(t, 1.0, *res.DistanceKm)
			} else {
				require.Nil(t, res.DistanceKm)
			}
		})
	}
}

func TestCalculateFreightBlankAddressSkipsGeocoding(t *testing.T) {
	stores := &stubStores{store: &domain.Store{ID: "s1"}, bands: twoBands}
	calc, loc := newCalculator(stores, 1)

	res := calc.CalculateFreight(context.Background(), "s1", cepFor(1))
	require.Equal(t, ReasonStoreAddressMissing, res.Reason)
	require.Zero(t, loc.addressCalls)
	require.Zero(t, loc.postalCalls)
}

func TestCalculateFreightNonFiniteCoordinates(t *testing.T) {
	stores := &stubStores{store: &domain.Store{ID: "s1", Address: "Rua A, 1"}, bands: twoBands}
	calc, loc := newCalculator(stores)
	loc.destinations["nan"] = domain.Coordinates{Lat: math.NaN()}

	res := calc.CalculateFreight(context.Background(), "s1", "nan")
	require.Equal(t, domain.FailureComputation, res.Failure)
	require.Equal(t, ReasonDistanceError, res.Reason)
	require.Nil(t, res.DistanceKm)
}

func TestCalculateFreightUnsortedBands(t *testing.T) {
	stores := &stubStores{
		store: &domain.Store{ID: "s1", Address: "Rua A, 1"},
		bands: []domain.DeliveryBand{twoBands[1], twoBands[0]},
	}
	calc, _ := newCalculator(stores, 4, 7)

	res := calc.CalculateFreight(context.Background(), "s1", cepFor(4))
	require.Equal(t, "near", res.Band.ID)
	res = calc.CalculateFreight(context.Background(), "s1", cepFor(7))
	require.Equal(t, "far", res.Band.ID)

	// The repository's slice is left as it was.
	require.Equal(t, "far", stores.bands[0].ID)
}

func TestCalculateFreightDuplicateRadiusFirstWins(t *testing.T) {
	stores := &stubStores{
		store: &domain.Store{ID: "s1", Address: "Rua A, 1"},
		bands: []domain.DeliveryBand{
			{ID: "a", RadiusKm: 5, Price: 5},
			{ID: "b", RadiusKm: 5, Price: 6},
		},
	}
	calc, _ := newCalculator(stores, 5)

	res := calc.CalculateFreight(context.Background(), "s1", cepFor(5))
	require.Equal(t, "a", res.Band.ID)
}

func TestCalculateFreightMetrics(t *testing.T) {
	m := metrics.Nop()
	stores := &stubStores{store: &domain.Store{ID: "s1", Address: "Rua A, 1"}, bands: twoBands}
	loc := &fakeLocator{storeOK: true, destinations: map[string]domain.Coordinates{
		"in":  pointEast(3),
		"out": pointEast(30),
	}}
	calc := NewFreightCalculator(stores, loc, m)

	calc.CalculateFreight(context.Background(), "s1", "in")
	calc.CalculateFreight(context.Background(), "s1", "out")
	calc.CalculateFreight(context.Background(), "s1", "missing")

	require.Equal(t, 1.0, testutil.ToFloat64(m.FreightCalculations.WithLabelValues("priced")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FreightCalculations.WithLabelValues("out_of_area")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FreightCalculations.WithLabelValues("resolution_failure")))
}

func TestMatchBand(t *testing.T) {
	_, ok := MatchBand(nil, 1)
	require.False(t, ok)

	_, ok = MatchBand(twoBands, -0.5)
	require.False(t, ok)

	b, ok := MatchBand(twoBands, 5)
	require.True(t, ok)
	require.Equal(t, "near", b.ID)

	_, ok = MatchBand(twoBands, 10.5)
	require.False(t, ok)
}

// End to end through the resolver, with a single geocode for the store
// and one lookup per destination.
func TestCalculateFreightWithResolver(t *testing.T) {
	ctx := context.Background()

	repo := repositories.NewMemoryStoreRepository()
	repo.PutStore(domain.Store{ID: "s1", Address: "Rua A, 1, São Paulo"})
	for _, b := range twoBands {
		_, err := repo.CreateBand(ctx, domain.DeliveryBand{StoreID: "s1", Name: b.Name, RadiusKm: b.RadiusKm, Price: b.Price})
		require.NoError(t, err)
	}
	repo.PutStore(domain.Store{ID: "empty"})

	postal := geocoding.NewMockPostalLookup(map[string]domain.PostalAddress{
		"01000000": {Street: "Rua B", City: "São Paulo", State: "SP"},
	})
	geocoder := geocoding.NewMockGeocoder(map[string]domain.Coordinates{
		"Rua A, 1, São Paulo":             {},
		"Rua B, São Paulo, SP, Brasil": pointEast(7),
	})
	resolver := NewCoordinateResolver(postal, geocoder, cache.NewMemoryCoordinateCache(), ResolverOptions{})
	calc := NewFreightCalculator(repo, resolver, nil)

	for range 2 {
		res := calc.CalculateFreight(ctx, "s1", "01000-000")
		require.True(t, res.Priced())
		require.Equal(t, 8.0, *res.Price)
		require.Equal(t, 7.0, *res.DistanceKm)
	}
	require.Equal(t, 1, postal.Calls())
	require.Equal(t, 2, geocoder.Calls("Rua A, 1, São Paulo"))
	require.Equal(t, 1, geocoder.Calls("Rua B, São Paulo, SP, Brasil"))

	res := calc.CalculateFreight(ctx, "empty", "01000000")
	require.Equal(t, ReasonStoreAddressMissing, res.Reason)
	require.Equal(t, 3, geocoder.Calls())

	res = calc.CalculateFreight(ctx, "s1", "123")
	require.Equal(t, ReasonDestinationUnresolved, res.Reason)
	require.Equal(t, 1, postal.Calls())

	res = calc.CalculateFreight(ctx, "nope", "01000000")
	require.Equal(t, domain.FailureNotFound, res.Failure)
}
