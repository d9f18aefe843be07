package services

import (
	"context"
	"errors"
	"freight-service/internal/adapters/cache"
	"freight-service/internal/adapters/geocoding"
	"freight-service/internal/domain"
	"freight-service/internal/platform/metrics"
	"freight-service/internal/ports"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const paulistaQuery = "Avenida Paulista, Bela Vista, São Paulo, SP, Brasil"

var paulistaCoords = domain.Coordinates{Lat: -23.5614, Lng: -46.6559}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type resolverFixture struct {
	resolver *CoordinateResolver
	postal   *geocoding.MockPostalLookup
	geocoder *geocoding.MockGeocoder
	cache    *cache.MemoryCoordinateCache
	clock    *clock
	metrics  *metrics.Metrics
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()

	f := &resolverFixture{
		postal: geocoding.NewMockPostalLookup(map[string]domain.PostalAddress{
			"01310100": {
				PostalCode:   "01310100",
				Street:       "Avenida Paulista",
				Neighborhood: "Bela Vista",
				City:         "São Paulo",
				State:        "SP",
			},
			"99999000": {PostalCode: "99999000", City: "Nowhere"},
		}),
		geocoder: geocoding.NewMockGeocoder(map[string]domain.Coordinates{
			paulistaQuery:                  paulistaCoords,
			"Rua Augusta, 500, São Paulo": {Lat: -23.55, Lng: -46.65},
		}),
		cache:   cache.NewMemoryCoordinateCache(),
		clock:   &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		metrics: metrics.Nop(),
	}
	f.resolver = NewCoordinateResolver(f.postal, f.geocoder, f.cache, ResolverOptions{
		Now:     f.clock.Now,
		Metrics: f.metrics,
	})
	return f
}

func TestResolvePostalCode(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	got, ok := f.resolver.ResolvePostalCode(ctx, "01310-100")
	require.True(t, ok)
	require.Equal(t, paulistaCoords, got)
	require.Equal(t, 1, f.postal.Calls())
	require.Equal(t, 1, f.geocoder.Calls(paulistaQuery))

	entry, cached, err := f.cache.Get(ctx, "01310100")
	require.NoError(t, err)
	require.True(t, cached)
	require.Equal(t, f.clock.Now(), entry.ResolvedAt)
}

func TestResolvePostalCodeMalformed(t *testing.T) {
	f := newResolverFixture(t)

	for _, code := range []string{"", "abc", "1234567", "123456789", "01310-10"} {
		_, ok := f.resolver.ResolvePostalCode(context.Background(), code)
		require.False(t, ok, code)
	}
	require.Zero(t, f.postal.Calls())
	require.Zero(t, f.geocoder.Calls())
}

func TestResolvePostalCodeCacheTTL(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	_, ok := f.resolver.ResolvePostalCode(ctx, "01310100")
	require.True(t, ok)

	f.clock.Advance(24*time.Hour - time.Second)
	_, ok = f.resolver.ResolvePostalCode(ctx, "01310-100")
	require.True(t, ok)
	require.Equal(t, 1, f.postal.Calls())
	require.Equal(t, 1, f.geocoder.Calls())

	f.clock.Advance(2 * time.Second)
	_, ok = f.resolver.ResolvePostalCode(ctx, "01310100")
	require.True(t, ok)
	require.Equal(t, 2, f.postal.Calls())
	require.Equal(t, 2, f.geocoder.Calls())

	entry, _, err := f.cache.Get(ctx, "01310100")
	require.NoError(t, err)
	require.Equal(t, f.clock.Now(), entry.ResolvedAt)

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("miss")))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("hit")))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheLookups.WithLabelValues("expired")))
}

func TestResolvePostalCodeFailuresAreNotCached(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	// Unknown to the lookup service.
	_, ok := f.resolver.ResolvePostalCode(ctx, "00000000")
	require.False(t, ok)
	require.Zero(t, f.geocoder.Calls())

	// Known postal code whose address the geocoder cannot place.
	_, ok = f.resolver.ResolvePostalCode(ctx, "99999000")
	require.False(t, ok)
	require.Equal(t, 1, f.geocoder.Calls("Nowhere, Brasil"))

	require.Zero(t, f.cache.Len())
}

func TestResolvePostalCodeLookupError(t *testing.T) {
	f := newResolverFixture(t)
	f.postal.Err = errors.New("connection refused")

	_, ok := f.resolver.ResolvePostalCode(context.Background(), "01310100")
	require.False(t, ok)
	require.Zero(t, f.geocoder.Calls())
}

type brokenCache struct{ puts atomic.Int32 }

func (c *brokenCache) Get(context.Context, string) (ports.CachedCoordinates, bool, error) {
	return ports.CachedCoordinates{}, false, errors.New("cache down")
}

func (c *brokenCache) Put(context.Context, string, ports.CachedCoordinates) error {
	c.puts.Add(1)
	return errors.New("cache down")
}

func TestResolvePostalCodeIgnoresCacheErrors(t *testing.T) {
	f := newResolverFixture(t)
	bc := &brokenCache{}
	r := NewCoordinateResolver(f.postal, f.geocoder, bc, ResolverOptions{Now: f.clock.Now})

	got, ok := r.ResolvePostalCode(context.Background(), "01310100")
	require.True(t, ok)
	require.Equal(t, paulistaCoords, got)
	require.Equal(t, int32(1), bc.puts.Load())
}

// gatedLookup blocks every call until release is closed.
type gatedLookup struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedLookup) LookupPostalCode(ctx context.Context, code string) (domain.PostalAddress, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return domain.PostalAddress{}, ctx.Err()
	}
	return domain.PostalAddress{Street: "Avenida Paulista", Neighborhood: "Bela Vista", City: "São Paulo", State: "SP"}, nil
}

func TestResolvePostalCodeDeduplicatesConcurrentCalls(t *testing.T) {
	f := newResolverFixture(t)
	lookup := &gatedLookup{started: make(chan struct{}), release: make(chan struct{})}
	r := NewCoordinateResolver(lookup, f.geocoder, f.cache, ResolverOptions{Now: f.clock.Now})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]bool, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = r.ResolvePostalCode(context.Background(), "01310-100")
		}()
	}

	<-lookup.started
	close(lookup.release)
	wg.Wait()

	for i, ok := range results {
		require.True(t, ok, "caller %d", i)
	}
	require.Equal(t, int32(1), lookup.calls.Load())
	require.Equal(t, 1, f.geocoder.Calls())
}

func TestResolvePostalCodeCallerCancellation(t *testing.T) {
	f := newResolverFixture(t)
	lookup := &gatedLookup{started: make(chan struct{}), release: make(chan struct{})}
	r := NewCoordinateResolver(lookup, f.geocoder, f.cache, ResolverOptions{Now: f.clock.Now})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool)
	go func() {
		_, ok := r.ResolvePostalCode(ctx, "01310100")
		done <- ok
	}()

	<-lookup.started
	cancel()
	require.False(t, <-done)

	// The shared flight keeps running and fills the cache for later callers.
	close(lookup.release)
	require.Eventually(t, func() bool { return f.cache.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestResolvePostalCodeTimeout(t *testing.T) {
	f := newResolverFixture(t)
	lookup := &gatedLookup{started: make(chan struct{}), release: make(chan struct{})}
	r := NewCoordinateResolver(lookup, f.geocoder, f.cache, ResolverOptions{
		Now:           f.clock.Now,
		LookupTimeout: 10 * time.Millisecond,
	})

	_, ok := r.ResolvePostalCode(context.Background(), "01310100")
	require.False(t, ok)
	require.Zero(t, f.geocoder.Calls())
}

func TestResolveAddress(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	_, ok := f.resolver.ResolveAddress(ctx, "   ")
	require.False(t, ok)
	require.Zero(t, f.geocoder.Calls())

	for range 2 {
		got, ok := f.resolver.ResolveAddress(ctx, " Rua Augusta, 500, São Paulo ")
		require.True(t, ok)
		require.Equal(t, domain.Coordinates{Lat: -23.55, Lng: -46.65}, got)
	}
	require.Equal(t, 2, f.geocoder.Calls("Rua Augusta, 500, São Paulo"))
	require.Zero(t, f.cache.Len())

	_, ok = f.resolver.ResolveAddress(ctx, "unknown place")
	require.False(t, ok)
}

func TestResolveAddressRejectsInvalidCoordinates(t *testing.T) {
	geocoder := geocoding.NewMockGeocoder(map[string]domain.Coordinates{"bad": {Lat: 200, Lng: 0}})
	r := NewCoordinateResolver(geocoding.NewMockPostalLookup(nil), geocoder, nil, ResolverOptions{})

	_, ok := r.ResolveAddress(context.Background(), "bad")
	require.False(t, ok)
}
