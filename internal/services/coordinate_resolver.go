package services

import (
	"context"
	"errors"
	"fmt"
	"freight-service/internal/domain"
	"freight-service/internal/platform/logger"
	"freight-service/internal/platform/metrics"
	"freight-service/internal/platform/obs"
	"freight-service/internal/ports"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCoordinateTTL = 24 * time.Hour
	DefaultLookupTimeout = 5 * time.Second
	DefaultCountrySuffix = "Brasil"
)

type ResolverOptions struct {
	// How long a cached postal-code resolution stays usable.
	TTL time.Duration
	// Upper bound for each external call.
	LookupTimeout time.Duration
	// Appended to the postal address before geocoding.
	CountrySuffix string
	Now           func() time.Time
	Metrics       *metrics.Metrics
}

func (o ResolverOptions) withDefaults() ResolverOptions {
	if o.TTL <= 0 {
		o.TTL = DefaultCoordinateTTL
	}
	if o.LookupTimeout <= 0 {
		o.LookupTimeout = DefaultLookupTimeout
	}
	if strings.TrimSpace(o.CountrySuffix) == "" {
		o.CountrySuffix = DefaultCountrySuffix
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Metrics == nil {
		o.Metrics = metrics.Nop()
	}
	return o
}

// CoordinateResolver turns postal codes and free-text addresses into
// coordinates. Postal-code resolutions are cached and concurrent resolutions
// of the same code share one set of external calls.
type CoordinateResolver struct {
	postal   ports.PostalLookup
	geocoder ports.Geocoder
	cache    ports.CoordinateCache
	opts     ResolverOptions
	inflight singleflight.Group
}

func NewCoordinateResolver(
	postal ports.PostalLookup,
	geocoder ports.Geocoder,
	cache ports.CoordinateCache,
	opts ResolverOptions,
) *CoordinateResolver {
	return &CoordinateResolver{
		postal:   postal,
		geocoder: geocoder,
		cache:    cache,
		opts:     opts.withDefaults(),
	}
}

// ResolvePostalCode returns the coordinates of a postal code.
// The second return value is false when the code is malformed or any step of
// the resolution fails; no error is surfaced to the caller.
func (r *CoordinateResolver) ResolvePostalCode(ctx context.Context, code string) (domain.Coordinates, bool) {
	norm, ok := domain.NormalizePostalCode(code)
	if !ok {
		logger.Debug(ctx, "malformed postal code", zap.String("postal_code", code))
		return domain.Coordinates{}, false
	}

	if c, ok := r.cached(ctx, norm); ok {
		return c, true
	}

	ch := r.inflight.DoChan(norm, func() (any, error) {
		// Shared by every waiter, so it must outlive the first caller's context.
		return r.resolveAndStore(context.WithoutCancel(ctx), norm)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			logger.Info(ctx, "postal code resolution failed",
				zap.String("postal_code", norm),
				zap.Bool("shared", res.Shared),
				zap.Error(res.Err),
			)
			return domain.Coordinates{}, false
		}
		return res.Val.(domain.Coordinates), true
	case <-ctx.Done():
		return domain.Coordinates{}, false
	}
}

// ResolveAddress geocodes free text without caching.
func (r *CoordinateResolver) ResolveAddress(ctx context.Context, address string) (domain.Coordinates, bool) {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Coordinates{}, false
	}

	c, err := r.geocode(ctx, address)
	if err != nil {
		logger.Info(ctx, "address geocoding failed", zap.String("address", address), zap.Error(err))
		return domain.Coordinates{}, false
	}
	return c, true
}

func (r *CoordinateResolver) cached(ctx context.Context, key string) (domain.Coordinates, bool) {
	c, result := r.peek(ctx, key)
	r.opts.Metrics.CacheLookups.WithLabelValues(result).Inc()
	return c, result == "hit"
}

// peek reads a fresh entry and reports hit, miss, expired or error.
func (r *CoordinateResolver) peek(ctx context.Context, key string) (domain.Coordinates, string) {
	if r.cache == nil {
		return domain.Coordinates{}, "miss"
	}

	entry, ok, err := r.cache.Get(ctx, key)
	switch {
	case err != nil:
		logger.Warn(ctx, "coordinate cache read failed", zap.String("postal_code", key), zap.Error(err))
		return domain.Coordinates{}, "error"
	case !ok:
		return domain.Coordinates{}, "miss"
	case r.opts.Now().Sub(entry.ResolvedAt) >= r.opts.TTL:
		return domain.Coordinates{}, "expired"
	}
	return entry.Coordinates, "hit"
}

func (r *CoordinateResolver) resolveAndStore(ctx context.Context, norm string) (_ any, err error) {
	defer obs.Time(ctx, "resolver.ResolvePostalCode")(&err)

	// A flight that finished between our cache read and DoChan already stored it.
	if c, result := r.peek(ctx, norm); result == "hit" {
		return c, nil
	}

	address, err := r.lookup(ctx, norm)
	if err != nil {
		return nil, err
	}

	coords, err := r.geocode(ctx, address.Query(r.opts.CountrySuffix))
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		entry := ports.CachedCoordinates{Coordinates: coords, ResolvedAt: r.opts.Now()}
		if err := r.cache.Put(ctx, norm, entry); err != nil {
			logger.Warn(ctx, "coordinate cache write failed", zap.String("postal_code", norm), zap.Error(err))
		}
	}

	return coords, nil
}

func (r *CoordinateResolver) lookup(ctx context.Context, code string) (domain.PostalAddress, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.LookupTimeout)
	defer cancel()

	start := time.Now()
	address, err := r.postal.LookupPostalCode(ctx, code)
	r.observe("postal_lookup", start, err, ports.ErrPostalCodeNotFound)
	if err != nil {
		return domain.PostalAddress{}, fmt.Errorf("lookup postal code %s: %w", code, err)
	}
	return address, nil
}

func (r *CoordinateResolver) geocode(ctx context.Context, query string) (domain.Coordinates, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.LookupTimeout)
	defer cancel()

	start := time.Now()
	coords, err := r.geocoder.Geocode(ctx, query)
	if err == nil && !coords.Valid() {
		err = fmt.Errorf("invalid coordinates %v", coords)
	}
	r.observe("geocode", start, err, ports.ErrNoGeocodeResult)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	return coords, nil
}

func (r *CoordinateResolver) observe(call string, start time.Time, err, notFound error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, notFound):
		status = "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		status = "timeout"
	default:
		status = "error"
	}
	r.opts.Metrics.ExternalCalls.WithLabelValues(call, status).Observe(time.Since(start).Seconds())
}
