package services

import (
	"context"
	"freight-service/internal/domain"
	"freight-service/internal/platform/logger"
	"freight-service/internal/platform/metrics"
	"freight-service/internal/ports"
	"math"

	"go.uber.org/zap"
)

const (
	ReasonStoreNotFound         = "store not found"
	ReasonStoreAddressMissing   = "store has no registered address"
	ReasonStoreUnresolved       = "could not resolve store coordinates"
	ReasonDestinationUnresolved = "invalid or unfound destination postal code"
	ReasonDistanceError         = "distance computation error"
	ReasonBandsUnavailable      = "could not load delivery bands for this store"
	ReasonNoBands               = "no delivery bands configured for this store"
	ReasonOutOfArea             = "out of delivery area"
)

// Resolves coordinates for stores and destinations.
type Locator interface {
	ResolveAddress(ctx context.Context, address string) (domain.Coordinates, bool)
	ResolvePostalCode(ctx context.Context, code string) (domain.Coordinates, bool)
}

// FreightCalculator prices a delivery from a store to a destination postal
// code using the store's distance bands.
type FreightCalculator struct {
	stores  ports.StoreRepository
	locator Locator
	metrics *metrics.Metrics
}

func NewFreightCalculator(stores ports.StoreRepository, locator Locator, m *metrics.Metrics) *FreightCalculator {
	if m == nil {
		m = metrics.Nop()
	}
	return &FreightCalculator{stores: stores, locator: locator, metrics: m}
}

// CalculateFreight never returns an error: every failure is reported through
// the result's Failure and Reason.
func (f *FreightCalculator) CalculateFreight(ctx context.Context, storeID, destinationCEP string) domain.FreightResult {
	ctx = logger.WithFields(ctx, zap.String("store_id", storeID))

	res := f.calculate(ctx, storeID, destinationCEP)

	outcome := "priced"
	if !res.Priced() {
		outcome = res.Failure.String()
	}
	f.metrics.FreightCalculations.WithLabelValues(outcome).Inc()

	if res.Priced() {
		logger.Debug(ctx, "freight calculated",
			zap.Float64("distance_km", *res.DistanceKm),
			zap.String("band", res.Band.Name),
			zap.Float64("price", *res.Price),
		)
	} else {
		logger.Info(ctx, "freight not priced",
			zap.Stringer("failure", res.Failure),
			zap.String("reason", res.Reason),
		)
	}
	return res
}

func (f *FreightCalculator) calculate(ctx context.Context, storeID, destinationCEP string) domain.FreightResult {
	store, err := f.stores.GetStore(ctx, storeID)
	if err != nil || store == nil {
		if err != nil {
			logger.Warn(ctx, "store fetch failed", zap.Error(err))
		}
		return domain.FailedFreight(domain.FailureNotFound, ReasonStoreNotFound, nil)
	}

	if !store.HasAddress() {
		return domain.FailedFreight(domain.FailureConfigMissing, ReasonStoreAddressMissing, nil)
	}

	origin, ok := f.locator.ResolveAddress(ctx, store.Address)
	if !ok {
		return domain.FailedFreight(domain.FailureResolution, ReasonStoreUnresolved, nil)
	}

	destination, ok := f.locator.ResolvePostalCode(ctx, destinationCEP)
	if !ok {
		return domain.FailedFreight(domain.FailureResolution, ReasonDestinationUnresolved, nil)
	}

	distance := DistanceKm(origin, destination)
	if math.IsNaN(distance) || distance < 0 {
		return domain.FailedFreight(domain.FailureComputation, ReasonDistanceError, nil)
	}

	bands, err := f.stores.ListBands(ctx, storeID)
	if err != nil {
		logger.Warn(ctx, "band fetch failed", zap.Error(err))
		return domain.FailedFreight(domain.FailureNotFound, ReasonBandsUnavailable, &distance)
	}
	if len(bands) == 0 {
		return domain.FailedFreight(domain.FailureConfigMissing, ReasonNoBands, &distance)
	}

	bands = orderedBands(ctx, bands)

	if distance > bands[len(bands)-1].RadiusKm {
		return domain.OutOfArea(distance, ReasonOutOfArea)
	}

	band, ok := MatchBand(bands, distance)
	if !ok {
		return domain.OutOfArea(distance, ReasonOutOfArea)
	}
	return domain.PricedFreight(distance, band)
}

// MatchBand returns the first band whose range contains distanceKm.
// The first band covers [0, r1], each following band [r(i-1), r(i)], so a
// distance that falls exactly on a boundary belongs to the lower band.
// bands must be sorted by ascending radius.
func MatchBand(bands []domain.DeliveryBand, distanceKm float64) (domain.DeliveryBand, bool) {
	lower := 0.0
	for _, b := range bands {
		if distanceKm >= lower && distanceKm <= b.RadiusKm {
			return b, true
		}
		lower = b.RadiusKm
	}
	return domain.DeliveryBand{}, false
}

// orderedBands returns bands sorted by radius without touching the caller's
// slice, logging data the repository should never have handed back.
func orderedBands(ctx context.Context, bands []domain.DeliveryBand) []domain.DeliveryBand {
	out := append([]domain.DeliveryBand(nil), bands...)
	if !domain.SortBands(out) {
		logger.Warn(ctx, "delivery bands returned out of order")
	}
	for i := 1; i < len(out); i++ {
		if out[i].RadiusKm == out[i-1].RadiusKm {
			logger.Warn(ctx, "duplicate delivery band radius",
				zap.Float64("radius_km", out[i].RadiusKm),
				zap.String("band_id", out[i].ID),
			)
		}
	}
	return out
}
