package services

import (
	"context"
	"errors"
	"fmt"
	"freight-service/internal/domain"
	"freight-service/internal/platform/obs"
	"freight-service/internal/platform/serrors"
	"freight-service/internal/ports"
	"strings"
)

// Values accepted when creating or updating a band.
type BandInput struct {
	Name     string
	RadiusKm float64
	Price    float64
}

// BandService manages a store's delivery bands and keeps each store's radii
// strictly ascending with no duplicates.
type BandService struct {
	repo ports.BandRepository
}

func NewBandService(repo ports.BandRepository) *BandService {
	return &BandService{repo: repo}
}

func (s *BandService) ListBands(ctx context.Context, storeID string) (_ []domain.DeliveryBand, err error) {
	defer obs.Time(ctx, "bands.ListBands")(&err)

	if _, err := s.repo.GetStore(ctx, storeID); err != nil {
		return nil, storeError(err, storeID)
	}

	bands, err := s.repo.ListBands(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list bands: %w", err)
	}
	domain.SortBands(bands)
	return bands, nil
}

func (s *BandService) CreateBand(ctx context.Context, storeID string, in BandInput) (_ *domain.DeliveryBand, err error) {
	defer obs.Time(ctx, "bands.CreateBand")(&err)

	band, err := s.prepare(ctx, storeID, "", in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateBand(ctx, band)
	if err != nil {
		return nil, fmt.Errorf("create band: %w", err)
	}
	return created, nil
}

func (s *BandService) UpdateBand(ctx context.Context, storeID, bandID string, in BandInput) (_ *domain.DeliveryBand, err error) {
	defer obs.Time(ctx, "bands.UpdateBand")(&err)

	if _, err := s.repo.GetBand(ctx, storeID, bandID); err != nil {
		return nil, bandError(err, bandID)
	}

	band, err := s.prepare(ctx, storeID, bandID, in)
	if err != nil {
		return nil, err
	}
	band.ID = bandID

	if err := s.repo.UpdateBand(ctx, band); err != nil {
		return nil, fmt.Errorf("update band: %w", err)
	}
	return &band, nil
}

func (s *BandService) DeleteBand(ctx context.Context, storeID, bandID string) (err error) {
	defer obs.Time(ctx, "bands.DeleteBand")(&err)

	if err := s.repo.DeleteBand(ctx, storeID, bandID); err != nil {
		return bandError(err, bandID)
	}
	return nil
}

// prepare validates input and checks it against the store's other bands.
func (s *BandService) prepare(ctx context.Context, storeID, bandID string, in BandInput) (domain.DeliveryBand, error) {
	band := domain.DeliveryBand{
		StoreID:  storeID,
		Name:     strings.TrimSpace(in.Name),
		RadiusKm: in.RadiusKm,
		Price:    in.Price,
	}
	if err := band.Validate(); err != nil {
		return domain.DeliveryBand{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid band")
	}
	if band.Name == "" {
		band.Name = domain.DefaultBandName(band.RadiusKm)
	}

	if _, err := s.repo.GetStore(ctx, storeID); err != nil {
		return domain.DeliveryBand{}, storeError(err, storeID)
	}

	existing, err := s.repo.ListBands(ctx, storeID)
	if err != nil {
		return domain.DeliveryBand{}, fmt.Errorf("list bands: %w", err)
	}
	for _, b := range existing {
		if b.ID != bandID && b.RadiusKm == band.RadiusKm {
			return domain.DeliveryBand{}, serrors.With(serrors.ErrConflict,
				"band %q already covers radius %s km", b.Name, formatKm(b.RadiusKm))
		}
	}

	return band, nil
}

func storeError(err error, storeID string) error {
	if errors.Is(err, ports.ErrStoreNotFound) {
		return serrors.Wrap(serrors.ErrNotFound, err, "store %q", storeID)
	}
	return fmt.Errorf("get store: %w", err)
}

func bandError(err error, bandID string) error {
	if errors.Is(err, ports.ErrBandNotFound) {
		return serrors.Wrap(serrors.ErrNotFound, err, "band %q", bandID)
	}
	return fmt.Errorf("band %q: %w", bandID, err)
}

func formatKm(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
