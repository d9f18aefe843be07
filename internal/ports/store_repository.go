package ports

import (
	"context"
	"errors"
	"freight-service/internal/domain"
)

var (
	ErrStoreNotFound = errors.New("store not found")
	ErrBandNotFound  = errors.New("delivery band not found")
)

// Port: read access to stores and their delivery bands.
type StoreRepository interface {
	// Return the store with the given id or ErrStoreNotFound.
	GetStore(ctx context.Context, id string) (*domain.Store, error)
	// Return the store's bands ordered by ascending radius.
	ListBands(ctx context.Context, storeID string) ([]domain.DeliveryBand, error)
}

// Port: write access to delivery bands.
type BandRepository interface {
	StoreRepository

	GetBand(ctx context.Context, storeID, bandID string) (*domain.DeliveryBand, error)
	// Persist a new band. The repository assigns the ID.
	CreateBand(ctx context.Context, band domain.DeliveryBand) (*domain.DeliveryBand, error)
	UpdateBand(ctx context.Context, band domain.DeliveryBand) error
	DeleteBand(ctx context.Context, storeID, bandID string) error
}
