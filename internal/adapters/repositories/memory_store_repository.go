package repositories

import (
	"context"
	"freight-service/internal/domain"
	"freight-service/internal/platform/serrors"
	"freight-service/internal/ports"
	"sync"

	"github.com/google/uuid"
)

// In-memory implementation of the BandRepository port, used for local runs
// without a database and in tests.
type MemoryStoreRepository struct {
	mu     sync.RWMutex
	stores map[string]domain.Store
	bands  map[string][]domain.DeliveryBand
}

var _ ports.BandRepository = (*MemoryStoreRepository)(nil)

func NewMemoryStoreRepository() *MemoryStoreRepository {
	return &MemoryStoreRepository{
		stores: make(map[string]domain.Store),
		bands:  make(map[string][]domain.DeliveryBand),
	}
}

// Build a repository from a seed file.
func NewMemoryStoreRepositoryFromSeed(jsonPath string) (*MemoryStoreRepository, error) {
	seeds, err := LoadSeedFile(jsonPath)
	if err != nil {
		return nil, err
	}

	repo := NewMemoryStoreRepository()
	for _, s := range seeds {
		repo.PutStore(domain.Store{ID: s.ID, Name: s.Name, Address: s.Address})
		for _, b := range s.Bands {
			if _, err := repo.CreateBand(context.Background(), domain.DeliveryBand{
				StoreID:  s.ID,
				Name:     bandName(b),
				RadiusKm: b.RadiusKm,
				Price:    b.DeliveryPrice,
			}); err != nil {
				return nil, err
			}
		}
	}
	return repo, nil
}

// Insert or replace a store.
func (m *MemoryStoreRepository) PutStore(store domain.Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores[store.ID] = store
}

func (m *MemoryStoreRepository) GetStore(_ context.Context, id string) (*domain.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stores[id]
	if !ok {
		return nil, serrors.Wrap(serrors.ErrNotFound, ports.ErrStoreNotFound, "get store %q", id)
	}
	return &s, nil
}

func (m *MemoryStoreRepository) ListBands(_ context.Context, storeID string) ([]domain.DeliveryBand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]domain.DeliveryBand(nil), m.bands[storeID]...)
	domain.SortBands(out)
	return out, nil
}

func (m *MemoryStoreRepository) GetBand(_ context.Context, storeID, bandID string) (*domain.DeliveryBand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(storeID, bandID)
	if i < 0 {
		return nil, serrors.Wrap(serrors.ErrNotFound, ports.ErrBandNotFound, "get band %q", bandID)
	}
	b := m.bands[storeID][i]
	return &b, nil
}

func (m *MemoryStoreRepository) CreateBand(_ context.Context, band domain.DeliveryBand) (*domain.DeliveryBand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stores[band.StoreID]; !ok {
		return nil, serrors.Wrap(serrors.ErrNotFound, ports.ErrStoreNotFound, "create band: store %q", band.StoreID)
	}
	if m.radiusTaken(band.StoreID, "", band.RadiusKm) {
		return nil, serrors.With(serrors.ErrConflict, "create band: a band with this radius already exists")
	}

	band.ID = uuid.NewString()
	m.bands[band.StoreID] = append(m.bands[band.StoreID], band)
	return &band, nil
}

func (m *MemoryStoreRepository) UpdateBand(_ context.Context, band domain.DeliveryBand) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(band.StoreID, band.ID)
	if i < 0 {
		return serrors.Wrap(serrors.ErrNotFound, ports.ErrBandNotFound, "update band %q", band.ID)
	}
	if m.radiusTaken(band.StoreID, band.ID, band.RadiusKm) {
		return serrors.With(serrors.ErrConflict, "update band: a band with this radius already exists")
	}

	m.bands[band.StoreID][i] = band
	return nil
}

func (m *MemoryStoreRepository) DeleteBand(_ context.Context, storeID, bandID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(storeID, bandID)
	if i < 0 {
		return serrors.Wrap(serrors.ErrNotFound, ports.ErrBandNotFound, "delete band %q", bandID)
	}

	bands := m.bands[storeID]
	m.bands[storeID] = append(bands[:i:i], bands[i+1:]...)
	return nil
}

func (m *MemoryStoreRepository) indexOf(storeID, bandID string) int {
	for i, b := range m.bands[storeID] {
		if b.ID == bandID {
			return i
		}
	}
	return -1
}

func (m *MemoryStoreRepository) radiusTaken(storeID, exceptID string, radius float64) bool {
	for _, b := range m.bands[storeID] {
		if b.ID != exceptID && b.RadiusKm == radius {
			return true
		}
	}
	return false
}
