package repositories

import (
	"encoding/json"
	"fmt"
	"freight-service/internal/domain"
	"os"
	"strings"
)

type BandSeed struct {
	Name          string  `json:"name"`
	RadiusKm      float64 `json:"radius_km"`
	DeliveryPrice float64 `json:"delivery_price"`
}

type StoreSeed struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Address string     `json:"address"`
	Bands   []BandSeed `json:"bands"`
}

// Read and validate store seed data from a JSON file.
func LoadSeedFile(jsonPath string) ([]StoreSeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed stores: read %q: %w", jsonPath, err)
	}

	var data []StoreSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed stores: parse json: %w", err)
	}

	seen := make(map[string]struct{}, len(data))
	for i := range data {
		s := &data[i]
		s.ID = strings.TrimSpace(s.ID)
		if s.ID == "" {
			return nil, fmt.Errorf("seed stores: item at index %d: id cannot be empty", i+1)
		}
		if _, ok := seen[s.ID]; ok {
			return nil, fmt.Errorf("seed stores: duplicate store id %q", s.ID)
		}
		seen[s.ID] = struct{}{}

		bands := make([]domain.DeliveryBand, 0, len(s.Bands))
		for _, b := range s.Bands {
			bands = append(bands, domain.DeliveryBand{RadiusKm: b.RadiusKm, Price: b.DeliveryPrice})
		}
		domain.SortBands(bands)
		if err := domain.ValidateBandChain(bands); err != nil {
			return nil, fmt.Errorf("seed stores: store %q: %w", s.ID, err)
		}
	}

	return data, nil
}

func bandName(b BandSeed) string {
	if n := strings.TrimSpace(b.Name); n != "" {
		return n
	}
	return domain.DefaultBandName(b.RadiusKm)
}
