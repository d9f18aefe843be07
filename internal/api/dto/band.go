package dto

import "freight-service/internal/domain"

// Pointers distinguish a missing field from an explicit zero.
type BandRequest struct {
	Name          string   `json:"name"`
	RadiusKm      *float64 `json:"radius_km"`
	DeliveryPrice *float64 `json:"delivery_price"`
}

type BandResponse struct {
	ID            string  `json:"id"`
	StoreID       string  `json:"store_id"`
	Name          string  `json:"name"`
	RadiusKm      float64 `json:"radius_km"`
	DeliveryPrice float64 `json:"delivery_price"`
}

func NewBandResponse(b domain.DeliveryBand) BandResponse {
	return BandResponse{
		ID:            b.ID,
		StoreID:       b.StoreID,
		Name:          b.Name,
		RadiusKm:      b.RadiusKm,
		DeliveryPrice: b.Price,
	}
}

type ListBandsResponse struct {
	Bands []BandResponse `json:"bands"`
}
