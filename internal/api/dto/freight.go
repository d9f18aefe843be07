package dto

import "freight-service/internal/domain"

// Freight calculation outcome. Price is null whenever the delivery cannot be priced.
type FreightResponse struct {
	Price      *float64      `json:"price"`
	InArea     bool          `json:"in_area"`
	DistanceKm *float64      `json:"distance_km"`
	Band       *BandResponse `json:"band,omitempty"`
	Error      string        `json:"error,omitempty"`
	Failure    string        `json:"failure,omitempty"`
}

func NewFreightResponse(r domain.FreightResult) FreightResponse {
	res := FreightResponse{
		Price:      r.Price,
		InArea:     r.InArea,
		DistanceKm: r.DistanceKm,
		Error:      r.Reason,
	}
	if r.Band != nil {
		b := NewBandResponse(*r.Band)
		res.Band = &b
	}
	if r.Failure != domain.FailureNone {
		res.Failure = r.Failure.String()
	}
	return res
}

type CoordinatesResponse struct {
	PostalCode string  `json:"postal_code"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}
