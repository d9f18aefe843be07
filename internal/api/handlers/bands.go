package handlers

import (
	"context"
	"freight-service/internal/api/dto"
	"freight-service/internal/domain"
	"freight-service/internal/services"
	"net/http"
)

type BandManager interface {
	ListBands(ctx context.Context, storeID string) ([]domain.DeliveryBand, error)
	CreateBand(ctx context.Context, storeID string, in services.BandInput) (*domain.DeliveryBand, error)
	UpdateBand(ctx context.Context, storeID, bandID string, in services.BandInput) (*domain.DeliveryBand, error)
	DeleteBand(ctx context.Context, storeID, bandID string) error
}

type BandHandler struct {
	Bands BandManager
}

func (h *BandHandler) List(w http.ResponseWriter, r *http.Request) {
	bands, err := h.Bands.ListBands(r.Context(), r.PathValue("storeID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListBandsResponse{Bands: make([]dto.BandResponse, 0, len(bands))}
	for _, b := range bands {
		res.Bands = append(res.Bands, dto.NewBandResponse(b))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *BandHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeBand(w, r)
	if !ok {
		return
	}

	band, err := h.Bands.CreateBand(r.Context(), r.PathValue("storeID"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.NewBandResponse(*band))
}

func (h *BandHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeBand(w, r)
	if !ok {
		return
	}

	band, err := h.Bands.UpdateBand(r.Context(), r.PathValue("storeID"), r.PathValue("bandID"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewBandResponse(*band))
}

func (h *BandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Bands.DeleteBand(r.Context(), r.PathValue("storeID"), r.PathValue("bandID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBand(w http.ResponseWriter, r *http.Request) (services.BandInput, bool) {
	var req dto.BandRequest
	if !decodeJSON(w, r, &req) {
		return services.BandInput{}, false
	}
	if req.RadiusKm == nil || req.DeliveryPrice == nil {
		writeError(w, r, http.StatusBadRequest, "radius_km and delivery_price are required")
		return services.BandInput{}, false
	}

	return services.BandInput{
		Name:     req.Name,
		RadiusKm: *req.RadiusKm,
		Price:    *req.DeliveryPrice,
	}, true
}
