package handlers

import (
	"context"
	"freight-service/internal/api/dto"
	"freight-service/internal/domain"
	"net/http"
)

type PostalCodeResolver interface {
	ResolvePostalCode(ctx context.Context, code string) (domain.Coordinates, bool)
}

type PostalHandler struct {
	Resolver PostalCodeResolver
}

func (h *PostalHandler) Coordinates(w http.ResponseWriter, r *http.Request) {
	code, ok := domain.NormalizePostalCode(r.PathValue("cep"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "postal code must have 8 digits")
		return
	}

	c, ok := h.Resolver.ResolvePostalCode(r.Context(), code)
	if !ok {
		writeError(w, r, http.StatusNotFound, "postal code could not be resolved")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.CoordinatesResponse{PostalCode: code, Lat: c.Lat, Lng: c.Lng})
}
