package handlers

import (
	"context"
	"freight-service/internal/api/dto"
	"freight-service/internal/domain"
	"net/http"
	"strings"
)

type FreightCalculator interface {
	CalculateFreight(ctx context.Context, storeID, destinationCEP string) domain.FreightResult
}

type FreightHandler struct {
	Calculator FreightCalculator
}

// Quote prices a delivery from a store to the postal code in ?cep=.
// Unpriced outcomes are still 200: the body says why.
func (h *FreightHandler) Quote(w http.ResponseWriter, r *http.Request) {
	storeID := strings.TrimSpace(r.PathValue("storeID"))
	cep := strings.TrimSpace(r.URL.Query().Get("cep"))
	if cep == "" {
		writeError(w, r, http.StatusBadRequest, "cep is required")
		return
	}

	res := h.Calculator.CalculateFreight(r.Context(), storeID, cep)
	writeJSON(w, r, http.StatusOK, dto.NewFreightResponse(res))
}
