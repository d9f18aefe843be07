package handlers

import (
	"encoding/json"
	"errors"
	"freight-service/internal/platform/logger"
	"freight-service/internal/platform/serrors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(r.Context(), "encode failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps an error's semantic kind to a status code.
// Internal errors are logged and hidden from the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch serrors.KindOf(err) {
	case serrors.ErrNotFound:
		status = http.StatusNotFound
	case serrors.ErrBadRequest:
		status = http.StatusBadRequest
	case serrors.ErrConflict:
		status = http.StatusConflict
	case serrors.ErrUnavailable:
		status = http.StatusServiceUnavailable
	default:
		logger.Error(r.Context(), "request failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeError(w, r, status, err.Error())
}

// decodeJSON reads exactly one JSON object with no unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
