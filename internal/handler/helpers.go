package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/brightpath/planview-bfa-go/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// segmentIndex parses the {index} URL parameter (0-based).
func segmentIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ErrValidation{Field: "index", Message: "must be an integer"}
	}
	return idx, nil
}

// expandedSet parses the ?expanded=id1,id2 query parameter into the
// set handed to row decoration.
func expandedSet(r *http.Request) map[string]bool {
	raw := r.URL.Query().Get("expanded")
	if raw == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = true
		}
	}
	return set
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var validation *domain.ErrValidation
	var minSegment *domain.ErrMinimumSegment
	var badIndex *domain.ErrIndexOutOfRange
	var circuitOpen *domain.ErrCircuitOpen
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &minSegment):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &badIndex):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &circuitOpen):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &external):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("unhandled service error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
