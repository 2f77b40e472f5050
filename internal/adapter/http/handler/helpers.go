package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quickdrop/ledger/internal/adapter/http/dto"
	"github.com/quickdrop/ledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrPayoutNotFound),
		errors.Is(err, domain.ErrSettlementNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOrderAlreadySettled),
		errors.Is(err, domain.ErrAlreadyProcessed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidEntityType),
		errors.Is(err, domain.ErrMissingEntityID),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrBelowMinimumPayout),
		errors.Is(err, domain.ErrPayoutNotAllowed),
		errors.Is(err, domain.ErrMissingOrderID),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrMissingRider),
		errors.Is(err, domain.ErrMissingVendor),
		errors.Is(err, domain.ErrMissingReason),
		errors.Is(err, domain.ErrSplitMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// entityRefFromURL builds a wallet reference from the route parameters.
func entityRefFromURL(r *http.Request) domain.EntityRef {
	return domain.EntityRef{
		Type: domain.EntityType(chi.URLParam(r, "entityType")),
		ID:   chi.URLParam(r, "entityID"),
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseFloatQuery parses a float query parameter with a default value.
func parseFloatQuery(r *http.Request, key string, defaultValue float64) float64 {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
