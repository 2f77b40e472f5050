package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickdrop/ledger/internal/adapter/http/dto"
	"github.com/quickdrop/ledger/internal/commission"
	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	Settle(ctx context.Context, order domain.CompletedOrder) (*usecase.SettleResult, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Settlement, error)
}

// SettlementHandler handles settlement-related HTTP requests.
type SettlementHandler struct {
	settlementUC SettlementService
	currency     string
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService, currency string) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC, currency: currency}
}

// Settle distributes a completed order across the party wallets. Redelivered
// completion events return the original receipt with replayed set.
func (h *SettlementHandler) Settle(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.settlementUC.Settle(r.Context(), req.ToDomain())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to settle order", err.Error())
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	writeJSON(w, status, dto.SettlementFromResult(result))
}

// GetByOrder returns the settlement receipt for an order.
func (h *SettlementHandler) GetByOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	settlement, err := h.settlementUC.GetByOrderID(r.Context(), orderID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get settlement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(settlement))
}

// QuoteCourier prices a courier delivery before the order is placed.
func (h *SettlementHandler) QuoteCourier(w http.ResponseWriter, r *http.Request) {
	distanceKm := parseFloatQuery(r, "distance_km", 0)
	weightKg := parseFloatQuery(r, "weight_kg", 0)
	fragile := r.URL.Query().Get("fragile") == "true"

	if distanceKm < 0 || weightKg < 0 {
		writeError(w, http.StatusBadRequest, "invalid quote parameters", "distance and weight must be non-negative")
		return
	}

	pricing := commission.QuoteCourierPricing(distanceKm, weightKg, fragile)

	writeJSON(w, http.StatusOK, dto.CourierQuoteResponse{
		DeliveryFee: pricing.DeliveryFee,
		Total:       pricing.Total,
		DistanceKm:  pricing.DistanceKm,
		Currency:    h.currency,
	})
}
