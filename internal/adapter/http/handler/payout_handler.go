package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickdrop/ledger/internal/adapter/http/dto"
	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

// PayoutService defines the behavior needed by PayoutHandler.
type PayoutService interface {
	RequestPayout(ctx context.Context, input usecase.RequestPayoutInput) (*domain.PayoutRequest, error)
	ApprovePayout(ctx context.Context, payoutID, externalReference string) (*domain.PayoutRequest, error)
	RejectPayout(ctx context.Context, payoutID, reason string) (*domain.PayoutRequest, error)
	GetPayout(ctx context.Context, payoutID string) (*domain.PayoutRequest, error)
	ListPayouts(ctx context.Context, ref domain.EntityRef, limit, offset int) ([]*domain.PayoutRequest, error)
	ListByStatus(ctx context.Context, status domain.PayoutStatus, limit, offset int) ([]*domain.PayoutRequest, error)
}

// PayoutHandler handles payout-related HTTP requests.
type PayoutHandler struct {
	payoutUC PayoutService
}

// NewPayoutHandler creates a new PayoutHandler.
func NewPayoutHandler(payoutUC PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutUC: payoutUC}
}

// Request opens a withdrawal and holds its amount from the wallet.
func (h *PayoutHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payout, err := h.payoutUC.RequestPayout(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to request payout", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PayoutFromDomain(payout))
}

// Get retrieves a payout request by ID.
func (h *PayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	payout, err := h.payoutUC.GetPayout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get payout", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PayoutFromDomain(payout))
}

// ListByEntity lists an entity's payout requests, newest first.
func (h *PayoutHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	payouts, err := h.payoutUC.ListPayouts(r.Context(), entityRefFromURL(r),
		parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list payouts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListPayoutsResponse{
		Payouts: dto.PayoutsFromDomain(payouts),
		Count:   len(payouts),
	})
}

// ListByStatus lists payout requests in a given status, oldest first, so
// operators work the queue in arrival order.
func (h *PayoutHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.PayoutStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.PayoutPending
	}

	payouts, err := h.payoutUC.ListByStatus(r.Context(), status,
		parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list payouts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListPayoutsResponse{
		Payouts: dto.PayoutsFromDomain(payouts),
		Count:   len(payouts),
	})
}

// Approve marks a pending payout as disbursed.
func (h *PayoutHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req dto.ApprovePayoutRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	payout, err := h.payoutUC.ApprovePayout(r.Context(), chi.URLParam(r, "id"), req.ExternalReference)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to approve payout", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PayoutFromDomain(payout))
}

// Reject declines a pending payout and releases the held funds.
func (h *PayoutHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req dto.RejectPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payout, err := h.payoutUC.RejectPayout(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reject payout", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PayoutFromDomain(payout))
}
