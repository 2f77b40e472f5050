package handler

import (
	"context"
	"net/http"

	"github.com/quickdrop/ledger/internal/adapter/http/dto"
	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Summarize(ctx context.Context, ref domain.EntityRef) (*usecase.EarningsSummary, error)
	VerifyWallet(ctx context.Context, ref domain.EntityRef) (*usecase.WalletVerification, error)
	CheckConsistency(ctx context.Context, limit int) ([]*usecase.WalletDiscrepancy, error)
}

// LedgerHandler answers ledger-wide queries.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Summary returns an entity's lifetime credits and debits.
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledgerUC.Summarize(r.Context(), entityRefFromURL(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to summarize earnings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromUseCase(summary))
}

// Verify replays one wallet from its ledger rows.
func (h *LedgerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	verification, err := h.ledgerUC.VerifyWallet(r.Context(), entityRefFromURL(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify wallet", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.VerificationFromUseCase(verification))
}

// Consistency sweeps all wallets against the ledger identity.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	discrepancies, err := h.ledgerUC.CheckConsistency(r.Context(), parseIntQuery(r, "limit", 100))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "consistency check failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromUseCase(discrepancies))
}
