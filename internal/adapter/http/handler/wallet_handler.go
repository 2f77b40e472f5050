package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/adapter/http/dto"
	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	GetBalance(ctx context.Context, ref domain.EntityRef) (*domain.WalletBalance, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.TransactionRecord, error)
	TopUp(ctx context.Context, ref domain.EntityRef, amount decimal.Decimal, paymentReference string) (*domain.TransactionRecord, error)
	DebitForOrder(ctx context.Context, ref domain.EntityRef, amount decimal.Decimal, orderID string) (*domain.TransactionRecord, error)
}

// WalletHandler handles wallet-related HTTP requests.
type WalletHandler struct {
	walletUC WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService) *WalletHandler {
	return &WalletHandler{walletUC: walletUC}
}

// GetBalance returns the wallet of an entity, creating it on first read.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.walletUC.GetBalance(r.Context(), entityRefFromURL(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// ListTransactions returns an entity's ledger rows, newest first.
func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	records, err := h.walletUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		Ref:      entityRefFromURL(r),
		Type:     domain.TransactionType(r.URL.Query().Get("type")),
		Category: domain.TransactionCategory(r.URL.Query().Get("category")),
		Limit:    parseIntQuery(r, "limit", 20),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(records),
		Count:        len(records),
	})
}

// TopUp credits a user wallet from an external payment.
func (h *WalletHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	var req dto.TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, err := h.walletUC.TopUp(r.Context(), entityRefFromURL(r), req.Amount, req.PaymentReference)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to top up wallet", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(record))
}

// DebitForOrder spends from a user wallet to pay for an order.
func (h *WalletHandler) DebitForOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.DebitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, err := h.walletUC.DebitForOrder(r.Context(), entityRefFromURL(r), req.Amount, req.OrderID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to debit wallet", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(record))
}
