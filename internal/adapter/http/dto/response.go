package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	EntityType       string          `json:"entity_type"`
	EntityID         string          `json:"entity_id"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	PendingBalance   decimal.Decimal `json:"pending_balance"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
	TotalEarned      decimal.Decimal `json:"total_earned"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	Currency         string          `json:"currency"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.WalletBalance) *WalletResponse {
	return &WalletResponse{
		EntityType:       string(w.EntityType),
		EntityID:         w.EntityID,
		AvailableBalance: w.AvailableBalance,
		PendingBalance:   w.PendingBalance,
		TotalBalance:     w.TotalBalance(),
		TotalEarned:      w.TotalEarned,
		TotalSpent:       w.TotalSpent,
		Currency:         w.Currency,
		UpdatedAt:        w.UpdatedAt,
	}
}

// TransactionResponse represents a ledger row in API responses.
type TransactionResponse struct {
	ID            string          `json:"id"`
	EntityType    string          `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	OrderID       *string         `json:"order_id,omitempty"`
	Description   string          `json:"description,omitempty"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.TransactionRecord) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		EntityType:    string(t.EntityType),
		EntityID:      t.EntityID,
		Type:          string(t.Type),
		Category:      string(t.Category),
		Amount:        t.Amount,
		Currency:      t.Currency,
		OrderID:       t.OrderID,
		Description:   t.Description,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		CreatedAt:     t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(records []*domain.TransactionRecord) []*TransactionResponse {
	result := make([]*TransactionResponse, len(records))
	for i, t := range records {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse wraps a transaction history page.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Count        int                    `json:"count"`
}

// PayoutResponse represents a payout request in API responses.
type PayoutResponse struct {
	ID                string             `json:"id"`
	EntityType        string             `json:"entity_type"`
	EntityID          string             `json:"entity_id"`
	Amount            decimal.Decimal    `json:"amount"`
	Currency          string             `json:"currency"`
	Status            string             `json:"status"`
	BankDetails       BankDetailsRequest `json:"bank_details"`
	RequestedAt       time.Time          `json:"requested_at"`
	ProcessedAt       *time.Time         `json:"processed_at,omitempty"`
	ProcessedBy       string             `json:"processed_by,omitempty"`
	RejectionReason   string             `json:"rejection_reason,omitempty"`
	ExternalReference string             `json:"external_reference,omitempty"`
}

// PayoutFromDomain converts a domain payout request to a response.
func PayoutFromDomain(p *domain.PayoutRequest) *PayoutResponse {
	return &PayoutResponse{
		ID:         p.ID,
		EntityType: string(p.EntityType),
		EntityID:   p.EntityID,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Status:     string(p.Status),
		BankDetails: BankDetailsRequest{
			AccountName:   p.BankDetails.AccountName,
			AccountNumber: p.BankDetails.AccountNumber,
			BankName:      p.BankDetails.BankName,
			BankCode:      p.BankDetails.BankCode,
		},
		RequestedAt:       p.RequestedAt,
		ProcessedAt:       p.ProcessedAt,
		ProcessedBy:       p.ProcessedBy,
		RejectionReason:   p.RejectionReason,
		ExternalReference: p.ExternalReference,
	}
}

// PayoutsFromDomain converts domain payout requests to responses.
func PayoutsFromDomain(payouts []*domain.PayoutRequest) []*PayoutResponse {
	result := make([]*PayoutResponse, len(payouts))
	for i, p := range payouts {
		result[i] = PayoutFromDomain(p)
	}
	return result
}

// ListPayoutsResponse wraps a payout listing page.
type ListPayoutsResponse struct {
	Payouts []*PayoutResponse `json:"payouts"`
	Count   int               `json:"count"`
}

// SettlementCreditResponse is one party's slice of a settlement.
type SettlementCreditResponse struct {
	EntityType    string          `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
}

// SettlementResponse represents a settlement receipt in API responses.
type SettlementResponse struct {
	ID          string                     `json:"id"`
	OrderID     string                     `json:"order_id"`
	Category    string                     `json:"category"`
	VendorID    string                     `json:"vendor_id,omitempty"`
	RiderID     string                     `json:"rider_id"`
	Total       decimal.Decimal            `json:"total"`
	PlatformCut decimal.Decimal            `json:"platform_cut"`
	VendorShare decimal.Decimal            `json:"vendor_share"`
	RiderFee    decimal.Decimal            `json:"rider_fee"`
	Credits     []SettlementCreditResponse `json:"credits"`
	Replayed    bool                       `json:"replayed"`
	CreatedAt   time.Time                  `json:"created_at"`
}

// SettlementFromResult converts a settlement outcome to a response.
func SettlementFromResult(res *usecase.SettleResult) *SettlementResponse {
	resp := SettlementFromDomain(res.Settlement)
	resp.Replayed = res.Replayed
	return resp
}

// SettlementFromDomain converts a settlement receipt to a response.
func SettlementFromDomain(s *domain.Settlement) *SettlementResponse {
	credits := s.Credits()
	creditResponses := make([]SettlementCreditResponse, len(credits))
	for i, c := range credits {
		creditResponses[i] = SettlementCreditResponse{
			EntityType:    string(c.EntityType),
			EntityID:      c.EntityID,
			Amount:        c.Amount,
			TransactionID: c.TransactionID,
		}
	}

	return &SettlementResponse{
		ID:          s.ID,
		OrderID:     s.OrderID,
		Category:    string(s.Category),
		VendorID:    s.VendorID,
		RiderID:     s.RiderID,
		Total:       s.Total,
		PlatformCut: s.PlatformCut,
		VendorShare: s.VendorShare,
		RiderFee:    s.RiderFee,
		Credits:     creditResponses,
		CreatedAt:   s.CreatedAt,
	}
}

// CourierQuoteResponse is a pre-order courier price quote.
type CourierQuoteResponse struct {
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	DistanceKm  float64         `json:"distance_km"`
	Currency    string          `json:"currency"`
}

// EarningsSummaryResponse aggregates an entity's lifetime money movement.
type EarningsSummaryResponse struct {
	EntityType   string          `json:"entity_type"`
	EntityID     string          `json:"entity_id"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	Available    decimal.Decimal `json:"available_balance"`
	Pending      decimal.Decimal `json:"pending_balance"`
}

// SummaryFromUseCase converts an earnings summary to a response.
func SummaryFromUseCase(s *usecase.EarningsSummary) *EarningsSummaryResponse {
	return &EarningsSummaryResponse{
		EntityType:   string(s.Ref.Type),
		EntityID:     s.Ref.ID,
		TotalCredits: s.TotalCredits,
		TotalDebits:  s.TotalDebits,
		Available:    s.Available,
		Pending:      s.Pending,
	}
}

// VerificationResponse reports a single wallet's replay check.
type VerificationResponse struct {
	EntityType        string          `json:"entity_type"`
	EntityID          string          `json:"entity_id"`
	Consistent        bool            `json:"consistent"`
	StoredAvailable   decimal.Decimal `json:"stored_available"`
	ReplayedAvailable decimal.Decimal `json:"replayed_available"`
	StoredPending     decimal.Decimal `json:"stored_pending"`
	HeldInPayouts     decimal.Decimal `json:"held_in_payouts"`
	ApprovedPayouts   decimal.Decimal `json:"approved_payouts"`
}

// VerificationFromUseCase converts a wallet verification to a response.
func VerificationFromUseCase(v *usecase.WalletVerification) *VerificationResponse {
	return &VerificationResponse{
		EntityType:        string(v.Ref.Type),
		EntityID:          v.Ref.ID,
		Consistent:        v.Consistent,
		StoredAvailable:   v.StoredAvailable,
		ReplayedAvailable: v.ReplayedAvailable,
		StoredPending:     v.StoredPending,
		HeldInPayouts:     v.HeldInPayouts,
		ApprovedPayouts:   v.ApprovedPayouts,
	}
}

// DiscrepancyResponse is one wallet failing the ledger identity.
type DiscrepancyResponse struct {
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Available  decimal.Decimal `json:"available_balance"`
	Pending    decimal.Decimal `json:"pending_balance"`
	Earned     decimal.Decimal `json:"total_earned"`
	Spent      decimal.Decimal `json:"total_spent"`
	PaidOut    decimal.Decimal `json:"paid_out"`
	Difference decimal.Decimal `json:"difference"`
}

// ConsistencyResponse wraps a consistency sweep result.
type ConsistencyResponse struct {
	Consistent    bool                   `json:"consistent"`
	Discrepancies []*DiscrepancyResponse `json:"discrepancies"`
}

// ConsistencyFromUseCase converts sweep discrepancies to a response.
func ConsistencyFromUseCase(discrepancies []*usecase.WalletDiscrepancy) *ConsistencyResponse {
	result := make([]*DiscrepancyResponse, len(discrepancies))
	for i, d := range discrepancies {
		result[i] = &DiscrepancyResponse{
			EntityType: string(d.Ref.Type),
			EntityID:   d.Ref.ID,
			Available:  d.Available,
			Pending:    d.Pending,
			Earned:     d.Earned,
			Spent:      d.Spent,
			PaidOut:    d.PaidOut,
			Difference: d.Difference,
		}
	}
	return &ConsistencyResponse{
		Consistent:    len(result) == 0,
		Discrepancies: result,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
