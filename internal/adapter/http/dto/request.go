package dto

import (
	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

// TopUpRequest credits a user wallet from an already-collected payment.
type TopUpRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	PaymentReference string          `json:"payment_reference"`
}

// DebitOrderRequest spends from a user wallet to pay for an order.
type DebitOrderRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	OrderID string          `json:"order_id"`
}

// OrderPricingRequest is the money shape of a completed order.
type OrderPricingRequest struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	DistanceKm  float64         `json:"distance_km,omitempty"`
}

// SettleOrderRequest is an order-completion event submitted for settlement.
type SettleOrderRequest struct {
	OrderID  string              `json:"order_id"`
	Category string              `json:"category"`
	VendorID string              `json:"vendor_id,omitempty"`
	RiderID  string              `json:"rider_id"`
	Pricing  OrderPricingRequest `json:"pricing"`
}

// ToDomain converts to the settlement engine's input event.
func (r *SettleOrderRequest) ToDomain() domain.CompletedOrder {
	return domain.CompletedOrder{
		OrderID:  r.OrderID,
		Category: domain.OrderCategory(r.Category),
		VendorID: r.VendorID,
		RiderID:  r.RiderID,
		Pricing: domain.OrderPricing{
			Subtotal:    r.Pricing.Subtotal,
			DeliveryFee: r.Pricing.DeliveryFee,
			Total:       r.Pricing.Total,
			DistanceKm:  r.Pricing.DistanceKm,
		},
	}
}

// BankDetailsRequest is the disbursement destination for a payout.
type BankDetailsRequest struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	BankCode      string `json:"bank_code,omitempty"`
}

// RequestPayoutRequest opens a withdrawal against a wallet.
type RequestPayoutRequest struct {
	EntityType  string             `json:"entity_type"`
	EntityID    string             `json:"entity_id"`
	Amount      decimal.Decimal    `json:"amount"`
	BankDetails BankDetailsRequest `json:"bank_details"`
}

// ToUseCaseInput converts to use case input.
func (r *RequestPayoutRequest) ToUseCaseInput() usecase.RequestPayoutInput {
	return usecase.RequestPayoutInput{
		Ref: domain.EntityRef{
			Type: domain.EntityType(r.EntityType),
			ID:   r.EntityID,
		},
		Amount: r.Amount,
		BankDetails: domain.BankDetails{
			AccountName:   r.BankDetails.AccountName,
			AccountNumber: r.BankDetails.AccountNumber,
			BankName:      r.BankDetails.BankName,
			BankCode:      r.BankDetails.BankCode,
		},
	}
}

// ApprovePayoutRequest carries the payment rail reference for a disbursement.
type ApprovePayoutRequest struct {
	ExternalReference string `json:"external_reference,omitempty"`
}

// RejectPayoutRequest carries the mandatory rejection reason.
type RejectPayoutRequest struct {
	Reason string `json:"reason"`
}
