package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus is the state of a withdrawal request.
type PayoutStatus string

const (
	PayoutPending  PayoutStatus = "PENDING"
	PayoutApproved PayoutStatus = "APPROVED"
	PayoutRejected PayoutStatus = "REJECTED"
)

// BankDetails is the disbursement destination. The ledger stores it verbatim
// and never interprets it; the external payment rail does.
type BankDetails struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	BankCode      string `json:"bank_code,omitempty"`
}

// PayoutRequest is a withdrawal against a wallet's available balance.
// Funds are held in pending from creation until an operator decides.
// A request is immutable once it leaves PENDING.
type PayoutRequest struct {
	ID                string
	EntityType        EntityType
	EntityID          string
	Amount            decimal.Decimal
	Currency          string
	Status            PayoutStatus
	BankDetails       BankDetails
	RequestedAt       time.Time
	ProcessedAt       *time.Time
	ProcessedBy       string
	RejectionReason   string
	ExternalReference string
}

// Ref returns the owning wallet reference.
func (p *PayoutRequest) Ref() EntityRef {
	return EntityRef{Type: p.EntityType, ID: p.EntityID}
}

// Validate checks a new request before the hold is attempted.
func (p *PayoutRequest) Validate(minimum decimal.Decimal) error {
	if err := p.Ref().Validate(); err != nil {
		return err
	}
	if !p.EntityType.CanRequestPayout() {
		return ErrPayoutNotAllowed
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if p.Amount.LessThan(minimum) {
		return ErrBelowMinimumPayout
	}
	return nil
}

// EnsurePending guards the approve/reject transitions. Terminal states are
// never re-entered.
func (p *PayoutRequest) EnsurePending() error {
	if p.Status != PayoutPending {
		return ErrAlreadyProcessed
	}
	return nil
}
