package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType marks the direction of a balance mutation.
type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

// TransactionCategory explains why a balance moved.
type TransactionCategory string

const (
	CategoryOrderPayment    TransactionCategory = "ORDER_PAYMENT"
	CategoryOrderCommission TransactionCategory = "ORDER_COMMISSION"
	CategoryDeliveryFee     TransactionCategory = "DELIVERY_FEE"
	CategoryPayout          TransactionCategory = "PAYOUT"
	CategoryWalletTopup     TransactionCategory = "WALLET_TOPUP"
)

// TransactionRecord is one immutable ledger row. The sequence of records for
// an entity replays its available balance: BalanceBefore and BalanceAfter are
// snapshots of the available balance around this mutation, taken from the
// locked pre-transaction read.
type TransactionRecord struct {
	ID            string
	EntityType    EntityType
	EntityID      string
	Type          TransactionType
	Category      TransactionCategory
	Amount        decimal.Decimal
	Currency      string
	OrderID       *string
	Description   string
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	CreatedAt     time.Time
}

// Ref returns the owning wallet reference.
func (r *TransactionRecord) Ref() EntityRef {
	return EntityRef{Type: r.EntityType, ID: r.EntityID}
}

// Validate checks the record is well-formed before it is appended.
func (r *TransactionRecord) Validate() error {
	if err := r.Ref().Validate(); err != nil {
		return err
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// TransactionFilter narrows a transaction history query.
type TransactionFilter struct {
	Type     TransactionType     // optional, "" matches all
	Category TransactionCategory // optional, "" matches all
	Limit    int
	Offset   int
}
