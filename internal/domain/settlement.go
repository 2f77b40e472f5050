package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement is the durable receipt of one order's fund distribution.
// Exactly one exists per order id; a redelivered completion event maps back
// to the original receipt instead of crediting anyone twice.
type Settlement struct {
	ID            string
	OrderID       string
	Category      OrderCategory
	VendorID      string // empty for courier orders
	RiderID       string
	Total         decimal.Decimal
	PlatformCut   decimal.Decimal
	VendorShare   decimal.Decimal
	RiderFee      decimal.Decimal
	PlatformTxnID string
	VendorTxnID   *string // nil when no vendor participated
	RiderTxnID    string
	CreatedAt     time.Time
}

// SettlementCredit is one party's slice of a settlement, returned to callers
// for observability.
type SettlementCredit struct {
	EntityType    EntityType
	EntityID      string
	Amount        decimal.Decimal
	TransactionID string
}

// Credits expands the receipt into per-party credits, omitting parties with
// no share.
func (s *Settlement) Credits() []SettlementCredit {
	credits := make([]SettlementCredit, 0, 3)
	if s.PlatformCut.IsPositive() {
		credits = append(credits, SettlementCredit{
			EntityType:    EntityPlatform,
			EntityID:      PlatformEntityID,
			Amount:        s.PlatformCut,
			TransactionID: s.PlatformTxnID,
		})
	}
	if s.VendorTxnID != nil && s.VendorShare.IsPositive() {
		credits = append(credits, SettlementCredit{
			EntityType:    EntityVendor,
			EntityID:      s.VendorID,
			Amount:        s.VendorShare,
			TransactionID: *s.VendorTxnID,
		})
	}
	if s.RiderFee.IsPositive() {
		credits = append(credits, SettlementCredit{
			EntityType:    EntityRider,
			EntityID:      s.RiderID,
			Amount:        s.RiderFee,
			TransactionID: s.RiderTxnID,
		})
	}
	return credits
}
