package domain

import "time"

// Event types
const (
	EventTypeSettlementCompleted = "settlement.completed"
	EventTypePayoutRequested     = "payout.requested"
	EventTypePayoutApproved      = "payout.approved"
	EventTypePayoutRejected      = "payout.rejected"
	EventTypeWalletCredited      = "wallet.credited"
	EventTypeWalletDebited       = "wallet.debited"
)

// Aggregate types
const (
	AggregateTypeSettlement = "settlement"
	AggregateTypePayout     = "payout"
	AggregateTypeWallet     = "wallet"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// SettlementCompletedEvent payload
type SettlementCompletedEvent struct {
	SettlementID string `json:"settlement_id"`
	OrderID      string `json:"order_id"`
	Total        string `json:"total"`
	PlatformCut  string `json:"platform_cut"`
	VendorShare  string `json:"vendor_share"`
	RiderFee     string `json:"rider_fee"`
	Currency     string `json:"currency"`
}

// PayoutRequestedEvent payload
type PayoutRequestedEvent struct {
	PayoutID   string `json:"payout_id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
}

// PayoutDecidedEvent payload, shared by approvals and rejections.
type PayoutDecidedEvent struct {
	PayoutID    string `json:"payout_id"`
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
	Amount      string `json:"amount"`
	ProcessedBy string `json:"processed_by"`
	Reason      string `json:"reason,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

// WalletMutatedEvent payload for top-ups and order-payment debits.
type WalletMutatedEvent struct {
	TransactionID string `json:"transaction_id"`
	EntityType    string `json:"entity_type"`
	EntityID      string `json:"entity_id"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
}
