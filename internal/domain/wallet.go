package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntityType identifies the kind of party that owns a wallet.
type EntityType string

const (
	EntityPlatform EntityType = "PLATFORM"
	EntityVendor   EntityType = "VENDOR"
	EntityRider    EntityType = "RIDER"
	EntityUser     EntityType = "USER"
)

// PlatformEntityID is the fixed id of the single platform wallet.
const PlatformEntityID = "platform"

var validEntityTypes = map[EntityType]bool{
	EntityPlatform: true,
	EntityVendor:   true,
	EntityRider:    true,
	EntityUser:     true,
}

// IsValid checks if the entity type is known.
func (t EntityType) IsValid() bool {
	return validEntityTypes[t]
}

// CanRequestPayout reports whether this entity type is allowed to withdraw.
func (t EntityType) CanRequestPayout() bool {
	return t == EntityVendor || t == EntityRider
}

// EntityRef identifies a single wallet owner.
type EntityRef struct {
	Type EntityType
	ID   string
}

// PlatformRef returns the reference of the platform wallet.
func PlatformRef() EntityRef {
	return EntityRef{Type: EntityPlatform, ID: PlatformEntityID}
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s/%s", r.Type, r.ID)
}

// Validate checks the reference is usable as a wallet key.
func (r EntityRef) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidEntityType, r.Type)
	}
	if r.ID == "" {
		return ErrMissingEntityID
	}
	return nil
}

// WalletBalance is the durable balance record of one entity.
// Created lazily on first reference, never deleted.
type WalletBalance struct {
	EntityType       EntityType
	EntityID         string
	AvailableBalance decimal.Decimal
	PendingBalance   decimal.Decimal
	TotalEarned      decimal.Decimal
	TotalSpent       decimal.Decimal
	Currency         string
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewWalletBalance returns a zeroed wallet for the given owner.
func NewWalletBalance(ref EntityRef, currency string, now time.Time) *WalletBalance {
	return &WalletBalance{
		EntityType:       ref.Type,
		EntityID:         ref.ID,
		AvailableBalance: decimal.Zero,
		PendingBalance:   decimal.Zero,
		TotalEarned:      decimal.Zero,
		TotalSpent:       decimal.Zero,
		Currency:         currency,
		Version:          0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Ref returns the owner reference of this wallet.
func (w *WalletBalance) Ref() EntityRef {
	return EntityRef{Type: w.EntityType, ID: w.EntityID}
}

// TotalBalance is the sum of available and pending funds.
func (w *WalletBalance) TotalBalance() decimal.Decimal {
	return w.AvailableBalance.Add(w.PendingBalance)
}

// ValidateDebit checks that amount can leave the available balance.
func (w *WalletBalance) ValidateDebit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if w.AvailableBalance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// WalletDelta is a typed, conditional balance mutation. All fields are signed
// deltas; the store applies them only while both balances stay non-negative.
type WalletDelta struct {
	Available decimal.Decimal
	Pending   decimal.Decimal
	Earned    decimal.Decimal
	Spent     decimal.Decimal
}

// CreditDelta credits earned funds into the available balance.
func CreditDelta(amount decimal.Decimal) WalletDelta {
	return WalletDelta{Available: amount, Earned: amount}
}

// DebitDelta spends funds out of the available balance.
func DebitDelta(amount decimal.Decimal) WalletDelta {
	return WalletDelta{Available: amount.Neg(), Spent: amount}
}

// HoldDelta moves funds from available to pending for an in-flight payout.
func HoldDelta(amount decimal.Decimal) WalletDelta {
	return WalletDelta{Available: amount.Neg(), Pending: amount}
}

// ReleaseDelta returns held funds from pending to available.
func ReleaseDelta(amount decimal.Decimal) WalletDelta {
	return WalletDelta{Available: amount, Pending: amount.Neg()}
}

// DisburseDelta removes held funds permanently once a payout is approved.
// Lifetime totals are untouched: the funds were already counted as earned.
func DisburseDelta(amount decimal.Decimal) WalletDelta {
	return WalletDelta{Pending: amount.Neg()}
}

// IsZero reports whether the delta mutates nothing.
func (d WalletDelta) IsZero() bool {
	return d.Available.IsZero() && d.Pending.IsZero() && d.Earned.IsZero() && d.Spent.IsZero()
}
