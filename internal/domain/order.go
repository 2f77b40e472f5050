package domain

import (
	"github.com/shopspring/decimal"
)

// OrderCategory selects the commission formula. Food and mart orders carry a
// vendor; courier orders move a package with no vendor involved.
type OrderCategory string

const (
	CategoryFood    OrderCategory = "FOOD"
	CategoryMart    OrderCategory = "MART"
	CategoryCourier OrderCategory = "COURIER"
)

// IsMerchant reports whether the category belongs to the merchant family
// (subtotal + delivery fee, vendor receives the subtotal remainder).
func (c OrderCategory) IsMerchant() bool {
	return c == CategoryFood || c == CategoryMart
}

// IsValid checks if the category is known.
func (c OrderCategory) IsValid() bool {
	return c.IsMerchant() || c == CategoryCourier
}

// OrderPricing is the money shape of a completed order, in minor units.
type OrderPricing struct {
	Subtotal    decimal.Decimal // zero for courier orders
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
	DistanceKm  float64 // informational, courier orders only
}

// CompletedOrder is the order-completion event consumed by the settlement
// engine. The order state machine that produced it lives outside this core;
// delivery is at-least-once.
type CompletedOrder struct {
	OrderID  string
	Category OrderCategory
	VendorID string // empty for courier orders
	RiderID  string
	Pricing  OrderPricing
}

// Validate checks the event shape before settlement is attempted.
func (o *CompletedOrder) Validate() error {
	if o.OrderID == "" {
		return ErrMissingOrderID
	}
	if !o.Category.IsValid() {
		return ErrUnknownCategory
	}
	if o.RiderID == "" {
		return ErrMissingRider
	}
	if o.Category.IsMerchant() && o.VendorID == "" {
		return ErrMissingVendor
	}
	if o.Pricing.Total.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}
