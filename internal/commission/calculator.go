// Package commission computes how a completed order's value is divided
// between the platform, the vendor and the rider. The calculator is pure:
// identical input always yields an identical split, which lets the
// settlement engine replay an order safely.
package commission

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
)

// Default rates, overridable through Config. Percentages of the relevant
// base amount.
const (
	DefaultFoodCommissionPercent    int64 = 15
	DefaultMartCommissionPercent    int64 = 10
	DefaultCourierPlatformPercent   int64 = 20
	DefaultBaseDeliveryFee          int64 = 1500
	DefaultCourierBaseFee           int64 = 2000
	DefaultCourierFeePerKm          int64 = 500
	DefaultCourierFragileSurcharge  int64 = 1000
	DefaultCourierPerKgOverSurchage int64 = 200
	courierWeightThresholdKg              = 10
)

// splitTolerance is the rounding slack allowed between a computed split and
// the order total, in minor units.
var splitTolerance = decimal.NewFromInt(1)

var oneHundred = decimal.NewFromInt(100)

// Config carries the deployment's commission rates.
type Config struct {
	FoodCommissionPercent  int64
	MartCommissionPercent  int64
	CourierPlatformPercent int64
}

// Split is the per-party division of one order's total.
type Split struct {
	Total       decimal.Decimal
	PlatformCut decimal.Decimal
	VendorShare decimal.Decimal
	RiderFee    decimal.Decimal
	Breakdown   Breakdown
}

// Breakdown records the inputs the split was derived from.
type Breakdown struct {
	Subtotal          decimal.Decimal
	CommissionPercent int64
	DeliveryFee       decimal.Decimal
	DistanceKm        float64
}

// Calculator computes commission splits. Stateless and safe for concurrent
// use.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a Calculator, filling unset rates with the platform
// defaults.
func NewCalculator(cfg Config) *Calculator {
	if cfg.FoodCommissionPercent == 0 {
		cfg.FoodCommissionPercent = DefaultFoodCommissionPercent
	}
	if cfg.MartCommissionPercent == 0 {
		cfg.MartCommissionPercent = DefaultMartCommissionPercent
	}
	if cfg.CourierPlatformPercent == 0 {
		cfg.CourierPlatformPercent = DefaultCourierPlatformPercent
	}
	return &Calculator{cfg: cfg}
}

// Split divides an order's total among the receiving parties.
func (c *Calculator) Split(category domain.OrderCategory, pricing domain.OrderPricing) (*Split, error) {
	switch category {
	case domain.CategoryFood:
		return c.merchantSplit(pricing, c.cfg.FoodCommissionPercent)
	case domain.CategoryMart:
		return c.merchantSplit(pricing, c.cfg.MartCommissionPercent)
	case domain.CategoryCourier:
		return c.courierSplit(pricing)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
}

// merchantSplit: the platform commissions the subtotal, the vendor keeps the
// remainder, the rider takes the delivery fee. The three shares must
// reconstruct the order total within one minor unit; anything else is a
// pricing bug upstream and the split fails rather than absorbing the gap.
func (c *Calculator) merchantSplit(pricing domain.OrderPricing, percent int64) (*Split, error) {
	platformCut := percentOf(pricing.Subtotal, percent)
	vendorShare := pricing.Subtotal.Sub(platformCut)
	riderFee := pricing.DeliveryFee

	computed := vendorShare.Add(platformCut).Add(riderFee)
	if computed.Sub(pricing.Total).Abs().GreaterThan(splitTolerance) {
		return nil, fmt.Errorf("%w: computed %s, order total %s",
			domain.ErrSplitMismatch, computed, pricing.Total)
	}

	return &Split{
		Total:       pricing.Total,
		PlatformCut: platformCut,
		VendorShare: vendorShare,
		RiderFee:    riderFee,
		Breakdown: Breakdown{
			Subtotal:          pricing.Subtotal,
			CommissionPercent: percent,
			DeliveryFee:       pricing.DeliveryFee,
		},
	}, nil
}

// courierSplit: no vendor; the platform takes its fee off the total and the
// rider keeps the remainder, so the split sums exactly by construction.
func (c *Calculator) courierSplit(pricing domain.OrderPricing) (*Split, error) {
	platformCut := percentOf(pricing.Total, c.cfg.CourierPlatformPercent)
	riderFee := pricing.Total.Sub(platformCut)

	return &Split{
		Total:       pricing.Total,
		PlatformCut: platformCut,
		VendorShare: decimal.Zero,
		RiderFee:    riderFee,
		Breakdown: Breakdown{
			CommissionPercent: c.cfg.CourierPlatformPercent,
			DeliveryFee:       pricing.Total,
			DistanceKm:        pricing.DistanceKm,
		},
	}, nil
}

// QuoteCourierPricing prices a courier delivery from distance, weight and
// fragility. Pure helper used when quoting package orders.
func QuoteCourierPricing(distanceKm float64, weightKg float64, fragile bool) domain.OrderPricing {
	total := decimal.NewFromInt(DefaultCourierBaseFee)
	total = total.Add(decimal.NewFromFloat(distanceKm).Mul(decimal.NewFromInt(DefaultCourierFeePerKm)).Round(0))
	if fragile {
		total = total.Add(decimal.NewFromInt(DefaultCourierFragileSurcharge))
	}
	if weightKg > courierWeightThresholdKg {
		over := decimal.NewFromFloat(weightKg - courierWeightThresholdKg)
		total = total.Add(over.Mul(decimal.NewFromInt(DefaultCourierPerKgOverSurchage)).Round(0))
	}

	return domain.OrderPricing{
		DeliveryFee: total,
		Total:       total,
		DistanceKm:  distanceKm,
	}
}

// percentOf computes amount × percent / 100 in minor units, rounding halves
// up. This is the single rounding rule of the engine.
func percentOf(amount decimal.Decimal, percent int64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(percent)).Div(oneHundred).Round(0)
}
