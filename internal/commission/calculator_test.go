package commission_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/commission"
	"github.com/quickdrop/ledger/internal/domain"
)

func TestCalculator_Split(t *testing.T) {
	calc := commission.NewCalculator(commission.Config{})

	tests := []struct {
		name        string
		category    domain.OrderCategory
		pricing     domain.OrderPricing
		platformCut int64
		vendorShare int64
		riderFee    int64
	}{
		{
			name:     "food order at 15 percent",
			category: domain.CategoryFood,
			pricing: domain.OrderPricing{
				Subtotal:    decimal.NewFromInt(10000),
				DeliveryFee: decimal.NewFromInt(1500),
				Total:       decimal.NewFromInt(11500),
			},
			platformCut: 1500,
			vendorShare: 8500,
			riderFee:    1500,
		},
		{
			name:     "mart order at 10 percent",
			category: domain.CategoryMart,
			pricing: domain.OrderPricing{
				Subtotal:    decimal.NewFromInt(10000),
				DeliveryFee: decimal.NewFromInt(1500),
				Total:       decimal.NewFromInt(11500),
			},
			platformCut: 1000,
			vendorShare: 9000,
			riderFee:    1500,
		},
		{
			name:     "courier order at 20 percent",
			category: domain.CategoryCourier,
			pricing: domain.OrderPricing{
				DeliveryFee: decimal.NewFromInt(2500),
				Total:       decimal.NewFromInt(2500),
			},
			platformCut: 500,
			vendorShare: 0,
			riderFee:    2000,
		},
		{
			name:     "odd subtotal rounds half up",
			category: domain.CategoryFood,
			pricing: domain.OrderPricing{
				Subtotal:    decimal.NewFromInt(10003), // 15% = 1500.45 → 1500
				DeliveryFee: decimal.NewFromInt(1500),
				Total:       decimal.NewFromInt(11503),
			},
			platformCut: 1500,
			vendorShare: 8503,
			riderFee:    1500,
		},
		{
			name:     "half rounds up not to even",
			category: domain.CategoryMart,
			pricing: domain.OrderPricing{
				Subtotal:    decimal.NewFromInt(10005), // 10% = 1000.5 → 1001
				DeliveryFee: decimal.NewFromInt(1500),
				Total:       decimal.NewFromInt(11505),
			},
			platformCut: 1001,
			vendorShare: 9004,
			riderFee:    1500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := calc.Split(tt.category, tt.pricing)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !split.PlatformCut.Equal(decimal.NewFromInt(tt.platformCut)) {
				t.Errorf("platform cut = %s, want %d", split.PlatformCut, tt.platformCut)
			}
			if !split.VendorShare.Equal(decimal.NewFromInt(tt.vendorShare)) {
				t.Errorf("vendor share = %s, want %d", split.VendorShare, tt.vendorShare)
			}
			if !split.RiderFee.Equal(decimal.NewFromInt(tt.riderFee)) {
				t.Errorf("rider fee = %s, want %d", split.RiderFee, tt.riderFee)
			}

			sum := split.PlatformCut.Add(split.VendorShare).Add(split.RiderFee)
			if !sum.Equal(tt.pricing.Total) {
				t.Errorf("shares sum to %s, total is %s", sum, tt.pricing.Total)
			}
		})
	}
}

func TestCalculator_Split_UnknownCategory(t *testing.T) {
	calc := commission.NewCalculator(commission.Config{})

	_, err := calc.Split("SUBSCRIPTION", domain.OrderPricing{Total: decimal.NewFromInt(100)})
	if !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("got %v, want ErrUnknownCategory", err)
	}
}

func TestCalculator_Split_MismatchedTotal(t *testing.T) {
	calc := commission.NewCalculator(commission.Config{})

	_, err := calc.Split(domain.CategoryFood, domain.OrderPricing{
		Subtotal:    decimal.NewFromInt(10000),
		DeliveryFee: decimal.NewFromInt(1500),
		Total:       decimal.NewFromInt(12000),
	})
	if !errors.Is(err, domain.ErrSplitMismatch) {
		t.Errorf("got %v, want ErrSplitMismatch", err)
	}
}

func TestCalculator_Split_CustomRates(t *testing.T) {
	calc := commission.NewCalculator(commission.Config{
		FoodCommissionPercent: 25,
	})

	split, err := calc.Split(domain.CategoryFood, domain.OrderPricing{
		Subtotal:    decimal.NewFromInt(1000),
		DeliveryFee: decimal.NewFromInt(500),
		Total:       decimal.NewFromInt(1500),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !split.PlatformCut.Equal(decimal.NewFromInt(250)) {
		t.Errorf("platform cut = %s, want 250", split.PlatformCut)
	}
}

// Conservation must hold for arbitrary coherent pricing, not just the
// handpicked cases.
func TestCalculator_Split_ConservesTotal(t *testing.T) {
	calc := commission.NewCalculator(commission.Config{})
	rng := rand.New(rand.NewSource(1))

	for range 1000 {
		subtotal := decimal.NewFromInt(rng.Int63n(500_000) + 1)
		deliveryFee := decimal.NewFromInt(rng.Int63n(10_000))
		pricing := domain.OrderPricing{
			Subtotal:    subtotal,
			DeliveryFee: deliveryFee,
			Total:       subtotal.Add(deliveryFee),
		}

		category := domain.CategoryFood
		if rng.Intn(2) == 0 {
			category = domain.CategoryMart
		}

		split, err := calc.Split(category, pricing)
		if err != nil {
			t.Fatalf("split %s/%s: %v", subtotal, deliveryFee, err)
		}

		sum := split.PlatformCut.Add(split.VendorShare).Add(split.RiderFee)
		if !sum.Equal(pricing.Total) {
			t.Fatalf("shares %s+%s+%s = %s, total %s",
				split.PlatformCut, split.VendorShare, split.RiderFee, sum, pricing.Total)
		}
		if split.PlatformCut.IsNegative() || split.VendorShare.IsNegative() || split.RiderFee.IsNegative() {
			t.Fatalf("negative share in split of %s", pricing.Total)
		}
	}
}

func TestCalculator_CourierSplit_ConservesTotal(t *testing.T) {
	calc := commission.NewCalculator(commission.Config{})
	rng := rand.New(rand.NewSource(2))

	for range 1000 {
		total := decimal.NewFromInt(rng.Int63n(100_000) + 1)
		split, err := calc.Split(domain.CategoryCourier, domain.OrderPricing{
			DeliveryFee: total,
			Total:       total,
		})
		if err != nil {
			t.Fatalf("split %s: %v", total, err)
		}
		if !split.PlatformCut.Add(split.RiderFee).Equal(total) {
			t.Fatalf("%s + %s != %s", split.PlatformCut, split.RiderFee, total)
		}
	}
}

func TestQuoteCourierPricing(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		weight   float64
		fragile  bool
		want     int64
	}{
		{"base only", 0, 5, false, 2000},
		{"distance", 4, 5, false, 4000},
		{"fragile surcharge", 4, 5, true, 5000},
		{"overweight surcharge", 2, 15, false, 4000}, // 2000 + 1000 + 5kg*200
		{"everything", 10, 12, true, 8400},           // 2000 + 5000 + 1000 + 400
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pricing := commission.QuoteCourierPricing(tt.distance, tt.weight, tt.fragile)
			if !pricing.Total.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("total = %s, want %d", pricing.Total, tt.want)
			}
			if !pricing.DeliveryFee.Equal(pricing.Total) {
				t.Error("courier delivery fee must equal total")
			}
		})
	}
}
