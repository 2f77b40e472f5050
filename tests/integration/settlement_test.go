package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
)

func foodOrder(orderID string) domain.CompletedOrder {
	return domain.CompletedOrder{
		OrderID:  orderID,
		Category: domain.CategoryFood,
		VendorID: "vendor-1",
		RiderID:  "rider-1",
		Pricing: domain.OrderPricing{
			Subtotal:    decimal.NewFromInt(10000),
			DeliveryFee: decimal.NewFromInt(1500),
			Total:       decimal.NewFromInt(11500),
		},
	}
}

func TestSettlement(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	s := newStack(t)

	t.Run("food order credits three wallets", func(t *testing.T) {
		s.DB.TruncateAll(ctx)

		result, err := s.SettlementUC.Settle(ctx, foodOrder("ord-food-1"))
		if err != nil {
			t.Fatalf("settle failed: %v", err)
		}
		if result.Replayed {
			t.Fatal("fresh settlement reported as replayed")
		}
		if len(result.Credits) != 3 {
			t.Fatalf("expected 3 credits, got %d", len(result.Credits))
		}

		vendor, err := s.WalletUC.GetBalance(ctx, domain.EntityRef{Type: domain.EntityVendor, ID: "vendor-1"})
		if err != nil {
			t.Fatalf("failed to get vendor balance: %v", err)
		}
		if !vendor.AvailableBalance.Equal(decimal.NewFromInt(8500)) {
			t.Fatalf("vendor balance = %s, expected 8500", vendor.AvailableBalance)
		}

		rider, err := s.WalletUC.GetBalance(ctx, domain.EntityRef{Type: domain.EntityRider, ID: "rider-1"})
		if err != nil {
			t.Fatalf("failed to get rider balance: %v", err)
		}
		if !rider.AvailableBalance.Equal(decimal.NewFromInt(1500)) {
			t.Fatalf("rider balance = %s, expected 1500", rider.AvailableBalance)
		}

		platform, err := s.WalletUC.GetBalance(ctx, domain.PlatformRef())
		if err != nil {
			t.Fatalf("failed to get platform balance: %v", err)
		}
		if !platform.AvailableBalance.Equal(decimal.NewFromInt(1500)) {
			t.Fatalf("platform balance = %s, expected 1500", platform.AvailableBalance)
		}

		if got := s.DB.CountRows(ctx, "wallet_transactions"); got != 3 {
			t.Fatalf("expected 3 ledger rows, got %d", got)
		}
		if got := s.DB.CountRows(ctx, "outbox_events"); got != 1 {
			t.Fatalf("expected 1 outbox event, got %d", got)
		}
	})

	t.Run("redelivered completion event does not credit twice", func(t *testing.T) {
		s.DB.TruncateAll(ctx)

		first, err := s.SettlementUC.Settle(ctx, foodOrder("ord-food-2"))
		if err != nil {
			t.Fatalf("first settle failed: %v", err)
		}

		second, err := s.SettlementUC.Settle(ctx, foodOrder("ord-food-2"))
		if err != nil {
			t.Fatalf("second settle failed: %v", err)
		}
		if !second.Replayed {
			t.Fatal("expected replay flag on redelivery")
		}
		if second.Settlement.ID != first.Settlement.ID {
			t.Fatalf("replay returned a different receipt: %s vs %s", second.Settlement.ID, first.Settlement.ID)
		}

		rider, err := s.WalletUC.GetBalance(ctx, domain.EntityRef{Type: domain.EntityRider, ID: "rider-1"})
		if err != nil {
			t.Fatalf("failed to get rider balance: %v", err)
		}
		if !rider.AvailableBalance.Equal(decimal.NewFromInt(1500)) {
			t.Fatalf("rider balance = %s after replay, expected 1500", rider.AvailableBalance)
		}
		if got := s.DB.CountRows(ctx, "wallet_transactions"); got != 3 {
			t.Fatalf("expected 3 ledger rows after replay, got %d", got)
		}
	})

	t.Run("concurrent settlement of the same order settles once", func(t *testing.T) {
		s.DB.TruncateAll(ctx)

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.SettlementUC.Settle(ctx, foodOrder("ord-race")); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			t.Fatalf("concurrent settle failed: %v", err)
		}

		if got := s.DB.CountRows(ctx, "settlements"); got != 1 {
			t.Fatalf("expected 1 settlement, got %d", got)
		}
		if got := s.DB.CountRows(ctx, "wallet_transactions"); got != 3 {
			t.Fatalf("expected 3 ledger rows, got %d", got)
		}

		rider, err := s.WalletUC.GetBalance(ctx, domain.EntityRef{Type: domain.EntityRider, ID: "rider-1"})
		if err != nil {
			t.Fatalf("failed to get rider balance: %v", err)
		}
		if !rider.AvailableBalance.Equal(decimal.NewFromInt(1500)) {
			t.Fatalf("rider balance = %s, expected 1500", rider.AvailableBalance)
		}
	})

	t.Run("courier order splits between platform and rider", func(t *testing.T) {
		s.DB.TruncateAll(ctx)

		order := domain.CompletedOrder{
			OrderID:  "ord-courier-1",
			Category: domain.CategoryCourier,
			RiderID:  "rider-2",
			Pricing: domain.OrderPricing{
				DeliveryFee: decimal.NewFromInt(2500),
				Total:       decimal.NewFromInt(2500),
				DistanceKm:  1,
			},
		}

		result, err := s.SettlementUC.Settle(ctx, order)
		if err != nil {
			t.Fatalf("settle failed: %v", err)
		}
		if len(result.Credits) != 2 {
			t.Fatalf("expected 2 credits for courier order, got %d", len(result.Credits))
		}

		rider, err := s.WalletUC.GetBalance(ctx, domain.EntityRef{Type: domain.EntityRider, ID: "rider-2"})
		if err != nil {
			t.Fatalf("failed to get rider balance: %v", err)
		}
		if !rider.AvailableBalance.Equal(decimal.NewFromInt(2000)) {
			t.Fatalf("rider balance = %s, expected 2000", rider.AvailableBalance)
		}
	})

	t.Run("settled wallets pass replay verification", func(t *testing.T) {
		s.DB.TruncateAll(ctx)

		if _, err := s.SettlementUC.Settle(ctx, foodOrder("ord-food-3")); err != nil {
			t.Fatalf("settle failed: %v", err)
		}

		for _, ref := range []domain.EntityRef{
			domain.PlatformRef(),
			{Type: domain.EntityVendor, ID: "vendor-1"},
			{Type: domain.EntityRider, ID: "rider-1"},
		} {
			v, err := s.LedgerUC.VerifyWallet(ctx, ref)
			if err != nil {
				t.Fatalf("verify %s failed: %v", ref, err)
			}
			if !v.Consistent {
				t.Fatalf("wallet %s failed replay verification: %+v", ref, v)
			}
		}

		discrepancies, err := s.LedgerUC.CheckConsistency(ctx, 10)
		if err != nil {
			t.Fatalf("consistency check failed: %v", err)
		}
		if len(discrepancies) != 0 {
			t.Fatalf("expected no discrepancies, got %d", len(discrepancies))
		}
	})
}
