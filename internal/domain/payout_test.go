package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPayoutRequest_Validate(t *testing.T) {
	minimum := decimal.NewFromInt(50000)

	tests := []struct {
		name    string
		payout  PayoutRequest
		wantErr error
	}{
		{
			name: "valid rider request",
			payout: PayoutRequest{
				EntityType: EntityRider,
				EntityID:   "rider-1",
				Amount:     decimal.NewFromInt(50000),
			},
		},
		{
			name: "below minimum",
			payout: PayoutRequest{
				EntityType: EntityRider,
				EntityID:   "rider-1",
				Amount:     decimal.NewFromInt(49999),
			},
			wantErr: ErrBelowMinimumPayout,
		},
		{
			name: "zero amount",
			payout: PayoutRequest{
				EntityType: EntityVendor,
				EntityID:   "vendor-1",
				Amount:     decimal.Zero,
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "user cannot withdraw",
			payout: PayoutRequest{
				EntityType: EntityUser,
				EntityID:   "user-1",
				Amount:     decimal.NewFromInt(60000),
			},
			wantErr: ErrPayoutNotAllowed,
		},
		{
			name: "missing entity id",
			payout: PayoutRequest{
				EntityType: EntityRider,
				Amount:     decimal.NewFromInt(60000),
			},
			wantErr: ErrMissingEntityID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payout.Validate(minimum)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPayoutRequest_EnsurePending(t *testing.T) {
	for _, status := range []PayoutStatus{PayoutApproved, PayoutRejected} {
		p := &PayoutRequest{Status: status}
		if err := p.EnsurePending(); !errors.Is(err, ErrAlreadyProcessed) {
			t.Errorf("status %s: got %v, want ErrAlreadyProcessed", status, err)
		}
	}

	p := &PayoutRequest{Status: PayoutPending}
	if err := p.EnsurePending(); err != nil {
		t.Errorf("pending payout rejected: %v", err)
	}
}

func TestSettlement_Credits(t *testing.T) {
	vendorTxn := "txn-v"
	s := &Settlement{
		OrderID:       "order-1",
		VendorID:      "vendor-1",
		RiderID:       "rider-1",
		PlatformCut:   decimal.NewFromInt(1500),
		VendorShare:   decimal.NewFromInt(8500),
		RiderFee:      decimal.NewFromInt(1500),
		PlatformTxnID: "txn-p",
		VendorTxnID:   &vendorTxn,
		RiderTxnID:    "txn-r",
	}

	credits := s.Credits()
	if len(credits) != 3 {
		t.Fatalf("got %d credits, want 3", len(credits))
	}

	s.VendorTxnID = nil
	s.VendorShare = decimal.Zero
	credits = s.Credits()
	if len(credits) != 2 {
		t.Fatalf("courier receipt: got %d credits, want 2", len(credits))
	}
	for _, c := range credits {
		if c.EntityType == EntityVendor {
			t.Error("courier receipt produced a vendor credit")
		}
	}
}
