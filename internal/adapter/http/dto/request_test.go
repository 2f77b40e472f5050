package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
)

func TestSettleOrderRequestToDomain(t *testing.T) {
	raw := []byte(`{
		"order_id": "ord-77",
		"category": "MART",
		"vendor_id": "vendor-9",
		"rider_id": "rider-3",
		"pricing": {"subtotal": "20000", "delivery_fee": "1000", "total": "21000"}
	}`)

	var req SettleOrderRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	order := req.ToDomain()
	if order.OrderID != "ord-77" {
		t.Errorf("unexpected order id %q", order.OrderID)
	}
	if order.Category != domain.CategoryMart {
		t.Errorf("unexpected category %q", order.Category)
	}
	if !order.Pricing.Subtotal.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("unexpected subtotal %s", order.Pricing.Subtotal)
	}
	if !order.Pricing.Total.Equal(decimal.NewFromInt(21000)) {
		t.Errorf("unexpected total %s", order.Pricing.Total)
	}
	if err := order.Validate(); err != nil {
		t.Errorf("expected valid order, got %v", err)
	}
}

func TestSettleOrderRequestCourierOmitsVendor(t *testing.T) {
	raw := []byte(`{
		"order_id": "ord-c1",
		"category": "COURIER",
		"rider_id": "rider-3",
		"pricing": {"delivery_fee": "2500", "total": "2500", "distance_km": 1.0}
	}`)

	var req SettleOrderRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	order := req.ToDomain()
	if order.VendorID != "" {
		t.Errorf("expected empty vendor id, got %q", order.VendorID)
	}
	if err := order.Validate(); err != nil {
		t.Errorf("expected valid courier order, got %v", err)
	}
}

func TestRequestPayoutRequestToUseCaseInput(t *testing.T) {
	req := RequestPayoutRequest{
		EntityType: "VENDOR",
		EntityID:   "vendor-1",
		Amount:     decimal.NewFromInt(75000),
		BankDetails: BankDetailsRequest{
			AccountName:   "Vendor One",
			AccountNumber: "000111",
			BankName:      "Ecobank",
			BankCode:      "ECO",
		},
	}

	input := req.ToUseCaseInput()
	if input.Ref.Type != domain.EntityVendor || input.Ref.ID != "vendor-1" {
		t.Errorf("unexpected ref %v", input.Ref)
	}
	if !input.Amount.Equal(decimal.NewFromInt(75000)) {
		t.Errorf("unexpected amount %s", input.Amount)
	}
	if input.BankDetails.BankCode != "ECO" {
		t.Errorf("unexpected bank details %+v", input.BankDetails)
	}
}
