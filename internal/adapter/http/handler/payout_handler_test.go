package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/adapter/http/dto"
	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

type stubPayoutService struct {
	requestFn      func(ctx context.Context, input usecase.RequestPayoutInput) (*domain.PayoutRequest, error)
	approveFn      func(ctx context.Context, payoutID, externalReference string) (*domain.PayoutRequest, error)
	rejectFn       func(ctx context.Context, payoutID, reason string) (*domain.PayoutRequest, error)
	getFn          func(ctx context.Context, payoutID string) (*domain.PayoutRequest, error)
	listFn         func(ctx context.Context, ref domain.EntityRef, limit, offset int) ([]*domain.PayoutRequest, error)
	listByStatusFn func(ctx context.Context, status domain.PayoutStatus, limit, offset int) ([]*domain.PayoutRequest, error)
}

func (s *stubPayoutService) RequestPayout(ctx context.Context, input usecase.RequestPayoutInput) (*domain.PayoutRequest, error) {
	return s.requestFn(ctx, input)
}

func (s *stubPayoutService) ApprovePayout(ctx context.Context, payoutID, externalReference string) (*domain.PayoutRequest, error) {
	return s.approveFn(ctx, payoutID, externalReference)
}

func (s *stubPayoutService) RejectPayout(ctx context.Context, payoutID, reason string) (*domain.PayoutRequest, error) {
	return s.rejectFn(ctx, payoutID, reason)
}

func (s *stubPayoutService) GetPayout(ctx context.Context, payoutID string) (*domain.PayoutRequest, error) {
	return s.getFn(ctx, payoutID)
}

func (s *stubPayoutService) ListPayouts(ctx context.Context, ref domain.EntityRef, limit, offset int) ([]*domain.PayoutRequest, error) {
	return s.listFn(ctx, ref, limit, offset)
}

func (s *stubPayoutService) ListByStatus(ctx context.Context, status domain.PayoutStatus, limit, offset int) ([]*domain.PayoutRequest, error) {
	return s.listByStatusFn(ctx, status, limit, offset)
}

func newPayoutRouter(h *PayoutHandler) chi.Router {
	r := chi.NewRouter()
	r.Route("/payouts", func(r chi.Router) {
		r.Post("/", h.Request)
		r.Get("/", h.ListByStatus)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})
	return r
}

func TestPayoutHandlerRequest(t *testing.T) {
	svc := &stubPayoutService{
		requestFn: func(ctx context.Context, input usecase.RequestPayoutInput) (*domain.PayoutRequest, error) {
			if input.Ref.Type != domain.EntityRider || input.Ref.ID != "rider-1" {
				t.Fatalf("unexpected ref %v", input.Ref)
			}
			if input.BankDetails.AccountNumber != "0012345" {
				t.Fatalf("unexpected bank details %+v", input.BankDetails)
			}
			return &domain.PayoutRequest{
				ID:         "po-1",
				EntityType: input.Ref.Type,
				EntityID:   input.Ref.ID,
				Amount:     input.Amount,
				Status:     domain.PayoutPending,
			}, nil
		},
	}
	router := newPayoutRouter(NewPayoutHandler(svc))

	body := []byte(`{
		"entity_type": "RIDER",
		"entity_id": "rider-1",
		"amount": "60000",
		"bank_details": {"account_name": "A Rider", "account_number": "0012345", "bank_name": "UBA"}
	}`)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payouts/", bytes.NewReader(body)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp dto.PayoutResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.PayoutPending) {
		t.Fatalf("expected pending status, got %q", resp.Status)
	}
}

func TestPayoutHandlerRequestBelowMinimum(t *testing.T) {
	svc := &stubPayoutService{
		requestFn: func(ctx context.Context, input usecase.RequestPayoutInput) (*domain.PayoutRequest, error) {
			return nil, domain.ErrBelowMinimumPayout
		},
	}
	router := newPayoutRouter(NewPayoutHandler(svc))

	body := []byte(`{"entity_type":"RIDER","entity_id":"rider-1","amount":"100","bank_details":{"account_name":"x","account_number":"1","bank_name":"b"}}`)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payouts/", bytes.NewReader(body)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPayoutHandlerApprove(t *testing.T) {
	svc := &stubPayoutService{
		approveFn: func(ctx context.Context, payoutID, externalReference string) (*domain.PayoutRequest, error) {
			if payoutID != "po-1" || externalReference != "bank-ref-9" {
				t.Fatalf("unexpected args %q %q", payoutID, externalReference)
			}
			return &domain.PayoutRequest{
				ID:                payoutID,
				Status:            domain.PayoutApproved,
				Amount:            decimal.NewFromInt(60000),
				ExternalReference: externalReference,
			}, nil
		},
	}
	router := newPayoutRouter(NewPayoutHandler(svc))

	body := []byte(`{"external_reference":"bank-ref-9"}`)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payouts/po-1/approve", bytes.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestPayoutHandlerApproveAlreadyProcessed(t *testing.T) {
	svc := &stubPayoutService{
		approveFn: func(ctx context.Context, payoutID, externalReference string) (*domain.PayoutRequest, error) {
			return nil, domain.ErrAlreadyProcessed
		},
	}
	router := newPayoutRouter(NewPayoutHandler(svc))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payouts/po-1/approve", bytes.NewReader([]byte(`{}`))))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestPayoutHandlerRejectRequiresReason(t *testing.T) {
	svc := &stubPayoutService{
		rejectFn: func(ctx context.Context, payoutID, reason string) (*domain.PayoutRequest, error) {
			if reason != "" {
				t.Fatalf("expected empty reason to pass through, got %q", reason)
			}
			return nil, domain.ErrMissingReason
		},
	}
	router := newPayoutRouter(NewPayoutHandler(svc))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/payouts/po-1/reject", bytes.NewReader([]byte(`{}`))))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPayoutHandlerListByStatusDefaultsToPending(t *testing.T) {
	svc := &stubPayoutService{
		listByStatusFn: func(ctx context.Context, status domain.PayoutStatus, limit, offset int) ([]*domain.PayoutRequest, error) {
			if status != domain.PayoutPending {
				t.Fatalf("expected PENDING default, got %q", status)
			}
			return []*domain.PayoutRequest{{ID: "po-1", Status: domain.PayoutPending}}, nil
		},
	}
	router := newPayoutRouter(NewPayoutHandler(svc))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payouts/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp dto.ListPayoutsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("expected one payout, got %d", resp.Count)
	}
}

func TestPayoutHandlerGetNotFound(t *testing.T) {
	svc := &stubPayoutService{
		getFn: func(ctx context.Context, payoutID string) (*domain.PayoutRequest, error) {
			return nil, domain.ErrPayoutNotFound
		},
	}
	router := newPayoutRouter(NewPayoutHandler(svc))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payouts/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
