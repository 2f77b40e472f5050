package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	adaptershttp "github.com/quickdrop/ledger/internal/adapter/http"
	"github.com/quickdrop/ledger/internal/adapter/http/dto"
	"github.com/quickdrop/ledger/internal/adapter/http/handler"
	"github.com/quickdrop/ledger/internal/domain"
)

func TestWalletHTTP(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	s := newStack(t)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		WalletHandler:     handler.NewWalletHandler(s.WalletUC),
		SettlementHandler: handler.NewSettlementHandler(s.SettlementUC, "XAF"),
		PayoutHandler:     handler.NewPayoutHandler(s.PayoutUC),
		LedgerHandler:     handler.NewLedgerHandler(s.LedgerUC),
		HealthHandler:     handler.NewHealthHandler(s.DB.Pool, nil),
	})

	t.Run("topup then debit through the API", func(t *testing.T) {
		s.DB.TruncateAll(ctx)

		body := []byte(`{"amount":"20000","payment_reference":"mtn-001"}`)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/wallets/USER/user-1/topup", bytes.NewReader(body)))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		body = []byte(`{"amount":"7500","order_id":"ord-55"}`)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/wallets/USER/user-1/debit", bytes.NewReader(body)))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/wallets/USER/user-1", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var wallet dto.WalletResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &wallet))
		require.True(t, wallet.AvailableBalance.Equal(decimal.NewFromInt(12500)),
			"available = %s, expected 12500", wallet.AvailableBalance)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/wallets/USER/user-1/transactions", nil))
		var history dto.ListTransactionsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
		require.Equal(t, 2, history.Count)
	})

	t.Run("overdraft through the API is rejected", func(t *testing.T) {
		s.DB.TruncateAll(ctx)
		s.DB.SeedWallet(ctx, domain.EntityRef{Type: domain.EntityUser, ID: "user-2"}, decimal.NewFromInt(1000))

		body := []byte(`{"amount":"5000","order_id":"ord-56"}`)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/wallets/USER/user-2/debit", bytes.NewReader(body)))
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	})
}

func TestConcurrentDebitsNeverOverspend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	s := newStack(t)
	userRef := domain.EntityRef{Type: domain.EntityUser, ID: "user-race"}

	s.DB.TruncateAll(ctx)
	s.DB.SeedWallet(ctx, userRef, decimal.NewFromInt(10000))

	// 20 workers each try to spend 1000 from a 10000 balance; exactly 10
	// debits can succeed.
	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.WalletUC.DebitForOrder(ctx, userRef, decimal.NewFromInt(1000), "ord-race")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 10, succeeded, "exactly 10 debits should clear")

	wallet, err := s.WalletUC.GetBalance(ctx, userRef)
	require.NoError(t, err)
	require.True(t, wallet.AvailableBalance.IsZero(), "available = %s, expected 0", wallet.AvailableBalance)

	v, err := s.LedgerUC.VerifyWallet(ctx, userRef)
	require.NoError(t, err)
	require.True(t, v.Consistent, "wallet inconsistent after concurrent debits: %+v", v)
}
