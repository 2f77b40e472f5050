package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quickdrop/ledger/internal/adapter/http/handler"
	"github.com/quickdrop/ledger/internal/adapter/http/middleware"
	"github.com/quickdrop/ledger/internal/infrastructure/auth"
	"github.com/quickdrop/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler     *handler.WalletHandler
	SettlementHandler *handler.SettlementHandler
	PayoutHandler     *handler.PayoutHandler
	LedgerHandler     *handler.LedgerHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	JWTManager        *auth.JWTManager
	RateLimiter       *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Wallets
		r.Route("/wallets/{entityType}/{entityID}", func(r chi.Router) {
			r.Get("/", cfg.WalletHandler.GetBalance)
			r.Get("/transactions", cfg.WalletHandler.ListTransactions)
			r.Get("/summary", cfg.LedgerHandler.Summary)
			r.Get("/verify", cfg.LedgerHandler.Verify)
			r.Post("/topup", cfg.WalletHandler.TopUp)
			r.Post("/debit", cfg.WalletHandler.DebitForOrder)
			r.Get("/payouts", cfg.PayoutHandler.ListByEntity)
		})

		// Settlements
		r.Route("/settlements", func(r chi.Router) {
			r.Post("/", cfg.SettlementHandler.Settle)
			r.Get("/quote/courier", cfg.SettlementHandler.QuoteCourier)
			r.Get("/order/{orderID}", cfg.SettlementHandler.GetByOrder)
		})

		// Payouts
		r.Route("/payouts", func(r chi.Router) {
			r.Post("/", cfg.PayoutHandler.Request)
			r.Get("/{id}", cfg.PayoutHandler.Get)

			// Decisions require an authenticated operator; the usecase
			// enforces the admin role on top of this gate.
			r.Group(func(r chi.Router) {
				if cfg.JWTManager != nil {
					r.Use(middleware.AuthMiddleware(cfg.JWTManager))
				}
				r.Get("/", cfg.PayoutHandler.ListByStatus)
				r.Post("/{id}/approve", cfg.PayoutHandler.Approve)
				r.Post("/{id}/reject", cfg.PayoutHandler.Reject)
			})
		})

		// Ledger-wide checks
		r.Route("/ledger", func(r chi.Router) {
			if cfg.JWTManager != nil {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			}
			r.Get("/consistency", cfg.LedgerHandler.Consistency)
		})
	})

	return r
}
