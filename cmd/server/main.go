package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	httpAdapter "github.com/quickdrop/ledger/internal/adapter/http"
	"github.com/quickdrop/ledger/internal/adapter/http/handler"
	"github.com/quickdrop/ledger/internal/adapter/http/middleware"
	postgresRepo "github.com/quickdrop/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/quickdrop/ledger/internal/adapter/repository/redis"
	"github.com/quickdrop/ledger/internal/commission"
	"github.com/quickdrop/ledger/internal/infrastructure/auth"
	"github.com/quickdrop/ledger/internal/infrastructure/config"
	"github.com/quickdrop/ledger/internal/infrastructure/eventpublisher"
	"github.com/quickdrop/ledger/internal/infrastructure/logger"
	"github.com/quickdrop/ledger/internal/infrastructure/metrics"
	"github.com/quickdrop/ledger/internal/infrastructure/postgres"
	"github.com/quickdrop/ledger/internal/infrastructure/redis"
	"github.com/quickdrop/ledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("migrations applied")

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	payoutRepo := postgresRepo.NewPayoutRepository(pool)
	settlementRepo := postgresRepo.NewSettlementRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Use cases
	calc := commission.NewCalculator(commission.Config{
		FoodCommissionPercent:  cfg.FoodCommissionPercent,
		MartCommissionPercent:  cfg.MartCommissionPercent,
		CourierPlatformPercent: cfg.CourierPlatformPercent,
	})

	walletUC := usecase.NewWalletUseCase(
		usecase.WalletConfig{Currency: cfg.Currency},
		txManager, walletRepo, txnRepo, outboxRepo, idGen, cache, m,
	)
	settlementUC := usecase.NewSettlementUseCase(
		usecase.SettlementConfig{Currency: cfg.Currency},
		calc, txManager, walletRepo, txnRepo, settlementRepo, outboxRepo, auditRepo,
		idGen, cache, m, log,
	).WithRetrier(postgresRepo.NewRetrier(log))
	payoutUC := usecase.NewPayoutUseCase(
		usecase.PayoutConfig{
			Currency:      cfg.Currency,
			MinimumPayout: decimal.NewFromInt(cfg.MinimumPayout),
		},
		txManager, walletRepo, txnRepo, payoutRepo, outboxRepo, auditRepo,
		idGen, cache, m, log,
	)
	ledgerUC := usecase.NewLedgerUseCase(walletRepo, txnRepo, ledgerRepo, log)

	// HTTP layer
	jwtManager := newJWTManager(cfg)
	if jwtManager == nil {
		log.Warn().Msg("operator authentication disabled")
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WalletHandler:     handler.NewWalletHandler(walletUC),
		SettlementHandler: handler.NewSettlementHandler(settlementUC, cfg.Currency),
		PayoutHandler:     handler.NewPayoutHandler(payoutUC),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:  idempotencyStore,
		JWTManager:        jwtManager,
		RateLimiter:       middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Outbox publisher drains events committed alongside balance changes.
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log),
		Logger:     log,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// operatorTokenTTL bounds how long issued operator tokens stay valid.
const operatorTokenTTL = 24 * time.Hour

// newJWTManager builds the verifier guarding the operator routes, or nil
// when authentication is disabled or no secret is configured.
func newJWTManager(cfg *config.Config) *auth.JWTManager {
	if !cfg.AuthEnabled || cfg.JWTSecret == "" {
		return nil
	}
	return auth.NewJWTManager(cfg.JWTSecret, operatorTokenTTL)
}
