package integration

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/adapter/repository/postgres"
	"github.com/quickdrop/ledger/internal/commission"
	"github.com/quickdrop/ledger/internal/usecase"
	"github.com/quickdrop/ledger/tests/testutil"
)

// stack wires the full usecase stack against a real database, without
// Redis or metrics so tests exercise the money paths in isolation.
type stack struct {
	DB           *testutil.TestDB
	WalletUC     *usecase.WalletUseCase
	SettlementUC *usecase.SettlementUseCase
	PayoutUC     *usecase.PayoutUseCase
	LedgerUC     *usecase.LedgerUseCase
}

func newStack(t *testing.T) *stack {
	t.Helper()

	db := testutil.NewTestDB(t)
	t.Cleanup(db.Cleanup)

	pool := db.Pool
	txManager := postgres.NewTxManager(pool)
	walletRepo := postgres.NewWalletRepository(pool)
	txnRepo := postgres.NewTransactionRepository(pool)
	payoutRepo := postgres.NewPayoutRepository(pool)
	settlementRepo := postgres.NewSettlementRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	idGen := postgres.NewULIDGenerator()
	logger := zerolog.Nop()

	calc := commission.NewCalculator(commission.Config{})

	return &stack{
		DB: db,
		WalletUC: usecase.NewWalletUseCase(
			usecase.WalletConfig{},
			txManager, walletRepo, txnRepo, outboxRepo, idGen, nil, nil,
		),
		SettlementUC: usecase.NewSettlementUseCase(
			usecase.SettlementConfig{},
			calc, txManager, walletRepo, txnRepo, settlementRepo, outboxRepo, auditRepo,
			idGen, nil, nil, logger,
		),
		PayoutUC: usecase.NewPayoutUseCase(
			usecase.PayoutConfig{MinimumPayout: decimal.NewFromInt(50000)},
			txManager, walletRepo, txnRepo, payoutRepo, outboxRepo, auditRepo,
			idGen, nil, nil, logger,
		),
		LedgerUC: usecase.NewLedgerUseCase(walletRepo, txnRepo, ledgerRepo, logger),
	}
}
