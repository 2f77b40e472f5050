package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/infrastructure/metrics"
)

// balanceCacheTTL bounds read-path staleness; every mutation path deletes
// the key after commit.
const balanceCacheTTL = 5 * time.Second

// WalletConfig carries wallet-level settings, passed in at construction.
type WalletConfig struct {
	Currency string
}

// WalletUseCase is the wallet accessor: balance reads with lazy creation,
// transaction history, and the two direct mutation paths (top-up and
// order-payment debit) that do not flow through settlement or payouts.
type WalletUseCase struct {
	cfg        WalletConfig
	txManager  TransactionManager
	walletRepo WalletRepository
	txnRepo    TransactionRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	cache      Cache
	metrics    *metrics.Metrics
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(
	cfg WalletConfig,
	txManager TransactionManager,
	walletRepo WalletRepository,
	txnRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
) *WalletUseCase {
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	return &WalletUseCase{
		cfg:        cfg,
		txManager:  txManager,
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		cache:      cache,
		metrics:    m,
	}
}

// GetBalance returns the wallet for an entity, creating a zeroed one on
// first reference.
func (uc *WalletUseCase) GetBalance(ctx context.Context, ref domain.EntityRef) (*domain.WalletBalance, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, balanceCacheKey(ref)); err == nil {
			var wallet domain.WalletBalance
			if err := json.Unmarshal([]byte(cached), &wallet); err == nil {
				return &wallet, nil
			}
		}
	}

	wallet, err := uc.walletRepo.GetOrCreate(ctx, ref, uc.cfg.Currency)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(wallet); err == nil {
			_ = uc.cache.Set(ctx, balanceCacheKey(ref), string(data), balanceCacheTTL)
		}
	}

	return wallet, nil
}

// GetAvailableBalance returns only the withdrawable amount.
func (uc *WalletUseCase) GetAvailableBalance(ctx context.Context, ref domain.EntityRef) (decimal.Decimal, error) {
	wallet, err := uc.GetBalance(ctx, ref)
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.AvailableBalance, nil
}

// ListTransactionsInput narrows a history query.
type ListTransactionsInput struct {
	Ref      domain.EntityRef
	Type     domain.TransactionType
	Category domain.TransactionCategory
	Limit    int
	Offset   int
}

// ListTransactions returns an entity's ledger rows, newest first.
func (uc *WalletUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.TransactionRecord, error) {
	if err := input.Ref.Validate(); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.txnRepo.ListByEntity(ctx, input.Ref, domain.TransactionFilter{
		Type:     input.Type,
		Category: input.Category,
		Limit:    limit,
		Offset:   offset,
	})
}

// TopUp credits a user wallet from an external payment. The payment itself
// was collected by the payment rail; the ledger only records the arrival.
func (uc *WalletUseCase) TopUp(ctx context.Context, ref domain.EntityRef, amount decimal.Decimal, paymentReference string) (*domain.TransactionRecord, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	record, err := uc.mutate(ctx, ref, domain.CreditDelta(amount), &recordSpec{
		txnType:     domain.TransactionCredit,
		category:    domain.CategoryWalletTopup,
		amount:      amount,
		description: fmt.Sprintf("Wallet top-up via %s", paymentReference),
		eventType:   domain.EventTypeWalletCredited,
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.WalletTopups.Inc()
	}

	return record, nil
}

// DebitForOrder spends a user's wallet balance to pay for an order. The
// conditional guard inside ApplyDelta rejects overdrafts under concurrency.
func (uc *WalletUseCase) DebitForOrder(ctx context.Context, ref domain.EntityRef, amount decimal.Decimal, orderID string) (*domain.TransactionRecord, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	record, err := uc.mutate(ctx, ref, domain.DebitDelta(amount), &recordSpec{
		txnType:     domain.TransactionDebit,
		category:    domain.CategoryOrderPayment,
		amount:      amount,
		orderID:     &orderID,
		description: fmt.Sprintf("Payment for order %s", orderID),
		eventType:   domain.EventTypeWalletDebited,
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.WalletDebits.Inc()
	}

	return record, nil
}

// recordSpec describes the single ledger row a direct mutation appends.
type recordSpec struct {
	txnType     domain.TransactionType
	category    domain.TransactionCategory
	amount      decimal.Decimal
	orderID     *string
	description string
	eventType   string
}

// mutate runs one conditional delta plus its ledger row in a single store
// transaction.
func (uc *WalletUseCase) mutate(ctx context.Context, ref domain.EntityRef, delta domain.WalletDelta, spec *recordSpec) (*domain.TransactionRecord, error) {
	// Wallet must exist before it can be locked.
	if _, err := uc.walletRepo.GetOrCreate(ctx, ref, uc.cfg.Currency); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	wallet, err := uc.walletRepo.GetForUpdate(txCtx, tx, ref)
	if err != nil {
		return nil, err
	}

	if spec.txnType == domain.TransactionDebit {
		if err := wallet.ValidateDebit(spec.amount); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if err := uc.walletRepo.ApplyDelta(txCtx, tx, ref, delta, now); err != nil {
		return nil, err
	}

	record := &domain.TransactionRecord{
		ID:            uc.idGen.Generate(),
		EntityType:    ref.Type,
		EntityID:      ref.ID,
		Type:          spec.txnType,
		Category:      spec.category,
		Amount:        spec.amount,
		Currency:      wallet.Currency,
		OrderID:       spec.orderID,
		Description:   spec.description,
		BalanceBefore: wallet.AvailableBalance,
		BalanceAfter:  wallet.AvailableBalance.Add(delta.Available),
		CreatedAt:     now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Create(txCtx, tx, record); err != nil {
		return nil, err
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   record.ID,
			AggregateType: domain.AggregateTypeWallet,
			EventType:     spec.eventType,
			Payload: map[string]any{
				"transaction_id": record.ID,
				"entity_type":    string(ref.Type),
				"entity_id":      ref.ID,
				"amount":         spec.amount.String(),
				"category":       string(spec.category),
			},
			CreatedAt: now,
			Published: false,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, ref)

	return record, nil
}

func (uc *WalletUseCase) invalidateBalance(ctx context.Context, ref domain.EntityRef) {
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, balanceCacheKey(ref))
	}
}

func balanceCacheKey(ref domain.EntityRef) string {
	return "balance:" + string(ref.Type) + ":" + ref.ID
}
