package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
)

// WalletRepository defines data access for wallet balances. Every mutation
// goes through ApplyDelta so the non-negativity guard lives in exactly one
// place.
type WalletRepository interface {
	GetOrCreate(ctx context.Context, ref domain.EntityRef, currency string) (*domain.WalletBalance, error)
	Get(ctx context.Context, ref domain.EntityRef) (*domain.WalletBalance, error)
	GetForUpdate(ctx context.Context, tx Transaction, ref domain.EntityRef) (*domain.WalletBalance, error)
	// GetManyForUpdate locks wallets in sorted key order to prevent
	// deadlocks between concurrent settlements.
	GetManyForUpdate(ctx context.Context, tx Transaction, refs []domain.EntityRef) ([]*domain.WalletBalance, error)
	// ApplyDelta applies a conditional balance mutation. It returns
	// domain.ErrInsufficientBalance when the guard
	// (available ≥ 0 ∧ pending ≥ 0 after the delta) rejects the write.
	ApplyDelta(ctx context.Context, tx Transaction, ref domain.EntityRef, delta domain.WalletDelta, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.WalletBalance, error)
}

// TransactionRepository defines data access for immutable ledger rows.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.TransactionRecord) error
	GetByID(ctx context.Context, id string) (*domain.TransactionRecord, error)
	ListByEntity(ctx context.Context, ref domain.EntityRef, filter domain.TransactionFilter) ([]*domain.TransactionRecord, error)
	ListByOrder(ctx context.Context, orderID string) ([]*domain.TransactionRecord, error)
	// SumByEntity returns total credits and debits recorded for an entity,
	// used by reconciliation to replay the available balance.
	SumByEntity(ctx context.Context, ref domain.EntityRef) (credits, debits decimal.Decimal, err error)
}

// PayoutRepository defines data access for payout requests.
type PayoutRepository interface {
	Create(ctx context.Context, tx Transaction, payout *domain.PayoutRequest) error
	GetByID(ctx context.Context, id string) (*domain.PayoutRequest, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.PayoutRequest, error)
	// MarkProcessed persists the terminal status plus decision fields.
	MarkProcessed(ctx context.Context, tx Transaction, payout *domain.PayoutRequest) error
	ListByEntity(ctx context.Context, ref domain.EntityRef, limit, offset int) ([]*domain.PayoutRequest, error)
	ListByStatus(ctx context.Context, status domain.PayoutStatus, limit, offset int) ([]*domain.PayoutRequest, error)
}

// SettlementRepository defines data access for settlement receipts.
type SettlementRepository interface {
	// Create inserts the receipt; the unique order id constraint makes it
	// return domain.ErrOrderAlreadySettled on a duplicate.
	Create(ctx context.Context, tx Transaction, settlement *domain.Settlement) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.Settlement, error)
}

// WalletDiscrepancy is one wallet whose stored balances break the ledger
// identity available + pending = earned − spent − approved payouts.
type WalletDiscrepancy struct {
	Ref        domain.EntityRef
	Available  decimal.Decimal
	Pending    decimal.Decimal
	Earned     decimal.Decimal
	Spent      decimal.Decimal
	PaidOut    decimal.Decimal
	Difference decimal.Decimal
}

// LedgerRepository defines ledger-wide checks.
type LedgerRepository interface {
	FindInconsistentWallets(ctx context.Context, limit int) ([]*WalletDiscrepancy, error)
	// PayoutTotals returns the summed amounts of an entity's payouts that
	// are still pending and those already approved.
	PayoutTotals(ctx context.Context, ref domain.EntityRef) (pending, approved decimal.Decimal, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation after transient store failures such as
// deadlocks between concurrent settlements.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
