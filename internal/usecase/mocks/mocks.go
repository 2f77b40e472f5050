// Package mocks provides hand-written in-memory implementations of the
// usecase interfaces for unit tests. Every method can be overridden with a
// Func field; without an override the mock behaves like a tiny store.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[domain.EntityRef]*domain.WalletBalance

	GetOrCreateFunc      func(ctx context.Context, ref domain.EntityRef, currency string) (*domain.WalletBalance, error)
	GetFunc              func(ctx context.Context, ref domain.EntityRef) (*domain.WalletBalance, error)
	GetForUpdateFunc     func(ctx context.Context, tx usecase.Transaction, ref domain.EntityRef) (*domain.WalletBalance, error)
	GetManyForUpdateFunc func(ctx context.Context, tx usecase.Transaction, refs []domain.EntityRef) ([]*domain.WalletBalance, error)
	ApplyDeltaFunc       func(ctx context.Context, tx usecase.Transaction, ref domain.EntityRef, delta domain.WalletDelta, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.WalletBalance, error)
}

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[domain.EntityRef]*domain.WalletBalance),
	}
}

// Seed installs a wallet with the given available balance.
func (m *MockWalletRepository) Seed(ref domain.EntityRef, available decimal.Decimal) *domain.WalletBalance {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := domain.NewWalletBalance(ref, "XAF", time.Now().UTC())
	w.AvailableBalance = available
	w.TotalEarned = available
	m.wallets[ref] = w
	return w
}

func (m *MockWalletRepository) GetOrCreate(ctx context.Context, ref domain.EntityRef, currency string) (*domain.WalletBalance, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, ref, currency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.wallets[ref]; ok {
		return copyWallet(w), nil
	}
	w := domain.NewWalletBalance(ref, currency, time.Now().UTC())
	m.wallets[ref] = w
	return copyWallet(w), nil
}

func (m *MockWalletRepository) Get(ctx context.Context, ref domain.EntityRef) (*domain.WalletBalance, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, ref)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.wallets[ref]; ok {
		return copyWallet(w), nil
	}
	return nil, domain.ErrWalletNotFound
}

func (m *MockWalletRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, ref domain.EntityRef) (*domain.WalletBalance, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, ref)
	}
	return m.Get(ctx, ref)
}

func (m *MockWalletRepository) GetManyForUpdate(ctx context.Context, tx usecase.Transaction, refs []domain.EntityRef) ([]*domain.WalletBalance, error) {
	if m.GetManyForUpdateFunc != nil {
		return m.GetManyForUpdateFunc(ctx, tx, refs)
	}
	sorted := make([]domain.EntityRef, len(refs))
	copy(sorted, refs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	wallets := make([]*domain.WalletBalance, 0, len(sorted))
	for _, ref := range sorted {
		w, err := m.Get(ctx, ref)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, nil
}

func (m *MockWalletRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, ref domain.EntityRef, delta domain.WalletDelta, updatedAt time.Time) error {
	if m.ApplyDeltaFunc != nil {
		return m.ApplyDeltaFunc(ctx, tx, ref, delta, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[ref]
	if !ok {
		return domain.ErrWalletNotFound
	}
	available := w.AvailableBalance.Add(delta.Available)
	pending := w.PendingBalance.Add(delta.Pending)
	if available.IsNegative() || pending.IsNegative() {
		return domain.ErrInsufficientBalance
	}
	w.AvailableBalance = available
	w.PendingBalance = pending
	w.TotalEarned = w.TotalEarned.Add(delta.Earned)
	w.TotalSpent = w.TotalSpent.Add(delta.Spent)
	w.Version++
	w.UpdatedAt = updatedAt
	return nil
}

func (m *MockWalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.WalletBalance, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wallets := make([]*domain.WalletBalance, 0, len(m.wallets))
	for _, w := range m.wallets {
		wallets = append(wallets, copyWallet(w))
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].Ref().String() < wallets[j].Ref().String() })
	if offset >= len(wallets) {
		return nil, nil
	}
	wallets = wallets[offset:]
	if limit > 0 && limit < len(wallets) {
		wallets = wallets[:limit]
	}
	return wallets, nil
}

func copyWallet(w *domain.WalletBalance) *domain.WalletBalance {
	c := *w
	return &c
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu      sync.RWMutex
	Records []*domain.TransactionRecord

	CreateFunc      func(ctx context.Context, tx usecase.Transaction, record *domain.TransactionRecord) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.TransactionRecord, error)
	ListByEntityFn  func(ctx context.Context, ref domain.EntityRef, filter domain.TransactionFilter) ([]*domain.TransactionRecord, error)
	ListByOrderFunc func(ctx context.Context, orderID string) ([]*domain.TransactionRecord, error)
	SumByEntityFunc func(ctx context.Context, ref domain.EntityRef) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.TransactionRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, record)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.TransactionRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.Records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("transaction %s not found", id)
}

func (m *MockTransactionRepository) ListByEntity(ctx context.Context, ref domain.EntityRef, filter domain.TransactionFilter) ([]*domain.TransactionRecord, error) {
	if m.ListByEntityFn != nil {
		return m.ListByEntityFn(ctx, ref, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TransactionRecord
	for _, r := range m.Records {
		if r.EntityType != ref.Type || r.EntityID != ref.ID {
			continue
		}
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *MockTransactionRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.TransactionRecord, error) {
	if m.ListByOrderFunc != nil {
		return m.ListByOrderFunc(ctx, orderID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TransactionRecord
	for _, r := range m.Records {
		if r.OrderID != nil && *r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockTransactionRepository) SumByEntity(ctx context.Context, ref domain.EntityRef) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumByEntityFunc != nil {
		return m.SumByEntityFunc(ctx, ref)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	credits, debits := decimal.Zero, decimal.Zero
	for _, r := range m.Records {
		if r.EntityType != ref.Type || r.EntityID != ref.ID {
			continue
		}
		switch r.Type {
		case domain.TransactionCredit:
			credits = credits.Add(r.Amount)
		case domain.TransactionDebit:
			debits = debits.Add(r.Amount)
		}
	}
	return credits, debits, nil
}

// MockPayoutRepository is a mock implementation of PayoutRepository.
type MockPayoutRepository struct {
	mu      sync.RWMutex
	payouts map[string]*domain.PayoutRequest

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, payout *domain.PayoutRequest) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.PayoutRequest, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.PayoutRequest, error)
	MarkProcessedFunc    func(ctx context.Context, tx usecase.Transaction, payout *domain.PayoutRequest) error
	ListByEntityFunc     func(ctx context.Context, ref domain.EntityRef, limit, offset int) ([]*domain.PayoutRequest, error)
	ListByStatusFunc     func(ctx context.Context, status domain.PayoutStatus, limit, offset int) ([]*domain.PayoutRequest, error)
}

func NewMockPayoutRepository() *MockPayoutRepository {
	return &MockPayoutRepository{
		payouts: make(map[string]*domain.PayoutRequest),
	}
}

func (m *MockPayoutRepository) Create(ctx context.Context, tx usecase.Transaction, payout *domain.PayoutRequest) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, payout)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := *payout
	m.payouts[payout.ID] = &p
	return nil
}

func (m *MockPayoutRepository) GetByID(ctx context.Context, id string) (*domain.PayoutRequest, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payouts[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, domain.ErrPayoutNotFound
}

func (m *MockPayoutRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.PayoutRequest, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockPayoutRepository) MarkProcessed(ctx context.Context, tx usecase.Transaction, payout *domain.PayoutRequest) error {
	if m.MarkProcessedFunc != nil {
		return m.MarkProcessedFunc(ctx, tx, payout)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payouts[payout.ID]; !ok {
		return domain.ErrPayoutNotFound
	}
	p := *payout
	m.payouts[payout.ID] = &p
	return nil
}

func (m *MockPayoutRepository) ListByEntity(ctx context.Context, ref domain.EntityRef, limit, offset int) ([]*domain.PayoutRequest, error) {
	if m.ListByEntityFunc != nil {
		return m.ListByEntityFunc(ctx, ref, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.PayoutRequest
	for _, p := range m.payouts {
		if p.EntityType == ref.Type && p.EntityID == ref.ID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (m *MockPayoutRepository) ListByStatus(ctx context.Context, status domain.PayoutStatus, limit, offset int) ([]*domain.PayoutRequest, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.PayoutRequest
	for _, p := range m.payouts {
		if p.Status == status {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

// MockSettlementRepository is a mock implementation of SettlementRepository.
type MockSettlementRepository struct {
	mu          sync.RWMutex
	settlements map[string]*domain.Settlement // keyed by order id

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, settlement *domain.Settlement) error
	GetByOrderIDFunc func(ctx context.Context, orderID string) (*domain.Settlement, error)
}

func NewMockSettlementRepository() *MockSettlementRepository {
	return &MockSettlementRepository{
		settlements: make(map[string]*domain.Settlement),
	}
}

func (m *MockSettlementRepository) Create(ctx context.Context, tx usecase.Transaction, settlement *domain.Settlement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, settlement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.settlements[settlement.OrderID]; ok {
		return domain.ErrOrderAlreadySettled
	}
	s := *settlement
	m.settlements[settlement.OrderID] = &s
	return nil
}

func (m *MockSettlementRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Settlement, error) {
	if m.GetByOrderIDFunc != nil {
		return m.GetByOrderIDFunc(ctx, orderID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.settlements[orderID]; ok {
		c := *s
		return &c, nil
	}
	return nil, domain.ErrSettlementNotFound
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	FindInconsistentWalletsFunc func(ctx context.Context, limit int) ([]*usecase.WalletDiscrepancy, error)
	PayoutTotalsFunc            func(ctx context.Context, ref domain.EntityRef) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) FindInconsistentWallets(ctx context.Context, limit int) ([]*usecase.WalletDiscrepancy, error) {
	if m.FindInconsistentWalletsFunc != nil {
		return m.FindInconsistentWalletsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockLedgerRepository) PayoutTotals(ctx context.Context, ref domain.EntityRef) (decimal.Decimal, decimal.Decimal, error) {
	if m.PayoutTotalsFunc != nil {
		return m.PayoutTotalsFunc(ctx, ref)
	}
	return decimal.Zero, decimal.Zero, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return fmt.Errorf("event %s not found", id)
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Events[:0]
	for _, e := range m.Events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.Events = kept
	return nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	Logs []*domain.AuditLog

	CreateFunc func(ctx context.Context, log *domain.AuditLog) error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.Logs {
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.OperatorID != "" && l.OperatorID != filter.OperatorID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *MockAuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.Logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			out = append(out, l)
		}
	}
	return out, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu    sync.RWMutex
	store map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{store: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("cache miss: %s", key)
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}
