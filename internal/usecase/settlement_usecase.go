package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quickdrop/ledger/internal/commission"
	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/infrastructure/metrics"
)

// SettlementConfig carries settlement-level settings.
type SettlementConfig struct {
	Currency string
}

// SettlementUseCase distributes a completed order's funds to the platform,
// vendor and rider wallets in one atomic transaction. Settling the same
// order twice returns the original receipt.
type SettlementUseCase struct {
	cfg            SettlementConfig
	calc           *commission.Calculator
	txManager      TransactionManager
	walletRepo     WalletRepository
	txnRepo        TransactionRepository
	settlementRepo SettlementRepository
	outboxRepo     OutboxRepository
	auditRepo      AuditRepository
	idGen          IDGenerator
	cache          Cache
	metrics        *metrics.Metrics
	logger         zerolog.Logger
	retrier        Retrier
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	cfg SettlementConfig,
	calc *commission.Calculator,
	txManager TransactionManager,
	walletRepo WalletRepository,
	txnRepo TransactionRepository,
	settlementRepo SettlementRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *SettlementUseCase {
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	return &SettlementUseCase{
		cfg:            cfg,
		calc:           calc,
		txManager:      txManager,
		walletRepo:     walletRepo,
		txnRepo:        txnRepo,
		settlementRepo: settlementRepo,
		outboxRepo:     outboxRepo,
		auditRepo:      auditRepo,
		idGen:          idGen,
		cache:          cache,
		metrics:        m,
		logger:         logger,
	}
}

// WithRetrier makes the settlement transaction retry on transient store
// failures. Duplicate-order errors are permanent and never retried.
func (uc *SettlementUseCase) WithRetrier(r Retrier) *SettlementUseCase {
	uc.retrier = r
	return uc
}

// SettleResult is the outcome of a settlement call.
type SettleResult struct {
	Settlement *domain.Settlement
	Credits    []domain.SettlementCredit
	Replayed   bool
}

// Settle distributes one completed order. All wallet credits, ledger rows
// and the settlement receipt commit together or not at all.
func (uc *SettlementUseCase) Settle(ctx context.Context, order domain.CompletedOrder) (*SettleResult, error) {
	start := time.Now()

	if err := order.Validate(); err != nil {
		return nil, err
	}

	// Fast path for redelivered completion events. The unique constraint on
	// the order id remains the authoritative guard inside the transaction.
	existing, err := uc.settlementRepo.GetByOrderID(ctx, order.OrderID)
	if err == nil {
		return &SettleResult{Settlement: existing, Credits: existing.Credits(), Replayed: true}, nil
	}
	if !errors.Is(err, domain.ErrSettlementNotFound) {
		return nil, err
	}

	split, err := uc.calc.Split(order.Category, order.Pricing)
	if err != nil {
		return nil, err
	}

	settlement := uc.buildSettlement(order, split)
	refs := creditRefs(settlement)

	// Wallets are created outside the settlement transaction so the row
	// locks inside it always find their targets.
	for _, ref := range refs {
		if _, err := uc.walletRepo.GetOrCreate(ctx, ref, uc.cfg.Currency); err != nil {
			return nil, fmt.Errorf("ensure wallet %s: %w", ref, err)
		}
	}

	var result *SettleResult
	run := func() error {
		var runErr error
		result, runErr = uc.settle(ctx, order, settlement)
		return runErr
	}
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, run)
	} else {
		err = run()
	}
	if err != nil {
		if errors.Is(err, domain.ErrOrderAlreadySettled) {
			// Lost the race to another delivery of the same event.
			existing, getErr := uc.settlementRepo.GetByOrderID(ctx, order.OrderID)
			if getErr != nil {
				return nil, err
			}
			return &SettleResult{Settlement: existing, Credits: existing.Credits(), Replayed: true}, nil
		}
		uc.audit(ctx, domain.AuditActionSettlementCreate, order.OrderID, nil, err)
		return nil, err
	}

	for _, ref := range refs {
		if uc.cache != nil {
			_ = uc.cache.Delete(ctx, balanceCacheKey(ref))
		}
	}

	uc.audit(ctx, domain.AuditActionSettlementCreate, result.Settlement.ID, domain.MarshalState(result.Settlement), nil)

	if uc.metrics != nil {
		uc.metrics.SettlementsProcessed.WithLabelValues(string(order.Category)).Inc()
		uc.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
		amount, _ := split.Total.Float64()
		uc.metrics.SettlementAmount.Observe(amount)
	}

	uc.logger.Info().
		Str("order_id", order.OrderID).
		Str("settlement_id", result.Settlement.ID).
		Str("category", string(order.Category)).
		Str("total", split.Total.String()).
		Str("platform_cut", split.PlatformCut.String()).
		Str("vendor_share", split.VendorShare.String()).
		Str("rider_fee", split.RiderFee.String()).
		Msg("order settled")

	return result, nil
}

// GetByOrderID returns the settlement receipt for an order.
func (uc *SettlementUseCase) GetByOrderID(ctx context.Context, orderID string) (*domain.Settlement, error) {
	if orderID == "" {
		return nil, domain.ErrMissingOrderID
	}
	return uc.settlementRepo.GetByOrderID(ctx, orderID)
}

func (uc *SettlementUseCase) buildSettlement(order domain.CompletedOrder, split *commission.Split) *domain.Settlement {
	s := &domain.Settlement{
		ID:            uc.idGen.Generate(),
		OrderID:       order.OrderID,
		Category:      order.Category,
		VendorID:      order.VendorID,
		RiderID:       order.RiderID,
		Total:         split.Total,
		PlatformCut:   split.PlatformCut,
		VendorShare:   split.VendorShare,
		RiderFee:      split.RiderFee,
		PlatformTxnID: uc.idGen.Generate(),
		RiderTxnID:    uc.idGen.Generate(),
		CreatedAt:     time.Now().UTC(),
	}
	if order.Category.IsMerchant() {
		vendorTxnID := uc.idGen.Generate()
		s.VendorTxnID = &vendorTxnID
	}
	return s
}

// settle runs the atomic portion: lock every wallet in sorted order, apply
// the credits, append the ledger rows, insert the receipt and the event.
func (uc *SettlementUseCase) settle(ctx context.Context, order domain.CompletedOrder, settlement *domain.Settlement) (*SettleResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	refs := creditRefs(settlement)
	wallets, err := uc.walletRepo.GetManyForUpdate(txCtx, tx, refs)
	if err != nil {
		return nil, err
	}

	byRef := make(map[domain.EntityRef]*domain.WalletBalance, len(wallets))
	for _, w := range wallets {
		byRef[w.Ref()] = w
	}

	now := settlement.CreatedAt
	credits := settlement.Credits()
	for _, credit := range credits {
		ref := domain.EntityRef{Type: credit.EntityType, ID: credit.EntityID}
		wallet, ok := byRef[ref]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, ref)
		}

		if err := uc.walletRepo.ApplyDelta(txCtx, tx, ref, domain.CreditDelta(credit.Amount), now); err != nil {
			return nil, fmt.Errorf("credit %s: %w", ref, err)
		}

		record := &domain.TransactionRecord{
			ID:            credit.TransactionID,
			EntityType:    credit.EntityType,
			EntityID:      credit.EntityID,
			Type:          domain.TransactionCredit,
			Category:      creditCategory(credit.EntityType),
			Amount:        credit.Amount,
			Currency:      wallet.Currency,
			OrderID:       &settlement.OrderID,
			Description:   creditDescription(credit.EntityType, settlement),
			BalanceBefore: wallet.AvailableBalance,
			BalanceAfter:  wallet.AvailableBalance.Add(credit.Amount),
			CreatedAt:     now,
		}
		if err := uc.txnRepo.Create(txCtx, tx, record); err != nil {
			return nil, err
		}
	}

	if err := uc.settlementRepo.Create(txCtx, tx, settlement); err != nil {
		return nil, err
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   settlement.ID,
			AggregateType: domain.AggregateTypeSettlement,
			EventType:     domain.EventTypeSettlementCompleted,
			Payload: map[string]any{
				"settlement_id": settlement.ID,
				"order_id":      settlement.OrderID,
				"total":         settlement.Total.String(),
				"platform_cut":  settlement.PlatformCut.String(),
				"vendor_share":  settlement.VendorShare.String(),
				"rider_fee":     settlement.RiderFee.String(),
				"currency":      uc.cfg.Currency,
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

	return &SettleResult{Settlement: settlement, Credits: credits}, nil
}

func (uc *SettlementUseCase) audit(ctx context.Context, action domain.AuditAction, resourceID string, after domain.JSON, opErr error) {
	if uc.auditRepo == nil {
		return
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Action:       string(action),
		ResourceType: domain.AggregateTypeSettlement,
		ResourceID:   resourceID,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}
	if op, ok := domain.OperatorFromContext(ctx); ok {
		log.OperatorID = op.ID
	}
	if opErr != nil {
		log.Status = string(domain.AuditStatusFailure)
		log.ErrorMessage = opErr.Error()
	}

	if err := uc.auditRepo.Create(ctx, log); err != nil {
		uc.logger.Warn().Err(err).Str("resource_id", resourceID).Msg("audit write failed")
	}
}

// creditRefs lists the wallets a settlement touches.
func creditRefs(s *domain.Settlement) []domain.EntityRef {
	refs := []domain.EntityRef{domain.PlatformRef()}
	if s.VendorTxnID != nil {
		refs = append(refs, domain.EntityRef{Type: domain.EntityVendor, ID: s.VendorID})
	}
	refs = append(refs, domain.EntityRef{Type: domain.EntityRider, ID: s.RiderID})
	return refs
}

func creditCategory(entityType domain.EntityType) domain.TransactionCategory {
	switch entityType {
	case domain.EntityPlatform:
		return domain.CategoryOrderCommission
	case domain.EntityRider:
		return domain.CategoryDeliveryFee
	default:
		return domain.CategoryOrderPayment
	}
}

func creditDescription(entityType domain.EntityType, s *domain.Settlement) string {
	switch entityType {
	case domain.EntityPlatform:
		return fmt.Sprintf("Commission for order %s", s.OrderID)
	case domain.EntityRider:
		return fmt.Sprintf("Delivery fee for order %s", s.OrderID)
	default:
		return fmt.Sprintf("Sale proceeds for order %s", s.OrderID)
	}
}
