package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/infrastructure/metrics"
)

// PayoutConfig carries payout-level settings.
type PayoutConfig struct {
	Currency      string
	MinimumPayout decimal.Decimal
}

// PayoutUseCase runs the withdrawal lifecycle. Requesting a payout moves
// funds from available to pending so they cannot be withdrawn twice while
// an operator decides; approval disburses the hold, rejection releases it.
type PayoutUseCase struct {
	cfg        PayoutConfig
	txManager  TransactionManager
	walletRepo WalletRepository
	txnRepo    TransactionRepository
	payoutRepo PayoutRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	cache      Cache
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewPayoutUseCase creates a new PayoutUseCase.
func NewPayoutUseCase(
	cfg PayoutConfig,
	txManager TransactionManager,
	walletRepo WalletRepository,
	txnRepo TransactionRepository,
	payoutRepo PayoutRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *PayoutUseCase {
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if cfg.MinimumPayout.IsZero() {
		cfg.MinimumPayout = decimal.NewFromInt(DefaultMinimumPayout)
	}
	return &PayoutUseCase{
		cfg:        cfg,
		txManager:  txManager,
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		payoutRepo: payoutRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		cache:      cache,
		metrics:    m,
		logger:     logger,
	}
}

// RequestPayoutInput is the payload for a new withdrawal request.
type RequestPayoutInput struct {
	Ref         domain.EntityRef
	Amount      decimal.Decimal
	BankDetails domain.BankDetails
}

// RequestPayout creates a PENDING payout and holds its amount. The hold and
// its ledger row commit atomically with the request.
func (uc *PayoutUseCase) RequestPayout(ctx context.Context, input RequestPayoutInput) (*domain.PayoutRequest, error) {
	payout := &domain.PayoutRequest{
		ID:          uc.idGen.Generate(),
		EntityType:  input.Ref.Type,
		EntityID:    input.Ref.ID,
		Amount:      input.Amount,
		Currency:    uc.cfg.Currency,
		Status:      domain.PayoutPending,
		BankDetails: input.BankDetails,
		RequestedAt: time.Now().UTC(),
	}

	if err := payout.Validate(uc.cfg.MinimumPayout); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateBankDetails(input.BankDetails); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	wallet, err := uc.walletRepo.GetForUpdate(txCtx, tx, input.Ref)
	if err != nil {
		return nil, err
	}

	if err := wallet.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	now := payout.RequestedAt
	if err := uc.walletRepo.ApplyDelta(txCtx, tx, input.Ref, domain.HoldDelta(input.Amount), now); err != nil {
		return nil, err
	}

	if err := uc.payoutRepo.Create(txCtx, tx, payout); err != nil {
		return nil, err
	}

	record := &domain.TransactionRecord{
		ID:            uc.idGen.Generate(),
		EntityType:    input.Ref.Type,
		EntityID:      input.Ref.ID,
		Type:          domain.TransactionDebit,
		Category:      domain.CategoryPayout,
		Amount:        input.Amount,
		Currency:      wallet.Currency,
		Description:   fmt.Sprintf("Payout request %s", payout.ID),
		BalanceBefore: wallet.AvailableBalance,
		BalanceAfter:  wallet.AvailableBalance.Sub(input.Amount),
		CreatedAt:     now,
	}
	if err := uc.txnRepo.Create(txCtx, tx, record); err != nil {
		return nil, err
	}

	if err := uc.createEvent(txCtx, tx, payout, domain.EventTypePayoutRequested, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, input.Ref)
	uc.audit(ctx, domain.AuditActionPayoutRequest, payout, nil)

	if uc.metrics != nil {
		uc.metrics.PayoutsRequested.Inc()
	}

	uc.logger.Info().
		Str("payout_id", payout.ID).
		Str("entity", input.Ref.String()).
		Str("amount", input.Amount.String()).
		Msg("payout requested")

	return payout, nil
}

// ApprovePayout disburses a pending payout. The hold leaves the pending
// balance; no new ledger row is written because the request already debited
// the wallet. The external reference ties the decision to the actual bank
// transfer.
func (uc *PayoutUseCase) ApprovePayout(ctx context.Context, payoutID, externalReference string) (*domain.PayoutRequest, error) {
	return uc.decide(ctx, payoutID, func(payout *domain.PayoutRequest, now time.Time) (domain.WalletDelta, *domain.TransactionRecord) {
		payout.Status = domain.PayoutApproved
		payout.ExternalReference = externalReference
		return domain.DisburseDelta(payout.Amount), nil
	})
}

// RejectPayout declines a pending payout and releases the hold back to the
// available balance, recorded as a compensating credit.
func (uc *PayoutUseCase) RejectPayout(ctx context.Context, payoutID, reason string) (*domain.PayoutRequest, error) {
	if reason == "" {
		return nil, domain.ErrMissingReason
	}
	return uc.decide(ctx, payoutID, func(payout *domain.PayoutRequest, now time.Time) (domain.WalletDelta, *domain.TransactionRecord) {
		payout.Status = domain.PayoutRejected
		payout.RejectionReason = reason
		record := &domain.TransactionRecord{
			ID:          uc.idGen.Generate(),
			EntityType:  payout.EntityType,
			EntityID:    payout.EntityID,
			Type:        domain.TransactionCredit,
			Category:    domain.CategoryPayout,
			Amount:      payout.Amount,
			Currency:    payout.Currency,
			Description: fmt.Sprintf("Payout request %s rejected: %s", payout.ID, reason),
			CreatedAt:   now,
		}
		return domain.ReleaseDelta(payout.Amount), record
	})
}

// decide locks the payout and its wallet, applies the decision delta, and
// persists the terminal status. The operator identity comes from the
// request context.
func (uc *PayoutUseCase) decide(ctx context.Context, payoutID string, apply func(*domain.PayoutRequest, time.Time) (domain.WalletDelta, *domain.TransactionRecord)) (*domain.PayoutRequest, error) {
	op, ok := domain.OperatorFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if !op.Role.CanDecidePayouts() {
		return nil, domain.ErrInsufficientRole
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	payout, err := uc.payoutRepo.GetByIDForUpdate(txCtx, tx, payoutID)
	if err != nil {
		return nil, err
	}
	if err := payout.EnsurePending(); err != nil {
		return nil, err
	}

	wallet, err := uc.walletRepo.GetForUpdate(txCtx, tx, payout.Ref())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	before := domain.MarshalState(payout)

	delta, record := apply(payout, now)
	payout.ProcessedAt = &now
	payout.ProcessedBy = op.ID

	if err := uc.walletRepo.ApplyDelta(txCtx, tx, payout.Ref(), delta, now); err != nil {
		return nil, err
	}

	if record != nil {
		record.BalanceBefore = wallet.AvailableBalance
		record.BalanceAfter = wallet.AvailableBalance.Add(delta.Available)
		if err := uc.txnRepo.Create(txCtx, tx, record); err != nil {
			return nil, err
		}
	}

	if err := uc.payoutRepo.MarkProcessed(txCtx, tx, payout); err != nil {
		return nil, err
	}

	eventType := domain.EventTypePayoutApproved
	if payout.Status == domain.PayoutRejected {
		eventType = domain.EventTypePayoutRejected
	}
	if err := uc.createEvent(txCtx, tx, payout, eventType, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, payout.Ref())

	action := domain.AuditActionPayoutApprove
	if payout.Status == domain.PayoutRejected {
		action = domain.AuditActionPayoutReject
	}
	uc.audit(ctx, action, payout, before)

	if uc.metrics != nil {
		uc.metrics.PayoutsDecided.WithLabelValues(string(payout.Status)).Inc()
	}

	uc.logger.Info().
		Str("payout_id", payout.ID).
		Str("status", string(payout.Status)).
		Str("operator_id", op.ID).
		Msg("payout decided")

	return payout, nil
}

// GetPayout returns one payout request.
func (uc *PayoutUseCase) GetPayout(ctx context.Context, payoutID string) (*domain.PayoutRequest, error) {
	if payoutID == "" {
		return nil, domain.ErrPayoutNotFound
	}
	return uc.payoutRepo.GetByID(ctx, payoutID)
}

// ListPayouts returns an entity's payout requests, newest first.
func (uc *PayoutUseCase) ListPayouts(ctx context.Context, ref domain.EntityRef, limit, offset int) ([]*domain.PayoutRequest, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.payoutRepo.ListByEntity(ctx, ref, limit, offset)
}

// ListByStatus returns payout requests in a given status, oldest first, for
// the operator review queue.
func (uc *PayoutUseCase) ListByStatus(ctx context.Context, status domain.PayoutStatus, limit, offset int) ([]*domain.PayoutRequest, error) {
	switch status {
	case domain.PayoutPending, domain.PayoutApproved, domain.PayoutRejected:
	default:
		return nil, fmt.Errorf("unknown payout status: %q", status)
	}
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.payoutRepo.ListByStatus(ctx, status, limit, offset)
}

func (uc *PayoutUseCase) createEvent(ctx context.Context, tx Transaction, payout *domain.PayoutRequest, eventType string, now time.Time) error {
	if uc.outboxRepo == nil {
		return nil
	}
	payload := map[string]any{
		"payout_id":   payout.ID,
		"entity_type": string(payout.EntityType),
		"entity_id":   payout.EntityID,
		"amount":      payout.Amount.String(),
		"currency":    payout.Currency,
	}
	if payout.ProcessedBy != "" {
		payload["processed_by"] = payout.ProcessedBy
	}
	if payout.RejectionReason != "" {
		payload["reason"] = payout.RejectionReason
	}
	if payout.ExternalReference != "" {
		payload["reference"] = payout.ExternalReference
	}
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   payout.ID,
		AggregateType: domain.AggregateTypePayout,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
		Published:     false,
	})
}

func (uc *PayoutUseCase) invalidate(ctx context.Context, ref domain.EntityRef) {
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, balanceCacheKey(ref))
	}
}

func (uc *PayoutUseCase) audit(ctx context.Context, action domain.AuditAction, payout *domain.PayoutRequest, before domain.JSON) {
	if uc.auditRepo == nil {
		return
	}
	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Action:       string(action),
		ResourceType: domain.AggregateTypePayout,
		ResourceID:   payout.ID,
		BeforeState:  before,
		AfterState:   domain.MarshalState(payout),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}
	if op, ok := domain.OperatorFromContext(ctx); ok {
		log.OperatorID = op.ID
	}
	if err := uc.auditRepo.Create(ctx, log); err != nil {
		uc.logger.Warn().Err(err).Str("payout_id", payout.ID).Msg("audit write failed")
	}
}
