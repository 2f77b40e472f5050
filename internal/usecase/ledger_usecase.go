package usecase

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
)

// LedgerUseCase answers ledger-wide questions: earnings summaries, replay
// verification of a single wallet, and the consistency sweep that checks
// every stored balance against the identity
// available + pending = earned − spent − approved payouts.
type LedgerUseCase struct {
	walletRepo WalletRepository
	txnRepo    TransactionRepository
	ledgerRepo LedgerRepository
	logger     zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	walletRepo WalletRepository,
	txnRepo TransactionRepository,
	ledgerRepo LedgerRepository,
	logger zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// EarningsSummary aggregates an entity's lifetime money movement.
type EarningsSummary struct {
	Ref          domain.EntityRef
	TotalCredits decimal.Decimal
	TotalDebits  decimal.Decimal
	Available    decimal.Decimal
	Pending      decimal.Decimal
}

// Summarize returns lifetime credits and debits next to the current
// balances.
func (uc *LedgerUseCase) Summarize(ctx context.Context, ref domain.EntityRef) (*EarningsSummary, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	wallet, err := uc.walletRepo.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	credits, debits, err := uc.txnRepo.SumByEntity(ctx, ref)
	if err != nil {
		return nil, err
	}

	return &EarningsSummary{
		Ref:          ref,
		TotalCredits: credits,
		TotalDebits:  debits,
		Available:    wallet.AvailableBalance,
		Pending:      wallet.PendingBalance,
	}, nil
}

// WalletVerification compares a wallet's stored balances against a replay
// of its ledger rows.
type WalletVerification struct {
	Ref               domain.EntityRef
	Consistent        bool
	StoredAvailable   decimal.Decimal
	ReplayedAvailable decimal.Decimal // credits − debits over all ledger rows
	StoredPending     decimal.Decimal
	HeldInPayouts     decimal.Decimal // sum of PENDING payout amounts
	ApprovedPayouts   decimal.Decimal
}

// VerifyWallet replays one wallet from its ledger rows. Every row mirrors a
// move of the available balance (holds are debits, releases are credits,
// approvals move only pending and write no row), so credits minus debits
// must reproduce the stored available balance, and the pending balance must
// equal the amount held by still-pending payouts.
func (uc *LedgerUseCase) VerifyWallet(ctx context.Context, ref domain.EntityRef) (*WalletVerification, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	wallet, err := uc.walletRepo.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	credits, debits, err := uc.txnRepo.SumByEntity(ctx, ref)
	if err != nil {
		return nil, err
	}

	held, approved, err := uc.ledgerRepo.PayoutTotals(ctx, ref)
	if err != nil {
		return nil, err
	}

	replayed := credits.Sub(debits)
	v := &WalletVerification{
		Ref:               ref,
		Consistent:        wallet.AvailableBalance.Equal(replayed) && wallet.PendingBalance.Equal(held),
		StoredAvailable:   wallet.AvailableBalance,
		ReplayedAvailable: replayed,
		StoredPending:     wallet.PendingBalance,
		HeldInPayouts:     held,
		ApprovedPayouts:   approved,
	}

	if !v.Consistent {
		uc.logger.Error().
			Str("entity", ref.String()).
			Str("stored_available", wallet.AvailableBalance.String()).
			Str("replayed_available", replayed.String()).
			Str("stored_pending", wallet.PendingBalance.String()).
			Str("held_in_payouts", held.String()).
			Msg("wallet failed replay verification")
	}

	return v, nil
}

// CheckConsistency sweeps for wallets whose stored balances break the
// ledger identity. An empty result is the healthy state.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context, limit int) ([]*WalletDiscrepancy, error) {
	if limit <= 0 {
		limit = 100
	}

	discrepancies, err := uc.ledgerRepo.FindInconsistentWallets(ctx, limit)
	if err != nil {
		return nil, err
	}

	for _, d := range discrepancies {
		uc.logger.Error().
			Str("entity", d.Ref.String()).
			Str("difference", d.Difference.String()).
			Msg("inconsistent wallet")
	}

	return discrepancies, nil
}
