package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// FindInconsistentWallets returns wallets whose stored balances break
// available + pending = total_earned − total_spent − approved payouts.
// Approved payouts enter the identity because disbursement removes held
// funds without touching the lifetime totals.
func (r *LedgerRepository) FindInconsistentWallets(ctx context.Context, limit int) ([]*usecase.WalletDiscrepancy, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT w.entity_type, w.entity_id,
		       w.available_balance, w.pending_balance,
		       w.total_earned, w.total_spent,
		       COALESCE(p.approved, 0) AS approved
		FROM wallets w
		LEFT JOIN (
			SELECT entity_type, entity_id, SUM(amount) AS approved
			FROM payout_requests
			WHERE status = 'APPROVED'
			GROUP BY entity_type, entity_id
		) p USING (entity_type, entity_id)
		WHERE w.available_balance + w.pending_balance
		      <> w.total_earned - w.total_spent - COALESCE(p.approved, 0)
		ORDER BY w.entity_type, w.entity_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discrepancies []*usecase.WalletDiscrepancy
	for rows.Next() {
		var (
			d                                 usecase.WalletDiscrepancy
			available, pending, earned, spent pgtype.Numeric
			approved                          pgtype.Numeric
		)

		err := rows.Scan(
			&d.Ref.Type,
			&d.Ref.ID,
			&available,
			&pending,
			&earned,
			&spent,
			&approved,
		)
		if err != nil {
			return nil, err
		}

		d.Available = numericToDecimal(available)
		d.Pending = numericToDecimal(pending)
		d.Earned = numericToDecimal(earned)
		d.Spent = numericToDecimal(spent)
		d.PaidOut = numericToDecimal(approved)
		d.Difference = d.Available.Add(d.Pending).
			Sub(d.Earned.Sub(d.Spent).Sub(d.PaidOut))

		discrepancies = append(discrepancies, &d)
	}

	return discrepancies, rows.Err()
}

// PayoutTotals returns the summed pending and approved payout amounts for
// an entity.
func (r *LedgerRepository) PayoutTotals(ctx context.Context, ref domain.EntityRef) (decimal.Decimal, decimal.Decimal, error) {
	var pending, approved pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE status = 'PENDING'), 0),
			COALESCE(SUM(amount) FILTER (WHERE status = 'APPROVED'), 0)
		FROM payout_requests
		WHERE entity_type = $1 AND entity_id = $2
	`, ref.Type, ref.ID).Scan(&pending, &approved)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(pending), numericToDecimal(approved), nil
}
