package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

const payoutColumns = `id, entity_type, entity_id, amount, currency, status,
	bank_details, requested_at, processed_at, processed_by, rejection_reason, external_reference`

// PayoutRepository implements usecase.PayoutRepository.
type PayoutRepository struct {
	pool *pgxpool.Pool
}

// NewPayoutRepository creates a new PayoutRepository.
func NewPayoutRepository(pool *pgxpool.Pool) *PayoutRepository {
	return &PayoutRepository{pool: pool}
}

// Create inserts a new payout request within a transaction.
func (r *PayoutRepository) Create(ctx context.Context, tx usecase.Transaction, payout *domain.PayoutRequest) error {
	pgxTx := tx.(*Tx).PgxTx()

	bankDetails, err := json.Marshal(payout.BankDetails)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx, `
		INSERT INTO payout_requests (
			id, entity_type, entity_id, amount, currency, status,
			bank_details, requested_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		payout.ID,
		payout.EntityType,
		payout.EntityID,
		decimalToNumeric(payout.Amount),
		payout.Currency,
		payout.Status,
		bankDetails,
		timeToPgTimestamptz(payout.RequestedAt),
	)

	return err
}

// GetByID returns a payout request.
func (r *PayoutRepository) GetByID(ctx context.Context, id string) (*domain.PayoutRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+payoutColumns+`
		FROM payout_requests
		WHERE id = $1
	`, id)

	return scanPayout(row)
}

// GetByIDForUpdate locks and returns a payout request inside a transaction,
// serializing concurrent decisions on the same request.
func (r *PayoutRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.PayoutRequest, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT `+payoutColumns+`
		FROM payout_requests
		WHERE id = $1
		FOR UPDATE
	`, id)

	return scanPayout(row)
}

// MarkProcessed persists the terminal status and decision fields. The WHERE
// clause only matches PENDING rows, so a raced second decision updates
// nothing.
func (r *PayoutRepository) MarkProcessed(ctx context.Context, tx usecase.Transaction, payout *domain.PayoutRequest) error {
	pgxTx := tx.(*Tx).PgxTx()

	var processedAt pgtype.Timestamptz
	if payout.ProcessedAt != nil {
		processedAt = timeToPgTimestamptz(*payout.ProcessedAt)
	}

	tag, err := pgxTx.Exec(ctx, `
		UPDATE payout_requests
		SET status = $2,
		    processed_at = $3,
		    processed_by = $4,
		    rejection_reason = $5,
		    external_reference = $6
		WHERE id = $1 AND status = 'PENDING'
	`,
		payout.ID,
		payout.Status,
		processedAt,
		payout.ProcessedBy,
		payout.RejectionReason,
		payout.ExternalReference,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyProcessed
	}

	return nil
}

// ListByEntity returns an entity's payout requests, newest first.
func (r *PayoutRepository) ListByEntity(ctx context.Context, ref domain.EntityRef, limit, offset int) ([]*domain.PayoutRequest, error) {
	return r.queryPayouts(ctx, `
		SELECT `+payoutColumns+`
		FROM payout_requests
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY requested_at DESC
		LIMIT $3 OFFSET $4
	`, ref.Type, ref.ID, limit, offset)
}

// ListByStatus returns payout requests in a status, oldest first so the
// review queue is fair.
func (r *PayoutRepository) ListByStatus(ctx context.Context, status domain.PayoutStatus, limit, offset int) ([]*domain.PayoutRequest, error) {
	return r.queryPayouts(ctx, `
		SELECT `+payoutColumns+`
		FROM payout_requests
		WHERE status = $1
		ORDER BY requested_at
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
}

func (r *PayoutRepository) queryPayouts(ctx context.Context, query string, args ...any) ([]*domain.PayoutRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []*domain.PayoutRequest
	for rows.Next() {
		payout, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, payout)
	}

	return payouts, rows.Err()
}

func scanPayout(row pgx.Row) (*domain.PayoutRequest, error) {
	var (
		payout      domain.PayoutRequest
		amount      pgtype.Numeric
		bankDetails []byte
		requestedAt pgtype.Timestamptz
		processedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&payout.ID,
		&payout.EntityType,
		&payout.EntityID,
		&amount,
		&payout.Currency,
		&payout.Status,
		&bankDetails,
		&requestedAt,
		&processedAt,
		&payout.ProcessedBy,
		&payout.RejectionReason,
		&payout.ExternalReference,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPayoutNotFound
		}
		return nil, err
	}

	payout.Amount = numericToDecimal(amount)
	payout.RequestedAt = requestedAt.Time
	if processedAt.Valid {
		t := processedAt.Time
		payout.ProcessedAt = &t
	}
	if err := json.Unmarshal(bankDetails, &payout.BankDetails); err != nil {
		return nil, err
	}

	return &payout, nil
}
