package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// SettlementRepository implements usecase.SettlementRepository.
type SettlementRepository struct {
	pool *pgxpool.Pool
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

// Create inserts the settlement receipt. The unique index on order_id turns
// a duplicate settlement of the same order into ErrOrderAlreadySettled.
func (r *SettlementRepository) Create(ctx context.Context, tx usecase.Transaction, s *domain.Settlement) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO settlements (
			id, order_id, category, vendor_id, rider_id,
			total, platform_cut, vendor_share, rider_fee,
			platform_txn_id, vendor_txn_id, rider_txn_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		s.ID,
		s.OrderID,
		s.Category,
		s.VendorID,
		s.RiderID,
		decimalToNumeric(s.Total),
		decimalToNumeric(s.PlatformCut),
		decimalToNumeric(s.VendorShare),
		decimalToNumeric(s.RiderFee),
		s.PlatformTxnID,
		s.VendorTxnID,
		s.RiderTxnID,
		timeToPgTimestamptz(s.CreatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrOrderAlreadySettled
		}
		return err
	}

	return nil
}

// GetByOrderID returns the settlement receipt for an order.
func (r *SettlementRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Settlement, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, order_id, category, vendor_id, rider_id,
		       total, platform_cut, vendor_share, rider_fee,
		       platform_txn_id, vendor_txn_id, rider_txn_id, created_at
		FROM settlements
		WHERE order_id = $1
	`, orderID)

	var (
		s                                  domain.Settlement
		total, platformCut, vendorShare    pgtype.Numeric
		riderFee                           pgtype.Numeric
		createdAt                          pgtype.Timestamptz
	)

	err := row.Scan(
		&s.ID,
		&s.OrderID,
		&s.Category,
		&s.VendorID,
		&s.RiderID,
		&total,
		&platformCut,
		&vendorShare,
		&riderFee,
		&s.PlatformTxnID,
		&s.VendorTxnID,
		&s.RiderTxnID,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettlementNotFound
		}
		return nil, err
	}

	s.Total = numericToDecimal(total)
	s.PlatformCut = numericToDecimal(platformCut)
	s.VendorShare = numericToDecimal(vendorShare)
	s.RiderFee = numericToDecimal(riderFee)
	s.CreatedAt = createdAt.Time

	return &s, nil
}
