package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

const transactionColumns = `id, entity_type, entity_id, type, category, amount,
	currency, order_id, description, balance_before, balance_after, created_at`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create appends a ledger row within a transaction. Rows are never updated
// or deleted afterwards.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.TransactionRecord) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO wallet_transactions (
			id, entity_type, entity_id, type, category, amount,
			currency, order_id, description, balance_before, balance_after, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		record.ID,
		record.EntityType,
		record.EntityID,
		record.Type,
		record.Category,
		decimalToNumeric(record.Amount),
		record.Currency,
		record.OrderID,
		record.Description,
		decimalToNumeric(record.BalanceBefore),
		decimalToNumeric(record.BalanceAfter),
		timeToPgTimestamptz(record.CreatedAt),
	)

	return err
}

// GetByID returns a single ledger row.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.TransactionRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		WHERE id = $1
	`, id)

	return scanTransaction(row)
}

// ListByEntity returns an entity's ledger rows, newest first.
func (r *TransactionRepository) ListByEntity(ctx context.Context, ref domain.EntityRef, filter domain.TransactionFilter) ([]*domain.TransactionRecord, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE entity_type = $1 AND entity_id = $2
	`
	args := []any{ref.Type, ref.ID}
	argPos := 3

	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argPos)
		args = append(args, filter.Type)
		argPos++
	}

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, filter.Category)
		argPos++
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	return r.queryTransactions(ctx, query, args...)
}

// ListByOrder returns every ledger row linked to an order.
func (r *TransactionRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.TransactionRecord, error) {
	return r.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		WHERE order_id = $1
		ORDER BY created_at, id
	`, orderID)
}

// SumByEntity returns the total credits and debits recorded for an entity.
func (r *TransactionRepository) SumByEntity(ctx context.Context, ref domain.EntityRef) (decimal.Decimal, decimal.Decimal, error) {
	var credits, debits pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'CREDIT'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'DEBIT'), 0)
		FROM wallet_transactions
		WHERE entity_type = $1 AND entity_id = $2
	`, ref.Type, ref.ID).Scan(&credits, &debits)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(credits), numericToDecimal(debits), nil
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.TransactionRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.TransactionRecord
	for rows.Next() {
		record, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.TransactionRecord, error) {
	var (
		record                        domain.TransactionRecord
		amount, before, after         pgtype.Numeric
		createdAt                     pgtype.Timestamptz
	)

	err := row.Scan(
		&record.ID,
		&record.EntityType,
		&record.EntityID,
		&record.Type,
		&record.Category,
		&amount,
		&record.Currency,
		&record.OrderID,
		&record.Description,
		&before,
		&after,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction not found")
		}
		return nil, err
	}

	record.Amount = numericToDecimal(amount)
	record.BalanceBefore = numericToDecimal(before)
	record.BalanceAfter = numericToDecimal(after)
	record.CreatedAt = createdAt.Time

	return &record, nil
}
