package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quickdrop/ledger/internal/domain"
	"github.com/quickdrop/ledger/internal/usecase"
)

const walletColumns = `entity_type, entity_id, available_balance, pending_balance,
	total_earned, total_spent, currency, version, created_at, updated_at`

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// GetOrCreate returns the wallet for an entity, inserting a zeroed row on
// first reference. Concurrent first references are safe: the insert is a
// no-op for the loser and both read the same row.
func (r *WalletRepository) GetOrCreate(ctx context.Context, ref domain.EntityRef, currency string) (*domain.WalletBalance, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wallets (entity_type, entity_id, currency)
		VALUES ($1, $2, $3)
		ON CONFLICT (entity_type, entity_id) DO NOTHING
	`, ref.Type, ref.ID, currency)
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, ref)
}

// Get returns the wallet for an entity.
func (r *WalletRepository) Get(ctx context.Context, ref domain.EntityRef) (*domain.WalletBalance, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+walletColumns+`
		FROM wallets
		WHERE entity_type = $1 AND entity_id = $2
	`, ref.Type, ref.ID)

	return scanWallet(row)
}

// GetForUpdate locks and returns the wallet row inside a transaction.
func (r *WalletRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, ref domain.EntityRef) (*domain.WalletBalance, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT `+walletColumns+`
		FROM wallets
		WHERE entity_type = $1 AND entity_id = $2
		FOR UPDATE
	`, ref.Type, ref.ID)

	return scanWallet(row)
}

// GetManyForUpdate locks several wallets in one transaction. Rows are
// locked in sorted key order so two settlements touching the same wallets
// never deadlock each other.
func (r *WalletRepository) GetManyForUpdate(ctx context.Context, tx usecase.Transaction, refs []domain.EntityRef) ([]*domain.WalletBalance, error) {
	sorted := make([]domain.EntityRef, len(refs))
	copy(sorted, refs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].ID < sorted[j].ID
	})

	wallets := make([]*domain.WalletBalance, 0, len(sorted))
	for _, ref := range sorted {
		wallet, err := r.GetForUpdate(ctx, tx, ref)
		if err != nil {
			return nil, fmt.Errorf("lock wallet %s: %w", ref, err)
		}
		wallets = append(wallets, wallet)
	}

	return wallets, nil
}

// ApplyDelta applies a signed balance mutation. The WHERE clause carries
// the non-negativity guard, so an overdraft under concurrency updates zero
// rows instead of writing a negative balance.
func (r *WalletRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, ref domain.EntityRef, delta domain.WalletDelta, updatedAt time.Time) error {
	// A zero delta would bump the version and touch updated_at for nothing.
	if delta.IsZero() {
		return nil
	}

	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE wallets
		SET available_balance = available_balance + $3,
		    pending_balance   = pending_balance + $4,
		    total_earned      = total_earned + $5,
		    total_spent       = total_spent + $6,
		    version           = version + 1,
		    updated_at        = $7
		WHERE entity_type = $1 AND entity_id = $2
		  AND available_balance + $3 >= 0
		  AND pending_balance + $4 >= 0
	`,
		ref.Type,
		ref.ID,
		decimalToNumeric(delta.Available),
		decimalToNumeric(delta.Pending),
		decimalToNumeric(delta.Earned),
		decimalToNumeric(delta.Spent),
		timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		// Either the wallet is gone or the guard rejected the delta.
		var exists bool
		if err := pgxTx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM wallets WHERE entity_type = $1 AND entity_id = $2)
		`, ref.Type, ref.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrWalletNotFound
		}
		return domain.ErrInsufficientBalance
	}

	return nil
}

// List returns wallets ordered by owner key.
func (r *WalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.WalletBalance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+walletColumns+`
		FROM wallets
		ORDER BY entity_type, entity_id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []*domain.WalletBalance
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, wallet)
	}

	return wallets, rows.Err()
}

func scanWallet(row pgx.Row) (*domain.WalletBalance, error) {
	var (
		w                                     domain.WalletBalance
		available, pending, earned, spent     pgtype.Numeric
		createdAt, updatedAt                  pgtype.Timestamptz
	)

	err := row.Scan(
		&w.EntityType,
		&w.EntityID,
		&available,
		&pending,
		&earned,
		&spent,
		&w.Currency,
		&w.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}

	w.AvailableBalance = numericToDecimal(available)
	w.PendingBalance = numericToDecimal(pending)
	w.TotalEarned = numericToDecimal(earned)
	w.TotalSpent = numericToDecimal(spent)
	w.CreatedAt = createdAt.Time
	w.UpdatedAt = updatedAt.Time

	return &w, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
