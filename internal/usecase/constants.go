package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database
	// transaction. Settlements lock several wallet rows; a stuck
	// transaction must not pin them.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultCurrency is the minor-unit currency used when creating
	// wallets unless configured otherwise.
	DefaultCurrency = "XAF"

	// DefaultMinimumPayout is the smallest withdrawable amount in minor
	// units, used when the configuration leaves it unset.
	DefaultMinimumPayout = 50_000

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
