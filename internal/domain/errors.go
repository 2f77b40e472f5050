package domain

import "errors"

var (
	// Wallet errors
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInvalidEntityType   = errors.New("invalid entity type")
	ErrMissingEntityID     = errors.New("entity id is required")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient available balance")

	// Settlement errors
	ErrSplitMismatch       = errors.New("commission split does not sum to order total")
	ErrMissingOrderID      = errors.New("order id is required")
	ErrUnknownCategory     = errors.New("unknown order category")
	ErrMissingRider        = errors.New("rider id is required")
	ErrMissingVendor       = errors.New("vendor id is required for merchant orders")
	ErrOrderAlreadySettled = errors.New("order already settled")
	ErrSettlementNotFound  = errors.New("settlement not found")

	// Payout errors
	ErrPayoutNotFound     = errors.New("payout request not found")
	ErrBelowMinimumPayout = errors.New("amount is below the minimum payout threshold")
	ErrAlreadyProcessed   = errors.New("payout request already processed")
	ErrPayoutNotAllowed   = errors.New("entity type cannot request payouts")
	ErrMissingReason      = errors.New("a rejection reason is required")
)
