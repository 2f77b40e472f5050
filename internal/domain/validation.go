package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxTransactionAmount = "100000000" // 100 million minor units per mutation
	MaxBankFieldLength   = 255
)

// Supported settlement currencies. Minor-unit integers throughout; the
// deployment runs on exactly one of these.
var validCurrencies = map[string]bool{
	"XAF": true, "XOF": true, "NGN": true, "GHS": true,
	"KES": true, "USD": true, "EUR": true,
}

// ValidateCurrency validates a currency code.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("unsupported currency code: %s", currency)
	}

	return nil
}

// ValidateAmount validates a mutation amount: positive, integral minor
// units, below the single-mutation cap.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Truncate(0)) {
		return fmt.Errorf("%w: amounts are whole minor units", ErrInvalidAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxTransactionAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum single amount is %s", ErrInvalidAmount, MaxTransactionAmount)
	}

	return nil
}

// ValidateBankDetails checks the opaque destination fields are present and
// bounded. The ledger never interprets them beyond this.
func ValidateBankDetails(b BankDetails) error {
	for name, v := range map[string]string{
		"account_name":   b.AccountName,
		"account_number": b.AccountNumber,
		"bank_name":      b.BankName,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("bank details: %s is required", name)
		}
		if len(v) > MaxBankFieldLength {
			return fmt.Errorf("bank details: %s exceeds %d characters", name, MaxBankFieldLength)
		}
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 100
	const DefaultPageSize = 20

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
