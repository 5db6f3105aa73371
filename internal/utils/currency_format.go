package utils

import (
	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// FormatWithCurrencyPrecision renders a minor-unit amount in major units with
// the currency's precision.
// Example: 438335 with KES (precision 2) returns "4383.35"
// Example: 1500 with UGX (precision 0) returns "1500"
func FormatWithCurrencyPrecision(amount domain.Amount, currency domain.Currency) string {
	return FormatWithPrecision(amount, currency.Precision)
}

// FormatWithPrecision is the same as FormatWithCurrencyPrecision when only the
// precision is at hand.
func FormatWithPrecision(amount domain.Amount, precision int32) string {
	return amount.Decimal(precision).StringFixed(precision)
}
