package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a quantity of money in the minor unit (cents, etc.) of the ledger's
// base currency. All balance arithmetic happens on Amount, never on floats.
type Amount int64

// Decimal renders the amount in major units for the given precision.
func (a Amount) Decimal(precision int32) decimal.Decimal {
	return decimal.New(int64(a), -precision)
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// AmountFromDecimal converts a major-unit decimal to minor units, rounding half
// away from zero.
func AmountFromDecimal(d decimal.Decimal, precision int32) Amount {
	return Amount(d.Shift(precision).Round(0).IntPart())
}

// Currency describes an ISO 4217 currency and the number of minor-unit digits.
type Currency struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Precision int32  `json:"precision"`
}

var knownCurrencies = map[string]Currency{
	"KES": {Code: "KES", Name: "Kenyan Shilling", Precision: 2},
	"UGX": {Code: "UGX", Name: "Ugandan Shilling", Precision: 0},
	"TZS": {Code: "TZS", Name: "Tanzanian Shilling", Precision: 2},
	"RWF": {Code: "RWF", Name: "Rwandan Franc", Precision: 0},
	"NGN": {Code: "NGN", Name: "Nigerian Naira", Precision: 2},
	"ZAR": {Code: "ZAR", Name: "South African Rand", Precision: 2},
	"USD": {Code: "USD", Name: "US Dollar", Precision: 2},
	"EUR": {Code: "EUR", Name: "Euro", Precision: 2},
	"GBP": {Code: "GBP", Name: "Pound Sterling", Precision: 2},
	"JPY": {Code: "JPY", Name: "Japanese Yen", Precision: 0},
}

// LookupCurrency finds a currency by code, case-insensitively.
func LookupCurrency(code string) (Currency, bool) {
	c, ok := knownCurrencies[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}
