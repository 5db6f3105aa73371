package accounting

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Converter turns event-native amounts into base-currency minor units.
type Converter struct {
	base domain.Currency
}

// NewConverter creates a converter for the given base currency code.
func NewConverter(baseCode string) (*Converter, error) {
	base, ok := domain.LookupCurrency(baseCode)
	if !ok {
		return nil, &UnknownCurrencyError{Code: baseCode}
	}
	return &Converter{base: base}, nil
}

// Base returns the ledger base currency.
func (c *Converter) Base() domain.Currency {
	return c.base
}

// ResolveRate returns the rate to apply for an event. The rate defaults to one
// only when the event is already in the base currency; a cross-currency event
// without a rate is rejected.
func (c *Converter) ResolveRate(from string, rate *decimal.Decimal) (decimal.Decimal, error) {
	src, ok := domain.LookupCurrency(from)
	if !ok {
		return decimal.Zero, &UnknownCurrencyError{Code: from}
	}
	if src.Code == c.base.Code {
		if rate != nil && !rate.Equal(decimal.NewFromInt(1)) {
			return decimal.Zero, &InvalidRateError{Rate: rate.String(), Reason: "same-currency rate must be 1"}
		}
		return decimal.NewFromInt(1), nil
	}
	if rate == nil {
		return decimal.Zero, &MissingRateError{From: src.Code, To: c.base.Code}
	}
	if !rate.IsPositive() {
		return decimal.Zero, &InvalidRateError{Rate: rate.String(), Reason: "rate must be positive"}
	}
	return *rate, nil
}

// ToBase converts a major-unit amount at the given rate to base minor units.
func (c *Converter) ToBase(amount, rate decimal.Decimal) domain.Amount {
	return domain.AmountFromDecimal(amount.Mul(rate), c.base.Precision)
}

// MinorToBase converts a minor-unit amount of currency from at the given rate.
func (c *Converter) MinorToBase(amount domain.Amount, from string, rate decimal.Decimal) (domain.Amount, error) {
	src, ok := domain.LookupCurrency(from)
	if !ok {
		return 0, &UnknownCurrencyError{Code: from}
	}
	return c.ToBase(amount.Decimal(src.Precision), rate), nil
}

// NeedsNote reports whether a description must record the conversion.
func (c *Converter) NeedsNote(from string) bool {
	return !strings.EqualFold(strings.TrimSpace(from), c.base.Code)
}

// ConversionNote records the original amount, currency and rate in a
// description so the base amount can be recomputed later.
func ConversionNote(original decimal.Decimal, currency string, rate decimal.Decimal) string {
	return fmt.Sprintf("[orig %s %s @ %s]", original.String(), strings.ToUpper(currency), rate.String())
}

var noteRe = regexp.MustCompile(`\[orig (-?[0-9]+(?:\.[0-9]+)?) ([A-Z]{3}) @ ([0-9]+(?:\.[0-9]+)?)\]`)

// ParseConversionNote extracts the values written by ConversionNote.
func ParseConversionNote(description string) (original decimal.Decimal, currency string, rate decimal.Decimal, ok bool) {
	m := noteRe.FindStringSubmatch(description)
	if m == nil {
		return decimal.Zero, "", decimal.Zero, false
	}
	original, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, "", decimal.Zero, false
	}
	rate, err = decimal.NewFromString(m[3])
	if err != nil {
		return decimal.Zero, "", decimal.Zero, false
	}
	return original, m[2], rate, true
}
