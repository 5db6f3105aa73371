package accounting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

var (
	ErrImbalanced          = errors.New("transaction does not balance")
	ErrUnknownAccount      = errors.New("unknown account")
	ErrMalformedLine       = errors.New("malformed journal line")
	ErrEmptyDraft          = errors.New("transaction has no lines")
	ErrCurrencyMismatch    = errors.New("transaction currency is not the base currency")
	ErrMissingExchangeRate = errors.New("missing exchange rate")
	ErrInvalidExchangeRate = errors.New("invalid exchange rate")
	ErrUnknownCurrency     = errors.New("unknown currency")
)

// ImbalancedError reports the computed difference and the accounts involved.
type ImbalancedError struct {
	Debits     domain.Amount
	Credits    domain.Amount
	Difference domain.Amount
	Accounts   []string
}

func (e *ImbalancedError) Error() string {
	return fmt.Sprintf("%s: debits %d, credits %d, difference %d across accounts [%s]",
		ErrImbalanced, e.Debits, e.Credits, e.Difference, strings.Join(e.Accounts, ", "))
}

func (e *ImbalancedError) Unwrap() []error { return []error{ErrImbalanced, apperrors.ErrValidation} }

// UnknownAccountError names the offending account code.
type UnknownAccountError struct {
	Code string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownAccount, e.Code)
}

func (e *UnknownAccountError) Unwrap() []error {
	return []error{ErrUnknownAccount, apperrors.ErrValidation}
}

// MalformedLineError points at the line that broke the one-sided rule.
type MalformedLineError struct {
	Index       int
	AccountCode string
	Reason      string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s %d (%s): %s", ErrMalformedLine, e.Index, e.AccountCode, e.Reason)
}

func (e *MalformedLineError) Unwrap() []error {
	return []error{ErrMalformedLine, apperrors.ErrValidation}
}

// MissingRateError is returned for a cross-currency event with no rate.
type MissingRateError struct {
	From string
	To   string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("%s: %s to %s", ErrMissingExchangeRate, e.From, e.To)
}

func (e *MissingRateError) Unwrap() []error {
	return []error{ErrMissingExchangeRate, apperrors.ErrValidation}
}

// UnknownCurrencyError names a currency code that is not in the currency table.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownCurrency, e.Code)
}

func (e *UnknownCurrencyError) Unwrap() []error {
	return []error{ErrUnknownCurrency, apperrors.ErrValidation}
}

// InvalidRateError is returned for a rate that cannot apply to the event.
type InvalidRateError struct {
	Rate   string
	Reason string
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("%s: %s, got %s", ErrInvalidExchangeRate, e.Reason, e.Rate)
}

func (e *InvalidRateError) Unwrap() []error {
	return []error{ErrInvalidExchangeRate, apperrors.ErrValidation}
}

// CurrencyMismatchError reports a draft not denominated in the base currency.
type CurrencyMismatchError struct {
	Got  string
	Want string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("%s: got %q, want %q", ErrCurrencyMismatch, e.Got, e.Want)
}

func (e *CurrencyMismatchError) Unwrap() []error {
	return []error{ErrCurrencyMismatch, apperrors.ErrValidation}
}

type emptyDraftError struct{}

func (emptyDraftError) Error() string { return ErrEmptyDraft.Error() }

func (emptyDraftError) Unwrap() []error {
	return []error{ErrEmptyDraft, apperrors.ErrValidation}
}

// EmptyDraftError returns the error for a draft without lines. It matches
// both ErrEmptyDraft and apperrors.ErrValidation.
func EmptyDraftError() error { return emptyDraftError{} }
