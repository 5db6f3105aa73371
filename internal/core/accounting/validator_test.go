package accounting_test

import (
	"errors"
	"testing"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/accounting"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChart(t *testing.T) *accounting.Chart {
	t.Helper()
	chart, err := accounting.NewChart(accounting.DefaultAccounts())
	require.NoError(t, err)
	return chart
}

func draft(lines ...domain.JournalLine) *domain.TransactionDraft {
	return &domain.TransactionDraft{Currency: "KES", Lines: lines}
}

func TestValidate(t *testing.T) {
	chart := newChart(t)

	tests := []struct {
		name    string
		draft   *domain.TransactionDraft
		wantErr error
	}{
		{
			name: "balanced sale",
			draft: draft(
				domain.JournalLine{AccountCode: "1100", Debit: 5800000},
				domain.JournalLine{AccountCode: "4000", Credit: 5000000},
				domain.JournalLine{AccountCode: "2100", Credit: 800000},
			),
		},
		{name: "no lines", draft: draft(), wantErr: accounting.ErrEmptyDraft},
		{name: "nil draft", draft: nil, wantErr: accounting.ErrEmptyDraft},
		{
			name: "both sides on one line",
			draft: draft(
				domain.JournalLine{AccountCode: "1100", Debit: 10, Credit: 10},
			),
			wantErr: accounting.ErrMalformedLine,
		},
		{
			name: "zero line",
			draft: draft(
				domain.JournalLine{AccountCode: "1100", Debit: 10},
				domain.JournalLine{AccountCode: "4000", Credit: 10},
				domain.JournalLine{AccountCode: "2100"},
			),
			wantErr: accounting.ErrMalformedLine,
		},
		{
			name: "negative amount",
			draft: draft(
				domain.JournalLine{AccountCode: "1100", Debit: -10},
				domain.JournalLine{AccountCode: "4000", Credit: -10},
			),
			wantErr: accounting.ErrMalformedLine,
		},
		{
			name: "unknown account",
			draft: draft(
				domain.JournalLine{AccountCode: "9999", Debit: 10},
				domain.JournalLine{AccountCode: "4000", Credit: 10},
			),
			wantErr: accounting.ErrUnknownAccount,
		},
		{
			name: "off by one minor unit",
			draft: draft(
				domain.JournalLine{AccountCode: "1100", Debit: 5800001},
				domain.JournalLine{AccountCode: "4000", Credit: 5800000},
			),
			wantErr: accounting.ErrImbalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := accounting.Validate(tt.draft, chart, "KES")
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestValidate_ImbalanceDetails(t *testing.T) {
	chart := newChart(t)
	err := accounting.Validate(draft(
		domain.JournalLine{AccountCode: "4000", Credit: 900},
		domain.JournalLine{AccountCode: "1100", Debit: 1000},
	), chart, "KES")

	var imb *accounting.ImbalancedError
	require.True(t, errors.As(err, &imb))
	assert.Equal(t, domain.Amount(100), imb.Difference)
	assert.Equal(t, []string{"1100", "4000"}, imb.Accounts)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidate_UnknownAccountNamesCode(t *testing.T) {
	chart := newChart(t)
	err := accounting.Validate(draft(
		domain.JournalLine{AccountCode: "1100", Debit: 10},
		domain.JournalLine{AccountCode: "4999", Credit: 10},
	), chart, "KES")

	var unknown *accounting.UnknownAccountError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "4999", unknown.Code)
}

func TestValidate_RejectsForeignCurrency(t *testing.T) {
	chart := newChart(t)
	d := draft(
		domain.JournalLine{AccountCode: "1100", Debit: 10},
		domain.JournalLine{AccountCode: "4000", Credit: 10},
	)
	d.Currency = "USD"
	err := accounting.Validate(d, chart, "KES")
	assert.ErrorIs(t, err, accounting.ErrCurrencyMismatch)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBalanceChanges(t *testing.T) {
	chart := newChart(t)
	changes, err := accounting.BalanceChanges([]domain.JournalLine{
		{AccountCode: "1100", Debit: 5800000},
		{AccountCode: "4000", Credit: 5000000},
		{AccountCode: "2100", Credit: 800000},
		{AccountCode: "4100", Debit: 1000},
		{AccountCode: "1100", Credit: 1000},
	}, chart)
	require.NoError(t, err)

	assert.Equal(t, domain.Amount(5799000), changes["1100"])
	assert.Equal(t, domain.Amount(5000000), changes["4000"])
	assert.Equal(t, domain.Amount(800000), changes["2100"])
	assert.Equal(t, domain.Amount(1000), changes["4100"])
}

func TestChart_Reload(t *testing.T) {
	chart := newChart(t)
	before := chart.Snapshot()

	require.NoError(t, chart.Reload([]domain.Account{{Code: "1000", Name: "Bank", Type: domain.Asset}}))

	_, err := chart.Resolve("1100")
	assert.ErrorIs(t, err, accounting.ErrUnknownAccount)

	acc, err := before.Resolve("1100")
	require.NoError(t, err, "snapshots taken before a reload stay intact")
	assert.Equal(t, "Accounts Receivable", acc.Name)
}

func TestChart_RejectsBadAccounts(t *testing.T) {
	_, err := accounting.NewChart(nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = accounting.NewChart([]domain.Account{
		{Code: "1000", Name: "Bank", Type: domain.Asset},
		{Code: "1000", Name: "Bank again", Type: domain.Asset},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = accounting.NewChart([]domain.Account{{Code: "1000", Name: "Bank", Type: "INCOME"}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
