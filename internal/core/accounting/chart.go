package accounting

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// ChartSnapshot is an immutable view of the chart of accounts. A posting
// validates against exactly one snapshot.
type ChartSnapshot struct {
	accounts map[string]domain.Account
}

// Resolve looks up an account by code.
func (s *ChartSnapshot) Resolve(code string) (domain.Account, error) {
	acc, ok := s.accounts[code]
	if !ok {
		return domain.Account{}, &UnknownAccountError{Code: code}
	}
	return acc, nil
}

// Accounts returns every account ordered by code.
func (s *ChartSnapshot) Accounts() []domain.Account {
	out := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Chart is the live chart of accounts. Reload swaps the whole snapshot so
// readers never observe a half-applied reconfiguration.
type Chart struct {
	current atomic.Pointer[ChartSnapshot]
}

// NewChart builds a chart from the given accounts.
func NewChart(accounts []domain.Account) (*Chart, error) {
	c := &Chart{}
	if err := c.Reload(accounts); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload validates and installs a new set of accounts.
func (c *Chart) Reload(accounts []domain.Account) error {
	snap, err := newSnapshot(accounts)
	if err != nil {
		return err
	}
	c.current.Store(snap)
	return nil
}

// Snapshot returns the current immutable view.
func (c *Chart) Snapshot() *ChartSnapshot {
	return c.current.Load()
}

// Resolve looks up an account in the current snapshot.
func (c *Chart) Resolve(code string) (domain.Account, error) {
	return c.Snapshot().Resolve(code)
}

func newSnapshot(accounts []domain.Account) (*ChartSnapshot, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: chart of accounts is empty", apperrors.ErrValidation)
	}
	m := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		if a.Code == "" || a.Name == "" {
			return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
		}
		if !a.Type.Valid() {
			return nil, fmt.Errorf("%w: account %s has invalid type %q", apperrors.ErrValidation, a.Code, a.Type)
		}
		if _, dup := m[a.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate account code %s", apperrors.ErrValidation, a.Code)
		}
		m[a.Code] = a
	}
	return &ChartSnapshot{accounts: m}, nil
}

// DefaultAccounts is the seed chart used when storage holds no accounts.
func DefaultAccounts() []domain.Account {
	return []domain.Account{
		{Code: domain.AccountCashBank, Name: "Cash/Bank", Type: domain.Asset},
		{Code: domain.AccountReceivable, Name: "Accounts Receivable", Type: domain.Asset},
		{Code: domain.AccountInventory, Name: "Inventory", Type: domain.Asset},
		{Code: domain.AccountInputTax, Name: "Input Tax", Type: domain.Asset},
		{Code: domain.AccountPayable, Name: "Accounts Payable", Type: domain.Liability},
		{Code: domain.AccountTaxPayable, Name: "Tax Payable", Type: domain.Liability},
		{Code: domain.AccountPAYEPayable, Name: "PAYE Payable", Type: domain.Liability},
		{Code: domain.AccountPensionPayable, Name: "Pension Payable", Type: domain.Liability},
		{Code: domain.AccountHealthLevyPayable, Name: "Health Levy Payable", Type: domain.Liability},
		{Code: domain.AccountHousingLevyPayable, Name: "Housing Levy Payable", Type: domain.Liability},
		{Code: domain.AccountOtherDeductionsPayable, Name: "Other Payroll Deductions Payable", Type: domain.Liability},
		{Code: domain.AccountOwnersEquity, Name: "Owner's Equity", Type: domain.Equity},
		{Code: domain.AccountSalesRevenue, Name: "Sales Revenue", Type: domain.Revenue},
		{Code: domain.AccountSalesReturns, Name: "Sales Returns & Allowances", Type: domain.Revenue, Contra: true},
		{Code: domain.AccountCostOfGoodsSold, Name: "Cost of Goods Sold", Type: domain.Expense},
		{Code: domain.AccountGeneralAdmin, Name: "General & Administrative", Type: domain.Expense},
		{Code: domain.AccountSalariesWages, Name: "Salaries & Wages", Type: domain.Expense},
		{Code: "6200", Name: "Rent", Type: domain.Expense},
		{Code: "6300", Name: "Utilities", Type: domain.Expense},
		{Code: "6400", Name: "Travel", Type: domain.Expense},
		{Code: "6500", Name: "Office Supplies", Type: domain.Expense},
		{Code: "6600", Name: "Professional Fees", Type: domain.Expense},
	}
}
