package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Standard account codes used by the transaction builders.
const (
	AccountCashBank               = "1000"
	AccountReceivable             = "1100"
	AccountInventory              = "1200"
	AccountInputTax               = "1300"
	AccountPayable                = "2000"
	AccountTaxPayable             = "2100"
	AccountPAYEPayable            = "2200"
	AccountPensionPayable         = "2210"
	AccountHealthLevyPayable      = "2220"
	AccountHousingLevyPayable     = "2230"
	AccountOtherDeductionsPayable = "2240"
	AccountOwnersEquity           = "3000"
	AccountSalesRevenue           = "4000"
	AccountSalesReturns           = "4100"
	AccountCostOfGoodsSold        = "5000"
	AccountGeneralAdmin           = "6000"
	AccountSalariesWages          = "6100"
)

// Account is an entry in the chart of accounts. Accounts are seeded from
// configuration and never mutated by business events.
type Account struct {
	Code string      `json:"code"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
	// Contra accounts carry the opposite normal balance of their type,
	// e.g. Sales Returns & Allowances under revenue.
	Contra bool `json:"contra"`
}

// DebitNormal reports whether the account's balance grows with debits.
func (a Account) DebitNormal() bool {
	debitType := a.Type == Asset || a.Type == Expense
	return debitType != a.Contra
}

// SignedChange returns the effect of a debit/credit pair on the account's
// normal-side balance.
func (a Account) SignedChange(debit, credit Amount) Amount {
	if a.DebitNormal() {
		return debit - credit
	}
	return credit - debit
}
