package domain

import "time"

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountCode string      `json:"accountCode"`
	AccountName string      `json:"accountName"`
	AccountType AccountType `json:"accountType"`
	Debit       Amount      `json:"debit"`
	Credit      Amount      `json:"credit"`
}

// TrialBalance is the set of per-account totals as of a date.
type TrialBalance struct {
	AsOf         time.Time         `json:"asOf"`
	Currency     string            `json:"currency"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  Amount            `json:"totalDebits"`
	TotalCredits Amount            `json:"totalCredits"`
	Balanced     bool              `json:"balanced"`
}

// AccountBalance is the running normal-side balance of one account.
type AccountBalance struct {
	Account  Account `json:"account"`
	Balance  Amount  `json:"balance"`
	Currency string  `json:"currency"`
}
