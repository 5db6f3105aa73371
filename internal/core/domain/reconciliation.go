package domain

import "time"

// LineStatus is the per-line reconciliation state. Matched is terminal.
type LineStatus string

const (
	LineUnmatched LineStatus = "unmatched"
	LineMatched   LineStatus = "matched"
	LineDeferred  LineStatus = "deferred"
)

// BankStatementLine is imported verbatim; Amount is signed with positive for
// inflows. Status and the deferral fields are session state layered on top.
type BankStatementLine struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"sessionId"`
	Position       int        `json:"position"`
	Date           time.Time  `json:"date"`
	Description    string     `json:"description"`
	Amount         Amount     `json:"amount"`
	Status         LineStatus `json:"status"`
	DeferredReason string     `json:"deferredReason,omitempty"`
}

// ReconciliationSession groups one imported statement for one bank account.
type ReconciliationSession struct {
	ID              string    `json:"id"`
	BankAccountCode string    `json:"bankAccountCode"`
	PeriodStart     time.Time `json:"periodStart"`
	PeriodEnd       time.Time `json:"periodEnd"`
	AuditFields
}

// ReconciliationMatch pairs one statement line with one ledger transaction.
type ReconciliationMatch struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	LineID        string    `json:"lineId"`
	TransactionID string    `json:"transactionId"`
	Difference    Amount    `json:"difference"`
	ConfirmedBy   string    `json:"confirmedBy"`
	ConfirmedAt   time.Time `json:"confirmedAt"`
}

// MatchCandidate is a proposed transaction for a statement line.
type MatchCandidate struct {
	TransactionID   string    `json:"transactionId"`
	ReferenceNumber string    `json:"referenceNumber"`
	Description     string    `json:"description"`
	Date            time.Time `json:"transactionDate"`
	Amount          Amount    `json:"amount"`
	Difference      Amount    `json:"difference"`
	DaysApart       int       `json:"daysApart"`
}

// LineSuggestion bundles the ranked candidates for one unmatched line.
type LineSuggestion struct {
	Line       BankStatementLine `json:"line"`
	Candidates []MatchCandidate  `json:"candidates"`
}

// ReconciliationSummary exposes the session invariant
// StatementBalance - ReconciledBalance = OutstandingDifference.
type ReconciliationSummary struct {
	SessionID             string `json:"sessionId"`
	StatementBalance      Amount `json:"statementBalance"`
	ReconciledBalance     Amount `json:"reconciledBalance"`
	OutstandingDifference Amount `json:"outstandingDifference"`
	TotalLines            int    `json:"totalLines"`
	MatchedLines          int    `json:"matchedLines"`
	DeferredLines         int    `json:"deferredLines"`
	UnmatchedLines        int    `json:"unmatchedLines"`
	Complete              bool   `json:"complete"`
}
