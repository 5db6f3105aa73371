package dto

import (
	"time"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StatementLineRequest is one already-parsed bank statement record. Amount is
// signed in major units, positive for money in.
type StatementLineRequest struct {
	Date        time.Time       `json:"date" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string"`
}

// ImportStatementRequest opens a reconciliation session over an ordered list
// of statement lines.
type ImportStatementRequest struct {
	BankAccountCode string                 `json:"bankAccountCode"`
	PeriodStart     time.Time              `json:"periodStart" binding:"required"`
	PeriodEnd       time.Time              `json:"periodEnd" binding:"required"`
	Lines           []StatementLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ConfirmMatchRequest pairs a statement line with a ledger transaction.
type ConfirmMatchRequest struct {
	LineID        string `json:"lineId" binding:"required"`
	TransactionID string `json:"transactionId" binding:"required"`
}

// DeferLineRequest explains why a line is left out of this reconciliation.
type DeferLineRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// SessionResponse is a session with its lines and running summary.
type SessionResponse struct {
	Session domain.ReconciliationSession `json:"session"`
	Summary domain.ReconciliationSummary `json:"summary"`
	Lines   []domain.BankStatementLine   `json:"lines"`
}
