package services

import (
	"context"
	"time"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/SscSPs/smb_ledger/internal/dto"
)

// LedgerSvcFacade turns business events into postings.
type LedgerSvcFacade interface {
	// PostEvent builds and posts the transaction for an event. created is false
	// when the event had already been posted; that is success, not an error.
	PostEvent(ctx context.Context, ev domain.Event, actor string) (txn *domain.Transaction, created bool, err error)

	// VoidTransaction posts a reversing adjustment. Voiding twice returns the
	// first reversal.
	VoidTransaction(ctx context.Context, transactionID, reason, actor string) (reversal *domain.Transaction, created bool, err error)

	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)

	BaseCurrency() domain.Currency
}

// ReportingSvcFacade serves read-only ledger queries.
type ReportingSvcFacade interface {
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error)
	AccountBalance(ctx context.Context, accountCode string) (*domain.AccountBalance, error)
}

// AccountSvcFacade exposes the chart of accounts.
type AccountSvcFacade interface {
	ListAccounts(ctx context.Context) []domain.Account
	GetAccount(ctx context.Context, code string) (*domain.Account, error)
}

// PayrollSvcFacade computes and posts payroll runs.
type PayrollSvcFacade interface {
	Preview(ctx context.Context, req dto.RunPayrollRequest) (*domain.PayrollRun, error)
	RunPayroll(ctx context.Context, req dto.RunPayrollRequest, actor string) (run *domain.PayrollRun, txn *domain.Transaction, created bool, err error)
	GetRun(ctx context.Context, runID string) (*domain.PayrollRun, error)
}

// ReconciliationSvcFacade drives bank reconciliation sessions.
type ReconciliationSvcFacade interface {
	ImportStatement(ctx context.Context, req dto.ImportStatementRequest, actor string) (*domain.ReconciliationSession, []domain.BankStatementLine, error)
	GetSession(ctx context.Context, sessionID string) (*domain.ReconciliationSession, []domain.BankStatementLine, error)
	Candidates(ctx context.Context, sessionID, lineID string) ([]domain.MatchCandidate, error)
	SuggestAll(ctx context.Context, sessionID string) ([]domain.LineSuggestion, error)
	ConfirmMatch(ctx context.Context, sessionID, lineID, transactionID, actor string) (*domain.ReconciliationMatch, error)
	DeferLine(ctx context.Context, sessionID, lineID, reason, actor string) error
	Summary(ctx context.Context, sessionID string) (*domain.ReconciliationSummary, error)
}

// AuditSvcFacade is the read side of the audit trail.
type AuditSvcFacade interface {
	ListEntries(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
	VerifyChain(ctx context.Context) (*domain.ChainVerification, error)
}

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Ledger         LedgerSvcFacade
	Reporting      ReportingSvcFacade
	Account        AccountSvcFacade
	Payroll        PayrollSvcFacade
	Reconciliation ReconciliationSvcFacade
	Audit          AuditSvcFacade
}
