package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/dto"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) PostEvent(ctx context.Context, ev domain.Event, actor string) (*domain.Transaction, bool, error) {
	args := m.Called(ctx, ev, actor)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.Transaction), args.Bool(1), args.Error(2)
}
func (m *MockLedgerService) VoidTransaction(ctx context.Context, transactionID, reason, actor string) (*domain.Transaction, bool, error) {
	args := m.Called(ctx, transactionID, reason, actor)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.Transaction), args.Bool(1), args.Error(2)
}
func (m *MockLedgerService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) BaseCurrency() domain.Currency {
	return m.Called().Get(0).(domain.Currency)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}
func (m *MockReportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}
func (m *MockReportingService) AccountBalance(ctx context.Context, accountCode string) (*domain.AccountBalance, error) {
	args := m.Called(ctx, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}

var _ portssvc.ReportingSvcFacade = (*MockReportingService)(nil)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) ListAccounts(ctx context.Context) []domain.Account {
	return m.Called(ctx).Get(0).([]domain.Account)
}
func (m *MockAccountService) GetAccount(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock PayrollService ---
type MockPayrollService struct {
	mock.Mock
}

func (m *MockPayrollService) Preview(ctx context.Context, req dto.RunPayrollRequest) (*domain.PayrollRun, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayrollRun), args.Error(1)
}
func (m *MockPayrollService) RunPayroll(ctx context.Context, req dto.RunPayrollRequest, actor string) (*domain.PayrollRun, *domain.Transaction, bool, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, nil, false, args.Error(3)
	}
	return args.Get(0).(*domain.PayrollRun), args.Get(1).(*domain.Transaction), args.Bool(2), args.Error(3)
}
func (m *MockPayrollService) GetRun(ctx context.Context, runID string) (*domain.PayrollRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayrollRun), args.Error(1)
}

var _ portssvc.PayrollSvcFacade = (*MockPayrollService)(nil)

// --- Mock ReconciliationService ---
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) ImportStatement(ctx context.Context, req dto.ImportStatementRequest, actor string) (*domain.ReconciliationSession, []domain.BankStatementLine, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.ReconciliationSession), args.Get(1).([]domain.BankStatementLine), args.Error(2)
}
func (m *MockReconciliationService) GetSession(ctx context.Context, sessionID string) (*domain.ReconciliationSession, []domain.BankStatementLine, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.ReconciliationSession), args.Get(1).([]domain.BankStatementLine), args.Error(2)
}
func (m *MockReconciliationService) Candidates(ctx context.Context, sessionID, lineID string) ([]domain.MatchCandidate, error) {
	args := m.Called(ctx, sessionID, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MatchCandidate), args.Error(1)
}
func (m *MockReconciliationService) SuggestAll(ctx context.Context, sessionID string) ([]domain.LineSuggestion, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LineSuggestion), args.Error(1)
}
func (m *MockReconciliationService) ConfirmMatch(ctx context.Context, sessionID, lineID, transactionID, actor string) (*domain.ReconciliationMatch, error) {
	args := m.Called(ctx, sessionID, lineID, transactionID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationMatch), args.Error(1)
}
func (m *MockReconciliationService) DeferLine(ctx context.Context, sessionID, lineID, reason, actor string) error {
	return m.Called(ctx, sessionID, lineID, reason, actor).Error(0)
}
func (m *MockReconciliationService) Summary(ctx context.Context, sessionID string) (*domain.ReconciliationSummary, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationSummary), args.Error(1)
}

var _ portssvc.ReconciliationSvcFacade = (*MockReconciliationService)(nil)

// --- Mock AuditService ---
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) ListEntries(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}
func (m *MockAuditService) VerifyChain(ctx context.Context) (*domain.ChainVerification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChainVerification), args.Error(1)
}

var _ portssvc.AuditSvcFacade = (*MockAuditService)(nil)
