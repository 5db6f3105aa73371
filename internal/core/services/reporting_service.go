package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/accounting"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/dto"
	"github.com/SscSPs/smb_ledger/internal/utils/pagination"
)

const defaultListLimit = 20

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	repo  portsrepo.LedgerReader
	chart *accounting.Chart
	base  domain.Currency
}

// NewReportingService creates a new reporting service
func NewReportingService(repo portsrepo.LedgerReader, chart *accounting.Chart, base domain.Currency) portssvc.ReportingSvcFacade {
	return &reportingService{repo: repo, chart: chart, base: base}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// ListTransactions returns one page of transactions, newest first.
func (s *reportingService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	filter := domain.TransactionFilter{
		From:        params.From,
		To:          params.To,
		AccountCode: params.AccountCode,
		Limit:       limit + 1,
	}
	if params.Type != "" {
		t := domain.TransactionType(params.Type)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, params.Type)
		}
		filter.Type = &t
	}
	if params.NextToken != nil && *params.NextToken != "" {
		cursor, err := pagination.DecodeTransactionCursor(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		filter.AfterDate = &cursor.Date
		filter.AfterCreatedAt = &cursor.CreatedAt
		filter.AfterID = cursor.ID
	}

	txns, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, err
	}

	var nextToken *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[limit-1]
		token := pagination.EncodeTransactionCursor(pagination.TransactionCursor{
			Date:      last.Date,
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		nextToken = &token
	}
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns, s.base),
		NextToken:    nextToken,
	}, nil
}

// TrialBalance lists every account with activity on or before asOf.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	rows, err := s.repo.TrialBalance(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute trial balance", slog.Time("as_of", asOf))
		return nil, err
	}
	snap := s.chart.Snapshot()
	tb := &domain.TrialBalance{AsOf: asOf, Currency: s.base.Code, Rows: rows}
	for i := range tb.Rows {
		if acc, err := snap.Resolve(tb.Rows[i].AccountCode); err == nil {
			tb.Rows[i].AccountName = acc.Name
			tb.Rows[i].AccountType = acc.Type
		}
		tb.TotalDebits += tb.Rows[i].Debit
		tb.TotalCredits += tb.Rows[i].Credit
	}
	tb.Balanced = tb.TotalDebits == tb.TotalCredits
	if !tb.Balanced {
		s.LogError(ctx, errors.New("trial balance does not balance"), "Ledger integrity check failed",
			slog.Int64("debits", int64(tb.TotalDebits)),
			slog.Int64("credits", int64(tb.TotalCredits)))
	}
	return tb, nil
}

// AccountBalance returns the running normal-side balance of an account.
func (s *reportingService) AccountBalance(ctx context.Context, accountCode string) (*domain.AccountBalance, error) {
	acc, err := resolveAccount(s.chart, accountCode)
	if err != nil {
		return nil, err
	}
	bal, err := s.repo.AccountBalance(ctx, accountCode)
	if err != nil {
		s.LogError(ctx, err, "Failed to get account balance", slog.String("account_code", accountCode))
		return nil, err
	}
	return &domain.AccountBalance{Account: *acc, Balance: bal, Currency: s.base.Code}, nil
}

func resolveAccount(chart *accounting.Chart, code string) (*domain.Account, error) {
	acc, err := chart.Resolve(code)
	if err != nil {
		var unknown *accounting.UnknownAccountError
		if errors.As(err, &unknown) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, code)
		}
		return nil, err
	}
	return &acc, nil
}
