package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/accounting"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/dto"
)

// ReconciliationConfig tunes candidate matching.
type ReconciliationConfig struct {
	// Tolerance is the largest amount difference, inclusive, that still
	// produces a candidate.
	Tolerance          domain.Amount
	MaxCandidates      int
	DefaultBankAccount string
}

// DefaultReconciliationConfig matches within one minor unit and proposes three
// candidates against Cash/Bank.
func DefaultReconciliationConfig() ReconciliationConfig {
	return ReconciliationConfig{
		Tolerance:          1,
		MaxCandidates:      3,
		DefaultBankAccount: domain.AccountCashBank,
	}
}

type reconciliationService struct {
	BaseService
	repo   portsrepo.ReconciliationRepositoryFacade
	ledger portsrepo.LedgerReader
	chart  *accounting.Chart
	audit  *AuditRecorder
	base   domain.Currency
	cfg    ReconciliationConfig
	now    func() time.Time
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(repo portsrepo.ReconciliationRepositoryFacade, ledger portsrepo.LedgerReader, chart *accounting.Chart, audit *AuditRecorder, base domain.Currency, cfg ReconciliationConfig) portssvc.ReconciliationSvcFacade {
	def := DefaultReconciliationConfig()
	if cfg.Tolerance < 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = def.MaxCandidates
	}
	if cfg.DefaultBankAccount == "" {
		cfg.DefaultBankAccount = def.DefaultBankAccount
	}
	return &reconciliationService{
		repo:   repo,
		ledger: ledger,
		chart:  chart,
		audit:  audit,
		base:   base,
		cfg:    cfg,
		now:    time.Now,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// ImportStatement opens a session over already-parsed statement lines. Line
// amounts are major units of the base currency, positive for money in.
func (s *reconciliationService) ImportStatement(ctx context.Context, req dto.ImportStatementRequest, actor string) (*domain.ReconciliationSession, []domain.BankStatementLine, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	code := req.BankAccountCode
	if code == "" {
		code = s.cfg.DefaultBankAccount
	}
	acc, err := s.chart.Resolve(code)
	if err != nil {
		return nil, nil, err
	}
	if acc.Type != domain.Asset {
		return nil, nil, fmt.Errorf("%w: account %s is not a bank account", apperrors.ErrValidation, code)
	}
	if req.PeriodEnd.Before(req.PeriodStart) {
		return nil, nil, fmt.Errorf("%w: statement period ends before it starts", apperrors.ErrValidation)
	}
	if len(req.Lines) == 0 {
		return nil, nil, fmt.Errorf("%w: statement has no lines", apperrors.ErrValidation)
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	session := domain.ReconciliationSession{
		ID:              uuid.NewString(),
		BankAccountCode: code,
		PeriodStart:     req.PeriodStart,
		PeriodEnd:       req.PeriodEnd,
		AuditFields:     domain.AuditFields{CreatedAt: now, CreatedBy: actor},
	}
	lines := make([]domain.BankStatementLine, len(req.Lines))
	for i, l := range req.Lines {
		if !l.Amount.Equal(l.Amount.Truncate(s.base.Precision)) {
			return nil, nil, fmt.Errorf("%w: statement line %d amount %s has more than %d decimal places",
				apperrors.ErrValidation, i+1, l.Amount.String(), s.base.Precision)
		}
		amount := domain.AmountFromDecimal(l.Amount, s.base.Precision)
		if amount == 0 {
			return nil, nil, fmt.Errorf("%w: statement line %d has a zero amount", apperrors.ErrValidation, i+1)
		}
		lines[i] = domain.BankStatementLine{
			ID:          uuid.NewString(),
			SessionID:   session.ID,
			Position:    i + 1,
			Date:        l.Date,
			Description: l.Description,
			Amount:      amount,
			Status:      domain.LineUnmatched,
		}
	}

	if err := s.repo.CreateSession(ctx, session, lines); err != nil {
		s.LogError(ctx, err, "Failed to create reconciliation session")
		return nil, nil, err
	}
	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.ActionImported,
		EntityType: domain.EntityReconciliationSession,
		EntityID:   session.ID,
		After:      map[string]any{"bankAccountCode": code, "lines": len(lines)},
	})
	s.LogInfo(ctx, "Bank statement imported",
		slog.String("session_id", session.ID),
		slog.String("bank_account", code),
		slog.Int("lines", len(lines)))
	return &session, lines, nil
}

func (s *reconciliationService) GetSession(ctx context.Context, sessionID string) (*domain.ReconciliationSession, []domain.BankStatementLine, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to get reconciliation session", slog.String("session_id", sessionID))
		return nil, nil, err
	}
	lines, err := s.repo.ListLines(ctx, sessionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list statement lines", slog.String("session_id", sessionID))
		return nil, nil, err
	}
	return session, lines, nil
}

// Candidates ranks the eligible transactions for one line. A line that is no
// longer unmatched has none.
func (s *reconciliationService) Candidates(ctx context.Context, sessionID, lineID string) ([]domain.MatchCandidate, error) {
	session, lines, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	line, err := findLine(lines, lineID)
	if err != nil {
		return nil, err
	}
	if line.Status != domain.LineUnmatched {
		return []domain.MatchCandidate{}, nil
	}
	pool, err := s.candidatePool(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.rank(line, pool, session.BankAccountCode), nil
}

// SuggestAll proposes candidates for every unmatched line. Nothing is
// confirmed.
func (s *reconciliationService) SuggestAll(ctx context.Context, sessionID string) ([]domain.LineSuggestion, error) {
	session, lines, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pool, err := s.candidatePool(ctx, session)
	if err != nil {
		return nil, err
	}
	suggestions := make([]domain.LineSuggestion, 0, len(lines))
	for _, line := range lines {
		if line.Status != domain.LineUnmatched {
			continue
		}
		suggestions = append(suggestions, domain.LineSuggestion{
			Line:       line,
			Candidates: s.rank(line, pool, session.BankAccountCode),
		})
	}
	return suggestions, nil
}

// ConfirmMatch pairs a line with a transaction. The amount tolerance only
// shapes suggestions; an operator may confirm a larger difference, which is
// recorded on the match. Two operators racing for the same line or
// transaction get exactly one success and one ErrConflict.
func (s *reconciliationService) ConfirmMatch(ctx context.Context, sessionID, lineID, transactionID, actor string) (*domain.ReconciliationMatch, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	logger := s.GetLogger(ctx).With(
		slog.String("session_id", sessionID),
		slog.String("line_id", lineID),
		slog.String("transaction_id", transactionID))

	session, lines, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	line, err := findLine(lines, lineID)
	if err != nil {
		return nil, err
	}
	switch line.Status {
	case domain.LineMatched:
		return nil, fmt.Errorf("%w: statement line %s is already matched", apperrors.ErrConflict, lineID)
	case domain.LineDeferred:
		return nil, fmt.Errorf("%w: statement line %s is deferred", apperrors.ErrValidation, lineID)
	}

	txn, err := s.ledger.FindTransactionByID(ctx, transactionID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to load transaction for match")
		return nil, err
	}
	movement, ok := eligibleMovement(txn, line, session.BankAccountCode)
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s cannot clear statement line %s", apperrors.ErrValidation, transactionID, lineID)
	}

	match := domain.ReconciliationMatch{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		LineID:        lineID,
		TransactionID: transactionID,
		Difference:    (line.Amount.Abs() - movement.Abs()).Abs(),
		ConfirmedBy:   actor,
		ConfirmedAt:   s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.ConfirmMatch(ctx, match); err != nil {
		s.logFailure(ctx, err, "Failed to confirm match")
		return nil, err
	}

	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.ActionMatched,
		EntityType: domain.EntityReconciliationMatch,
		EntityID:   match.ID,
		After:      match,
	})
	logger.Info("Statement line matched", slog.Int64("difference", int64(match.Difference)))
	return &match, nil
}

// DeferLine leaves an unmatched line out of the session, with a reason.
func (s *reconciliationService) DeferLine(ctx context.Context, sessionID, lineID, reason, actor string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if reason == "" {
		return fmt.Errorf("%w: a reason is required to defer a line", apperrors.ErrValidation)
	}
	_, lines, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	line, err := findLine(lines, lineID)
	if err != nil {
		return err
	}
	switch line.Status {
	case domain.LineMatched:
		return fmt.Errorf("%w: statement line %s is already matched", apperrors.ErrConflict, lineID)
	case domain.LineDeferred:
		return nil
	}
	if err := s.repo.DeferLine(ctx, sessionID, lineID, reason, actor); err != nil {
		s.logFailure(ctx, err, "Failed to defer statement line", slog.String("line_id", lineID))
		return err
	}
	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.ActionDeferred,
		EntityType: domain.EntityBankStatementLine,
		EntityID:   lineID,
		After:      map[string]string{"reason": reason},
	})
	return nil
}

// Summary reports statement balance, reconciled balance and the outstanding
// difference between them. Balances are the sums of absolute line amounts.
func (s *reconciliationService) Summary(ctx context.Context, sessionID string) (*domain.ReconciliationSummary, error) {
	_, lines, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := Summarize(sessionID, lines)
	return &summary, nil
}

// Summarize computes a session summary from its lines. A session is complete
// when nothing is outstanding or every line is matched or deferred.
func Summarize(sessionID string, lines []domain.BankStatementLine) domain.ReconciliationSummary {
	sum := domain.ReconciliationSummary{SessionID: sessionID, TotalLines: len(lines)}
	for _, l := range lines {
		sum.StatementBalance += l.Amount.Abs()
		switch l.Status {
		case domain.LineMatched:
			sum.ReconciledBalance += l.Amount.Abs()
			sum.MatchedLines++
		case domain.LineDeferred:
			sum.DeferredLines++
		default:
			sum.UnmatchedLines++
		}
	}
	sum.OutstandingDifference = sum.StatementBalance - sum.ReconciledBalance
	sum.Complete = sum.OutstandingDifference == 0 || sum.UnmatchedLines == 0
	return sum
}

// candidatePool loads the transactions that may still clear a line: dated
// within the session period, touching the bank account and not matched in any
// session. Status and direction are checked per line in rank.
func (s *reconciliationService) candidatePool(ctx context.Context, session *domain.ReconciliationSession) ([]domain.Transaction, error) {
	from := utcDay(session.PeriodStart)
	to := utcDay(session.PeriodEnd)
	txns, err := s.ledger.ListTransactions(ctx, domain.TransactionFilter{
		AccountCode: session.BankAccountCode,
		From:        &from,
		To:          &to,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to load candidate transactions")
		return nil, err
	}
	matched, err := s.repo.MatchedTransactionIDs(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load matched transactions")
		return nil, err
	}
	pool := txns[:0]
	for _, t := range txns {
		if _, done := matched[t.ID]; done {
			continue
		}
		pool = append(pool, t)
	}
	return pool, nil
}

func (s *reconciliationService) rank(line domain.BankStatementLine, pool []domain.Transaction, bankAccount string) []domain.MatchCandidate {
	candidates := make([]domain.MatchCandidate, 0, len(pool))
	for i := range pool {
		txn := &pool[i]
		movement, ok := eligibleMovement(txn, line, bankAccount)
		if !ok {
			continue
		}
		diff := (line.Amount.Abs() - movement.Abs()).Abs()
		if diff > s.cfg.Tolerance {
			continue
		}
		candidates = append(candidates, domain.MatchCandidate{
			TransactionID:   txn.ID,
			ReferenceNumber: txn.ReferenceNumber,
			Description:     txn.Description,
			Date:            txn.Date,
			Amount:          movement.Abs(),
			Difference:      diff,
			DaysApart:       daysApart(line.Date, txn.Date),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Difference != b.Difference {
			return a.Difference < b.Difference
		}
		if a.DaysApart != b.DaysApart {
			return a.DaysApart < b.DaysApart
		}
		return a.TransactionID < b.TransactionID
	})
	if len(candidates) > s.cfg.MaxCandidates {
		candidates = candidates[:s.cfg.MaxCandidates]
	}
	return candidates
}

// eligibleMovement returns the transaction's net movement on the bank account
// when it can clear the line: a live posting that moves money in the same
// direction as the statement.
func eligibleMovement(txn *domain.Transaction, line domain.BankStatementLine, bankAccount string) (domain.Amount, bool) {
	if txn.Status != domain.StatusPosted || txn.IsVoid() || txn.IsReversal() {
		return 0, false
	}
	movement, touched := txn.AccountMovement(bankAccount)
	if !touched || movement == 0 {
		return 0, false
	}
	if (line.Amount > 0) != (movement > 0) {
		return 0, false
	}
	return movement, true
}

func findLine(lines []domain.BankStatementLine, lineID string) (domain.BankStatementLine, error) {
	for _, l := range lines {
		if l.ID == lineID {
			return l, nil
		}
	}
	return domain.BankStatementLine{}, fmt.Errorf("%w: statement line %s", apperrors.ErrNotFound, lineID)
}

// utcDay matches the normalization LedgerStore applies to transaction dates.
func utcDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func daysApart(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	d := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC).Sub(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC))
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
