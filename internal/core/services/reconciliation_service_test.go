package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/SscSPs/smb_ledger/internal/dto"
)

func postReceipt(t *testing.T, f *fixture, id, amount string, date time.Time) *domain.Transaction {
	t.Helper()
	txn, _, err := f.svc.Ledger.PostEvent(context.Background(), domain.ReceiptEvent{
		EventMeta:        kes(date),
		PaymentID:        id,
		PaymentReference: "MPESA-" + id,
		Amount:           dec(amount),
	}, testActor)
	require.NoError(t, err)
	return txn
}

func postPaidExpense(t *testing.T, f *fixture, id, amount string, date time.Time) *domain.Transaction {
	t.Helper()
	txn, _, err := f.svc.Ledger.PostEvent(context.Background(), domain.ExpenseEvent{
		EventMeta:     kes(date),
		ExpenseID:     id,
		ExpenseNumber: id,
		Amount:        dec(amount),
		Paid:          true,
	}, testActor)
	require.NoError(t, err)
	return txn
}

func importLines(t *testing.T, f *fixture, amounts ...string) (*domain.ReconciliationSession, []domain.BankStatementLine) {
	t.Helper()
	req := dto.ImportStatementRequest{
		PeriodStart: day(2024, 3, 1),
		PeriodEnd:   day(2024, 3, 31),
	}
	for i, a := range amounts {
		req.Lines = append(req.Lines, dto.StatementLineRequest{
			Date:        day(2024, 3, 10+i),
			Description: "statement line",
			Amount:      dec(a),
		})
	}
	session, lines, err := f.svc.Reconciliation.ImportStatement(context.Background(), req, testActor)
	require.NoError(t, err)
	return session, lines
}

func TestReconciliation_OnlyCandidatesWithinTolerance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	near := postReceipt(t, f, "pay-near", "249.99", day(2024, 3, 9))
	postReceipt(t, f, "pay-far", "300.00", day(2024, 3, 10))
	session, lines := importLines(t, f, "250.00", "250.00")
	assert.Equal(t, domain.AccountCashBank, session.BankAccountCode)

	candidates, err := f.svc.Reconciliation.Candidates(ctx, session.ID, lines[0].ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, near.ID, candidates[0].TransactionID)
	assert.Equal(t, domain.Amount(1), candidates[0].Difference)
	assert.Equal(t, domain.Amount(24_999), candidates[0].Amount)
	assert.Equal(t, 1, candidates[0].DaysApart)

	match, err := f.svc.Reconciliation.ConfirmMatch(ctx, session.ID, lines[0].ID, near.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(1), match.Difference)
	assert.Equal(t, testActor, match.ConfirmedBy)

	again, err := f.svc.Reconciliation.Candidates(ctx, session.ID, lines[0].ID)
	require.NoError(t, err)
	assert.Empty(t, again, "a matched line has no candidates")

	other, err := f.svc.Reconciliation.Candidates(ctx, session.ID, lines[1].ID)
	require.NoError(t, err)
	assert.Empty(t, other, "a matched transaction is not offered again")
}

// The statement and ledger amounts are whole shillings in a zero-precision
// base currency, so 25,000 against 24,999 is one minor unit apart.
func TestReconciliation_WholeUnitStatementAgainstNearMiss(t *testing.T) {
	cfg := testConfig()
	cfg.BaseCurrency = "UGX"
	f := newFixtureWithConfig(t, cfg)
	ctx := context.Background()

	receipt := func(id, amount string) *domain.Transaction {
		txn, _, err := f.svc.Ledger.PostEvent(ctx, domain.ReceiptEvent{
			EventMeta: domain.EventMeta{Date: day(2024, 3, 9), Currency: "UGX"},
			PaymentID: id,
			Amount:    dec(amount),
		}, testActor)
		require.NoError(t, err)
		return txn
	}
	near := receipt("pay-24999", "24999")
	receipt("pay-30000", "30000")

	session, lines, err := f.svc.Reconciliation.ImportStatement(ctx, dto.ImportStatementRequest{
		PeriodStart: day(2024, 3, 1),
		PeriodEnd:   day(2024, 3, 31),
		Lines: []dto.StatementLineRequest{
			{Date: day(2024, 3, 10), Description: "deposit", Amount: dec("25000")},
			{Date: day(2024, 3, 11), Description: "deposit", Amount: dec("25000")},
		},
	}, testActor)
	require.NoError(t, err)

	candidates, err := f.svc.Reconciliation.Candidates(ctx, session.ID, lines[0].ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, near.ID, candidates[0].TransactionID)
	assert.Equal(t, domain.Amount(1), candidates[0].Difference)

	_, err = f.svc.Reconciliation.ConfirmMatch(ctx, session.ID, lines[0].ID, near.ID, testActor)
	require.NoError(t, err)

	again, err := f.svc.Reconciliation.Candidates(ctx, session.ID, lines[0].ID)
	require.NoError(t, err)
	assert.Empty(t, again)
	other, err := f.svc.Reconciliation.Candidates(ctx, session.ID, lines[1].ID)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestReconciliation_RanksAndLimitsCandidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exactFar := postReceipt(t, f, "pay-1", "100.00", day(2024, 3, 1))
	exactNear := postReceipt(t, f, "pay-2", "100.00", day(2024, 3, 9))
	exactMid := postReceipt(t, f, "pay-3", "100.00", day(2024, 3, 5))
	postReceipt(t, f, "pay-4", "100.01", day(2024, 3, 10))
	postPaidExpense(t, f, "exp-1", "100.00", day(2024, 3, 10))
	voided := postReceipt(t, f, "pay-5", "100.00", day(2024, 3, 10))
	_, _, err := f.svc.Ledger.VoidTransaction(ctx, voided.ID, "duplicate receipt", testActor)
	require.NoError(t, err)

	session, lines := importLines(t, f, "100.00")

	candidates, err := f.svc.Reconciliation.Candidates(ctx, session.ID, lines[0].ID)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, exactNear.ID, candidates[0].TransactionID)
	assert.Equal(t, exactMid.ID, candidates[1].TransactionID)
	assert.Equal(t, exactFar.ID, candidates[2].TransactionID)
	for _, c := range candidates {
		assert.NotEqual(t, voided.ID, c.TransactionID)
	}
}

func TestReconciliation_DirectionMustAgree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expense := postPaidExpense(t, f, "exp-out", "75.00", day(2024, 3, 10))
	receipt := postReceipt(t, f, "pay-in", "75.00", day(2024, 3, 10))
	session, lines := importLines(t, f, "-75.00")

	candidates, err := f.svc.Reconciliation.Candidates(ctx, session.ID, lines[0].ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, expense.ID, candidates[0].TransactionID)

	_, err = f.svc.Reconciliation.ConfirmMatch(ctx, session.ID, lines[0].ID, receipt.ID, testActor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReconciliation_OnlyTransactionsInSessionPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	postReceipt(t, f, "pay-2023", "250.00", day(2023, 1, 15))
	postReceipt(t, f, "pay-april", "250.00", day(2024, 4, 1))
	first := postReceipt(t, f, "pay-first", "250.00", day(2024, 3, 1))
	last := postReceipt(t, f, "pay-last", "250.00", day(2024, 3, 31))
	session, lines := importLines(t, f, "250.00")

	candidates, err := f.svc.Reconciliation.Candidates(ctx, session.ID, lines[0].ID)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	ids := []string{candidates[0].TransactionID, candidates[1].TransactionID}
	assert.ElementsMatch(t, []string{first.ID, last.ID}, ids, "period bounds are inclusive")

	suggestions, err := f.svc.Reconciliation.SuggestAll(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Len(t, suggestions[0].Candidates, 2)
}

func TestReconciliation_PayrollMatchesOnNetPay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, txn, _, err := f.svc.Payroll.RunPayroll(ctx, twoEmployeeRun("run-recon"), testActor)
	require.NoError(t, err)
	session, lines := importLines(t, f, "-53296.65")

	candidates, err := f.svc.Reconciliation.Candidates(ctx, session.ID, lines[0].ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, txn.ID, candidates[0].TransactionID)
	assert.Equal(t, domain.Amount(0), candidates[0].Difference)
}

func TestReconciliation_ConfirmIsCompareAndSwap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := postReceipt(t, f, "pay-a", "10.00", day(2024, 3, 10))
	b := postReceipt(t, f, "pay-b", "10.00", day(2024, 3, 10))
	session, lines := importLines(t, f, "10.00", "10.00")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for _, txnID := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(txnID string) {
			defer wg.Done()
			_, err := f.svc.Reconciliation.ConfirmMatch(ctx, session.ID, lines[0].ID, txnID, testActor)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperrors.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(txnID)
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	matches, err := f.repos.ReconciliationRepo.ListMatches(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	_, err = f.svc.Reconciliation.ConfirmMatch(ctx, session.ID, lines[1].ID, matches[0].TransactionID, testActor)
	assert.ErrorIs(t, err, apperrors.ErrConflict, "a transaction clears one line only")

	_, err = f.svc.Reconciliation.ConfirmMatch(ctx, session.ID, "no-such-line", a.ID, testActor)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReconciliation_OperatorMayConfirmOutsideTolerance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	txn := postReceipt(t, f, "pay-short", "95.00", day(2024, 3, 10))
	session, lines := importLines(t, f, "100.00")

	candidates, err := f.svc.Reconciliation.Candidates(ctx, session.ID, lines[0].ID)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	match, err := f.svc.Reconciliation.ConfirmMatch(ctx, session.ID, lines[0].ID, txn.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(500), match.Difference)
}

func TestReconciliation_SummaryAndCompleteness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := postReceipt(t, f, "pay-1", "120.00", day(2024, 3, 10))
	e1 := postPaidExpense(t, f, "exp-1", "45.50", day(2024, 3, 11))
	session, lines := importLines(t, f, "120.00", "-45.50", "-3.20")

	sum, err := f.svc.Reconciliation.Summary(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(16_870), sum.StatementBalance)
	assert.Equal(t, domain.Amount(0), sum.ReconciledBalance)
	assert.Equal(t, sum.StatementBalance, sum.OutstandingDifference)
	assert.False(t, sum.Complete)

	suggestions, err := f.svc.Reconciliation.SuggestAll(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 3)
	assert.Len(t, suggestions[0].Candidates, 1)
	assert.Len(t, suggestions[1].Candidates, 1)
	assert.Empty(t, suggestions[2].Candidates)

	_, err = f.svc.Reconciliation.ConfirmMatch(ctx, session.ID, lines[0].ID, r1.ID, testActor)
	require.NoError(t, err)
	_, err = f.svc.Reconciliation.ConfirmMatch(ctx, session.ID, lines[1].ID, e1.ID, testActor)
	require.NoError(t, err)

	sum, err = f.svc.Reconciliation.Summary(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(320), sum.OutstandingDifference)
	assert.Equal(t, sum.StatementBalance-sum.ReconciledBalance, sum.OutstandingDifference)
	assert.False(t, sum.Complete)

	require.NoError(t, f.svc.Reconciliation.DeferLine(ctx, session.ID, lines[2].ID, "bank charge, booked next month", testActor))
	sum, err = f.svc.Reconciliation.Summary(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.MatchedLines)
	assert.Equal(t, 1, sum.DeferredLines)
	assert.Equal(t, 0, sum.UnmatchedLines)
	assert.Equal(t, domain.Amount(320), sum.OutstandingDifference)
	assert.True(t, sum.Complete)

	_, got, err := f.svc.Reconciliation.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LineDeferred, got[2].Status)
	assert.Equal(t, "bank charge, booked next month", got[2].DeferredReason)

	_, err = f.svc.Reconciliation.ConfirmMatch(ctx, session.ID, lines[2].ID, r1.ID, testActor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.ErrorIs(t, f.svc.Reconciliation.DeferLine(ctx, session.ID, lines[0].ID, "late", testActor), apperrors.ErrConflict)
}

func TestReconciliation_ZeroOutstandingMeansAllMatched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	amounts := []string{"10.00", "20.00", "30.00", "40.00"}
	txns := make([]*domain.Transaction, len(amounts))
	for i, a := range amounts {
		txns[i] = postReceipt(t, f, "pay-"+a, a, day(2024, 3, 10+i))
	}
	session, lines := importLines(t, f, amounts...)

	for i := range lines {
		sum, err := f.svc.Reconciliation.Summary(ctx, session.ID)
		require.NoError(t, err)
		assert.NotZero(t, sum.OutstandingDifference)

		_, err = f.svc.Reconciliation.ConfirmMatch(ctx, session.ID, lines[i].ID, txns[i].ID, testActor)
		require.NoError(t, err)
	}

	sum, err := f.svc.Reconciliation.Summary(ctx, session.ID)
	require.NoError(t, err)
	assert.Zero(t, sum.OutstandingDifference)
	assert.True(t, sum.Complete)
	_, got, err := f.svc.Reconciliation.GetSession(ctx, session.ID)
	require.NoError(t, err)
	for _, l := range got {
		assert.Equal(t, domain.LineMatched, l.Status)
	}
}

func TestReconciliation_ImportRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := dto.ImportStatementRequest{
		PeriodStart: day(2024, 3, 1),
		PeriodEnd:   day(2024, 3, 31),
		Lines:       []dto.StatementLineRequest{{Date: day(2024, 3, 2), Amount: dec("1.00")}},
	}

	zero := base
	zero.Lines = []dto.StatementLineRequest{{Date: day(2024, 3, 2), Amount: dec("0.00")}}
	_, _, err := f.svc.Reconciliation.ImportStatement(ctx, zero, testActor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// statement lines are stored as given, never rounded
	for _, raw := range []string{"250.005", "0.001", "-12.345"} {
		fine := base
		fine.Lines = []dto.StatementLineRequest{{Date: day(2024, 3, 2), Amount: dec(raw)}}
		_, _, err = f.svc.Reconciliation.ImportStatement(ctx, fine, testActor)
		assert.ErrorIs(t, err, apperrors.ErrValidation, raw)
	}

	trailingZeros := base
	trailingZeros.Lines = []dto.StatementLineRequest{{Date: day(2024, 3, 2), Amount: dec("250.500")}}
	_, lines, err := f.svc.Reconciliation.ImportStatement(ctx, trailingZeros, testActor)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(25_050), lines[0].Amount)

	notBank := base
	notBank.BankAccountCode = domain.AccountSalesRevenue
	_, _, err = f.svc.Reconciliation.ImportStatement(ctx, notBank, testActor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	inverted := base
	inverted.PeriodEnd = day(2024, 2, 1)
	_, _, err = f.svc.Reconciliation.ImportStatement(ctx, inverted, testActor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = f.svc.Reconciliation.ImportStatement(ctx, base, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = f.svc.Reconciliation.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
