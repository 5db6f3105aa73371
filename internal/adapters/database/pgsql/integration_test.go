//go:build integration

package pgsql_test

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SscSPs/smb_ledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/accounting"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/core/services"
	"github.com/SscSPs/smb_ledger/internal/dto"
	"github.com/SscSPs/smb_ledger/internal/platform/config"
	"github.com/SscSPs/smb_ledger/pkg/database"
)

const actor = "user-integration"

// setupPostgres starts a disposable PostgreSQL container with the schema
// migrated and returns a service container wired to it.
func setupPostgres(t *testing.T) (*portssvc.ServiceContainer, *services.AuditRecorder) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrationDB, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	require.NoError(t, err)
	m, err := migrate.NewWithDatabaseInstance("file://../../../../migrations", "postgres", driver)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err)
	}
	_, _ = m.Close()

	pool, err := database.NewPgxPool(ctx, dsn, true)
	require.NoError(t, err)
	t.Cleanup(func() { database.ClosePgxPool(pool) })

	repos := pgsql.NewRepositoryProvider(pool)
	chart, err := accounting.NewChart(accounting.DefaultAccounts())
	require.NoError(t, err)
	require.NoError(t, services.SyncChart(ctx, repos.AccountRepo, chart))

	cfg := &config.Config{
		BaseCurrency:              "KES",
		AuditQueueSize:            256,
		AuditWriteTimeout:         5 * time.Second,
		AuditRetryMaxAttempts:     2,
		AuditRetryInitialInterval: 10 * time.Millisecond,
		ReconToleranceMinor:       1,
		ReconMaxCandidates:        3,
	}
	rt, err := services.NewServiceContainer(cfg, repos, chart, slog.Default())
	require.NoError(t, err)
	require.NoError(t, rt.Audit.Start(ctx))
	t.Cleanup(func() { _ = rt.Audit.Shutdown(context.Background()) })
	return rt.Services, rt.Audit
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func receipt(id, amount string, date time.Time) domain.ReceiptEvent {
	return domain.ReceiptEvent{
		EventMeta:        domain.EventMeta{Date: date, Currency: "KES"},
		PaymentID:        id,
		PaymentReference: "MPESA-" + id,
		Amount:           decimal.RequireFromString(amount),
	}
}

func TestIntegration_LedgerOnPostgres(t *testing.T) {
	svc, recorder := setupPostgres(t)
	ctx := context.Background()

	sale := domain.SaleEvent{
		EventMeta:     domain.EventMeta{Date: day(1), Currency: "KES"},
		InvoiceID:     "inv-1",
		InvoiceNumber: "0001-0001",
		Subtotal:      decimal.RequireFromString("50000"),
		Tax:           decimal.RequireFromString("8000"),
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ids     = map[string]struct{}{}
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			txn, c, err := svc.Ledger.PostEvent(ctx, sale, actor)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			ids[txn.ID] = struct{}{}
			if c {
				created++
			}
		}()
	}
	wg.Wait()
	assert.Len(t, ids, 1)
	assert.Equal(t, 1, created)

	receivable, err := svc.Reporting.AccountBalance(ctx, domain.AccountReceivable)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(5_800_000), receivable.Balance)

	var saleID string
	for id := range ids {
		saleID = id
	}
	stored, err := svc.Ledger.GetTransaction(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 3)
	assert.Equal(t, "inv-1", stored.Source.InvoiceID)
	assert.Equal(t, day(1), stored.Date.UTC())

	reversal, voided, err := svc.Ledger.VoidTransaction(ctx, saleID, "issued in error", actor)
	require.NoError(t, err)
	assert.True(t, voided)
	require.NotNil(t, reversal.ReversesID)

	stored, err = svc.Ledger.GetTransaction(ctx, saleID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVoid, stored.Status)
	require.NotNil(t, stored.ReversedByID)
	assert.Equal(t, reversal.ID, *stored.ReversedByID)

	receivable, err = svc.Reporting.AccountBalance(ctx, domain.AccountReceivable)
	require.NoError(t, err)
	assert.Zero(t, receivable.Balance)

	tb, err := svc.Reporting.TrialBalance(ctx, time.Now())
	require.NoError(t, err)
	assert.True(t, tb.Balanced)

	_, _, err = svc.Ledger.PostEvent(ctx, receipt("pay-1", "100.00", day(2)), actor)
	require.NoError(t, err)
	_, _, err = svc.Ledger.PostEvent(ctx, receipt("pay-2", "100.00", day(3)), actor)
	require.NoError(t, err)
	limit := 1
	page, err := svc.Reporting.ListTransactions(ctx, dto.ListTransactionsParams{Limit: limit, Type: string(domain.TransactionTypeReceipt)})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)
	require.NotNil(t, page.NextToken)
	next, err := svc.Reporting.ListTransactions(ctx, dto.ListTransactionsParams{Limit: limit, Type: string(domain.TransactionTypeReceipt), NextToken: page.NextToken})
	require.NoError(t, err)
	require.Len(t, next.Transactions, 1)
	assert.Nil(t, next.NextToken)
	assert.NotEqual(t, page.Transactions[0].ID, next.Transactions[0].ID)

	require.NoError(t, recorder.Shutdown(ctx))
	verification, err := svc.Audit.VerifyChain(ctx)
	require.NoError(t, err)
	assert.True(t, verification.Valid)
	assert.GreaterOrEqual(t, verification.Entries, 4)
}

func TestIntegration_ReconciliationAndPayrollOnPostgres(t *testing.T) {
	svc, _ := setupPostgres(t)
	ctx := context.Background()

	run, payrollTxn, created, err := svc.Payroll.RunPayroll(ctx, dto.RunPayrollRequest{
		RunID:     "run-2024-03",
		Period:    "2024-03",
		StartDate: day(1),
		EndDate:   day(31),
		Currency:  "KES",
		Employees: []dto.EmployeePayRequest{
			{EmployeeID: "emp-1", EmployeeName: "Achieng", BasicPay: decimal.RequireFromString("24000")},
			{EmployeeID: "emp-2", EmployeeName: "Baraka", BasicPay: decimal.RequireFromString("40000")},
		},
	}, actor)
	require.NoError(t, err)
	assert.True(t, created)
	stored, err := svc.Payroll.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, stored.Payslips, 2)
	assert.Equal(t, run.Totals, stored.Totals)
	require.NotNil(t, stored.TransactionID)
	assert.Equal(t, payrollTxn.ID, *stored.TransactionID)

	near, _, err := svc.Ledger.PostEvent(ctx, receipt("pay-near", "249.99", day(9)), actor)
	require.NoError(t, err)
	_, _, err = svc.Ledger.PostEvent(ctx, receipt("pay-far", "300.00", day(10)), actor)
	require.NoError(t, err)

	session, lines, err := svc.Reconciliation.ImportStatement(ctx, dto.ImportStatementRequest{
		PeriodStart: day(1),
		PeriodEnd:   day(31),
		Lines: []dto.StatementLineRequest{
			{Date: day(10), Description: "MPESA deposit", Amount: decimal.RequireFromString("250.00")},
			{Date: day(31), Description: "Salaries", Amount: (-run.Totals.NetPay).Decimal(2)},
		},
	}, actor)
	require.NoError(t, err)

	candidates, err := svc.Reconciliation.Candidates(ctx, session.ID, lines[0].ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, near.ID, candidates[0].TransactionID)

	var (
		wg        sync.WaitGroup
		successes int
		conflicts int
		mu        sync.Mutex
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reconciliation.ConfirmMatch(ctx, session.ID, lines[0].ID, near.ID, actor)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, apperrors.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 3, conflicts)

	payrollCandidates, err := svc.Reconciliation.Candidates(ctx, session.ID, lines[1].ID)
	require.NoError(t, err)
	require.Len(t, payrollCandidates, 1)
	assert.Equal(t, payrollTxn.ID, payrollCandidates[0].TransactionID)

	require.NoError(t, svc.Reconciliation.DeferLine(ctx, session.ID, lines[1].ID, "cleared next period", actor))
	summary, err := svc.Reconciliation.Summary(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.MatchedLines)
	assert.Equal(t, 1, summary.DeferredLines)
	assert.True(t, summary.Complete)
}
