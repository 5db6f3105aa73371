package services_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/smb_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/smb_ledger/internal/core/accounting"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/core/services"
	"github.com/SscSPs/smb_ledger/internal/platform/config"
)

const testActor = "user-accountant"

type fixture struct {
	repos    portsrepo.RepositoryProvider
	ledger   *memory.LedgerRepository
	audits   *memory.AuditRepository
	chart    *accounting.Chart
	recorder *services.AuditRecorder
	svc      *portssvc.ServiceContainer
}

func testConfig() *config.Config {
	return &config.Config{
		BaseCurrency:              "KES",
		AuditQueueSize:            256,
		AuditWriteTimeout:         time.Second,
		AuditRetryMaxAttempts:     2,
		AuditRetryInitialInterval: time.Millisecond,
		ReconToleranceMinor:       1,
		ReconMaxCandidates:        3,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, testConfig())
}

func newFixtureWithConfig(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	ctx := context.Background()

	ledgerRepo := memory.NewLedgerRepository()
	auditRepo := memory.NewAuditRepository()
	repos := portsrepo.RepositoryProvider{
		AccountRepo:        memory.NewAccountRepository(),
		LedgerRepo:         ledgerRepo,
		PayrollRepo:        memory.NewPayrollRepository(),
		ReconciliationRepo: memory.NewReconciliationRepository(),
		AuditRepo:          auditRepo,
	}

	chart, err := accounting.NewChart(accounting.DefaultAccounts())
	require.NoError(t, err)
	require.NoError(t, services.SyncChart(ctx, repos.AccountRepo, chart))

	rt, err := services.NewServiceContainer(cfg, repos, chart, slog.Default())
	require.NoError(t, err)
	require.NoError(t, rt.Audit.Start(ctx))
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = rt.Audit.Shutdown(shutdownCtx)
	})

	return &fixture{
		repos:    repos,
		ledger:   ledgerRepo,
		audits:   auditRepo,
		chart:    chart,
		recorder: rt.Audit,
		svc:      rt.Services,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func kes(date time.Time) domain.EventMeta {
	return domain.EventMeta{Date: date, Currency: "KES"}
}

func saleEvent(id string, subtotal, tax string) domain.SaleEvent {
	return domain.SaleEvent{
		EventMeta:     kes(day(2024, 3, 1)),
		InvoiceID:     id,
		InvoiceNumber: "0001-" + id,
		ClientID:      "client-1",
		Subtotal:      dec(subtotal),
		Tax:           dec(tax),
	}
}

// byAccount indexes lines by account code; each test transaction touches an
// account at most once.
func byAccount(lines []domain.JournalLine) map[string]domain.JournalLine {
	out := make(map[string]domain.JournalLine, len(lines))
	for _, l := range lines {
		out[l.AccountCode] = l
	}
	return out
}

// waitForAudit blocks until the async writer has stored n entries.
func waitForAudit(t *testing.T, f *fixture, n int) []domain.AuditEntry {
	t.Helper()
	var entries []domain.AuditEntry
	require.Eventually(t, func() bool {
		var err error
		entries, err = f.audits.ListEntries(context.Background(), domain.AuditFilter{})
		return err == nil && len(entries) >= n
	}, 2*time.Second, 5*time.Millisecond)
	return entries
}
