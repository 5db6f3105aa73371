package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/smb_ledger/internal/core/accounting"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
)

// accountService serves the live chart of accounts.
type accountService struct {
	BaseService
	chart *accounting.Chart
}

// NewAccountService creates a new AccountService.
func NewAccountService(chart *accounting.Chart) portssvc.AccountSvcFacade {
	return &accountService{chart: chart}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) ListAccounts(ctx context.Context) []domain.Account {
	return s.chart.Snapshot().Accounts()
}

func (s *accountService) GetAccount(ctx context.Context, code string) (*domain.Account, error) {
	acc, err := resolveAccount(s.chart, code)
	if err != nil {
		s.LogDebug(ctx, "Account lookup failed", slog.String("account_code", code))
		return nil, err
	}
	return acc, nil
}

// SyncChart seeds any missing default accounts and installs the persisted
// chart as the live snapshot.
func SyncChart(ctx context.Context, repo portsrepo.AccountRepositoryFacade, chart *accounting.Chart) error {
	if err := repo.SeedAccounts(ctx, accounting.DefaultAccounts()); err != nil {
		return fmt.Errorf("seeding chart of accounts: %w", err)
	}
	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("loading chart of accounts: %w", err)
	}
	if err := chart.Reload(accounts); err != nil {
		return fmt.Errorf("installing chart of accounts: %w", err)
	}
	return nil
}
