package repositories

import (
	"context"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// AccountReader defines read operations for the persisted chart of accounts.
type AccountReader interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriter seeds the chart. Existing codes are left untouched.
type AccountWriter interface {
	SeedAccounts(ctx context.Context, accounts []domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
