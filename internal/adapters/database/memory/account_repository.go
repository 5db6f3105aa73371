package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

// AccountRepository holds the persisted chart of accounts.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]domain.Account)}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) ListAccounts(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *AccountRepository) SeedAccounts(_ context.Context, accounts []domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range accounts {
		if _, ok := r.accounts[a.Code]; !ok {
			r.accounts[a.Code] = a
		}
	}
	return nil
}
