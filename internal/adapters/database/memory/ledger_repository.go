// Package memory provides in-process repository implementations used by the
// memory storage driver and by service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

type sourceKey struct {
	txType  domain.TransactionType
	eventID string
}

// LedgerRepository keeps posted transactions in insertion order. A single
// mutex makes each insert atomic with its balance updates.
type LedgerRepository struct {
	mu         sync.RWMutex
	txns       []domain.Transaction
	byID       map[string]int
	bySource   map[sourceKey]string
	reversedBy map[string]string
	balances   map[string]domain.Amount
}

// NewLedgerRepository creates an empty ledger.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		byID:       make(map[string]int),
		bySource:   make(map[sourceKey]string),
		reversedBy: make(map[string]string),
		balances:   make(map[string]domain.Amount),
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerRepository)(nil)

func (r *LedgerRepository) InsertTransaction(_ context.Context, txn domain.Transaction, balanceChanges map[string]domain.Amount) (*domain.Transaction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sourceKey{txn.Type, txn.Source.EventID}
	if id, ok := r.bySource[key]; ok {
		existing := r.readLocked(r.byID[id])
		return &existing, false, nil
	}
	if _, ok := r.byID[txn.ID]; ok {
		return nil, false, fmt.Errorf("%w: transaction id %s", apperrors.ErrDuplicate, txn.ID)
	}
	if txn.ReversesID != nil {
		if _, ok := r.byID[*txn.ReversesID]; !ok {
			return nil, false, fmt.Errorf("%w: reversed transaction %s", apperrors.ErrNotFound, *txn.ReversesID)
		}
		if _, ok := r.reversedBy[*txn.ReversesID]; ok {
			return nil, false, fmt.Errorf("%w: transaction %s is already reversed", apperrors.ErrConflict, *txn.ReversesID)
		}
	}

	stored := txn
	stored.Lines = append([]domain.JournalLine(nil), txn.Lines...)
	stored.Status = domain.StatusPosted
	stored.ReversedByID = nil
	r.txns = append(r.txns, stored)
	r.byID[stored.ID] = len(r.txns) - 1
	r.bySource[key] = stored.ID
	if stored.ReversesID != nil {
		r.reversedBy[*stored.ReversesID] = stored.ID
	}
	for code, delta := range balanceChanges {
		r.balances[code] += delta
	}

	out := r.readLocked(len(r.txns) - 1)
	return &out, true, nil
}

func (r *LedgerRepository) FindTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, id)
	}
	txn := r.readLocked(idx)
	return &txn, nil
}

func (r *LedgerRepository) FindTransactionBySource(_ context.Context, txType domain.TransactionType, sourceEventID string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySource[sourceKey{txType, sourceEventID}]
	if !ok {
		return nil, fmt.Errorf("%w: no %s posting for event %s", apperrors.ErrNotFound, txType, sourceEventID)
	}
	txn := r.readLocked(r.byID[id])
	return &txn, nil
}

func (r *LedgerRepository) ListTransactions(_ context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Transaction, 0)
	for i := range r.txns {
		t := &r.txns[i]
		if filter.From != nil && t.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && t.Date.After(*filter.To) {
			continue
		}
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		if filter.AccountCode != "" {
			if _, touched := t.AccountMovement(filter.AccountCode); !touched {
				continue
			}
		}
		if filter.AfterDate != nil && filter.AfterCreatedAt != nil && !before(t, *filter.AfterDate, *filter.AfterCreatedAt, filter.AfterID) {
			continue
		}
		out = append(out, r.readLocked(i))
	}

	sort.Slice(out, func(i, j int) bool {
		return before(&out[j], out[i].Date, out[i].CreatedAt, out[i].ID)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// before reports whether t sorts after the cursor in newest-first order.
func before(t *domain.Transaction, date, createdAt time.Time, id string) bool {
	if !t.Date.Equal(date) {
		return t.Date.Before(date)
	}
	if !t.CreatedAt.Equal(createdAt) {
		return t.CreatedAt.Before(createdAt)
	}
	return t.ID < id
}

func (r *LedgerRepository) TrialBalance(_ context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type sums struct{ debit, credit domain.Amount }
	byAccount := make(map[string]*sums)
	names := make(map[string]string)
	for _, t := range r.txns {
		if t.Date.After(asOf) {
			continue
		}
		for _, l := range t.Lines {
			s, ok := byAccount[l.AccountCode]
			if !ok {
				s = &sums{}
				byAccount[l.AccountCode] = s
				names[l.AccountCode] = l.AccountName
			}
			s.debit += l.Debit
			s.credit += l.Credit
		}
	}

	rows := make([]domain.TrialBalanceRow, 0, len(byAccount))
	for code, s := range byAccount {
		row := domain.TrialBalanceRow{AccountCode: code, AccountName: names[code]}
		if net := s.debit - s.credit; net >= 0 {
			row.Debit = net
		} else {
			row.Credit = -net
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AccountCode < rows[j].AccountCode })
	return rows, nil
}

func (r *LedgerRepository) AccountBalance(_ context.Context, code string) (domain.Amount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.balances[code], nil
}

// readLocked returns a copy of the stored transaction with its derived status.
func (r *LedgerRepository) readLocked(idx int) domain.Transaction {
	t := r.txns[idx]
	t.Lines = append([]domain.JournalLine(nil), t.Lines...)
	if rb, ok := r.reversedBy[t.ID]; ok {
		t.ReversedByID = &rb
		t.Status = domain.StatusVoid
	}
	return t
}
