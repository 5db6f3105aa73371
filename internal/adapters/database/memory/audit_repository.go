package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

// AuditRepository is an append-only slice of entries.
type AuditRepository struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
	ids     map[string]struct{}
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{ids: make(map[string]struct{})}
}

var _ portsrepo.AuditRepositoryFacade = (*AuditRepository)(nil)

func (r *AuditRepository) AppendEntry(_ context.Context, entry domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[entry.ID]; ok {
		return fmt.Errorf("%w: audit entry %s", apperrors.ErrDuplicate, entry.ID)
	}
	head := ""
	if n := len(r.entries); n > 0 {
		head = r.entries[n-1].Hash
	}
	if entry.PreviousHash != head {
		return fmt.Errorf("%w: audit chain head moved past %q", apperrors.ErrConflict, entry.PreviousHash)
	}
	entry.Sequence = int64(len(r.entries) + 1)
	r.entries = append(r.entries, entry)
	r.ids[entry.ID] = struct{}{}
	return nil
}

// ListEntries returns matching entries oldest first. With a limit, the most
// recent entries are kept.
func (r *AuditRepository) ListEntries(_ context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AuditEntry, 0)
	for _, e := range r.entries {
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		out = append(out, e)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out, nil
}

func (r *AuditRepository) LastHash(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.entries) == 0 {
		return "", nil
	}
	return r.entries[len(r.entries)-1].Hash, nil
}
