package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

// ReconciliationRepository stores sessions, their statement lines and the
// confirmed matches. Line status is derived from matches and deferrals.
type ReconciliationRepository struct {
	mu          sync.RWMutex
	sessions    map[string]domain.ReconciliationSession
	lines       map[string][]domain.BankStatementLine
	matches     map[string][]domain.ReconciliationMatch
	matchedLine map[string]string
	matchedTxn  map[string]string
	deferred    map[string]string
}

func NewReconciliationRepository() *ReconciliationRepository {
	return &ReconciliationRepository{
		sessions:    make(map[string]domain.ReconciliationSession),
		lines:       make(map[string][]domain.BankStatementLine),
		matches:     make(map[string][]domain.ReconciliationMatch),
		matchedLine: make(map[string]string),
		matchedTxn:  make(map[string]string),
		deferred:    make(map[string]string),
	}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*ReconciliationRepository)(nil)

func (r *ReconciliationRepository) FindSessionByID(_ context.Context, id string) (*domain.ReconciliationSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: reconciliation session %s", apperrors.ErrNotFound, id)
	}
	return &s, nil
}

func (r *ReconciliationRepository) ListLines(_ context.Context, sessionID string) ([]domain.BankStatementLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.lines[sessionID]
	out := make([]domain.BankStatementLine, len(stored))
	for i, l := range stored {
		l.Status = domain.LineUnmatched
		if _, ok := r.matchedLine[l.ID]; ok {
			l.Status = domain.LineMatched
		} else if reason, ok := r.deferred[l.ID]; ok {
			l.Status = domain.LineDeferred
			l.DeferredReason = reason
		}
		out[i] = l
	}
	return out, nil
}

func (r *ReconciliationRepository) ListMatches(_ context.Context, sessionID string) ([]domain.ReconciliationMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.ReconciliationMatch{}, r.matches[sessionID]...), nil
}

func (r *ReconciliationRepository) MatchedTransactionIDs(_ context.Context) (map[string]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]struct{}, len(r.matchedTxn))
	for id := range r.matchedTxn {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *ReconciliationRepository) CreateSession(_ context.Context, session domain.ReconciliationSession, lines []domain.BankStatementLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; ok {
		return fmt.Errorf("%w: reconciliation session %s", apperrors.ErrDuplicate, session.ID)
	}
	r.sessions[session.ID] = session
	r.lines[session.ID] = append([]domain.BankStatementLine(nil), lines...)
	return nil
}

func (r *ReconciliationRepository) ConfirmMatch(_ context.Context, match domain.ReconciliationMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasLineLocked(match.SessionID, match.LineID) {
		return fmt.Errorf("%w: statement line %s", apperrors.ErrNotFound, match.LineID)
	}
	if _, ok := r.matchedLine[match.LineID]; ok {
		return fmt.Errorf("%w: statement line %s is already matched", apperrors.ErrConflict, match.LineID)
	}
	if _, ok := r.matchedTxn[match.TransactionID]; ok {
		return fmt.Errorf("%w: transaction %s is already matched", apperrors.ErrConflict, match.TransactionID)
	}
	if _, ok := r.deferred[match.LineID]; ok {
		return fmt.Errorf("%w: statement line %s is deferred", apperrors.ErrConflict, match.LineID)
	}
	r.matchedLine[match.LineID] = match.ID
	r.matchedTxn[match.TransactionID] = match.ID
	r.matches[match.SessionID] = append(r.matches[match.SessionID], match)
	return nil
}

func (r *ReconciliationRepository) DeferLine(_ context.Context, sessionID, lineID, reason, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasLineLocked(sessionID, lineID) {
		return fmt.Errorf("%w: statement line %s", apperrors.ErrNotFound, lineID)
	}
	if _, ok := r.matchedLine[lineID]; ok {
		return fmt.Errorf("%w: statement line %s is already matched", apperrors.ErrConflict, lineID)
	}
	r.deferred[lineID] = reason
	return nil
}

func (r *ReconciliationRepository) hasLineLocked(sessionID, lineID string) bool {
	for _, l := range r.lines[sessionID] {
		if l.ID == lineID {
			return true
		}
	}
	return false
}
