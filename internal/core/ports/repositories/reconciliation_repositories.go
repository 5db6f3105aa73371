package repositories

import (
	"context"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// ReconciliationReader defines read operations for reconciliation sessions.
type ReconciliationReader interface {
	FindSessionByID(ctx context.Context, id string) (*domain.ReconciliationSession, error)

	// ListLines returns the statement lines in import order with their derived
	// status.
	ListLines(ctx context.Context, sessionID string) ([]domain.BankStatementLine, error)

	ListMatches(ctx context.Context, sessionID string) ([]domain.ReconciliationMatch, error)

	// MatchedTransactionIDs returns every transaction already cleared in any
	// session.
	MatchedTransactionIDs(ctx context.Context) (map[string]struct{}, error)
}

// ReconciliationWriter defines the mutations of a reconciliation session.
type ReconciliationWriter interface {
	CreateSession(ctx context.Context, session domain.ReconciliationSession, lines []domain.BankStatementLine) error

	// ConfirmMatch is a compare-and-swap: it fails with apperrors.ErrConflict if
	// the line or the transaction was matched first by someone else.
	ConfirmMatch(ctx context.Context, match domain.ReconciliationMatch) error

	// DeferLine marks an unmatched line as explicitly deferred.
	DeferLine(ctx context.Context, sessionID, lineID, reason, actor string) error
}

// ReconciliationRepositoryFacade combines all reconciliation repository interfaces
type ReconciliationRepositoryFacade interface {
	ReconciliationReader
	ReconciliationWriter
}
