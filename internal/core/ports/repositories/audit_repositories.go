package repositories

import (
	"context"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// AuditReader serves the audit log viewer.
type AuditReader interface {
	// ListEntries returns entries oldest first.
	ListEntries(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)

	// LastHash returns the hash of the newest entry, or "" for an empty log.
	LastHash(ctx context.Context) (string, error)
}

// AuditWriter is the append-only sink used by the recorder.
type AuditWriter interface {
	// AppendEntry stores the entry. It returns apperrors.ErrDuplicate for a
	// repeated id and apperrors.ErrConflict when entry.PreviousHash is no
	// longer the chain head.
	AppendEntry(ctx context.Context, entry domain.AuditEntry) error
}

// AuditRepositoryFacade combines all audit repository interfaces
type AuditRepositoryFacade interface {
	AuditReader
	AuditWriter
}
