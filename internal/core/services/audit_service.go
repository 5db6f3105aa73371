package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
)

const defaultAuditListLimit = 100

type auditService struct {
	BaseService
	repo portsrepo.AuditReader
}

// NewAuditService creates the read side of the audit trail.
func NewAuditService(repo portsrepo.AuditReader) portssvc.AuditSvcFacade {
	return &auditService{repo: repo}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

func (s *auditService) ListEntries(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditListLimit
	}
	entries, err := s.repo.ListEntries(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list audit entries",
			slog.String("entity_type", string(filter.EntityType)),
			slog.String("entity_id", filter.EntityID))
		return nil, err
	}
	return entries, nil
}

// VerifyChain re-hashes the whole log.
func (s *auditService) VerifyChain(ctx context.Context) (*domain.ChainVerification, error) {
	entries, err := s.repo.ListEntries(ctx, domain.AuditFilter{})
	if err != nil {
		s.LogError(ctx, err, "Failed to load audit log for verification")
		return nil, err
	}
	result := VerifyAuditChain(entries)
	if !result.Valid {
		s.LogWarn(ctx, "Audit chain broken", slog.String("entry_id", result.BrokenAt))
	}
	return &result, nil
}
