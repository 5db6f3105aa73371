package repositories

import (
	"context"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// PayrollReader defines read operations for payroll runs.
type PayrollReader interface {
	FindRunByID(ctx context.Context, id string) (*domain.PayrollRun, error)
}

// PayrollWriter defines write operations for payroll runs.
type PayrollWriter interface {
	// SaveRun stores a run and its payslips. Returns apperrors.ErrDuplicate if
	// the id is taken.
	SaveRun(ctx context.Context, run domain.PayrollRun) error

	// AttachTransaction records the posted journal on the run. It is a no-op if
	// the same id is already attached and ErrConflict if a different one is.
	AttachTransaction(ctx context.Context, runID, transactionID string) error
}

// PayrollRepositoryFacade combines all payroll repository interfaces
type PayrollRepositoryFacade interface {
	PayrollReader
	PayrollWriter
}
