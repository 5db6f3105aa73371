package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

type PayrollRepository struct {
	mu   sync.RWMutex
	runs map[string]domain.PayrollRun
}

func NewPayrollRepository() *PayrollRepository {
	return &PayrollRepository{runs: make(map[string]domain.PayrollRun)}
}

var _ portsrepo.PayrollRepositoryFacade = (*PayrollRepository)(nil)

func (r *PayrollRepository) FindRunByID(_ context.Context, id string) (*domain.PayrollRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: payroll run %s", apperrors.ErrNotFound, id)
	}
	out := copyRun(run)
	return &out, nil
}

func (r *PayrollRepository) SaveRun(_ context.Context, run domain.PayrollRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[run.ID]; ok {
		return fmt.Errorf("%w: payroll run %s", apperrors.ErrDuplicate, run.ID)
	}
	r.runs[run.ID] = copyRun(run)
	return nil
}

func (r *PayrollRepository) AttachTransaction(_ context.Context, runID, transactionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[runID]
	if !ok {
		return fmt.Errorf("%w: payroll run %s", apperrors.ErrNotFound, runID)
	}
	if run.TransactionID != nil {
		if *run.TransactionID == transactionID {
			return nil
		}
		return fmt.Errorf("%w: payroll run %s is already posted as %s", apperrors.ErrConflict, runID, *run.TransactionID)
	}
	id := transactionID
	run.TransactionID = &id
	r.runs[runID] = run
	return nil
}

func copyRun(run domain.PayrollRun) domain.PayrollRun {
	run.Payslips = append([]domain.Payslip(nil), run.Payslips...)
	if run.TransactionID != nil {
		id := *run.TransactionID
		run.TransactionID = &id
	}
	return run
}
