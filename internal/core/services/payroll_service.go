package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/SscSPs/smb_ledger/internal/core/payroll"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/dto"
)

type payrollService struct {
	BaseService
	calc   *payroll.Calculator
	repo   portsrepo.PayrollRepositoryFacade
	ledger portssvc.LedgerSvcFacade
	audit  *AuditRecorder
	now    func() time.Time
}

// NewPayrollService creates a new PayrollService.
func NewPayrollService(calc *payroll.Calculator, repo portsrepo.PayrollRepositoryFacade, ledger portssvc.LedgerSvcFacade, audit *AuditRecorder) portssvc.PayrollSvcFacade {
	return &payrollService{
		calc:   calc,
		repo:   repo,
		ledger: ledger,
		audit:  audit,
		now:    time.Now,
	}
}

var _ portssvc.PayrollSvcFacade = (*payrollService)(nil)

// Preview computes a run without saving or posting it.
func (s *payrollService) Preview(ctx context.Context, req dto.RunPayrollRequest) (*domain.PayrollRun, error) {
	run, err := s.compute(req)
	if err != nil {
		s.logFailure(ctx, err, "Failed to compute payroll preview", slog.String("period", req.Period))
		return nil, err
	}
	return run, nil
}

// RunPayroll computes, saves and posts a run. A retry with the same run id
// returns the posted journal instead of posting again; a run saved by an
// attempt that failed before posting is posted as saved.
func (s *payrollService) RunPayroll(ctx context.Context, req dto.RunPayrollRequest, actor string) (*domain.PayrollRun, *domain.Transaction, bool, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, false, err
	}
	logger := s.GetLogger(ctx).With(slog.String("period", req.Period))

	var run *domain.PayrollRun
	if req.RunID != "" {
		existing, err := s.repo.FindRunByID(ctx, req.RunID)
		switch {
		case err == nil:
			run = existing
		case !errors.Is(err, apperrors.ErrNotFound):
			logger.Error("Failed to load payroll run", slog.String("error", err.Error()), slog.String("run_id", req.RunID))
			return nil, nil, false, err
		}
	}

	if run != nil && run.TransactionID != nil {
		txn, err := s.ledger.GetTransaction(ctx, *run.TransactionID)
		if err != nil {
			return nil, nil, false, err
		}
		logger.Info("Payroll run already posted", slog.String("run_id", run.ID), slog.String("transaction_id", txn.ID))
		return run, txn, false, nil
	}

	if run == nil {
		computed, err := s.compute(req)
		if err != nil {
			s.logFailure(ctx, err, "Failed to compute payroll run")
			return nil, nil, false, err
		}
		computed.CreatedAt = s.now().UTC().Truncate(time.Microsecond)
		computed.CreatedBy = actor

		if err := s.repo.SaveRun(ctx, *computed); err != nil {
			if !errors.Is(err, apperrors.ErrDuplicate) {
				logger.Error("Failed to save payroll run", slog.String("error", err.Error()), slog.String("run_id", computed.ID))
				return nil, nil, false, err
			}
			// a concurrent attempt saved it first; post what was stored
			stored, ferr := s.repo.FindRunByID(ctx, computed.ID)
			if ferr != nil {
				return nil, nil, false, ferr
			}
			computed = stored
		} else {
			s.audit.Record(ctx, AuditRecord{
				Actor:      actor,
				Action:     domain.ActionCreated,
				EntityType: domain.EntityPayrollRun,
				EntityID:   computed.ID,
				After:      computed,
			})
		}
		run = computed
	}

	postingDate := run.EndDate
	if req.PostingDate != nil {
		postingDate = *req.PostingDate
	}
	ev := domain.PayrollEvent{
		EventMeta: domain.EventMeta{
			Date:         postingDate,
			Currency:     run.Currency,
			ExchangeRate: req.ExchangeRate,
		},
		Run: *run,
	}
	txn, created, err := s.ledger.PostEvent(ctx, ev, actor)
	if err != nil {
		s.logFailure(ctx, err, "Failed to post payroll run", slog.String("run_id", run.ID))
		return run, nil, false, err
	}

	if err := s.repo.AttachTransaction(ctx, run.ID, txn.ID); err != nil {
		logger.Error("Failed to attach journal to payroll run", slog.String("error", err.Error()),
			slog.String("run_id", run.ID), slog.String("transaction_id", txn.ID))
		return run, txn, created, err
	}
	run.TransactionID = &txn.ID

	logger.Info("Payroll run posted",
		slog.String("run_id", run.ID),
		slog.String("transaction_id", txn.ID),
		slog.Int("employees", len(run.Payslips)),
		slog.Int64("net_pay", int64(run.Totals.NetPay)))
	return run, txn, created, nil
}

func (s *payrollService) GetRun(ctx context.Context, runID string) (*domain.PayrollRun, error) {
	run, err := s.repo.FindRunByID(ctx, runID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to get payroll run", slog.String("run_id", runID))
		return nil, err
	}
	return run, nil
}

// compute converts the request's major units into minor units of the run
// currency and runs the calculator.
func (s *payrollService) compute(req dto.RunPayrollRequest) (*domain.PayrollRun, error) {
	if strings.TrimSpace(req.Period) == "" {
		return nil, fmt.Errorf("%w: period is required", apperrors.ErrValidation)
	}
	cur, ok := domain.LookupCurrency(req.Currency)
	if !ok {
		return nil, fmt.Errorf("%w: unknown currency %q", apperrors.ErrValidation, req.Currency)
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: pay period ends before it starts", apperrors.ErrValidation)
	}

	inputs := make([]payroll.PayslipInput, len(req.Employees))
	for i, e := range req.Employees {
		inputs[i] = payroll.PayslipInput{
			EmployeeID:      e.EmployeeID,
			EmployeeName:    e.EmployeeName,
			BasicPay:        domain.AmountFromDecimal(e.BasicPay, cur.Precision),
			Allowances:      domain.AmountFromDecimal(e.Allowances, cur.Precision),
			OtherDeductions: domain.AmountFromDecimal(e.OtherDeductions, cur.Precision),
		}
	}
	slips, totals, err := s.calc.ComputeAll(inputs)
	if err != nil {
		return nil, err
	}

	id := req.RunID
	if id == "" {
		id = uuid.NewString()
	}
	return &domain.PayrollRun{
		ID:        id,
		Period:    req.Period,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Currency:  cur.Code,
		Payslips:  slips,
		Totals:    totals,
	}, nil
}
