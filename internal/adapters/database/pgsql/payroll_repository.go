package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

type PgxPayrollRepository struct {
	BaseRepository
}

func newPgxPayrollRepository(pool *pgxpool.Pool) *PgxPayrollRepository {
	return &PgxPayrollRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PayrollRepositoryFacade = (*PgxPayrollRepository)(nil)

// SaveRun stores the run header and its payslips atomically. Totals are kept
// as JSONB since they are only ever read back whole.
func (r *PgxPayrollRepository) SaveRun(ctx context.Context, run domain.PayrollRun) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx, `
		INSERT INTO payroll_runs (id, period, start_date, end_date, currency, totals, transaction_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		run.ID, run.Period, run.StartDate, run.EndDate, run.Currency, run.Totals, run.TransactionID, run.CreatedAt, run.CreatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: payroll run %s", apperrors.ErrDuplicate, run.ID)
		}
		return apperrors.NewAppError(500, "failed to insert payroll run "+run.ID, err)
	}

	batch := &pgx.Batch{}
	for i, p := range run.Payslips {
		batch.Queue(`
			INSERT INTO payslips (
				run_id, position, employee_id, employee_name, basic_pay, allowances, gross_pay,
				paye, pension, health_levy, housing_levy, other_deductions, total_deductions, net_pay
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`,
			run.ID, i+1, p.EmployeeID, p.EmployeeName, int64(p.BasicPay), int64(p.Allowances), int64(p.GrossPay),
			int64(p.PAYE), int64(p.Pension), int64(p.HealthLevy), int64(p.HousingLevy),
			int64(p.OtherDeductions), int64(p.TotalDeductions), int64(p.NetPay))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert payslips for run "+run.ID, err)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxPayrollRepository) FindRunByID(ctx context.Context, id string) (*domain.PayrollRun, error) {
	var run domain.PayrollRun
	err := r.Pool.QueryRow(ctx, `
		SELECT id, period, start_date, end_date, currency, totals, transaction_id, created_at, created_by
		FROM payroll_runs
		WHERE id = $1;`, id).Scan(
		&run.ID, &run.Period, &run.StartDate, &run.EndDate, &run.Currency,
		&run.Totals, &run.TransactionID, &run.CreatedAt, &run.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payroll run %s", apperrors.ErrNotFound, id)
		}
		return nil, apperrors.NewAppError(500, "failed to find payroll run "+id, err)
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT employee_id, employee_name, basic_pay, allowances, gross_pay, paye, pension,
		       health_levy, housing_levy, other_deductions, total_deductions, net_pay
		FROM payslips
		WHERE run_id = $1
		ORDER BY position;`, id)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payslips for run "+id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			p domain.Payslip
			v [10]int64
		)
		if err := rows.Scan(&p.EmployeeID, &p.EmployeeName,
			&v[0], &v[1], &v[2], &v[3], &v[4], &v[5], &v[6], &v[7], &v[8], &v[9]); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payslip row", err)
		}
		p.BasicPay, p.Allowances, p.GrossPay = domain.Amount(v[0]), domain.Amount(v[1]), domain.Amount(v[2])
		p.PAYE, p.Pension, p.HealthLevy = domain.Amount(v[3]), domain.Amount(v[4]), domain.Amount(v[5])
		p.HousingLevy, p.OtherDeductions = domain.Amount(v[6]), domain.Amount(v[7])
		p.TotalDeductions, p.NetPay = domain.Amount(v[8]), domain.Amount(v[9])
		run.Payslips = append(run.Payslips, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payslip rows", err)
	}
	return &run, nil
}

// AttachTransaction sets the posted journal once. Re-attaching the same id is
// a no-op.
func (r *PgxPayrollRepository) AttachTransaction(ctx context.Context, runID, transactionID string) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE payroll_runs SET transaction_id = $2
		WHERE id = $1 AND (transaction_id IS NULL OR transaction_id = $2);`, runID, transactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to attach transaction to payroll run "+runID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payroll_runs WHERE id = $1);`, runID).Scan(&exists); err != nil {
		return apperrors.NewAppError(500, "failed to check payroll run "+runID, err)
	}
	if !exists {
		return fmt.Errorf("%w: payroll run %s", apperrors.ErrNotFound, runID)
	}
	return fmt.Errorf("%w: payroll run %s is already posted", apperrors.ErrConflict, runID)
}
