package builders

import (
	"fmt"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// Payroll posts one aggregated journal per run: Dr salaries for the gross, Cr
// cash for total net pay and Cr one payable per statutory category.
func (b *Builder) Payroll(ev domain.PayrollEvent, actor string) (*domain.TransactionDraft, error) {
	run := ev.Run
	if run.ID == "" || run.Period == "" {
		return nil, fmt.Errorf("%w: payroll run id and period are required", apperrors.ErrValidation)
	}
	if len(run.Payslips) == 0 {
		return nil, fmt.Errorf("%w: payroll run %s has no payslips", apperrors.ErrValidation, run.ID)
	}
	totals := domain.SumPayslips(run.Payslips)
	if totals != run.Totals {
		return nil, fmt.Errorf("%w: payroll run %s totals do not match its payslips", apperrors.ErrValidation, run.ID)
	}
	if totals.GrossPay <= 0 {
		return nil, fmt.Errorf("%w: payroll run %s has no gross pay", apperrors.ErrValidation, run.ID)
	}

	d, err := b.begin(ev, actor)
	if err != nil {
		return nil, err
	}

	credits := []struct {
		code   string
		amount domain.Amount
		memo   string
	}{
		{domain.AccountCashBank, totals.NetPay, "Net pay"},
		{domain.AccountPAYEPayable, totals.PAYE, "PAYE"},
		{domain.AccountPensionPayable, totals.Pension, "Pension"},
		{domain.AccountHealthLevyPayable, totals.HealthLevy, "Health levy"},
		{domain.AccountHousingLevyPayable, totals.HousingLevy, "Housing levy"},
		{domain.AccountOtherDeductionsPayable, totals.OtherDeductions, "Other deductions"},
	}

	var gross domain.Amount
	converted := make([]domain.Amount, len(credits))
	for i, c := range credits {
		amt, err := d.convertMinor(c.amount)
		if err != nil {
			return nil, err
		}
		converted[i] = amt
		gross += amt
	}

	if err := d.debit(domain.AccountSalariesWages, gross, "Gross pay "+run.Period); err != nil {
		return nil, err
	}
	for i, c := range credits {
		// a zero leg is not a valid journal line
		if converted[i] == 0 {
			continue
		}
		if err := d.credit(c.code, converted[i], c.memo); err != nil {
			return nil, err
		}
	}

	src, ok := domain.LookupCurrency(d.from)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, d.from)
	}
	return d.finish(ev, actor,
		"PAY-"+run.Period,
		describe(ev.Description, fmt.Sprintf("Payroll %s (%d employees)", run.Period, len(run.Payslips))),
		totals.GrossPay.Decimal(src.Precision),
		domain.SourceRef{PayrollRunID: run.ID},
	)
}
