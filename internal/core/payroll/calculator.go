// Package payroll computes statutory deductions. Everything here is pure: no
// I/O, no clocks, no shared state.
package payroll

import (
	"errors"
	"fmt"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

var ErrInvalidRules = errors.New("invalid payroll rules")

// Bracket is a half-open band [Lower, Upper) of gross pay in minor units taxed
// at Rate. Upper == 0 marks the unbounded top bracket.
type Bracket struct {
	Lower domain.Amount
	Upper domain.Amount
	Rate  decimal.Decimal
}

// Rules holds the statutory parameters of one jurisdiction and tax year.
type Rules struct {
	Brackets        []Bracket
	PersonalRelief  domain.Amount
	PensionRate     decimal.Decimal
	PensionCap      domain.Amount
	HealthLevyRate  decimal.Decimal
	HousingLevyRate decimal.Decimal
}

// DefaultRules returns the monthly Kenyan PAYE table with the 2024 levies, in
// cents.
func DefaultRules() Rules {
	return Rules{
		Brackets: []Bracket{
			{Lower: 0, Upper: 2_400_000, Rate: decimal.RequireFromString("0.10")},
			{Lower: 2_400_000, Upper: 3_233_300, Rate: decimal.RequireFromString("0.25")},
			{Lower: 3_233_300, Upper: 50_000_000, Rate: decimal.RequireFromString("0.30")},
			{Lower: 50_000_000, Upper: 80_000_000, Rate: decimal.RequireFromString("0.325")},
			{Lower: 80_000_000, Upper: 0, Rate: decimal.RequireFromString("0.35")},
		},
		PersonalRelief:  240_000,
		PensionRate:     decimal.RequireFromString("0.06"),
		PensionCap:      216_000,
		HealthLevyRate:  decimal.RequireFromString("0.0275"),
		HousingLevyRate: decimal.RequireFromString("0.015"),
	}
}

// Validate checks the bracket table is ordered, contiguous from zero and ends
// unbounded, and that every rate lies in [0, 1].
func (r Rules) Validate() error {
	if len(r.Brackets) == 0 {
		return fmt.Errorf("%w: no brackets", ErrInvalidRules)
	}
	if r.Brackets[0].Lower != 0 {
		return fmt.Errorf("%w: first bracket must start at 0", ErrInvalidRules)
	}
	for i, b := range r.Brackets {
		last := i == len(r.Brackets)-1
		if !validRate(b.Rate) {
			return fmt.Errorf("%w: bracket %d rate %s out of range", ErrInvalidRules, i, b.Rate)
		}
		if last {
			if b.Upper != 0 {
				return fmt.Errorf("%w: last bracket must be unbounded", ErrInvalidRules)
			}
		} else if b.Upper <= b.Lower {
			return fmt.Errorf("%w: bracket %d is empty or inverted", ErrInvalidRules, i)
		}
		if i > 0 && b.Lower != r.Brackets[i-1].Upper {
			return fmt.Errorf("%w: bracket %d does not start where bracket %d ends", ErrInvalidRules, i, i-1)
		}
	}
	if r.PersonalRelief < 0 || r.PensionCap < 0 {
		return fmt.Errorf("%w: relief and pension cap must be non-negative", ErrInvalidRules)
	}
	for name, rate := range map[string]decimal.Decimal{
		"pension": r.PensionRate, "health levy": r.HealthLevyRate, "housing levy": r.HousingLevyRate,
	} {
		if !validRate(rate) {
			return fmt.Errorf("%w: %s rate %s out of range", ErrInvalidRules, name, rate)
		}
	}
	return nil
}

func validRate(r decimal.Decimal) bool {
	return !r.IsNegative() && r.LessThanOrEqual(decimal.NewFromInt(1))
}

// Calculator applies a validated rule set.
type Calculator struct {
	rules Rules
}

// NewCalculator validates rules and returns a calculator.
func NewCalculator(rules Rules) (*Calculator, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{rules: rules}, nil
}

// Rules returns the rule set in use.
func (c *Calculator) Rules() Rules {
	return c.rules
}

// PAYE returns income tax on gross pay after personal relief, never negative.
// Bracket contributions are summed exactly and rounded once.
func (c *Calculator) PAYE(gross domain.Amount) domain.Amount {
	if gross <= 0 {
		return 0
	}
	tax := decimal.Zero
	for _, b := range c.rules.Brackets {
		if gross <= b.Lower {
			break
		}
		top := gross
		if b.Upper != 0 && b.Upper < gross {
			top = b.Upper
		}
		tax = tax.Add(decimal.NewFromInt(int64(top - b.Lower)).Mul(b.Rate))
	}
	owed := domain.Amount(tax.Round(0).IntPart()) - c.rules.PersonalRelief
	if owed < 0 {
		return 0
	}
	return owed
}

// Pension returns min(basic * rate, cap).
func (c *Calculator) Pension(basic domain.Amount) domain.Amount {
	p := percentOf(basic, c.rules.PensionRate)
	if p > c.rules.PensionCap {
		return c.rules.PensionCap
	}
	return p
}

// HealthLevy returns the uncapped health levy on gross pay.
func (c *Calculator) HealthLevy(gross domain.Amount) domain.Amount {
	return percentOf(gross, c.rules.HealthLevyRate)
}

// HousingLevy returns the uncapped housing levy on gross pay.
func (c *Calculator) HousingLevy(gross domain.Amount) domain.Amount {
	return percentOf(gross, c.rules.HousingLevyRate)
}

func percentOf(a domain.Amount, rate decimal.Decimal) domain.Amount {
	return domain.Amount(decimal.NewFromInt(int64(a)).Mul(rate).Round(0).IntPart())
}

// PayslipInput is one employee's pay before deductions.
type PayslipInput struct {
	EmployeeID      string
	EmployeeName    string
	BasicPay        domain.Amount
	Allowances      domain.Amount
	OtherDeductions domain.Amount
}

// Compute produces a payslip. Gross pay is basic plus allowances.
func (c *Calculator) Compute(in PayslipInput) (domain.Payslip, error) {
	if in.EmployeeID == "" {
		return domain.Payslip{}, fmt.Errorf("%w: employee id is required", apperrors.ErrValidation)
	}
	if in.BasicPay < 0 || in.Allowances < 0 || in.OtherDeductions < 0 {
		return domain.Payslip{}, fmt.Errorf("%w: employee %s has negative pay components", apperrors.ErrValidation, in.EmployeeID)
	}

	gross := in.BasicPay + in.Allowances
	slip := domain.Payslip{
		EmployeeID:      in.EmployeeID,
		EmployeeName:    in.EmployeeName,
		BasicPay:        in.BasicPay,
		Allowances:      in.Allowances,
		GrossPay:        gross,
		PAYE:            c.PAYE(gross),
		Pension:         c.Pension(in.BasicPay),
		HealthLevy:      c.HealthLevy(gross),
		HousingLevy:     c.HousingLevy(gross),
		OtherDeductions: in.OtherDeductions,
	}
	slip.TotalDeductions = slip.PAYE + slip.Pension + slip.HealthLevy + slip.HousingLevy + slip.OtherDeductions
	slip.NetPay = gross - slip.TotalDeductions
	if slip.NetPay < 0 {
		return domain.Payslip{}, fmt.Errorf("%w: employee %s deductions %d exceed gross pay %d",
			apperrors.ErrValidation, in.EmployeeID, slip.TotalDeductions, gross)
	}
	return slip, nil
}

// ComputeAll computes payslips for every employee in order and totals them.
func (c *Calculator) ComputeAll(inputs []PayslipInput) ([]domain.Payslip, domain.PayrollTotals, error) {
	if len(inputs) == 0 {
		return nil, domain.PayrollTotals{}, fmt.Errorf("%w: payroll run has no employees", apperrors.ErrValidation)
	}
	seen := make(map[string]struct{}, len(inputs))
	slips := make([]domain.Payslip, 0, len(inputs))
	for _, in := range inputs {
		if _, dup := seen[in.EmployeeID]; dup {
			return nil, domain.PayrollTotals{}, fmt.Errorf("%w: employee %s appears twice", apperrors.ErrValidation, in.EmployeeID)
		}
		seen[in.EmployeeID] = struct{}{}
		slip, err := c.Compute(in)
		if err != nil {
			return nil, domain.PayrollTotals{}, err
		}
		slips = append(slips, slip)
	}
	return slips, domain.SumPayslips(slips), nil
}
