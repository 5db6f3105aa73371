package domain

import "time"

// Payslip is one employee's computed pay for a run. Amounts are minor units of
// the run currency.
type Payslip struct {
	EmployeeID      string `json:"employeeId"`
	EmployeeName    string `json:"employeeName"`
	BasicPay        Amount `json:"basicPay"`
	Allowances      Amount `json:"allowances"`
	GrossPay        Amount `json:"grossPay"`
	PAYE            Amount `json:"paye"`
	Pension         Amount `json:"pension"`
	HealthLevy      Amount `json:"healthLevy"`
	HousingLevy     Amount `json:"housingLevy"`
	OtherDeductions Amount `json:"otherDeductions"`
	TotalDeductions Amount `json:"totalDeductions"`
	NetPay          Amount `json:"netPay"`
}

// PayrollTotals aggregates every payslip of a run per category.
type PayrollTotals struct {
	GrossPay        Amount `json:"totalGrossPay"`
	PAYE            Amount `json:"totalPaye"`
	Pension         Amount `json:"totalPension"`
	HealthLevy      Amount `json:"totalHealthLevy"`
	HousingLevy     Amount `json:"totalHousingLevy"`
	OtherDeductions Amount `json:"totalOtherDeductions"`
	Deductions      Amount `json:"totalDeductions"`
	NetPay          Amount `json:"totalNetPay"`
}

// PayrollRun is computed before posting. After posting only TransactionID is
// ever attached.
type PayrollRun struct {
	ID            string        `json:"id"`
	Period        string        `json:"period"`
	StartDate     time.Time     `json:"startDate"`
	EndDate       time.Time     `json:"endDate"`
	Currency      string        `json:"currency"`
	Payslips      []Payslip     `json:"payslips"`
	Totals        PayrollTotals `json:"totals"`
	TransactionID *string       `json:"transactionId,omitempty"`
	AuditFields
}

// SumPayslips recomputes run totals from the payslips.
func SumPayslips(slips []Payslip) PayrollTotals {
	var t PayrollTotals
	for _, p := range slips {
		t.GrossPay += p.GrossPay
		t.PAYE += p.PAYE
		t.Pension += p.Pension
		t.HealthLevy += p.HealthLevy
		t.HousingLevy += p.HousingLevy
		t.OtherDeductions += p.OtherDeductions
		t.Deductions += p.TotalDeductions
		t.NetPay += p.NetPay
	}
	return t
}
