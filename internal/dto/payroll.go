package dto

import (
	"time"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EmployeePayRequest is one employee's pay for the period in major units of
// the run currency.
type EmployeePayRequest struct {
	EmployeeID      string          `json:"employeeId" binding:"required"`
	EmployeeName    string          `json:"employeeName"`
	BasicPay        decimal.Decimal `json:"basicPay" swaggertype:"string"`
	Allowances      decimal.Decimal `json:"allowances" swaggertype:"string"`
	OtherDeductions decimal.Decimal `json:"otherDeductions" swaggertype:"string"`
}

// RunPayrollRequest computes and posts a payroll run. RunID is the idempotency
// key; retrying with the same id never posts twice.
type RunPayrollRequest struct {
	RunID        string               `json:"runId"`
	Period       string               `json:"period" binding:"required" example:"2024-03"`
	StartDate    time.Time            `json:"startDate" binding:"required"`
	EndDate      time.Time            `json:"endDate" binding:"required"`
	PostingDate  *time.Time           `json:"postingDate,omitempty"`
	Currency     string               `json:"currency" binding:"required,len=3"`
	ExchangeRate *decimal.Decimal     `json:"exchangeRate,omitempty" swaggertype:"string"`
	Employees    []EmployeePayRequest `json:"employees" binding:"required,min=1,dive"`
}

// PayrollRunResponse is a computed run, with the posted transaction when there
// is one.
type PayrollRunResponse struct {
	Run           domain.PayrollRun    `json:"run"`
	AlreadyPosted bool                 `json:"alreadyPosted"`
	Transaction   *TransactionResponse `json:"transaction,omitempty"`
}
