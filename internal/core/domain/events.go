package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind discriminates the business event union.
type EventKind string

const (
	EventSale       EventKind = "sale"
	EventReceipt    EventKind = "receipt"
	EventExpense    EventKind = "expense"
	EventCreditNote EventKind = "credit_note"
	EventPayroll    EventKind = "payroll"
	EventVoid       EventKind = "void"
)

// Event is a business occurrence that produces exactly one ledger transaction.
// The (TransactionType, SourceID) pair is the idempotency key of the posting.
type Event interface {
	Kind() EventKind
	SourceID() string
	TransactionType() TransactionType
	Meta() EventMeta
}

// EventMeta carries the fields every event shares. A nil ExchangeRate means
// the producer supplied no conversion context.
type EventMeta struct {
	Date         time.Time        `validate:"required"`
	Currency     string           `validate:"required,len=3"`
	ExchangeRate *decimal.Decimal `validate:"-"`
	Description  string
}

// SaleEvent is an issued or paid invoice. Amounts are in major units of the
// event currency.
type SaleEvent struct {
	EventMeta
	InvoiceID     string `validate:"required"`
	InvoiceNumber string `validate:"required"`
	ClientID      string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	CostOfGoods   *decimal.Decimal
}

func (e SaleEvent) Kind() EventKind                  { return EventSale }
func (e SaleEvent) SourceID() string                 { return e.InvoiceID }
func (e SaleEvent) TransactionType() TransactionType { return TransactionTypeSale }
func (e SaleEvent) Meta() EventMeta                  { return e.EventMeta }

// ReceiptEvent is a payment received against an invoice.
type ReceiptEvent struct {
	EventMeta
	PaymentID        string `validate:"required"`
	InvoiceID        string
	InvoiceNumber    string
	PaymentReference string
	ClientID         string
	Amount           decimal.Decimal
}

func (e ReceiptEvent) Kind() EventKind                  { return EventReceipt }
func (e ReceiptEvent) SourceID() string                 { return e.PaymentID }
func (e ReceiptEvent) TransactionType() TransactionType { return TransactionTypeReceipt }
func (e ReceiptEvent) Meta() EventMeta                  { return e.EventMeta }

// ExpenseEvent is a recorded business expense. An empty AccountCode books to
// General & Administrative.
type ExpenseEvent struct {
	EventMeta
	ExpenseID     string `validate:"required"`
	ExpenseNumber string `validate:"required"`
	AccountCode   string
	Vendor        string
	Amount        decimal.Decimal
	Tax           decimal.Decimal
	Paid          bool
}

func (e ExpenseEvent) Kind() EventKind                  { return EventExpense }
func (e ExpenseEvent) SourceID() string                 { return e.ExpenseID }
func (e ExpenseEvent) TransactionType() TransactionType { return TransactionTypeExpense }
func (e ExpenseEvent) Meta() EventMeta                  { return e.EventMeta }

// CreditNoteEvent reverses all or part of a sale.
type CreditNoteEvent struct {
	EventMeta
	CreditNoteID     string `validate:"required"`
	CreditNoteNumber string `validate:"required"`
	InvoiceID        string
	ClientID         string
	Subtotal         decimal.Decimal
	Tax              decimal.Decimal
}

func (e CreditNoteEvent) Kind() EventKind                  { return EventCreditNote }
func (e CreditNoteEvent) SourceID() string                 { return e.CreditNoteID }
func (e CreditNoteEvent) TransactionType() TransactionType { return TransactionTypeAdjustment }
func (e CreditNoteEvent) Meta() EventMeta                  { return e.EventMeta }

// PayrollEvent posts a computed payroll run. Payslip amounts are minor units of
// the event currency.
type PayrollEvent struct {
	EventMeta
	Run PayrollRun `validate:"-"`
}

func (e PayrollEvent) Kind() EventKind                  { return EventPayroll }
func (e PayrollEvent) SourceID() string                 { return e.Run.ID }
func (e PayrollEvent) TransactionType() TransactionType { return TransactionTypePayrollJournal }
func (e PayrollEvent) Meta() EventMeta                  { return e.EventMeta }
