package domain

import "time"

// TransactionType classifies a journal entry by the business event behind it.
type TransactionType string

const (
	TransactionTypeSale           TransactionType = "sale"
	TransactionTypeReceipt        TransactionType = "receipt"
	TransactionTypeExpense        TransactionType = "expense"
	TransactionTypeAdjustment     TransactionType = "adjustment"
	TransactionTypePayrollJournal TransactionType = "payroll_journal"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeSale, TransactionTypeReceipt, TransactionTypeExpense,
		TransactionTypeAdjustment, TransactionTypePayrollJournal:
		return true
	}
	return false
}

// TransactionStatus is derived at read time: a transaction is void once a
// reversing transaction referencing it has been posted.
type TransactionStatus string

const (
	StatusPosted TransactionStatus = "posted"
	StatusVoid   TransactionStatus = "void"
)

// JournalLine is one leg of a transaction. Exactly one of Debit and Credit is
// non-zero.
type JournalLine struct {
	AccountCode string `json:"accountCode"`
	AccountName string `json:"accountName"`
	Debit       Amount `json:"debit"`
	Credit      Amount `json:"credit"`
	Memo        string `json:"memo,omitempty"`
}

// SourceRef links a transaction back to the business object that produced it.
// These are weak references: lookup keys only.
type SourceRef struct {
	EventKind    EventKind `json:"eventKind"`
	EventID      string    `json:"eventId"`
	InvoiceID    string    `json:"invoiceId,omitempty"`
	ExpenseID    string    `json:"expenseId,omitempty"`
	ClientID     string    `json:"clientId,omitempty"`
	PaymentID    string    `json:"paymentId,omitempty"`
	CreditNoteID string    `json:"creditNoteId,omitempty"`
	PayrollRunID string    `json:"payrollRunId,omitempty"`
}

// TransactionDraft is a proposed journal entry before the ledger store assigns
// identity and status.
type TransactionDraft struct {
	Date            time.Time
	ReferenceNumber string
	Description     string
	Currency        string
	Type            TransactionType
	Lines           []JournalLine
	Source          SourceRef
	ReversesID      *string
	Actor           string
}

// Totals sums both sides of the draft.
func (d *TransactionDraft) Totals() (debits, credits Amount) {
	return sumLines(d.Lines)
}

// Transaction is a posted, immutable journal entry.
type Transaction struct {
	ID              string            `json:"id"`
	Date            time.Time         `json:"transactionDate"`
	ReferenceNumber string            `json:"referenceNumber"`
	Description     string            `json:"description"`
	Currency        string            `json:"currency"`
	TotalAmount     Amount            `json:"totalAmount"`
	Type            TransactionType   `json:"transactionType"`
	Lines           []JournalLine     `json:"lines"`
	Status          TransactionStatus `json:"status"`
	Source          SourceRef         `json:"source"`
	ReversesID      *string           `json:"reversesId,omitempty"`
	ReversedByID    *string           `json:"reversedById,omitempty"`
	AuditFields
}

// IsVoid reports whether a reversal has been posted against the transaction.
func (t *Transaction) IsVoid() bool {
	return t.ReversedByID != nil
}

// IsReversal reports whether the transaction voids another one.
func (t *Transaction) IsReversal() bool {
	return t.ReversesID != nil
}

// AccountMovement returns debits minus credits on the given account.
func (t *Transaction) AccountMovement(code string) (movement Amount, touched bool) {
	for _, l := range t.Lines {
		if l.AccountCode == code {
			movement += l.Debit - l.Credit
			touched = true
		}
	}
	return movement, touched
}

func sumLines(lines []JournalLine) (debits, credits Amount) {
	for _, l := range lines {
		debits += l.Debit
		credits += l.Credit
	}
	return debits, credits
}

// TransactionFilter narrows reporting queries. Cursor fields continue a
// previous page ordered by date, creation time and id, all descending.
type TransactionFilter struct {
	From        *time.Time
	To          *time.Time
	Type        *TransactionType
	AccountCode string
	Limit       int

	AfterDate      *time.Time
	AfterCreatedAt *time.Time
	AfterID        string
}
