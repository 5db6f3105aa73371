package dto

import (
	"time"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/SscSPs/smb_ledger/internal/utils"
)

// JournalLineResponse is one leg of a transaction. Amounts are given both in
// minor units and as a formatted major-unit string.
type JournalLineResponse struct {
	AccountCode     string        `json:"accountCode"`
	AccountName     string        `json:"accountName"`
	Debit           domain.Amount `json:"debit"`
	Credit          domain.Amount `json:"credit"`
	DebitFormatted  string        `json:"debitFormatted"`
	CreditFormatted string        `json:"creditFormatted"`
	Memo            string        `json:"memo,omitempty"`
}

// TransactionResponse defines the data returned for a posted transaction.
type TransactionResponse struct {
	ID                   string                   `json:"id"`
	TransactionDate      time.Time                `json:"transactionDate"`
	ReferenceNumber      string                   `json:"referenceNumber"`
	Description          string                   `json:"description"`
	Currency             string                   `json:"currency"`
	TotalAmount          domain.Amount            `json:"totalAmount"`
	TotalAmountFormatted string                   `json:"totalAmountFormatted"`
	TransactionType      domain.TransactionType   `json:"transactionType"`
	Status               domain.TransactionStatus `json:"status"`
	Source               domain.SourceRef         `json:"source"`
	ReversesID           *string                  `json:"reversesId,omitempty"`
	ReversedByID         *string                  `json:"reversedById,omitempty"`
	Lines                []JournalLineResponse    `json:"lines"`
	CreatedAt            time.Time                `json:"createdAt"`
	CreatedBy            string                   `json:"createdBy"`
}

// PostEventResponse wraps the transaction produced by an event. AlreadyPosted
// is true when the event had been posted before and nothing new was written.
type PostEventResponse struct {
	AlreadyPosted bool                `json:"alreadyPosted"`
	Transaction   TransactionResponse `json:"transaction"`
}

// VoidTransactionRequest carries the operator's reason for a reversal.
type VoidTransactionRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ListTransactionsParams defines the query parameters for listing transactions.
type ListTransactionsParams struct {
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	Type        string     `form:"type" binding:"omitempty,oneof=sale receipt expense adjustment payroll_journal"`
	AccountCode string     `form:"account"`
	Limit       int        `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken   *string    `form:"nextToken"`
}

// ListTransactionsResponse is one page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction, base domain.Currency) TransactionResponse {
	lines := make([]JournalLineResponse, len(txn.Lines))
	for i, l := range txn.Lines {
		lines[i] = JournalLineResponse{
			AccountCode:     l.AccountCode,
			AccountName:     l.AccountName,
			Debit:           l.Debit,
			Credit:          l.Credit,
			DebitFormatted:  utils.FormatWithCurrencyPrecision(l.Debit, base),
			CreditFormatted: utils.FormatWithCurrencyPrecision(l.Credit, base),
			Memo:            l.Memo,
		}
	}
	return TransactionResponse{
		ID:                   txn.ID,
		TransactionDate:      txn.Date,
		ReferenceNumber:      txn.ReferenceNumber,
		Description:          txn.Description,
		Currency:             txn.Currency,
		TotalAmount:          txn.TotalAmount,
		TotalAmountFormatted: utils.FormatWithCurrencyPrecision(txn.TotalAmount, base),
		TransactionType:      txn.Type,
		Status:               txn.Status,
		Source:               txn.Source,
		ReversesID:           txn.ReversesID,
		ReversedByID:         txn.ReversedByID,
		Lines:                lines,
		CreatedAt:            txn.CreatedAt,
		CreatedBy:            txn.CreatedBy,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction, base domain.Currency) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i], base)
	}
	return responses
}
