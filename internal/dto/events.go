package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostEventRequest is the tagged union accepted by the posting endpoint. Kind
// selects which payload shape Event must decode into.
type PostEventRequest struct {
	Kind  domain.EventKind `json:"kind" binding:"required,oneof=sale receipt expense credit_note" example:"sale"`
	Event json.RawMessage  `json:"event" binding:"required" swaggertype:"object"`
}

// EventMetaRequest holds the fields shared by every event payload.
type EventMetaRequest struct {
	Date         time.Time        `json:"date"`
	Currency     string           `json:"currency" example:"KES"`
	ExchangeRate *decimal.Decimal `json:"exchangeRate,omitempty" swaggertype:"string"`
	Description  string           `json:"description,omitempty"`
}

func (m EventMetaRequest) toDomain() domain.EventMeta {
	return domain.EventMeta{
		Date:         m.Date,
		Currency:     m.Currency,
		ExchangeRate: m.ExchangeRate,
		Description:  m.Description,
	}
}

// SaleEventRequest is an invoice issued or paid.
type SaleEventRequest struct {
	EventMetaRequest
	InvoiceID     string           `json:"invoiceId"`
	InvoiceNumber string           `json:"invoiceNumber"`
	ClientID      string           `json:"clientId,omitempty"`
	Subtotal      decimal.Decimal  `json:"subtotal" swaggertype:"string"`
	Tax           decimal.Decimal  `json:"tax" swaggertype:"string"`
	CostOfGoods   *decimal.Decimal `json:"costOfGoods,omitempty" swaggertype:"string"`
}

// ReceiptEventRequest is a payment against an invoice.
type ReceiptEventRequest struct {
	EventMetaRequest
	PaymentID        string          `json:"paymentId"`
	InvoiceID        string          `json:"invoiceId,omitempty"`
	InvoiceNumber    string          `json:"invoiceNumber,omitempty"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	ClientID         string          `json:"clientId,omitempty"`
	Amount           decimal.Decimal `json:"amount" swaggertype:"string"`
}

// ExpenseEventRequest is a recorded expense.
type ExpenseEventRequest struct {
	EventMetaRequest
	ExpenseID     string          `json:"expenseId"`
	ExpenseNumber string          `json:"expenseNumber"`
	AccountCode   string          `json:"accountCode,omitempty"`
	Vendor        string          `json:"vendor,omitempty"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string"`
	Tax           decimal.Decimal `json:"tax" swaggertype:"string"`
	Paid          bool            `json:"paid"`
}

// CreditNoteEventRequest is a credit note against a sale.
type CreditNoteEventRequest struct {
	EventMetaRequest
	CreditNoteID     string          `json:"creditNoteId"`
	CreditNoteNumber string          `json:"creditNoteNumber"`
	InvoiceID        string          `json:"invoiceId,omitempty"`
	ClientID         string          `json:"clientId,omitempty"`
	Subtotal         decimal.Decimal `json:"subtotal" swaggertype:"string"`
	Tax              decimal.Decimal `json:"tax" swaggertype:"string"`
}

// ToDomain decodes the payload for Kind into the matching domain event.
// Unknown fields are rejected so a payload sent under the wrong kind fails
// loudly instead of posting with zeroed amounts.
func (r PostEventRequest) ToDomain() (domain.Event, error) {
	switch r.Kind {
	case domain.EventSale:
		var p SaleEventRequest
		if err := decodeStrict(r.Event, &p); err != nil {
			return nil, err
		}
		return domain.SaleEvent{
			EventMeta:     p.toDomain(),
			InvoiceID:     p.InvoiceID,
			InvoiceNumber: p.InvoiceNumber,
			ClientID:      p.ClientID,
			Subtotal:      p.Subtotal,
			Tax:           p.Tax,
			CostOfGoods:   p.CostOfGoods,
		}, nil
	case domain.EventReceipt:
		var p ReceiptEventRequest
		if err := decodeStrict(r.Event, &p); err != nil {
			return nil, err
		}
		return domain.ReceiptEvent{
			EventMeta:        p.toDomain(),
			PaymentID:        p.PaymentID,
			InvoiceID:        p.InvoiceID,
			InvoiceNumber:    p.InvoiceNumber,
			PaymentReference: p.PaymentReference,
			ClientID:         p.ClientID,
			Amount:           p.Amount,
		}, nil
	case domain.EventExpense:
		var p ExpenseEventRequest
		if err := decodeStrict(r.Event, &p); err != nil {
			return nil, err
		}
		return domain.ExpenseEvent{
			EventMeta:     p.toDomain(),
			ExpenseID:     p.ExpenseID,
			ExpenseNumber: p.ExpenseNumber,
			AccountCode:   p.AccountCode,
			Vendor:        p.Vendor,
			Amount:        p.Amount,
			Tax:           p.Tax,
			Paid:          p.Paid,
		}, nil
	case domain.EventCreditNote:
		var p CreditNoteEventRequest
		if err := decodeStrict(r.Event, &p); err != nil {
			return nil, err
		}
		return domain.CreditNoteEvent{
			EventMeta:        p.toDomain(),
			CreditNoteID:     p.CreditNoteID,
			CreditNoteNumber: p.CreditNoteNumber,
			InvoiceID:        p.InvoiceID,
			ClientID:         p.ClientID,
			Subtotal:         p.Subtotal,
			Tax:              p.Tax,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported event kind %q", apperrors.ErrValidation, r.Kind)
	}
}

func decodeStrict(raw json.RawMessage, into any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("%w: invalid event payload: %v", apperrors.ErrValidation, err)
	}
	return nil
}
