package builders

import (
	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// Receipt books cash received against an invoice.
func (b *Builder) Receipt(ev domain.ReceiptEvent, actor string) (*domain.TransactionDraft, error) {
	if err := requirePositive("amount", ev.Amount); err != nil {
		return nil, err
	}
	d, err := b.begin(ev, actor)
	if err != nil {
		return nil, err
	}

	amount := d.convert(ev.Amount)
	if err := d.debit(domain.AccountCashBank, amount, ""); err != nil {
		return nil, err
	}
	if err := d.credit(domain.AccountReceivable, amount, ""); err != nil {
		return nil, err
	}

	ref := ev.PaymentReference
	if ref == "" {
		ref = ev.InvoiceNumber
	}
	if ref == "" {
		ref = ev.PaymentID
	}
	return d.finish(ev, actor,
		"RCT-"+ref,
		describe(ev.Description, "Payment received "+ref),
		ev.Amount,
		domain.SourceRef{InvoiceID: ev.InvoiceID, ClientID: ev.ClientID, PaymentID: ev.PaymentID},
	)
}
