package builders

import (
	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// CreditNote reverses revenue through Sales Returns & Allowances and the
// original output tax, reducing the client's receivable.
func (b *Builder) CreditNote(ev domain.CreditNoteEvent, actor string) (*domain.TransactionDraft, error) {
	if err := requirePositive("subtotal", ev.Subtotal); err != nil {
		return nil, err
	}
	if err := requireNonNegative("tax", ev.Tax); err != nil {
		return nil, err
	}
	d, err := b.begin(ev, actor)
	if err != nil {
		return nil, err
	}

	returns := d.convert(ev.Subtotal)
	tax := d.convert(ev.Tax)

	if err := d.debit(domain.AccountSalesReturns, returns, ""); err != nil {
		return nil, err
	}
	if tax > 0 {
		if err := d.debit(domain.AccountTaxPayable, tax, "Output tax reversal"); err != nil {
			return nil, err
		}
	}
	if err := d.credit(domain.AccountReceivable, returns+tax, "Credit note "+ev.CreditNoteNumber); err != nil {
		return nil, err
	}

	return d.finish(ev, actor,
		"CN-"+ev.CreditNoteNumber,
		describe(ev.Description, "Credit note "+ev.CreditNoteNumber),
		ev.Subtotal.Add(ev.Tax),
		domain.SourceRef{CreditNoteID: ev.CreditNoteID, InvoiceID: ev.InvoiceID, ClientID: ev.ClientID},
	)
}
