package builders

import (
	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// Sale books an invoice: Dr receivable for the gross, Cr revenue for the net
// and Cr tax payable for the tax. Cost of goods, when present, also moves
// inventory into COGS. Each component is converted on its own and the
// receivable is the sum of the converted parts.
func (b *Builder) Sale(ev domain.SaleEvent, actor string) (*domain.TransactionDraft, error) {
	if err := requirePositive("subtotal", ev.Subtotal); err != nil {
		return nil, err
	}
	if err := requireNonNegative("tax", ev.Tax); err != nil {
		return nil, err
	}
	if ev.CostOfGoods != nil {
		if err := requireNonNegative("costOfGoods", *ev.CostOfGoods); err != nil {
			return nil, err
		}
	}

	d, err := b.begin(ev, actor)
	if err != nil {
		return nil, err
	}

	revenue := d.convert(ev.Subtotal)
	tax := d.convert(ev.Tax)

	if err := d.debit(domain.AccountReceivable, revenue+tax, "Invoice "+ev.InvoiceNumber); err != nil {
		return nil, err
	}
	if err := d.credit(domain.AccountSalesRevenue, revenue, ""); err != nil {
		return nil, err
	}
	if tax > 0 {
		if err := d.credit(domain.AccountTaxPayable, tax, "Output tax"); err != nil {
			return nil, err
		}
	}
	if ev.CostOfGoods != nil {
		if cost := d.convert(*ev.CostOfGoods); cost > 0 {
			if err := d.debit(domain.AccountCostOfGoodsSold, cost, ""); err != nil {
				return nil, err
			}
			if err := d.credit(domain.AccountInventory, cost, ""); err != nil {
				return nil, err
			}
		}
	}

	return d.finish(ev, actor,
		"INV-"+ev.InvoiceNumber,
		describe(ev.Description, "Sale - invoice "+ev.InvoiceNumber),
		ev.Subtotal.Add(ev.Tax),
		domain.SourceRef{InvoiceID: ev.InvoiceID, ClientID: ev.ClientID},
	)
}
