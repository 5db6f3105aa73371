package builders

import (
	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// Expense books a cost to its designated account, recoverable tax to input
// tax, and the total against cash when paid or payables when not.
func (b *Builder) Expense(ev domain.ExpenseEvent, actor string) (*domain.TransactionDraft, error) {
	if err := requirePositive("amount", ev.Amount); err != nil {
		return nil, err
	}
	if err := requireNonNegative("tax", ev.Tax); err != nil {
		return nil, err
	}
	d, err := b.begin(ev, actor)
	if err != nil {
		return nil, err
	}

	account := ev.AccountCode
	if account == "" {
		account = domain.AccountGeneralAdmin
	}
	amount := d.convert(ev.Amount)
	tax := d.convert(ev.Tax)

	if err := d.debit(account, amount, ev.Vendor); err != nil {
		return nil, err
	}
	if tax > 0 {
		if err := d.debit(domain.AccountInputTax, tax, "Input tax"); err != nil {
			return nil, err
		}
	}
	settle := domain.AccountPayable
	if ev.Paid {
		settle = domain.AccountCashBank
	}
	if err := d.credit(settle, amount+tax, ev.Vendor); err != nil {
		return nil, err
	}

	return d.finish(ev, actor,
		"EXP-"+ev.ExpenseNumber,
		describe(ev.Description, "Expense "+ev.ExpenseNumber),
		ev.Amount.Add(ev.Tax),
		domain.SourceRef{ExpenseID: ev.ExpenseID},
	)
}
