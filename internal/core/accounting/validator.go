package accounting

import (
	"sort"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// AccountResolver is satisfied by both Chart and ChartSnapshot.
type AccountResolver interface {
	Resolve(code string) (domain.Account, error)
}

// Validate checks that a draft is postable: it has lines, every line is
// one-sided and positive, every account resolves, the currency is the base
// currency, and debits equal credits exactly in minor units.
func Validate(draft *domain.TransactionDraft, accounts AccountResolver, baseCurrency string) error {
	if draft == nil || len(draft.Lines) == 0 {
		return EmptyDraftError()
	}
	if draft.Currency != baseCurrency {
		return &CurrencyMismatchError{Got: draft.Currency, Want: baseCurrency}
	}

	var debits, credits domain.Amount
	for i, l := range draft.Lines {
		switch {
		case l.Debit < 0 || l.Credit < 0:
			return &MalformedLineError{Index: i, AccountCode: l.AccountCode, Reason: "negative amount"}
		case l.Debit != 0 && l.Credit != 0:
			return &MalformedLineError{Index: i, AccountCode: l.AccountCode, Reason: "both debit and credit set"}
		case l.Debit == 0 && l.Credit == 0:
			return &MalformedLineError{Index: i, AccountCode: l.AccountCode, Reason: "zero amount"}
		}
		if _, err := accounts.Resolve(l.AccountCode); err != nil {
			return err
		}
		debits += l.Debit
		credits += l.Credit
	}

	if debits != credits {
		return &ImbalancedError{
			Debits:     debits,
			Credits:    credits,
			Difference: debits - credits,
			Accounts:   lineAccounts(draft.Lines),
		}
	}
	return nil
}

// BalanceChanges computes the signed normal-side delta each line applies to its
// account.
func BalanceChanges(lines []domain.JournalLine, accounts AccountResolver) (map[string]domain.Amount, error) {
	changes := make(map[string]domain.Amount, len(lines))
	for _, l := range lines {
		acc, err := accounts.Resolve(l.AccountCode)
		if err != nil {
			return nil, err
		}
		changes[l.AccountCode] += acc.SignedChange(l.Debit, l.Credit)
	}
	return changes, nil
}

func lineAccounts(lines []domain.JournalLine) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountCode]; ok {
			continue
		}
		seen[l.AccountCode] = struct{}{}
		out = append(out, l.AccountCode)
	}
	sort.Strings(out)
	return out
}
