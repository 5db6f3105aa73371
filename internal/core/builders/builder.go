// Package builders turns business events into balanced transaction drafts.
// Builders are pure: they read the chart snapshot and the converter, and never
// touch storage.
package builders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/accounting"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var ErrUnsupportedEvent = errors.New("unsupported event kind")

// Builder produces drafts for every event kind.
type Builder struct {
	chart     *accounting.Chart
	converter *accounting.Converter
	validate  *validator.Validate
}

// New creates a Builder.
func New(chart *accounting.Chart, converter *accounting.Converter) *Builder {
	return &Builder{
		chart:     chart,
		converter: converter,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Build dispatches on the event kind. actor is recorded on the draft.
func (b *Builder) Build(ev domain.Event, actor string) (*domain.TransactionDraft, error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: nil event", apperrors.ErrValidation)
	}
	switch e := ev.(type) {
	case domain.SaleEvent:
		return b.Sale(e, actor)
	case domain.ReceiptEvent:
		return b.Receipt(e, actor)
	case domain.ExpenseEvent:
		return b.Expense(e, actor)
	case domain.CreditNoteEvent:
		return b.CreditNote(e, actor)
	case domain.PayrollEvent:
		return b.Payroll(e, actor)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, ev.Kind())
	}
}

// draftBuilder accumulates lines for one event against a single chart
// snapshot and conversion rate.
type draftBuilder struct {
	snap  *accounting.ChartSnapshot
	conv  *accounting.Converter
	from  string
	rate  decimal.Decimal
	lines []domain.JournalLine
}

func (b *Builder) begin(ev domain.Event, actor string) (*draftBuilder, error) {
	if actor == "" {
		return nil, fmt.Errorf("%w: actor is required", apperrors.ErrValidation)
	}
	if err := b.validate.Struct(ev); err != nil {
		return nil, fmt.Errorf("%w: %s event: %v", apperrors.ErrValidation, ev.Kind(), err)
	}
	meta := ev.Meta()
	rate, err := b.converter.ResolveRate(meta.Currency, meta.ExchangeRate)
	if err != nil {
		return nil, err
	}
	return &draftBuilder{
		snap: b.chart.Snapshot(),
		conv: b.converter,
		from: strings.ToUpper(meta.Currency),
		rate: rate,
	}, nil
}

// convert turns a major-unit event amount into base minor units.
func (d *draftBuilder) convert(amount decimal.Decimal) domain.Amount {
	return d.conv.ToBase(amount, d.rate)
}

// convertMinor turns a minor-unit amount of the event currency into base minor
// units.
func (d *draftBuilder) convertMinor(amount domain.Amount) (domain.Amount, error) {
	return d.conv.MinorToBase(amount, d.from, d.rate)
}

func (d *draftBuilder) debit(code string, amount domain.Amount, memo string) error {
	return d.add(code, amount, 0, memo)
}

func (d *draftBuilder) credit(code string, amount domain.Amount, memo string) error {
	return d.add(code, 0, amount, memo)
}

func (d *draftBuilder) add(code string, debit, credit domain.Amount, memo string) error {
	acc, err := d.snap.Resolve(code)
	if err != nil {
		return err
	}
	d.lines = append(d.lines, domain.JournalLine{
		AccountCode: acc.Code,
		AccountName: acc.Name,
		Debit:       debit,
		Credit:      credit,
		Memo:        memo,
	})
	return nil
}

// finish assembles the draft and runs the invariant validator over it.
func (d *draftBuilder) finish(ev domain.Event, actor, reference, description string, original decimal.Decimal, source domain.SourceRef) (*domain.TransactionDraft, error) {
	meta := ev.Meta()
	if d.conv.NeedsNote(d.from) {
		description = strings.TrimSpace(description + " " + accounting.ConversionNote(original, d.from, d.rate))
	}
	source.EventKind = ev.Kind()
	source.EventID = ev.SourceID()

	draft := &domain.TransactionDraft{
		Date:            meta.Date,
		ReferenceNumber: reference,
		Description:     description,
		Currency:        d.conv.Base().Code,
		Type:            ev.TransactionType(),
		Lines:           d.lines,
		Source:          source,
		Actor:           actor,
	}
	if err := accounting.Validate(draft, d.snap, d.conv.Base().Code); err != nil {
		return nil, err
	}
	return draft, nil
}

func requirePositive(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return fmt.Errorf("%w: %s must be positive, got %s", apperrors.ErrValidation, field, v)
	}
	return nil
}

func requireNonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative, got %s", apperrors.ErrValidation, field, v)
	}
	return nil
}

func describe(custom, fallback string) string {
	if s := strings.TrimSpace(custom); s != "" {
		return s
	}
	return fallback
}
