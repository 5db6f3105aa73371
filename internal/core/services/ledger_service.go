package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/builders"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
)

// ErrReverseReversal is returned when voiding a transaction that is itself a
// reversal.
var ErrReverseReversal = errors.New("a reversal cannot be voided")

// ledgerService connects business events to the ledger store.
type ledgerService struct {
	BaseService
	builder *builders.Builder
	store   *LedgerStore
	repo    portsrepo.LedgerReader
	audit   *AuditRecorder
	base    domain.Currency
	now     func() time.Time
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(builder *builders.Builder, store *LedgerStore, repo portsrepo.LedgerReader, audit *AuditRecorder, base domain.Currency) portssvc.LedgerSvcFacade {
	return &ledgerService{
		builder: builder,
		store:   store,
		repo:    repo,
		audit:   audit,
		base:    base,
		now:     time.Now,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) BaseCurrency() domain.Currency {
	return s.base
}

// PostEvent checks for an existing posting before building. A retried event
// therefore returns the stored transaction even if the chart or the rate has
// changed since; the store's unique key covers the race between two first
// attempts.
func (s *ledgerService) PostEvent(ctx context.Context, ev domain.Event, actor string) (*domain.Transaction, bool, error) {
	if ev == nil {
		return nil, false, fmt.Errorf("%w: event is required", apperrors.ErrValidation)
	}
	if ev.SourceID() == "" {
		return nil, false, fmt.Errorf("%w: %s event has no source id", apperrors.ErrValidation, ev.Kind())
	}
	logger := s.GetLogger(ctx).With(
		slog.String("event_kind", string(ev.Kind())),
		slog.String("source_event_id", ev.SourceID()),
	)

	existing, err := s.repo.FindTransactionBySource(ctx, ev.TransactionType(), ev.SourceID())
	switch {
	case err == nil:
		logger.Info("Event already posted", slog.String("transaction_id", existing.ID))
		return existing, false, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		logger.Error("Failed to check for existing posting", slog.String("error", err.Error()))
		return nil, false, err
	}

	draft, err := s.builder.Build(ev, actor)
	if err != nil {
		logger.Warn("Failed to build transaction", slog.String("error", err.Error()))
		return nil, false, err
	}

	txn, created, err := s.store.Post(ctx, draft)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.audit.Record(ctx, AuditRecord{
			Actor:      actor,
			Action:     domain.ActionPosted,
			EntityType: domain.EntityTransaction,
			EntityID:   txn.ID,
			After:      txn,
		})
	}
	return txn, created, nil
}

func (s *ledgerService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to get transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	return txn, nil
}

// VoidTransaction posts a reversing adjustment with every line swapped. The
// original row is never modified; its void status is derived from the
// reversal.
func (s *ledgerService) VoidTransaction(ctx context.Context, transactionID, reason, actor string) (*domain.Transaction, bool, error) {
	if err := requireActor(actor); err != nil {
		return nil, false, err
	}
	if reason == "" {
		return nil, false, fmt.Errorf("%w: a reason is required to void a transaction", apperrors.ErrValidation)
	}

	original, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, false, err
	}
	if original.IsReversal() {
		return nil, false, fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrReverseReversal, original.ID)
	}
	if original.ReversedByID != nil {
		reversal, err := s.GetTransaction(ctx, *original.ReversedByID)
		if err != nil {
			return nil, false, err
		}
		return reversal, false, nil
	}

	lines := make([]domain.JournalLine, len(original.Lines))
	for i, l := range original.Lines {
		memo := "Reversal"
		if l.Memo != "" {
			memo += ": " + l.Memo
		}
		lines[i] = domain.JournalLine{
			AccountCode: l.AccountCode,
			Debit:       l.Credit,
			Credit:      l.Debit,
			Memo:        memo,
		}
	}
	originalID := original.ID
	draft := &domain.TransactionDraft{
		Date:            s.now().UTC().Truncate(24 * time.Hour),
		ReferenceNumber: "VOID-" + original.ReferenceNumber,
		Description:     fmt.Sprintf("Void of %s: %s", original.ReferenceNumber, reason),
		Currency:        original.Currency,
		Type:            domain.TransactionTypeAdjustment,
		Lines:           lines,
		Source: domain.SourceRef{
			EventKind:    domain.EventVoid,
			EventID:      "void:" + original.ID,
			InvoiceID:    original.Source.InvoiceID,
			ExpenseID:    original.Source.ExpenseID,
			ClientID:     original.Source.ClientID,
			PaymentID:    original.Source.PaymentID,
			CreditNoteID: original.Source.CreditNoteID,
			PayrollRunID: original.Source.PayrollRunID,
		},
		ReversesID: &originalID,
		Actor:      actor,
	}

	reversal, created, err := s.store.Post(ctx, draft)
	if err != nil {
		return nil, false, err
	}
	if created {
		voided := *original
		voided.Status = domain.StatusVoid
		voided.ReversedByID = &reversal.ID
		s.audit.Record(ctx, AuditRecord{
			Actor:      actor,
			Action:     domain.ActionVoided,
			EntityType: domain.EntityTransaction,
			EntityID:   original.ID,
			Before:     original,
			After:      &voided,
		})
	}
	return reversal, created, nil
}
