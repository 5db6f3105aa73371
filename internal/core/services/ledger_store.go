package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/accounting"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

// LedgerStore is the only path by which transactions enter the ledger. It
// re-validates every draft against the current chart snapshot, whoever built
// it, and hands the repository a single atomic write.
type LedgerStore struct {
	BaseService
	chart *accounting.Chart
	repo  portsrepo.LedgerWriter
	base  domain.Currency
	now   func() time.Time
}

// NewLedgerStore creates a LedgerStore.
func NewLedgerStore(chart *accounting.Chart, repo portsrepo.LedgerWriter, base domain.Currency) *LedgerStore {
	return &LedgerStore{
		chart: chart,
		repo:  repo,
		base:  base,
		now:   time.Now,
	}
}

// Post commits a draft. If the (type, source event id) pair is already in the
// ledger the stored transaction is returned with created=false and nothing is
// written.
func (s *LedgerStore) Post(ctx context.Context, draft *domain.TransactionDraft) (*domain.Transaction, bool, error) {
	if draft == nil {
		return nil, false, accounting.EmptyDraftError()
	}
	logger := s.GetLogger(ctx).With(
		slog.String("transaction_type", string(draft.Type)),
		slog.String("source_event_id", draft.Source.EventID),
	)

	if !draft.Type.Valid() {
		return nil, false, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, draft.Type)
	}
	if draft.Source.EventID == "" {
		return nil, false, fmt.Errorf("%w: source event id is required", apperrors.ErrValidation)
	}
	if draft.Actor == "" {
		return nil, false, fmt.Errorf("%w: actor is required", apperrors.ErrValidation)
	}

	snap := s.chart.Snapshot()
	if err := accounting.Validate(draft, snap, s.base.Code); err != nil {
		var imbalanced *accounting.ImbalancedError
		if errors.As(err, &imbalanced) {
			logger.Warn("Rejected unbalanced posting",
				slog.Int64("debits", int64(imbalanced.Debits)),
				slog.Int64("credits", int64(imbalanced.Credits)),
				slog.Int64("difference", int64(imbalanced.Difference)),
				slog.Any("accounts", imbalanced.Accounts))
		} else {
			logger.Warn("Rejected posting", slog.String("error", err.Error()))
		}
		return nil, false, err
	}

	changes, err := accounting.BalanceChanges(draft.Lines, snap)
	if err != nil {
		return nil, false, err
	}

	lines := make([]domain.JournalLine, len(draft.Lines))
	for i, l := range draft.Lines {
		acc, _ := snap.Resolve(l.AccountCode)
		l.AccountName = acc.Name
		lines[i] = l
	}
	debits, _ := draft.Totals()

	txn := domain.Transaction{
		ID:              uuid.NewString(),
		Date:            draft.Date.UTC().Truncate(24 * time.Hour),
		ReferenceNumber: draft.ReferenceNumber,
		Description:     draft.Description,
		Currency:        draft.Currency,
		TotalAmount:     debits,
		Type:            draft.Type,
		Lines:           lines,
		Status:          domain.StatusPosted,
		Source:          draft.Source,
		ReversesID:      draft.ReversesID,
		AuditFields: domain.AuditFields{
			CreatedAt: s.now().UTC().Truncate(time.Microsecond),
			CreatedBy: draft.Actor,
		},
	}

	stored, created, err := s.repo.InsertTransaction(ctx, txn, changes)
	if err != nil {
		logger.Error("Failed to persist transaction", slog.String("error", err.Error()))
		return nil, false, err
	}
	if !created {
		logger.Info("Event already posted", slog.String("transaction_id", stored.ID))
		return stored, false, nil
	}
	logger.Info("Transaction posted",
		slog.String("transaction_id", stored.ID),
		slog.String("reference", stored.ReferenceNumber),
		slog.Int64("total", int64(stored.TotalAmount)))
	return stored, true, nil
}
