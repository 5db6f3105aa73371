package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
)

// LedgerReader defines read operations over posted transactions.
type LedgerReader interface {
	// FindTransactionByID returns the transaction with its lines and derived status.
	FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)

	// FindTransactionBySource looks up the posting for an idempotency key.
	// Returns apperrors.ErrNotFound when the event has not been posted.
	FindTransactionBySource(ctx context.Context, txType domain.TransactionType, sourceEventID string) (*domain.Transaction, error)

	// ListTransactions returns transactions ordered by date, creation time and id,
	// newest first. A zero Limit returns every match.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)

	// TrialBalance sums debits and credits per account for transactions dated on
	// or before asOf.
	TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// AccountBalance returns the running normal-side balance of an account.
	AccountBalance(ctx context.Context, code string) (domain.Amount, error)
}

// LedgerWriter is the single mutation path of the ledger.
type LedgerWriter interface {
	// InsertTransaction persists the transaction and applies balance changes
	// atomically. If a transaction with the same (type, source event id) already
	// exists, nothing is written and the existing one is returned with
	// created=false.
	InsertTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]domain.Amount) (stored *domain.Transaction, created bool, err error)
}

// LedgerRepositoryFacade combines all ledger repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
