package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

// PgxLedgerRepository stores transactions, their journal lines and the running
// account balances.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const transactionColumns = `
	t.id, t.transaction_date, t.reference_number, t.description, t.currency, t.total_amount,
	t.transaction_type, t.source_event_kind, t.source_event_id, t.invoice_id, t.expense_id,
	t.client_id, t.payment_id, t.credit_note_id, t.payroll_run_id, t.reverses_id,
	t.created_at, t.created_by, rev.id`

const transactionFrom = `
	FROM transactions t
	LEFT JOIN transactions rev ON rev.reverses_id = t.id`

// InsertTransaction writes the header, the lines and the balance deltas in one
// database transaction. The (type, source event id) constraint makes a replay
// insert nothing, in which case the stored transaction is returned.
func (r *PgxLedgerRepository) InsertTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]domain.Amount) (*domain.Transaction, bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer r.Rollback(ctx, tx)

	insertHeader := `
		INSERT INTO transactions (
			id, transaction_date, reference_number, description, currency, total_amount,
			transaction_type, source_event_kind, source_event_id, invoice_id, expense_id,
			client_id, payment_id, credit_note_id, payroll_run_id, reverses_id,
			created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (transaction_type, source_event_id) DO NOTHING
		RETURNING id;
	`
	src := txn.Source
	var insertedID string
	err = tx.QueryRow(ctx, insertHeader,
		txn.ID, txn.Date, txn.ReferenceNumber, txn.Description, txn.Currency, int64(txn.TotalAmount),
		string(txn.Type), string(src.EventKind), src.EventID,
		nullIfEmpty(src.InvoiceID), nullIfEmpty(src.ExpenseID), nullIfEmpty(src.ClientID),
		nullIfEmpty(src.PaymentID), nullIfEmpty(src.CreditNoteID), nullIfEmpty(src.PayrollRunID),
		txn.ReversesID, txn.CreatedAt, txn.CreatedBy,
	).Scan(&insertedID)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = r.Rollback(ctx, tx)
		existing, ferr := r.FindTransactionBySource(ctx, txn.Type, src.EventID)
		if ferr != nil {
			return nil, false, ferr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, mapInsertError(err, txn)
	}

	lines := &pgx.Batch{}
	for i, l := range txn.Lines {
		lines.Queue(`
			INSERT INTO journal_lines (transaction_id, line_no, account_code, account_name, debit, credit, memo)
			VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			txn.ID, i+1, l.AccountCode, l.AccountName, int64(l.Debit), int64(l.Credit), l.Memo)
	}
	if err := tx.SendBatch(ctx, lines).Close(); err != nil {
		return nil, false, apperrors.NewAppError(500, "failed to insert journal lines for transaction "+txn.ID, err)
	}

	if err := r.applyBalanceChanges(ctx, tx, balanceChanges, txn.CreatedAt); err != nil {
		return nil, false, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, false, err
	}

	stored := txn
	stored.Lines = append([]domain.JournalLine(nil), txn.Lines...)
	stored.Status = domain.StatusPosted
	stored.ReversedByID = nil
	return &stored, true, nil
}

func mapInsertError(err error, txn domain.Transaction) error {
	code, constraint := pgErrorCode(err)
	switch {
	case code == pgUniqueViolation && constraint == "uq_transactions_reverses_id":
		return fmt.Errorf("%w: transaction %s is already reversed", apperrors.ErrConflict, deref(txn.ReversesID))
	case code == pgUniqueViolation:
		return fmt.Errorf("%w: transaction id %s", apperrors.ErrDuplicate, txn.ID)
	case code == pgForeignKeyViolation:
		return fmt.Errorf("%w: reversed transaction %s", apperrors.ErrNotFound, deref(txn.ReversesID))
	}
	return apperrors.NewAppError(500, "failed to insert transaction "+txn.ID, err)
}

// applyBalanceChanges locks the affected balance rows in code order, so two
// postings touching the same accounts queue instead of deadlocking.
func (r *PgxLedgerRepository) applyBalanceChanges(ctx context.Context, tx pgx.Tx, changes map[string]domain.Amount, now time.Time) error {
	if len(changes) == 0 {
		return nil
	}
	codes := make([]string, 0, len(changes))
	for code := range changes {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	seed := &pgx.Batch{}
	for _, code := range codes {
		seed.Queue(`INSERT INTO account_balances (account_code, balance) VALUES ($1, 0) ON CONFLICT (account_code) DO NOTHING;`, code)
	}
	if err := tx.SendBatch(ctx, seed).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to seed account balances", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT account_code FROM account_balances
		WHERE account_code = ANY($1)
		ORDER BY account_code
		FOR UPDATE;`, codes)
	if err != nil {
		return apperrors.NewAppError(500, "failed to lock account balances", err)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return apperrors.NewAppError(500, "failed to lock account balances", err)
	}

	updates := &pgx.Batch{}
	for _, code := range codes {
		updates.Queue(`UPDATE account_balances SET balance = balance + $2, updated_at = $3 WHERE account_code = $1;`,
			code, int64(changes[code]), now)
	}
	if err := tx.SendBatch(ctx, updates).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances", err)
	}
	return nil
}

func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	txns, err := r.queryTransactions(ctx, `SELECT `+transactionColumns+transactionFrom+` WHERE t.id = $1;`, id)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, id)
	}
	return &txns[0], nil
}

func (r *PgxLedgerRepository) FindTransactionBySource(ctx context.Context, txType domain.TransactionType, sourceEventID string) (*domain.Transaction, error) {
	txns, err := r.queryTransactions(ctx,
		`SELECT `+transactionColumns+transactionFrom+` WHERE t.transaction_type = $1 AND t.source_event_id = $2;`,
		string(txType), sourceEventID)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("%w: no %s posting for event %s", apperrors.ErrNotFound, txType, sourceEventID)
	}
	return &txns[0], nil
}

func (r *PgxLedgerRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.From != nil {
		where = append(where, "t.transaction_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "t.transaction_date <= "+arg(*filter.To))
	}
	if filter.Type != nil {
		where = append(where, "t.transaction_type = "+arg(string(*filter.Type)))
	}
	if filter.AccountCode != "" {
		where = append(where, "EXISTS (SELECT 1 FROM journal_lines jl WHERE jl.transaction_id = t.id AND jl.account_code = "+arg(filter.AccountCode)+")")
	}
	if filter.AfterDate != nil && filter.AfterCreatedAt != nil {
		where = append(where, fmt.Sprintf("(t.transaction_date, t.created_at, t.id) < (%s, %s, %s)",
			arg(*filter.AfterDate), arg(*filter.AfterCreatedAt), arg(filter.AfterID)))
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + transactionColumns + transactionFrom)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY t.transaction_date DESC, t.created_at DESC, t.id DESC")
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(filter.Limit))
	}
	return r.queryTransactions(ctx, sb.String(), args...)
}

// queryTransactions scans headers and then loads the lines of every returned
// transaction in one round trip.
func (r *PgxLedgerRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var (
			t                                            domain.Transaction
			txType, kind                                 string
			total                                        int64
			invoice, expense, client, payment, note, run *string
		)
		if err := rows.Scan(
			&t.ID, &t.Date, &t.ReferenceNumber, &t.Description, &t.Currency, &total,
			&txType, &kind, &t.Source.EventID, &invoice, &expense,
			&client, &payment, &note, &run, &t.ReversesID,
			&t.CreatedAt, &t.CreatedBy, &t.ReversedByID,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		t.Type = domain.TransactionType(txType)
		t.TotalAmount = domain.Amount(total)
		t.Source.EventKind = domain.EventKind(kind)
		t.Source.InvoiceID = deref(invoice)
		t.Source.ExpenseID = deref(expense)
		t.Source.ClientID = deref(client)
		t.Source.PaymentID = deref(payment)
		t.Source.CreditNoteID = deref(note)
		t.Source.PayrollRunID = deref(run)
		t.Status = domain.StatusPosted
		if t.ReversedByID != nil {
			t.Status = domain.StatusVoid
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}
	if len(txns) == 0 {
		return txns, nil
	}

	ids := make([]string, len(txns))
	index := make(map[string]int, len(txns))
	for i, t := range txns {
		ids[i] = t.ID
		index[t.ID] = i
	}
	lineRows, err := r.Pool.Query(ctx, `
		SELECT transaction_id, account_code, account_name, debit, credit, memo
		FROM journal_lines
		WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, line_no;`, ids)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query journal lines", err)
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var (
			txnID         string
			l             domain.JournalLine
			debit, credit int64
		)
		if err := lineRows.Scan(&txnID, &l.AccountCode, &l.AccountName, &debit, &credit, &l.Memo); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal line", err)
		}
		l.Debit = domain.Amount(debit)
		l.Credit = domain.Amount(credit)
		i := index[txnID]
		txns[i].Lines = append(txns[i].Lines, l)
	}
	if err := lineRows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating journal lines", err)
	}
	return txns, nil
}

func (r *PgxLedgerRepository) TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT jl.account_code, MAX(jl.account_name), SUM(jl.debit), SUM(jl.credit)
		FROM journal_lines jl
		JOIN transactions t ON t.id = jl.transaction_id
		WHERE t.transaction_date <= $1
		GROUP BY jl.account_code
		ORDER BY jl.account_code;
	`
	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query trial balance", err)
	}
	defer rows.Close()

	out := []domain.TrialBalanceRow{}
	for rows.Next() {
		var (
			row           domain.TrialBalanceRow
			debit, credit int64
		)
		if err := rows.Scan(&row.AccountCode, &row.AccountName, &debit, &credit); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan trial balance row", err)
		}
		if net := domain.Amount(debit - credit); net >= 0 {
			row.Debit = net
		} else {
			row.Credit = -net
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating trial balance rows", err)
	}
	return out, nil
}

func (r *PgxLedgerRepository) AccountBalance(ctx context.Context, code string) (domain.Amount, error) {
	var balance int64
	err := r.Pool.QueryRow(ctx, `SELECT balance FROM account_balances WHERE account_code = $1;`, code).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to get balance for account "+code, err)
	}
	return domain.Amount(balance), nil
}
