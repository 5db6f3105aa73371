package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

type PgxReconciliationRepository struct {
	BaseRepository
}

func newPgxReconciliationRepository(pool *pgxpool.Pool) *PgxReconciliationRepository {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

func (r *PgxReconciliationRepository) CreateSession(ctx context.Context, session domain.ReconciliationSession, lines []domain.BankStatementLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx, `
		INSERT INTO reconciliation_sessions (id, bank_account_code, period_start, period_end, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		session.ID, session.BankAccountCode, session.PeriodStart, session.PeriodEnd, session.CreatedAt, session.CreatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reconciliation session %s", apperrors.ErrDuplicate, session.ID)
		}
		return apperrors.NewAppError(500, "failed to insert reconciliation session", err)
	}

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(`
			INSERT INTO bank_statement_lines (id, session_id, position, line_date, description, amount)
			VALUES ($1, $2, $3, $4, $5, $6);`,
			l.ID, session.ID, l.Position, l.Date, l.Description, int64(l.Amount))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert statement lines", err)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxReconciliationRepository) FindSessionByID(ctx context.Context, id string) (*domain.ReconciliationSession, error) {
	var s domain.ReconciliationSession
	err := r.Pool.QueryRow(ctx, `
		SELECT id, bank_account_code, period_start, period_end, created_at, created_by
		FROM reconciliation_sessions
		WHERE id = $1;`, id).Scan(&s.ID, &s.BankAccountCode, &s.PeriodStart, &s.PeriodEnd, &s.CreatedAt, &s.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: reconciliation session %s", apperrors.ErrNotFound, id)
		}
		return nil, apperrors.NewAppError(500, "failed to find reconciliation session "+id, err)
	}
	return &s, nil
}

// ListLines derives each line's status from the matches and deferrals tables.
func (r *PgxReconciliationRepository) ListLines(ctx context.Context, sessionID string) ([]domain.BankStatementLine, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT l.id, l.session_id, l.position, l.line_date, l.description, l.amount,
		       m.id IS NOT NULL, d.line_id IS NOT NULL, COALESCE(d.reason, '')
		FROM bank_statement_lines l
		LEFT JOIN reconciliation_matches m ON m.line_id = l.id
		LEFT JOIN line_deferrals d ON d.line_id = l.id
		WHERE l.session_id = $1
		ORDER BY l.position;`, sessionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query statement lines", err)
	}
	defer rows.Close()

	lines := []domain.BankStatementLine{}
	for rows.Next() {
		var (
			l                 domain.BankStatementLine
			amount            int64
			matched, deferred bool
		)
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Position, &l.Date, &l.Description, &amount,
			&matched, &deferred, &l.DeferredReason); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan statement line", err)
		}
		l.Amount = domain.Amount(amount)
		switch {
		case matched:
			l.Status = domain.LineMatched
			l.DeferredReason = ""
		case deferred:
			l.Status = domain.LineDeferred
		default:
			l.Status = domain.LineUnmatched
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating statement lines", err)
	}
	return lines, nil
}

func (r *PgxReconciliationRepository) ListMatches(ctx context.Context, sessionID string) ([]domain.ReconciliationMatch, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, session_id, line_id, transaction_id, difference, confirmed_by, confirmed_at
		FROM reconciliation_matches
		WHERE session_id = $1
		ORDER BY confirmed_at, id;`, sessionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query matches", err)
	}
	defer rows.Close()

	matches := []domain.ReconciliationMatch{}
	for rows.Next() {
		var (
			m    domain.ReconciliationMatch
			diff int64
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.LineID, &m.TransactionID, &diff, &m.ConfirmedBy, &m.ConfirmedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan match row", err)
		}
		m.Difference = domain.Amount(diff)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating match rows", err)
	}
	return matches, nil
}

func (r *PgxReconciliationRepository) MatchedTransactionIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.Pool.Query(ctx, `SELECT transaction_id FROM reconciliation_matches;`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query matched transactions", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan matched transaction", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating matched transactions", err)
	}
	return ids, nil
}

// ConfirmMatch locks the line row, so a concurrent deferral waits, and relies
// on the unique indexes on line_id and transaction_id to reject the loser of a
// race.
func (r *PgxReconciliationRepository) ConfirmMatch(ctx context.Context, match domain.ReconciliationMatch) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	deferred, err := r.lockLine(ctx, tx, match.SessionID, match.LineID)
	if err != nil {
		return err
	}
	if deferred {
		return fmt.Errorf("%w: statement line %s is deferred", apperrors.ErrConflict, match.LineID)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reconciliation_matches (id, session_id, line_id, transaction_id, difference, confirmed_by, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		match.ID, match.SessionID, match.LineID, match.TransactionID, int64(match.Difference), match.ConfirmedBy, match.ConfirmedAt)
	if err != nil {
		code, constraint := pgErrorCode(err)
		switch {
		case code == pgUniqueViolation && constraint == "uq_reconciliation_matches_transaction":
			return fmt.Errorf("%w: transaction %s is already matched", apperrors.ErrConflict, match.TransactionID)
		case code == pgUniqueViolation:
			return fmt.Errorf("%w: statement line %s is already matched", apperrors.ErrConflict, match.LineID)
		case code == pgForeignKeyViolation:
			return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, match.TransactionID)
		}
		return apperrors.NewAppError(500, "failed to insert match", err)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxReconciliationRepository) DeferLine(ctx context.Context, sessionID, lineID, reason, actor string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := r.lockLine(ctx, tx, sessionID, lineID); err != nil {
		return err
	}
	var matched bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reconciliation_matches WHERE line_id = $1);`, lineID).Scan(&matched); err != nil {
		return apperrors.NewAppError(500, "failed to check match for line "+lineID, err)
	}
	if matched {
		return fmt.Errorf("%w: statement line %s is already matched", apperrors.ErrConflict, lineID)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO line_deferrals (line_id, reason, deferred_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (line_id) DO UPDATE SET reason = EXCLUDED.reason, deferred_by = EXCLUDED.deferred_by, deferred_at = NOW();`,
		lineID, reason, actor)
	if err != nil {
		return apperrors.NewAppError(500, "failed to defer line "+lineID, err)
	}
	return r.Commit(ctx, tx)
}

// lockLine takes a row lock on a statement line of the session and reports
// whether it is deferred.
func (r *PgxReconciliationRepository) lockLine(ctx context.Context, tx pgx.Tx, sessionID, lineID string) (bool, error) {
	var deferred bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM line_deferrals d WHERE d.line_id = l.id)
		FROM bank_statement_lines l
		WHERE l.id = $1 AND l.session_id = $2
		FOR UPDATE OF l;`, lineID, sessionID).Scan(&deferred)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("%w: statement line %s", apperrors.ErrNotFound, lineID)
		}
		return false, apperrors.NewAppError(500, "failed to lock statement line "+lineID, err)
	}
	return deferred, nil
}
