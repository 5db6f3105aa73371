package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

// PgxAuditRepository appends to audit_entries. The table has no update or
// delete path. Snapshots are stored as json, not jsonb, because the chain
// hash covers their exact bytes.
type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// AppendEntry inserts the entry. A repeated id is ErrDuplicate; a
// previous_hash that is no longer the chain head is ErrConflict.
func (r *PgxAuditRepository) AppendEntry(ctx context.Context, e domain.AuditEntry) error {
	tag, err := r.Pool.Exec(ctx, `
		INSERT INTO audit_entries (
			id, actor, action, entity_type, entity_id, before_state, after_state,
			severity, recorded_at, previous_hash, hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING;`,
		e.ID, e.Actor, string(e.Action), string(e.EntityType), e.EntityID,
		jsonOrNil(e.Before), jsonOrNil(e.After),
		string(e.Severity), e.Timestamp, e.PreviousHash, e.Hash)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: audit chain head moved past %q", apperrors.ErrConflict, e.PreviousHash)
		}
		return apperrors.NewAppError(500, "failed to append audit entry", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: audit entry %s", apperrors.ErrDuplicate, e.ID)
	}
	return nil
}

// ListEntries returns the newest Limit matching entries, oldest first.
func (r *PgxAuditRepository) ListEntries(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	if filter.EntityType != "" {
		args = append(args, string(filter.EntityType))
		where = append(where, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		where = append(where, fmt.Sprintf("entity_id = $%d", len(args)))
	}
	inner := `
		SELECT sequence, id, actor, action, entity_type, entity_id, before_state, after_state,
		       severity, recorded_at, previous_hash, hash
		FROM audit_entries`
	if len(where) > 0 {
		inner += " WHERE " + strings.Join(where, " AND ")
	}
	inner += " ORDER BY sequence DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		inner += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	query := "SELECT * FROM (" + inner + ") newest ORDER BY sequence ASC;"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query audit entries", err)
	}
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		var (
			e                            domain.AuditEntry
			action, entityType, severity string
			before, after                []byte
		)
		if err := rows.Scan(&e.Sequence, &e.ID, &e.Actor, &action, &entityType, &e.EntityID,
			&before, &after, &severity, &e.Timestamp, &e.PreviousHash, &e.Hash); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan audit entry", err)
		}
		e.Action = domain.AuditAction(action)
		e.EntityType = domain.EntityType(entityType)
		e.Severity = domain.Severity(severity)
		e.Before = before
		e.After = after
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating audit entries", err)
	}
	return entries, nil
}

func (r *PgxAuditRepository) LastHash(ctx context.Context) (string, error) {
	var hash string
	err := r.Pool.QueryRow(ctx, `SELECT hash FROM audit_entries ORDER BY sequence DESC LIMIT 1;`).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to read audit chain head", err)
	}
	return hash, nil
}

func jsonOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
