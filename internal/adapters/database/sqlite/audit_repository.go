// Package sqlite stores the audit trail in a local SQLite file, for
// deployments that keep it apart from the ledger database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

// AuditRepository is an append-only audit sink on SQLite.
type AuditRepository struct {
	db *sql.DB
}

var _ portsrepo.AuditRepositoryFacade = (*AuditRepository)(nil)

// NewAuditRepository opens (or creates) the database at path. Use ":memory:"
// for a throwaway store.
func NewAuditRepository(path string) (*AuditRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	repo := &AuditRepository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate audit database: %w", err)
	}
	return repo, nil
}

// Close closes the database connection.
func (r *AuditRepository) Close() error {
	return r.db.Close()
}

func (r *AuditRepository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_entries (
		sequence INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		before_state TEXT,
		after_state TEXT,
		severity TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		previous_hash TEXT NOT NULL DEFAULT '',
		hash TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_entries_entity
		ON audit_entries(entity_type, entity_id);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_audit_entries_previous_hash
		ON audit_entries(previous_hash);
	`
	_, err := r.db.Exec(schema)
	return err
}

// AppendEntry inserts the entry. A repeated id is ErrDuplicate; a
// previous_hash that is no longer the chain head is ErrConflict.
func (r *AuditRepository) AppendEntry(ctx context.Context, e domain.AuditEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin audit append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM audit_entries WHERE id = ?`, e.ID).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("%w: audit entry %s", apperrors.ErrDuplicate, e.ID)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to check audit entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_entries (
			id, actor, action, entity_type, entity_id, before_state, after_state,
			severity, recorded_at, previous_hash, hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Actor, string(e.Action), string(e.EntityType), e.EntityID,
		nullableText(e.Before), nullableText(e.After),
		string(e.Severity), e.Timestamp.UTC().Format(time.RFC3339Nano), e.PreviousHash, e.Hash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: audit chain head moved past %q", apperrors.ErrConflict, e.PreviousHash)
		}
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit entry: %w", err)
	}
	return nil
}

// ListEntries returns the newest Limit matching entries, oldest first.
func (r *AuditRepository) ListEntries(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	if filter.EntityType != "" {
		where = append(where, "entity_type = ?")
		args = append(args, string(filter.EntityType))
	}
	if filter.EntityID != "" {
		where = append(where, "entity_id = ?")
		args = append(args, filter.EntityID)
	}
	inner := `SELECT sequence, id, actor, action, entity_type, entity_id, before_state, after_state,
		severity, recorded_at, previous_hash, hash FROM audit_entries`
	if len(where) > 0 {
		inner += " WHERE " + strings.Join(where, " AND ")
	}
	inner += " ORDER BY sequence DESC"
	if filter.Limit > 0 {
		inner += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT * FROM ("+inner+") ORDER BY sequence ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		var (
			e                            domain.AuditEntry
			action, entityType, severity string
			before, after                sql.NullString
			recordedAt                   string
		)
		if err := rows.Scan(&e.Sequence, &e.ID, &e.Actor, &action, &entityType, &e.EntityID,
			&before, &after, &severity, &recordedAt, &e.PreviousHash, &e.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("audit entry %s has a malformed timestamp: %w", e.ID, err)
		}
		e.Timestamp = ts.UTC()
		e.Action = domain.AuditAction(action)
		e.EntityType = domain.EntityType(entityType)
		e.Severity = domain.Severity(severity)
		if before.Valid {
			e.Before = []byte(before.String)
		}
		if after.Valid {
			e.After = []byte(after.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *AuditRepository) LastHash(ctx context.Context) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `SELECT hash FROM audit_entries ORDER BY sequence DESC LIMIT 1`).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read audit chain head: %w", err)
	}
	return hash, nil
}

func nullableText(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
