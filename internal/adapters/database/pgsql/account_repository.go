package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// SeedAccounts inserts the accounts whose codes are not yet present.
func (r *PgxAccountRepository) SeedAccounts(ctx context.Context, accounts []domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, a := range accounts {
		batch.Queue(`
			INSERT INTO accounts (code, name, type, contra)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (code) DO NOTHING;`,
			a.Code, a.Name, string(a.Type), a.Contra)
	}
	if err := r.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to seed chart of accounts", err)
	}
	return nil
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT code, name, type, contra FROM accounts ORDER BY code;`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list accounts", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var (
			a       domain.Account
			accType string
		)
		if err := rows.Scan(&a.Code, &a.Name, &accType, &a.Contra); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		a.Type = domain.AccountType(accType)
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return accounts, nil
}
