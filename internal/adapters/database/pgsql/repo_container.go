package pgsql

import (
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:        newPgxAccountRepository(dbPool),
		LedgerRepo:         newPgxLedgerRepository(dbPool),
		PayrollRepo:        newPgxPayrollRepository(dbPool),
		ReconciliationRepo: newPgxReconciliationRepository(dbPool),
		AuditRepo:          newPgxAuditRepository(dbPool),
	}
}
