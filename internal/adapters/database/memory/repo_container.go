package memory

import portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"

// NewRepositoryProvider creates a provider backed entirely by memory.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:        NewAccountRepository(),
		LedgerRepo:         NewLedgerRepository(),
		PayrollRepo:        NewPayrollRepository(),
		ReconciliationRepo: NewReconciliationRepository(),
		AuditRepo:          NewAuditRepository(),
	}
}
