package services

import "github.com/SscSPs/smb_ledger/internal/core/domain"

type severityKey struct {
	action domain.AuditAction
	entity domain.EntityType
}

// SeverityTable classifies audit entries. Specific (action, entity) overrides
// win; otherwise the action decides, with financial entities ranked higher.
type SeverityTable struct {
	overrides map[severityKey]domain.Severity
}

var financialEntities = map[domain.EntityType]bool{
	domain.EntityTransaction:         true,
	domain.EntityPayrollRun:          true,
	domain.EntityInvoice:             true,
	domain.EntityExpense:             true,
	domain.EntityPayment:             true,
	domain.EntityCreditNote:          true,
	domain.EntityReconciliationMatch: true,
}

// DefaultSeverityTable returns the compliance classification in use.
func DefaultSeverityTable() *SeverityTable {
	return &SeverityTable{overrides: map[severityKey]domain.Severity{
		{domain.ActionUpdated, domain.EntityAccount}:    domain.SeverityHigh,
		{domain.ActionCreated, domain.EntityPayrollRun}: domain.SeverityHigh,
		{domain.ActionMerged, domain.EntityClient}:      domain.SeverityHigh,
	}}
}

// WithOverride returns a copy of the table with one extra rule.
func (t *SeverityTable) WithOverride(action domain.AuditAction, entity domain.EntityType, sev domain.Severity) *SeverityTable {
	next := &SeverityTable{overrides: make(map[severityKey]domain.Severity, len(t.overrides)+1)}
	for k, v := range t.overrides {
		next.overrides[k] = v
	}
	next.overrides[severityKey{action, entity}] = sev
	return next
}

// Classify returns the severity of an action on an entity type.
func (t *SeverityTable) Classify(action domain.AuditAction, entity domain.EntityType) domain.Severity {
	if sev, ok := t.overrides[severityKey{action, entity}]; ok {
		return sev
	}
	switch action {
	case domain.ActionDeleted, domain.ActionWrittenOff:
		return domain.SeverityCritical
	case domain.ActionApproved, domain.ActionPaid, domain.ActionPosted, domain.ActionVoided, domain.ActionMatched:
		if financialEntities[entity] {
			return domain.SeverityHigh
		}
		return domain.SeverityMedium
	case domain.ActionCreated, domain.ActionUpdated:
		return domain.SeverityMedium
	}
	return domain.SeverityLow
}
