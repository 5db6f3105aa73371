package domain

import (
	"encoding/json"
	"time"
)

// AuditAction names what happened to an entity.
type AuditAction string

const (
	ActionCreated    AuditAction = "created"
	ActionUpdated    AuditAction = "updated"
	ActionDeleted    AuditAction = "deleted"
	ActionMerged     AuditAction = "merged"
	ActionPosted     AuditAction = "posted"
	ActionVoided     AuditAction = "voided"
	ActionApproved   AuditAction = "approved"
	ActionPaid       AuditAction = "paid"
	ActionWrittenOff AuditAction = "written_off"
	ActionImported   AuditAction = "imported"
	ActionMatched    AuditAction = "matched"
	ActionDeferred   AuditAction = "deferred"
)

// EntityType names the kind of entity an audit entry documents.
type EntityType string

const (
	EntityTransaction           EntityType = "transaction"
	EntityPayrollRun            EntityType = "payroll_run"
	EntityInvoice               EntityType = "invoice"
	EntityExpense               EntityType = "expense"
	EntityPayment               EntityType = "payment"
	EntityCreditNote            EntityType = "credit_note"
	EntityAccount               EntityType = "account"
	EntityClient                EntityType = "client"
	EntityReconciliationSession EntityType = "reconciliation_session"
	EntityReconciliationMatch   EntityType = "reconciliation_match"
	EntityBankStatementLine     EntityType = "bank_statement_line"
)

// Severity ranks audit entries for compliance review.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AuditEntry is an append-only record of one mutation. Entries are hash
// chained: Hash covers PreviousHash and the entry's own content.
type AuditEntry struct {
	ID           string          `json:"id"`
	Sequence     int64           `json:"sequence"`
	Actor        string          `json:"actor"`
	Action       AuditAction     `json:"action"`
	EntityType   EntityType      `json:"entityType"`
	EntityID     string          `json:"entityId"`
	Before       json.RawMessage `json:"before,omitempty"`
	After        json.RawMessage `json:"after,omitempty"`
	Severity     Severity        `json:"severity"`
	Timestamp    time.Time       `json:"timestamp"`
	PreviousHash string          `json:"previousHash"`
	Hash         string          `json:"hash"`
}

// AuditFilter narrows the audit log viewer.
type AuditFilter struct {
	EntityType EntityType
	EntityID   string
	Limit      int
}

// ChainVerification is the result of walking the audit hash chain.
type ChainVerification struct {
	Entries  int    `json:"entries"`
	Valid    bool   `json:"valid"`
	BrokenAt string `json:"brokenAt,omitempty"`
}
