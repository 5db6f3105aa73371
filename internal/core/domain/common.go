package domain

import "time"

// AuditFields holds standard audit information for domain entities.
// Ledger rows are append-only, so only the creation pair is tracked.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}
