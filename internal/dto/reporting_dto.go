package dto

import (
	"time"
)

// TrialBalanceParams defines the query parameters for the trial balance.
type TrialBalanceParams struct {
	AsOf *time.Time `form:"asOf" time_format:"2006-01-02"`
}

// AuditListParams defines the query parameters for the audit log viewer.
type AuditListParams struct {
	EntityType string `form:"entityType"`
	EntityID   string `form:"entityId"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=500"`
}
