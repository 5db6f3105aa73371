package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/smb_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/dto"
	"github.com/SscSPs/smb_ledger/internal/middleware"
)

type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func newAuditHandler(auditService portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{auditService: auditService}
}

// listAuditEntries godoc
// @Summary List audit entries
// @Description Lists the most recent audit entries in chain order, optionally for one entity
// @Tags audit
// @Produce json
// @Param entityType query string false "Entity type" Enums(transaction, payroll_run, invoice, expense, payment, credit_note, account, client, reconciliation_session, reconciliation_match, bank_statement_line)
// @Param entityId query string false "Entity ID"
// @Param limit query int false "Maximum entries" default(100)
// @Success 200 {array} domain.AuditEntry
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /audit/entries [get]
func (h *auditHandler) listAuditEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.AuditListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind audit query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, err := h.auditService.ListEntries(c.Request.Context(), domain.AuditFilter{
		EntityType: domain.EntityType(params.EntityType),
		EntityID:   params.EntityID,
		Limit:      params.Limit,
	})
	if err != nil {
		handleServiceError(c, logger, err, "list audit entries")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// verifyAuditChain godoc
// @Summary Verify the audit chain
// @Description Recomputes every entry hash and reports the first entry that breaks the chain
// @Tags audit
// @Produce json
// @Success 200 {object} domain.ChainVerification
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /audit/verify [get]
func (h *auditHandler) verifyAuditChain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	result, err := h.auditService.VerifyChain(c.Request.Context())
	if err != nil {
		handleServiceError(c, logger, err, "verify audit chain")
		return
	}
	if !result.Valid {
		logger.Error("Audit chain verification failed", slog.String("broken_at", result.BrokenAt), slog.Int("entries", result.Entries))
	}
	c.JSON(http.StatusOK, result)
}

func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)
	audit := rg.Group("/audit")
	{
		audit.GET("/entries", h.listAuditEntries)
		audit.GET("/verify", h.verifyAuditChain)
	}
}
