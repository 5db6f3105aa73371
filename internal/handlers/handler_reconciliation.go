package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/dto"
	"github.com/SscSPs/smb_ledger/internal/middleware"
)

type reconciliationHandler struct {
	reconService portssvc.ReconciliationSvcFacade
}

func newReconciliationHandler(reconService portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{reconService: reconService}
}

// importStatement godoc
// @Summary Import a bank statement
// @Description Opens a reconciliation session over already-parsed statement lines
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param request body dto.ImportStatementRequest true "Statement lines"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /reconciliation/sessions [post]
func (h *reconciliationHandler) importStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ImportStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind statement import", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID))

	session, lines, err := h.reconService.ImportStatement(c.Request.Context(), req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "import statement")
		return
	}
	summary, err := h.reconService.Summary(c.Request.Context(), session.ID)
	if err != nil {
		handleServiceError(c, logger, err, "summarise session")
		return
	}
	logger.Info("Statement imported", slog.String("session_id", session.ID), slog.Int("lines", len(lines)))
	c.JSON(http.StatusCreated, dto.SessionResponse{Session: *session, Summary: *summary, Lines: lines})
}

// getSession godoc
// @Summary Get a reconciliation session
// @Description Returns a session with every line's status and the running summary
// @Tags reconciliation
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /reconciliation/sessions/{sessionID} [get]
func (h *reconciliationHandler) getSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("sessionID")
	logger = logger.With(slog.String("session_id", sessionID))

	session, lines, err := h.reconService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, logger, err, "retrieve session")
		return
	}
	summary, err := h.reconService.Summary(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, logger, err, "summarise session")
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{Session: *session, Summary: *summary, Lines: lines})
}

// getCandidates godoc
// @Summary Match candidates for a line
// @Description Ranks unmatched transactions whose amount is within tolerance of the line, closest first
// @Tags reconciliation
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param lineID path string true "Statement line ID"
// @Success 200 {array} domain.MatchCandidate
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Session or line not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /reconciliation/sessions/{sessionID}/lines/{lineID}/candidates [get]
func (h *reconciliationHandler) getCandidates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID, lineID := c.Param("sessionID"), c.Param("lineID")

	candidates, err := h.reconService.Candidates(c.Request.Context(), sessionID, lineID)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("session_id", sessionID), slog.String("line_id", lineID)), err, "find candidates")
		return
	}
	c.JSON(http.StatusOK, candidates)
}

// suggestMatches godoc
// @Summary Suggest matches for a session
// @Description Lists candidates for every unmatched line in the session
// @Tags reconciliation
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {array} domain.LineSuggestion
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /reconciliation/sessions/{sessionID}/suggestions [get]
func (h *reconciliationHandler) suggestMatches(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("sessionID")

	suggestions, err := h.reconService.SuggestAll(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("session_id", sessionID)), err, "suggest matches")
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

// confirmMatch godoc
// @Summary Confirm a match
// @Description Pairs a statement line with a transaction. Fails with 409 if either side was matched in the meantime.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param request body dto.ConfirmMatchRequest true "Line and transaction to pair"
// @Success 201 {object} domain.ReconciliationMatch
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Session, line or transaction not found"
// @Failure 409 {object} map[string]string "Line or transaction already matched"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /reconciliation/sessions/{sessionID}/matches [post]
func (h *reconciliationHandler) confirmMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("sessionID")

	var req dto.ConfirmMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind confirm match request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	logger = logger.With(
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
		slog.String("line_id", req.LineID),
		slog.String("transaction_id", req.TransactionID),
	)

	match, err := h.reconService.ConfirmMatch(c.Request.Context(), sessionID, req.LineID, req.TransactionID, userID)
	if err != nil {
		handleServiceError(c, logger, err, "confirm match")
		return
	}
	c.JSON(http.StatusCreated, match)
}

// deferLine godoc
// @Summary Defer a statement line
// @Description Leaves a line out of this reconciliation with a reason
// @Tags reconciliation
// @Accept json
// @Param sessionID path string true "Session ID"
// @Param lineID path string true "Statement line ID"
// @Param request body dto.DeferLineRequest true "Reason"
// @Success 204 "Line deferred"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Session or line not found"
// @Failure 409 {object} map[string]string "Line already matched"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /reconciliation/sessions/{sessionID}/lines/{lineID}/defer [post]
func (h *reconciliationHandler) deferLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID, lineID := c.Param("sessionID"), c.Param("lineID")

	var req dto.DeferLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind defer request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID), slog.String("session_id", sessionID), slog.String("line_id", lineID))

	if err := h.reconService.DeferLine(c.Request.Context(), sessionID, lineID, req.Reason, userID); err != nil {
		handleServiceError(c, logger, err, "defer line")
		return
	}
	c.Status(http.StatusNoContent)
}

// getSummary godoc
// @Summary Reconciliation summary
// @Description Statement balance, reconciled balance and the outstanding difference for a session
// @Tags reconciliation
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} domain.ReconciliationSummary
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /reconciliation/sessions/{sessionID}/summary [get]
func (h *reconciliationHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("sessionID")

	summary, err := h.reconService.Summary(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("session_id", sessionID)), err, "summarise session")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func registerReconciliationRoutes(rg *gin.RouterGroup, reconService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconService)
	sessions := rg.Group("/reconciliation/sessions")
	{
		sessions.POST("", h.importStatement)
		sessions.GET("/:sessionID", h.getSession)
		sessions.GET("/:sessionID/suggestions", h.suggestMatches)
		sessions.GET("/:sessionID/summary", h.getSummary)
		sessions.POST("/:sessionID/matches", h.confirmMatch)
		sessions.GET("/:sessionID/lines/:lineID/candidates", h.getCandidates)
		sessions.POST("/:sessionID/lines/:lineID/defer", h.deferLine)
	}
}
