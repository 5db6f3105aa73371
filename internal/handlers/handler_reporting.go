package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/dto"
	"github.com/SscSPs/smb_ledger/internal/middleware"
)

type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(reportingService portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: reportingService}
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists posted transactions newest first, one page at a time
// @Tags transactions
// @Produce json
// @Param from query string false "Earliest transaction date (YYYY-MM-DD)"
// @Param to query string false "Latest transaction date (YYYY-MM-DD)"
// @Param type query string false "Transaction type" Enums(sale, receipt, expense, adjustment, payroll_journal)
// @Param account query string false "Only transactions touching this account code"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /transactions [get]
func (h *reportingHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind list transactions query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.reportingService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, logger, err, "list transactions")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getTrialBalance godoc
// @Summary Trial balance
// @Description Lists every account with activity up to the given date with its net debit or credit balance
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} domain.TrialBalance
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid asOf date", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	asOf := time.Now().UTC()
	if params.AsOf != nil {
		asOf = *params.AsOf
	}

	tb, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		handleServiceError(c, logger, err, "generate trial balance")
		return
	}
	logger.Info("Trial balance generated", slog.Int("accounts", len(tb.Rows)), slog.Bool("balanced", tb.Balanced))
	c.JSON(http.StatusOK, tb)
}

// getAccountBalance godoc
// @Summary Account balance
// @Description Returns the running balance of an account on its normal side
// @Tags accounts
// @Produce json
// @Param accountCode path string true "Account code"
// @Success 200 {object} domain.AccountBalance
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /accounts/{accountCode}/balance [get]
func (h *reportingHandler) getAccountBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("accountCode")

	bal, err := h.reportingService.AccountBalance(c.Request.Context(), code)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("account_code", code)), err, "get account balance")
		return
	}
	c.JSON(http.StatusOK, bal)
}

func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)
	rg.GET("/transactions", h.listTransactions)
	rg.GET("/reports/trial-balance", h.getTrialBalance)
	rg.GET("/accounts/:accountCode/balance", h.getAccountBalance)
}
