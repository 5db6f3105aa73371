package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/dto"
	"github.com/SscSPs/smb_ledger/internal/middleware"
)

type payrollHandler struct {
	payrollService portssvc.PayrollSvcFacade
	ledgerService  portssvc.LedgerSvcFacade
}

func newPayrollHandler(payrollService portssvc.PayrollSvcFacade, ledgerService portssvc.LedgerSvcFacade) *payrollHandler {
	return &payrollHandler{payrollService: payrollService, ledgerService: ledgerService}
}

// previewPayroll godoc
// @Summary Preview a payroll run
// @Description Computes payslips and totals for a pay period without saving or posting anything
// @Tags payroll
// @Accept json
// @Produce json
// @Param request body dto.RunPayrollRequest true "Pay period and employees"
// @Success 200 {object} dto.PayrollRunResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /payroll/preview [post]
func (h *payrollHandler) previewPayroll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RunPayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind payroll preview request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	run, err := h.payrollService.Preview(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("period", req.Period)), err, "compute payroll")
		return
	}
	c.JSON(http.StatusOK, dto.PayrollRunResponse{Run: *run})
}

// runPayroll godoc
// @Summary Run payroll
// @Description Computes, saves and posts a payroll run. Retrying with the same runId returns the posted run.
// @Tags payroll
// @Accept json
// @Produce json
// @Param request body dto.RunPayrollRequest true "Pay period and employees"
// @Success 201 {object} dto.PayrollRunResponse "Run posted"
// @Success 200 {object} dto.PayrollRunResponse "Run was already posted"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Conflicting run"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /payroll/runs [post]
func (h *payrollHandler) runPayroll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RunPayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind payroll run request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID), slog.String("period", req.Period))

	run, txn, created, err := h.payrollService.RunPayroll(c.Request.Context(), req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "run payroll")
		return
	}

	txnResp := dto.ToTransactionResponse(txn, h.ledgerService.BaseCurrency())
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, dto.PayrollRunResponse{Run: *run, AlreadyPosted: !created, Transaction: &txnResp})
}

// getPayrollRun godoc
// @Summary Get a payroll run
// @Description Retrieves a saved payroll run with its payslips
// @Tags payroll
// @Produce json
// @Param runID path string true "Payroll run ID"
// @Success 200 {object} dto.PayrollRunResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /payroll/runs/{runID} [get]
func (h *payrollHandler) getPayrollRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	runID := c.Param("runID")

	run, err := h.payrollService.GetRun(c.Request.Context(), runID)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("run_id", runID)), err, "retrieve payroll run")
		return
	}
	resp := dto.PayrollRunResponse{Run: *run, AlreadyPosted: run.TransactionID != nil}
	if run.TransactionID != nil {
		txn, err := h.ledgerService.GetTransaction(c.Request.Context(), *run.TransactionID)
		if err != nil {
			handleServiceError(c, logger.With(slog.String("run_id", runID)), err, "retrieve payroll journal")
			return
		}
		txnResp := dto.ToTransactionResponse(txn, h.ledgerService.BaseCurrency())
		resp.Transaction = &txnResp
	}
	c.JSON(http.StatusOK, resp)
}

func registerPayrollRoutes(rg *gin.RouterGroup, payrollService portssvc.PayrollSvcFacade, ledgerService portssvc.LedgerSvcFacade) {
	h := newPayrollHandler(payrollService, ledgerService)
	payroll := rg.Group("/payroll")
	{
		payroll.POST("/preview", h.previewPayroll)
		payroll.POST("/runs", h.runPayroll)
		payroll.GET("/runs/:runID", h.getPayrollRun)
	}
}
