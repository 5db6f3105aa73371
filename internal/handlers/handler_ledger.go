package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/dto"
	"github.com/SscSPs/smb_ledger/internal/middleware"
)

type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// postEvent godoc
// @Summary Post a business event
// @Description Builds the balanced journal for a sale, receipt, expense or credit note and posts it. Posting the same event twice returns the original transaction with alreadyPosted set.
// @Tags transactions
// @Accept json
// @Produce json
// @Param event body dto.PostEventRequest true "Event to post"
// @Success 201 {object} dto.PostEventResponse "Transaction posted"
// @Success 200 {object} dto.PostEventResponse "Event was already posted"
// @Failure 400 {object} map[string]interface{} "Invalid event or unbalanced journal"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Conflicting posting"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /transactions/events [post]
func (h *ledgerHandler) postEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind post event request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID), slog.String("event_kind", string(req.Kind)))

	ev, err := req.ToDomain()
	if err != nil {
		handleServiceError(c, logger, err, "decode event")
		return
	}

	txn, created, err := h.ledgerService.PostEvent(c.Request.Context(), ev, userID)
	if err != nil {
		handleServiceError(c, logger, err, "post event")
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
		logger.Info("Event already posted", slog.String("transaction_id", txn.ID))
	} else {
		logger.Info("Event posted", slog.String("transaction_id", txn.ID))
	}
	c.JSON(status, dto.PostEventResponse{
		AlreadyPosted: !created,
		Transaction:   dto.ToTransactionResponse(txn, h.ledgerService.BaseCurrency()),
	})
}

// getTransaction godoc
// @Summary Get a transaction
// @Description Retrieves a posted transaction with its journal lines
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *ledgerHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	txn, err := h.ledgerService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("transaction_id", transactionID)), err, "retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn, h.ledgerService.BaseCurrency()))
}

// voidTransaction godoc
// @Summary Void a transaction
// @Description Posts a reversing adjustment that mirrors the original. Voiding an already voided transaction returns the existing reversal.
// @Tags transactions
// @Accept json
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param request body dto.VoidTransactionRequest true "Reason for the reversal"
// @Success 201 {object} dto.PostEventResponse "Reversal posted"
// @Success 200 {object} dto.PostEventResponse "Transaction was already voided"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction cannot be voided"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /transactions/{transactionID}/void [post]
func (h *ledgerHandler) voidTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.VoidTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind void request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID), slog.String("transaction_id", transactionID))

	reversal, created, err := h.ledgerService.VoidTransaction(c.Request.Context(), transactionID, req.Reason, userID)
	if err != nil {
		handleServiceError(c, logger, err, "void transaction")
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	logger.Info("Transaction voided", slog.String("reversal_id", reversal.ID), slog.Bool("created", created))
	c.JSON(status, dto.PostEventResponse{
		AlreadyPosted: !created,
		Transaction:   dto.ToTransactionResponse(reversal, h.ledgerService.BaseCurrency()),
	})
}

func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)
	txns := rg.Group("/transactions")
	{
		txns.POST("/events", h.postEvent)
		txns.GET("/:transactionID", h.getTransaction)
		txns.POST("/:transactionID/void", h.voidTransaction)
	}
}
