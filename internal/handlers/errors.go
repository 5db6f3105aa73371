package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/smb_ledger/internal/apperrors"
	"github.com/SscSPs/smb_ledger/internal/core/accounting"
	"github.com/SscSPs/smb_ledger/internal/middleware"
)

// Error codes returned alongside the message so clients can branch without
// parsing text.
const (
	codeImbalanced          = "IMBALANCED"
	codeUnknownAccount      = "UNKNOWN_ACCOUNT"
	codeMissingExchangeRate = "MISSING_EXCHANGE_RATE"
	codeMalformedLine       = "MALFORMED_LINE"
	codeUnknownCurrency     = "UNKNOWN_CURRENCY"
	codeInvalidExchangeRate = "INVALID_EXCHANGE_RATE"
	codeCurrencyMismatch    = "CURRENCY_MISMATCH"
	codeEmptyTransaction    = "EMPTY_TRANSACTION"
	codeValidation          = "VALIDATION_FAILED"
	codeNotFound            = "NOT_FOUND"
	codeConflict            = "CONFLICT"
	codeInternal            = "INTERNAL"
)

// handleServiceError maps a service error onto a status code and JSON body.
// action completes the sentence "Failed to ..." in the 500 response so
// internal detail never leaks to the caller.
func handleServiceError(c *gin.Context, logger *slog.Logger, err error, action string) {
	var imbalanced *accounting.ImbalancedError
	switch {
	case errors.As(err, &imbalanced):
		logger.Warn("Rejected imbalanced transaction",
			slog.Int64("debits", int64(imbalanced.Debits)),
			slog.Int64("credits", int64(imbalanced.Credits)),
			slog.Int64("difference", int64(imbalanced.Difference)))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  codeImbalanced,
			"details": gin.H{
				"debits":     imbalanced.Debits,
				"credits":    imbalanced.Credits,
				"difference": imbalanced.Difference,
				"accounts":   imbalanced.Accounts,
			},
		})
	case errors.Is(err, accounting.ErrUnknownAccount):
		logger.Warn("Unknown account", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeUnknownAccount})
	case errors.Is(err, accounting.ErrMissingExchangeRate):
		logger.Warn("Missing exchange rate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeMissingExchangeRate})
	case errors.Is(err, accounting.ErrMalformedLine):
		logger.Warn("Malformed journal line", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeMalformedLine})
	case errors.Is(err, accounting.ErrUnknownCurrency):
		logger.Warn("Unknown currency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeUnknownCurrency})
	case errors.Is(err, accounting.ErrInvalidExchangeRate):
		logger.Warn("Invalid exchange rate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeInvalidExchangeRate})
	case errors.Is(err, accounting.ErrCurrencyMismatch):
		logger.Warn("Currency mismatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeCurrencyMismatch})
	case errors.Is(err, accounting.ErrEmptyDraft):
		logger.Warn("Empty transaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeEmptyTransaction})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeValidation})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": codeNotFound})
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Conflicting request", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": codeConflict})
	default:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action, "code": codeInternal})
	}
}

// requireUser reads the authenticated caller, writing a 401 when absent.
func requireUser(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
