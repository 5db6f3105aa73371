package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/middleware"
)

type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(accountService portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: accountService}
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists the chart of accounts ordered by code
// @Tags accounts
// @Produce json
// @Success 200 {array} domain.Account
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	c.JSON(http.StatusOK, h.accountService.ListAccounts(c.Request.Context()))
}

// getAccount godoc
// @Summary Get an account
// @Description Resolves an account code in the chart of accounts
// @Tags accounts
// @Produce json
// @Param accountCode path string true "Account code"
// @Success 200 {object} domain.Account
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountCode} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("accountCode")

	acc, err := h.accountService.GetAccount(c.Request.Context(), code)
	if err != nil {
		handleServiceError(c, logger.With(slog.String("account_code", code)), err, "retrieve account")
		return
	}
	c.JSON(http.StatusOK, acc)
}

func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)
	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountCode", h.getAccount)
	}
}
