package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/SscSPs/smb_ledger/cmd/docs"
	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/middleware"
	"github.com/SscSPs/smb_ledger/internal/platform/config"
)

// RegisterRoutes sets up all the API routes for the application.
// rateLimiter may be nil to disable rate limiting.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer, rateLimiter *limiter.Limiter) {
	r.GET("/health", getHealth)

	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	if rateLimiter != nil {
		v1.Use(middleware.RateLimit(rateLimiter))
	}
	RegisterAPIRoutes(v1, services)

	setupSwaggerRoutes(r, cfg)
}

// RegisterAPIRoutes mounts every ledger resource on an already authenticated
// group.
func RegisterAPIRoutes(v1 *gin.RouterGroup, services *portssvc.ServiceContainer) {
	registerLedgerRoutes(v1, services.Ledger)
	registerReportingRoutes(v1, services.Reporting)
	registerAccountRoutes(v1, services.Account)
	registerPayrollRoutes(v1, services.Payroll, services.Ledger)
	registerReconciliationRoutes(v1, services.Reconciliation)
	registerAuditRoutes(v1, services.Audit)
}

// getHealth godoc
// @Summary Show the status of server.
// @Description get the status of server.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
