package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/SscSPs/smb_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/smb_ledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/smb_ledger/internal/adapters/database/sqlite"
	"github.com/SscSPs/smb_ledger/internal/core/accounting"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/smb_ledger/internal/core/services"
	"github.com/SscSPs/smb_ledger/internal/handlers"
	"github.com/SscSPs/smb_ledger/internal/middleware"
	"github.com/SscSPs/smb_ledger/internal/platform/config"
	"github.com/SscSPs/smb_ledger/pkg/database"
)

// @title SMB Ledger API
// @version 1.0
// @description Double-entry ledger, payroll and bank reconciliation backend.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepos()

	chart, err := accounting.NewChart(accounting.DefaultAccounts())
	if err != nil {
		return fmt.Errorf("building chart of accounts: %w", err)
	}
	if err := services.SyncChart(ctx, repos.AccountRepo, chart); err != nil {
		return err
	}

	runtime, err := services.NewServiceContainer(cfg, repos, chart, logger)
	if err != nil {
		return fmt.Errorf("wiring services: %w", err)
	}
	if err := runtime.Audit.Start(ctx); err != nil {
		return err
	}

	var rateLimiter *limiter.Limiter
	if cfg.RateLimit != "" {
		rateLimiter, err = middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			return err
		}
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSAllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}))
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("setting trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, runtime.Services, rateLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	// postings made during shutdown still reach the audit trail
	if err := runtime.Audit.Shutdown(shutdownCtx); err != nil {
		logger.Error("Audit queue not fully drained", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// setupRepositories opens the configured storage and, when AUDIT_SQLITE_PATH
// is set, moves the audit trail into its own SQLite file. The returned func
// releases every handle.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	var (
		repos   portsrepo.RepositoryProvider
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn("Using in-memory storage; all data is lost on restart")
		repos = memory.NewRepositoryProvider()
	default:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return repos, closeAll, fmt.Errorf("initializing database pool: %w", err)
		}
		closers = append(closers, func() { database.ClosePgxPool(dbPool) })
		logger.Info("Database connection pool established.")

		if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
			closeAll()
			return repos, func() {}, err
		}
		repos = pgsql.NewRepositoryProvider(dbPool)
	}

	if cfg.AuditSQLitePath != "" {
		auditRepo, err := sqlite.NewAuditRepository(cfg.AuditSQLitePath)
		if err != nil {
			closeAll()
			return repos, func() {}, fmt.Errorf("opening audit store: %w", err)
		}
		closers = append(closers, func() {
			if err := auditRepo.Close(); err != nil {
				logger.Error("Error closing audit store", slog.String("error", err.Error()))
			}
		})
		repos.AuditRepo = auditRepo
		logger.Info("Audit trail stored in SQLite", slog.String("path", cfg.AuditSQLitePath))
	}

	return repos, closeAll, nil
}

func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	// Using pgx/v5/stdlib driver to be compatible with the main pool
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("opening database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("pinging database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("creating postgres driver for migrations: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", upErr)
	}

	// Check for dirty migrations after running Up.
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
