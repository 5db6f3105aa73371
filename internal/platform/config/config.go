package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	LogLevel      string
	JWTSecret     string
	StorageDriver string

	// Ledger
	BaseCurrency string

	// HTTP rate limit in ulule/limiter format, e.g. "100-M"
	RateLimit string

	CORSAllowedOrigins []string

	// Audit trail
	AuditQueueSize            int
	AuditWriteTimeout         time.Duration
	AuditRetryMaxAttempts     uint64
	AuditRetryInitialInterval time.Duration
	AuditSQLitePath           string

	// Reconciliation
	ReconToleranceMinor int64
	ReconMaxCandidates  int

	// Payroll overrides; empty keeps the statutory defaults.
	PayrollPersonalRelief  string
	PayrollPensionRate     string
	PayrollPensionCap      string
	PayrollHealthLevyRate  string
	PayrollHousingLevyRate string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	viper.SetDefault("BASE_CURRENCY", "KES")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("AUDIT_QUEUE_SIZE", 1024)
	viper.SetDefault("AUDIT_WRITE_TIMEOUT", "5s")
	viper.SetDefault("AUDIT_RETRY_MAX_ATTEMPTS", 3)
	viper.SetDefault("AUDIT_RETRY_INITIAL_INTERVAL", "100ms")
	viper.SetDefault("AUDIT_SQLITE_PATH", "")
	viper.SetDefault("RECON_TOLERANCE_MINOR", 1)
	viper.SetDefault("RECON_MAX_CANDIDATES", 3)
	viper.SetDefault("PAYROLL_PERSONAL_RELIEF", "")
	viper.SetDefault("PAYROLL_PENSION_RATE", "")
	viper.SetDefault("PAYROLL_PENSION_CAP", "")
	viper.SetDefault("PAYROLL_HEALTH_LEVY_RATE", "")
	viper.SetDefault("PAYROLL_HOUSING_LEVY_RATE", "")

	// Environment variables override .env values, which override the defaults above.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.StorageDriver = strings.ToLower(viper.GetString("STORAGE_DRIVER"))
	if cfg.StorageDriver != StorageDriverPostgres && cfg.StorageDriver != StorageDriverMemory {
		log.Printf("Warning: unknown STORAGE_DRIVER '%s'. Defaulting to %s.\n", cfg.StorageDriver, StorageDriverPostgres)
		cfg.StorageDriver = StorageDriverPostgres
	}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" && cfg.StorageDriver == StorageDriverPostgres {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.BaseCurrency = strings.ToUpper(viper.GetString("BASE_CURRENCY"))

	cfg.AuditWriteTimeout = durationOrDefault("AUDIT_WRITE_TIMEOUT", 5*time.Second)
	cfg.AuditRetryInitialInterval = durationOrDefault("AUDIT_RETRY_INITIAL_INTERVAL", 100*time.Millisecond)

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.LogLevel = viper.GetString("LOG_LEVEL")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}
	cfg.AuditQueueSize = viper.GetInt("AUDIT_QUEUE_SIZE")
	cfg.AuditRetryMaxAttempts = viper.GetUint64("AUDIT_RETRY_MAX_ATTEMPTS")
	cfg.AuditSQLitePath = viper.GetString("AUDIT_SQLITE_PATH")
	cfg.ReconToleranceMinor = viper.GetInt64("RECON_TOLERANCE_MINOR")
	cfg.ReconMaxCandidates = viper.GetInt("RECON_MAX_CANDIDATES")
	cfg.PayrollPersonalRelief = viper.GetString("PAYROLL_PERSONAL_RELIEF")
	cfg.PayrollPensionRate = viper.GetString("PAYROLL_PENSION_RATE")
	cfg.PayrollPensionCap = viper.GetString("PAYROLL_PENSION_CAP")
	cfg.PayrollHealthLevyRate = viper.GetString("PAYROLL_HEALTH_LEVY_RATE")
	cfg.PayrollHousingLevyRate = viper.GetString("PAYROLL_HOUSING_LEVY_RATE")

	return cfg, nil
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}
