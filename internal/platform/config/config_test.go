package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "KES", cfg.BaseCurrency)
	assert.Equal(t, "100-M", cfg.RateLimit)
	assert.Equal(t, 1024, cfg.AuditQueueSize)
	assert.Equal(t, 5*time.Second, cfg.AuditWriteTimeout)
	assert.Equal(t, uint64(3), cfg.AuditRetryMaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.AuditRetryInitialInterval)
	assert.Equal(t, int64(1), cfg.ReconToleranceMinor)
	assert.Equal(t, 3, cfg.ReconMaxCandidates)
	assert.Empty(t, cfg.PayrollPensionRate)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("BASE_CURRENCY", "ugx")
	t.Setenv("AUDIT_WRITE_TIMEOUT", "250ms")
	t.Setenv("AUDIT_RETRY_INITIAL_INTERVAL", "not-a-duration")
	t.Setenv("RECON_TOLERANCE_MINOR", "50")
	t.Setenv("PAYROLL_PENSION_RATE", "0.05")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://books.example.com, https://admin.example.com,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, "UGX", cfg.BaseCurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.AuditWriteTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.AuditRetryInitialInterval)
	assert.Equal(t, int64(50), cfg.ReconToleranceMinor)
	assert.Equal(t, "0.05", cfg.PayrollPensionRate)
	assert.Equal(t, []string{"https://books.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigUnknownDriverFallsBack(t *testing.T) {
	viper.Reset()
	t.Setenv("STORAGE_DRIVER", "cassandra")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
}
