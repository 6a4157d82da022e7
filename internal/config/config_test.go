package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, BackendSQLite, cfg.CartBackend)
	assert.Equal(t, BackendMemory, cfg.CatalogBackend)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10000, cfg.CartCacheSize)
	assert.Equal(t, 30*time.Minute, cfg.CartIdleTTL)
	assert.False(t, cfg.NeedsPostgres())

	calc := cfg.Pricing.Calculator()
	assert.True(t, calc.TaxRate.Equal(decimal.RequireFromString("0.10")))
	assert.True(t, calc.ShippingFee.Equal(decimal.RequireFromString("5.99")))
	assert.True(t, calc.FreeShippingOver.Equal(decimal.RequireFromString("50")))
}

func TestFromEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CART_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("PRICING_SHIPPING_FEE", "4.50")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_TTL", "1h")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, BackendRedis, cfg.CartBackend)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.Pricing.ShippingFee.Equal(decimal.RequireFromString("4.50")))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
}

func TestFromEnvReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".env", []byte("CATALOG_BACKEND=postgres\nADMIN_TOKEN=secret\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("CATALOG_BACKEND")
		os.Unsetenv("ADMIN_TOKEN")
	})

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.CatalogBackend)
	assert.Equal(t, "secret", cfg.AdminToken)
	assert.True(t, cfg.NeedsPostgres())
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"unknown cart backend":    {"CART_BACKEND", "floppy"},
		"unknown catalog backend": {"CATALOG_BACKEND", "redis"},
		"negative tax":            {"PRICING_TAX_RATE", "-0.1"},
		"malformed decimal":       {"PRICING_SHIPPING_FEE", "cheap"},
		"malformed duration":      {"SHUTDOWN_TIMEOUT", "soon"},
		"negative cart cache":     {"CART_CACHE_SIZE", "-1"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
