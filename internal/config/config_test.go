package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront/internal/catalog"
	"github.com/wichananm65/storefront/internal/storage"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, catalog.DefaultBaseURL, cfg.CatalogURL)
	assert.Equal(t, catalog.DefaultTimeout, cfg.CatalogTimeout)
	assert.Equal(t, storage.DriverMemory, cfg.StorageDriver)
	assert.Equal(t, "*", cfg.CORSOrigins)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"JWT_SECRET":      "s3cret",
		"STOREFRONT_ADDR": ":9000",
		"CATALOG_API_URL": "http://catalog.local/api",
		"CATALOG_TIMEOUT": "2s",
		"STORAGE_DRIVER":  "Redis",
		"REDIS_ADDR":      "cache:6379",
		"REDIS_DB":        "3",
		"REDIS_PREFIX":    "shop:",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.CatalogTimeout)

	opts := cfg.StorageOptions()
	assert.Equal(t, storage.DriverRedis, opts.Driver)
	assert.Equal(t, "cache:6379", opts.RedisAddr)
	assert.Equal(t, 3, opts.RedisDB)
	assert.Equal(t, "shop:", opts.RedisPrefix)

	cc := cfg.CatalogConfig()
	assert.Equal(t, "http://catalog.local/api", cc.BaseURL)
	assert.Equal(t, 2*time.Second, cc.Timeout)
}

func TestFromEnv_Errors(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{}))
	assert.EqualError(t, err, "JWT_SECRET is not set")

	_, err = FromEnv(envOf(map[string]string{"JWT_SECRET": "x", "REDIS_DB": "one"}))
	assert.ErrorContains(t, err, "REDIS_DB")

	_, err = FromEnv(envOf(map[string]string{"JWT_SECRET": "x", "CATALOG_TIMEOUT": "soon"}))
	assert.ErrorContains(t, err, "CATALOG_TIMEOUT")
}
