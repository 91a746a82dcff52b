package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	require.NoError(t, Load())

	c := C()
	assert.Equal(t, "0.0.0.0:8080", c.Server.Address())
	assert.Equal(t, "chi", c.Server.Router())
	assert.Equal(t, 10*time.Second, c.Server.ShutdownTimeout())
	assert.Equal(t, "info", c.Logger.Level())
	assert.Equal(t, "EUR", c.Pricing.DefaultCurrency())
	assert.Equal(t, "par", c.Pricing.DefaultZone())
	assert.Len(t, c.Pricing.Products(), 5)
	assert.Zero(t, c.Pricing.FetchLimit())
	assert.Equal(t, 30*time.Minute, c.Pricing.SessionTTL())
	assert.Equal(t, "static", c.Catalog.Driver())
	assert.Equal(t, 24*time.Hour, c.Catalog.CacheTTL())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("HTTP_ROUTER", "echo")
	t.Setenv("LOGGER_AS_JSON", "true")
	t.Setenv("PRICING_DEFAULT_CURRENCY", "USD")
	t.Setenv("PRICING_PRODUCTS", "redis-addon,cellar-addon")
	t.Setenv("PRICING_FETCH_LIMIT", "2")
	t.Setenv("CATALOG_DRIVER", "sqlite")

	require.NoError(t, Load())

	c := C()
	assert.Equal(t, 9000, c.Server.Port())
	assert.Equal(t, "echo", c.Server.Router())
	assert.True(t, c.Logger.AsJSON())
	assert.Equal(t, "USD", c.Pricing.DefaultCurrency())
	assert.Equal(t, []string{"redis-addon", "cellar-addon"}, c.Pricing.Products())
	assert.Equal(t, 2, c.Pricing.FetchLimit())
	assert.NotEmpty(t, c.Catalog.DSN())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"router", "HTTP_ROUTER", "gin"},
		{"port", "HTTP_PORT", "http"},
		{"driver", "CATALOG_DRIVER", "mongo"},
		{"pgx without dsn", "CATALOG_DRIVER", "pgx"},
		{"session ttl", "PRICING_SESSION_TTL", "0s"},
		{"fetch limit", "PRICING_FETCH_LIMIT", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			assert.Error(t, Load())
		})
	}
}

func TestLoad_Dotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PRICING_DEFAULT_ZONE=mtl\n"), 0o600))

	t.Setenv("APP_ENV", "local")
	t.Setenv("PRICING_DEFAULT_ZONE", "")
	os.Unsetenv("PRICING_DEFAULT_ZONE")

	require.NoError(t, Load(path))
	assert.Equal(t, "mtl", C().Pricing.DefaultZone())
	os.Unsetenv("PRICING_DEFAULT_ZONE")
}
