package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(100000), cfg.Store.FreeShippingThreshold)
	assert.Equal(t, int64(15000), cfg.Store.FlatShippingFee)
	assert.True(t, cfg.Store.TaxRate.Equal(decimal.RequireFromString("0.11")))
	assert.Equal(t, "transfer", cfg.Store.DefaultPaymentMethod)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FREE_SHIPPING_THRESHOLD", "250000")
	t.Setenv("FLAT_SHIPPING_FEE", "20000")
	t.Setenv("TAX_RATE", "0.12")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(250000), cfg.Store.FreeShippingThreshold)
	assert.Equal(t, int64(20000), cfg.Store.FlatShippingFee)
	assert.Equal(t, "0.12", cfg.Store.TaxRate.String())
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Security.CORSAllowedOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unparsable tax rate", key: "TAX_RATE", val: "eleven"},
		{name: "tax rate above one", key: "TAX_RATE", val: "1.5"},
		{name: "short jwt secret", key: "JWT_SECRET", val: "short"},
		{name: "negative shipping fee", key: "FLAT_SHIPPING_FEE", val: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", Name: "shop", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable", cfg.GetDatabaseDSN())
}
