package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "ro", cfg.App.DefaultLocale)
	assert.Equal(t, PaymentModeSimulated, cfg.Checkout.PaymentMode)
	assert.Equal(t, 2*time.Second, cfg.Checkout.SimulatedDelay)
	assert.Equal(t, 3*time.Second, cfg.Checkout.RedirectDelay)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.False(t, cfg.Redis.Enabled())
	assert.True(t, cfg.App.IsDev())
}

func TestLoad_BareAndPrefixedNames(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend:9000")
	t.Setenv("STOREFRONT_APP_APP_PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", cfg.Backend.BaseURL)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoad_RejectsUnknownPaymentMode(t *testing.T) {
	t.Setenv("PAYMENT_MODE", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_LedgerNeedsQueue(t *testing.T) {
	t.Setenv("LEDGER_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("CHECKOUT_QUEUE_URL", "http://localhost:4566/000000000000/checkout")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Checkout.LedgerEnabled)
}
