package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL_TEST", ":memory:")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, ":memory:", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "NGN", cfg.LedgerCurrency)
	assert.Equal(t, int32(2), cfg.LedgerScale)
	assert.Equal(t, 8, cfg.DistributionWorkers)
	assert.Equal(t, 3, cfg.DistributionMaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.DistributionBackoffBase)
	assert.Equal(t, time.Second, cfg.DistributionBackoffMax)
	assert.Equal(t, 5*time.Second, cfg.DistributionIOTimeout)
	assert.Equal(t, []string{"db"}, cfg.NotifySinks)
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL_PROD", "postgres://ledger@db:5432/ledger")
	t.Setenv("NOTIFY_SINKS", " DB, redis ,nats")
	t.Setenv("LEDGER_CURRENCY", "usd")
	t.Setenv("DISTRIBUTION_WORKERS", "16")
	t.Setenv("DISTRIBUTION_IO_TIMEOUT_MS", "250")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://ledger@db:5432/ledger", cfg.DatabaseURL)
	assert.Equal(t, "USD", cfg.LedgerCurrency)
	assert.Equal(t, 16, cfg.DistributionWorkers)
	assert.Equal(t, 250*time.Millisecond, cfg.DistributionIOTimeout)
	assert.True(t, cfg.HasSink("db"))
	assert.True(t, cfg.HasSink("redis"))
	assert.True(t, cfg.HasSink("nats"))
	assert.False(t, cfg.HasSink("email"))
}

func TestLoad_LedgerScale(t *testing.T) {
	viper.Reset()
	t.Setenv("LEDGER_SCALE", "0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int32(0), cfg.LedgerScale)

	for _, bad := range []string{"5", "-1"} {
		viper.Reset()
		t.Setenv("LEDGER_SCALE", bad)
		_, err := Load()
		assert.Error(t, err, bad)
	}
}
