package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MaxLedgerScale is the number of decimals the money columns store.
const MaxLedgerScale = 4

// Config holds application configuration (env + Viper).
type Config struct {
	Env            string
	Port           string
	DatabaseURL    string // Postgres URL, or file:/:memory: for SQLite
	RedisURL       string
	NATSURL        string
	NotifySinks    []string // NOTIFY_SINKS, any of db,redis,nats
	NotifyBuffer   int
	LogLevel       string
	LogFormat      string // "console" or "json"
	HealthAdminKey string
	// FrontendURLEndsWith is the origin suffix allowed by CORS.
	FrontendURLEndsWith string

	LedgerCurrency string
	LedgerScale    int32

	DistributionWorkers     int
	DistributionMaxAttempts int
	DistributionBackoffBase time.Duration
	DistributionBackoffMax  time.Duration
	DistributionIOTimeout   time.Duration
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("NOTIFY_SINKS", "db")
	viper.SetDefault("NOTIFY_BUFFER", 256)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("LEDGER_CURRENCY", "NGN")
	viper.SetDefault("LEDGER_SCALE", 2)
	viper.SetDefault("DISTRIBUTION_WORKERS", 8)
	viper.SetDefault("DISTRIBUTION_MAX_ATTEMPTS", 3)
	viper.SetDefault("DISTRIBUTION_BACKOFF_BASE_MS", 50)
	viper.SetDefault("DISTRIBUTION_BACKOFF_MAX_MS", 1000)
	viper.SetDefault("DISTRIBUTION_IO_TIMEOUT_MS", 5000)

	env := viper.GetString("APP_ENV")

	scale := viper.GetInt("LEDGER_SCALE")
	if scale < 0 || scale > MaxLedgerScale {
		return nil, fmt.Errorf("LEDGER_SCALE must be between 0 and %d, got %d", MaxLedgerScale, scale)
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	return &Config{
		Env:            env,
		Port:           viper.GetString("PORT"),
		DatabaseURL:    dbURL,
		RedisURL:       viper.GetString("REDIS_URL"),
		NATSURL:        viper.GetString("NATS_URL"),
		NotifySinks:    splitList(viper.GetString("NOTIFY_SINKS")),
		NotifyBuffer:   viper.GetInt("NOTIFY_BUFFER"),
		LogLevel:       viper.GetString("LOG_LEVEL"),
		LogFormat:      viper.GetString("LOG_FORMAT"),
		HealthAdminKey: viper.GetString("HEALTH_ADMIN_KEY"),

		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),

		LedgerCurrency: strings.ToUpper(strings.TrimSpace(viper.GetString("LEDGER_CURRENCY"))),
		LedgerScale:    int32(scale),

		DistributionWorkers:     viper.GetInt("DISTRIBUTION_WORKERS"),
		DistributionMaxAttempts: viper.GetInt("DISTRIBUTION_MAX_ATTEMPTS"),
		DistributionBackoffBase: millis("DISTRIBUTION_BACKOFF_BASE_MS"),
		DistributionBackoffMax:  millis("DISTRIBUTION_BACKOFF_MAX_MS"),
		DistributionIOTimeout:   millis("DISTRIBUTION_IO_TIMEOUT_MS"),
	}, nil
}

// HasSink reports whether name is enabled in NOTIFY_SINKS.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.NotifySinks {
		if s == name {
			return true
		}
	}
	return false
}

func millis(key string) time.Duration {
	return time.Duration(viper.GetInt64(key)) * time.Millisecond
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
