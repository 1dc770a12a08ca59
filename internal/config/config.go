// Package config reads process configuration from the environment. A .env
// file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const EnvProduction = "production"

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort int

	APIBaseURL string
	APITimeout time.Duration
	APIToken   string

	DatabaseURL       string
	MigrationsEnabled bool
	RedisAddr         string
	SessionTTL        time.Duration

	JWTSecret string

	DefaultSellerID int64
	MaxItemQuantity int
	TaxRate         decimal.Decimal
	Currency        currency.Unit

	PaymentProvider      string
	SandboxCodes         []string
	ConsumedCodes        []string
	VerifyDelay          time.Duration
	SuccessRedirectDelay time.Duration
	FailureRedirectDelay time.Duration
	SimulationEnabled    bool

	QRPollInterval time.Duration
	QRExpiry       time.Duration
	QRRetention    time.Duration
	WidgetGrace    time.Duration
	WidgetIdleTTL  time.Duration
	PaymentLinkTTL time.Duration
}

func (c Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Load reads the configuration. Malformed values are errors; absent values
// take their defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("godotenv.Load: %w", err)
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := Config{
		AppEnv:          getEnv("APP_ENV", "dev"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:8000/api"),
		APIToken:        os.Getenv("API_TOKEN"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		PaymentProvider: getEnv("PAYMENT_PROVIDER", "datafast"),
		SandboxCodes:    getEnvList("PAYMENT_SANDBOX_CODES", []string{"000.100.110"}),
		ConsumedCodes:   getEnvList("PAYMENT_CONSUMED_CODES", []string{"200.300.404"}),
	}

	var err error

	cfg.HTTPPort, err = getEnvInt("HTTP_PORT", 8080)
	collect(err)
	cfg.MaxItemQuantity, err = getEnvInt("MAX_ITEM_QUANTITY", 99)
	collect(err)

	var sellerID int
	sellerID, err = getEnvInt("DEFAULT_SELLER_ID", 0)
	collect(err)
	cfg.DefaultSellerID = int64(sellerID)

	cfg.APITimeout, err = getEnvDuration("API_TIMEOUT", 15*time.Second)
	collect(err)
	cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 24*time.Hour)
	collect(err)
	cfg.VerifyDelay, err = getEnvDuration("VERIFY_DELAY", 2*time.Second)
	collect(err)
	cfg.SuccessRedirectDelay, err = getEnvDuration("SUCCESS_REDIRECT_DELAY", 3*time.Second)
	collect(err)
	cfg.FailureRedirectDelay, err = getEnvDuration("FAILURE_REDIRECT_DELAY", 5*time.Second)
	collect(err)
	cfg.QRPollInterval, err = getEnvDuration("QR_POLL_INTERVAL", 5*time.Second)
	collect(err)
	cfg.QRExpiry, err = getEnvDuration("QR_EXPIRY", 15*time.Minute)
	collect(err)
	cfg.QRRetention, err = getEnvDuration("QR_RETENTION", 10*time.Minute)
	collect(err)
	cfg.WidgetGrace, err = getEnvDuration("WIDGET_GRACE", 5*time.Minute)
	collect(err)
	cfg.WidgetIdleTTL, err = getEnvDuration("WIDGET_IDLE_TTL", 30*time.Minute)
	collect(err)
	cfg.PaymentLinkTTL, err = getEnvDuration("PAYMENT_LINK_TTL", 72*time.Hour)
	collect(err)

	cfg.MigrationsEnabled, err = getEnvBool("MIGRATIONS_ENABLED", true)
	collect(err)
	cfg.SimulationEnabled, err = getEnvBool("SIMULATION_ENABLED", !cfg.IsProduction())
	collect(err)

	cfg.TaxRate, err = decimal.NewFromString(getEnv("TAX_RATE", "0.15"))
	if err != nil {
		collect(fmt.Errorf("TAX_RATE: %w", err))
	} else if cfg.TaxRate.IsNegative() {
		collect(errors.New("TAX_RATE: must not be negative"))
	}

	cfg.Currency, err = currency.ParseISO(getEnv("CURRENCY", "USD"))
	if err != nil {
		collect(fmt.Errorf("CURRENCY: %w", err))
	}

	if cfg.IsProduction() && cfg.SimulationEnabled {
		collect(errors.New("SIMULATION_ENABLED: not allowed in production"))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}

	return n, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}

	return b, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}

	return d, nil
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
