package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv         string
	DataDir        string
	BillsDir       string
	TaxDir         string
	LogLevel       string
	LogFormat      string
	TaxRatePercent decimal.Decimal
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	dataDir := valueOrDefault(k.String("POS_DATA_DIR"), "data")
	cfg := &Config{
		AppEnv:    valueOrDefault(k.String("APP_ENV"), "development"),
		DataDir:   dataDir,
		BillsDir:  valueOrDefault(k.String("POS_BILLS_DIR"), filepath.Join(dataDir, "bills")),
		TaxDir:    valueOrDefault(k.String("POS_TAX_DIR"), filepath.Join(dataDir, "tax")),
		LogLevel:  valueOrDefault(k.String("POS_LOG_LEVEL"), "info"),
		LogFormat: valueOrDefault(k.String("POS_LOG_FORMAT"), "console"),
	}

	rate, err := parseRate(k.String("POS_TAX_RATE_PERCENT"))
	if err != nil {
		return nil, err
	}
	cfg.TaxRatePercent = rate

	return cfg, nil
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseRate(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("POS_TAX_RATE_PERCENT: %w", err)
	}
	if rate.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("POS_TAX_RATE_PERCENT must not be negative")
	}
	return rate, nil
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
