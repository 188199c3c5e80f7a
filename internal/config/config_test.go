package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cupcakehq/pos/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"POS_DATA_DIR":         "",
		"POS_BILLS_DIR":        "",
		"POS_TAX_DIR":          "",
		"POS_LOG_LEVEL":        "",
		"POS_LOG_FORMAT":       "",
		"POS_TAX_RATE_PERCENT": "",
	})
	require.NoError(t, err)
	require.Equal(t, "data", cfg.DataDir)
	require.Equal(t, filepath.Join("data", "bills"), cfg.BillsDir)
	require.Equal(t, filepath.Join("data", "tax"), cfg.TaxDir)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "console", cfg.LogFormat)
	require.True(t, cfg.TaxRatePercent.IsZero())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"POS_DATA_DIR":         "/var/pos",
		"POS_BILLS_DIR":        "/var/pos/archive",
		"POS_TAX_DIR":          "",
		"POS_LOG_LEVEL":        "debug",
		"POS_TAX_RATE_PERCENT": "17.5",
	})
	require.NoError(t, err)
	require.Equal(t, "/var/pos/archive", cfg.BillsDir)
	require.Equal(t, filepath.Join("/var/pos", "tax"), cfg.TaxDir)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "17.5", cfg.TaxRatePercent.String())
}

func TestLoadRejectsBadTaxRate(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"POS_TAX_RATE_PERCENT": "lots",
	})
	require.Error(t, err)

	_, err = config.LoadForTests(map[string]string{
		"POS_TAX_RATE_PERCENT": "-5",
	})
	require.Error(t, err)
}
