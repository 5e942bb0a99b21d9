package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	chdirTemp(t)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, ",", config.CSV.Delimiter)
	assert.True(t, config.CSV.IncludeHeaders)
	assert.Equal(t, ":8080", config.Server.Address)

	assert.Equal(t, 60, config.Parser.DateToleranceDays)
	assert.Equal(t, "0.01", config.Parser.MinValue)
	assert.Equal(t, "1000000", config.Parser.MaxValue)
	assert.Equal(t, 50, config.Parser.InstallmentWindow)
	assert.Equal(t, 10, config.Parser.InstallmentMinStart)
	assert.Equal(t, 0.15, config.Parser.InstallmentMinRatio)
	assert.Equal(t, 0.40, config.Parser.InstallmentMidRatio)
	assert.Equal(t, 0.50, config.Parser.InstallmentEqualRatio)
	assert.Equal(t, 31, config.Parser.InstallmentMaxTotal)
	assert.Equal(t, 0, config.Parser.DefaultInvoiceYear)
	assert.Equal(t, 100, config.Parser.InvoiceYearScanLines)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	chdirTemp(t)

	t.Setenv("FATURA_LOG_LEVEL", "debug")
	t.Setenv("FATURA_LOG_FORMAT", "json")
	t.Setenv("FATURA_CSV_DELIMITER", ";")
	t.Setenv("FATURA_PARSER_DATE_TOLERANCE_DAYS", "90")
	t.Setenv("FATURA_PARSER_DEFAULT_INVOICE_YEAR", "2025")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, ";", config.CSV.Delimiter)
	assert.Equal(t, 90, config.Parser.DateToleranceDays)
	assert.Equal(t, 2025, config.Parser.DefaultInvoiceYear)
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	tempDir := chdirTemp(t)

	configContent := `
log:
  level: "warn"
csv:
  delimiter: "|"
parser:
  date_tolerance_days: 30
  installment_min_ratio: 0.25
`
	err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0644)
	require.NoError(t, err)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "|", config.CSV.Delimiter)
	assert.Equal(t, 30, config.Parser.DateToleranceDays)
	assert.Equal(t, 0.25, config.Parser.InstallmentMinRatio)

	// Unset keys keep their defaults.
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, 31, config.Parser.InstallmentMaxTotal)
}

func TestInitializeConfig_Validation(t *testing.T) {
	chdirTemp(t)

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "invalid log level", key: "FATURA_LOG_LEVEL", value: "bogus"},
		{name: "invalid log format", key: "FATURA_LOG_FORMAT", value: "xml"},
		{name: "multi-char delimiter", key: "FATURA_CSV_DELIMITER", value: ";;"},
		{name: "negative tolerance", key: "FATURA_PARSER_DATE_TOLERANCE_DAYS", value: "-1"},
		{name: "ratio above one", key: "FATURA_PARSER_INSTALLMENT_MIN_RATIO", value: "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := InitializeConfig()
			assert.Error(t, err)
		})
	}
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	var config Config
	config.Log.Level = "debug"
	config.Log.Format = "json"

	logger := ConfigureLoggingFromConfig(&config)
	require.NotNil(t, logger)
	assert.Equal(t, "debug", logger.GetLevel().String())
}

// chdirTemp moves the test into an empty directory so no ambient config.yaml
// leaks into the run.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(originalDir))
	})
	require.NoError(t, os.Chdir(tempDir))
	return tempDir
}
