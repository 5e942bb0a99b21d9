// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter      string `mapstructure:"delimiter" yaml:"delimiter"`
		IncludeHeaders bool   `mapstructure:"include_headers" yaml:"include_headers"`
	} `mapstructure:"csv" yaml:"csv"`

	Server struct {
		Address string `mapstructure:"address" yaml:"address"`
	} `mapstructure:"server" yaml:"server"`

	// Parser carries the empirically tuned classification thresholds so
	// calibration against a regression corpus needs no code change.
	Parser Thresholds `mapstructure:"parser" yaml:"parser"`
}

// Thresholds are the tunable heuristics of the line classifier.
type Thresholds struct {
	DateToleranceDays int `mapstructure:"date_tolerance_days" yaml:"date_tolerance_days"`

	MinValue string `mapstructure:"min_value" yaml:"min_value"`
	MaxValue string `mapstructure:"max_value" yaml:"max_value"`

	InstallmentWindow       int     `mapstructure:"installment_window" yaml:"installment_window"`
	InstallmentMinStart     int     `mapstructure:"installment_min_start" yaml:"installment_min_start"`
	InstallmentMinRatio     float64 `mapstructure:"installment_min_ratio" yaml:"installment_min_ratio"`
	InstallmentMidRatio     float64 `mapstructure:"installment_mid_ratio" yaml:"installment_mid_ratio"`
	InstallmentEqualRatio   float64 `mapstructure:"installment_equal_ratio" yaml:"installment_equal_ratio"`
	InstallmentMaxTotal     int     `mapstructure:"installment_max_total" yaml:"installment_max_total"`
	DefaultInvoiceYear      int     `mapstructure:"default_invoice_year" yaml:"default_invoice_year"`
	InvoiceYearScanLines    int     `mapstructure:"invoice_year_scan_lines" yaml:"invoice_year_scan_lines"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.fatura-csv")
	v.AddConfigPath(".fatura-csv")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FATURA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// Config file not found or invalid is OK, we'll use defaults and env vars
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.include_headers", true)

	v.SetDefault("server.address", ":8080")

	v.SetDefault("parser.date_tolerance_days", 60)
	v.SetDefault("parser.min_value", "0.01")
	v.SetDefault("parser.max_value", "1000000")
	v.SetDefault("parser.installment_window", 50)
	v.SetDefault("parser.installment_min_start", 10)
	v.SetDefault("parser.installment_min_ratio", 0.15)
	v.SetDefault("parser.installment_mid_ratio", 0.40)
	v.SetDefault("parser.installment_equal_ratio", 0.50)
	v.SetDefault("parser.installment_max_total", 31)
	v.SetDefault("parser.default_invoice_year", 0)
	v.SetDefault("parser.invoice_year_scan_lines", 100)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.Parser.DateToleranceDays < 0 {
		return fmt.Errorf("parser.date_tolerance_days must not be negative, got: %d", config.Parser.DateToleranceDays)
	}

	if config.Parser.InstallmentMinRatio < 0 || config.Parser.InstallmentMinRatio > 1 ||
		config.Parser.InstallmentMidRatio < 0 || config.Parser.InstallmentMidRatio > 1 ||
		config.Parser.InstallmentEqualRatio < 0 || config.Parser.InstallmentEqualRatio > 1 {
		return fmt.Errorf("parser installment ratios must be between 0.0 and 1.0")
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
