// Package root contains the root command for the application
package root

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mepoupeze/fatura-csv/internal/api"
	"mepoupeze/fatura-csv/internal/common"
	"mepoupeze/fatura-csv/internal/config"
	"mepoupeze/fatura-csv/internal/itauparser"
	"mepoupeze/fatura-csv/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input    string
	Output   string
	Validate bool
	JSON     bool
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "fatura-csv",
		Short: "A CLI tool to convert extracted Itaú credit-card statement text to CSV and reconcile totals.",
		Long: `fatura-csv classifies the text lines extracted from an Itaú credit-card
statement into transactions grouped by card, reconciles each card against its
printed subtotal and exports the result as CSV or JSON.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to fatura-csv!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
			Log = config.ConfigureLogging()

			adapter := logging.NewLogrusAdapterFromLogger(Log)
			itauparser.SetLogger(adapter)
			common.SetLogger(adapter)
			api.SetLogger(adapter)

			if cfg, err := config.InitializeConfig(); err == nil {
				itauparser.Configure(itauparser.OptionsFromAppConfig(cfg))
				if cfg.CSV.Delimiter != "" {
					common.SetDelimiter([]rune(cfg.CSV.Delimiter)[0])
				}
			} else {
				Log.Warnf("Failed to load configuration, using defaults: %v", err)
			}

			if delim := os.Getenv("CSV_DELIMITER"); delim != "" {
				Log.WithField("delimiter", delim).Debug("Setting CSV delimiter from environment")
				common.SetDelimiter([]rune(delim)[0])
			}
		},
	}

	// SharedFlags holds the common flags accessible to all commands
	SharedFlags = CommonFlags{}

	// Specific batch command flags
	InputDir  string
	OutputDir string
)

// GetAdapter returns the shared logger wrapped in the logging abstraction.
func GetAdapter() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().BoolVarP(&SharedFlags.Validate, "validate", "v", false, "Validate file format before conversion")
	Cmd.PersistentFlags().BoolVar(&SharedFlags.JSON, "json", false, "Emit the full parse result (items, stats, rejects) as JSON")
}
