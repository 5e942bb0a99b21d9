// Package batch handles directory-wide statement conversion
package batch

import (
	"github.com/spf13/cobra"

	"mepoupeze/fatura-csv/cmd/root"
	"mepoupeze/fatura-csv/internal/itauparser"
	"mepoupeze/fatura-csv/internal/logging"
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Convert a directory of statement text files to CSV",
	Long:  `Convert every .txt statement in a directory to CSV, one output file per statement.`,
	Run:   batchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.InputDir, "input-dir", "d", "", "Directory containing statement text files")
	Cmd.Flags().StringVarP(&root.OutputDir, "output-dir", "t", "", "Directory for the CSV output files")
}

func batchFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Batch convert command called")

	if root.InputDir == "" || root.OutputDir == "" {
		root.Log.Fatal("Both --input-dir and --output-dir must be specified")
	}

	count, err := itauparser.BatchConvert(root.InputDir, root.OutputDir)
	if err != nil {
		root.Log.Fatalf("Batch conversion failed: %v", err)
	}
	root.GetAdapter().Info("Batch conversion completed",
		logging.Field{Key: logging.FieldCount, Value: count},
		logging.Field{Key: logging.FieldInputFile, Value: root.InputDir},
		logging.Field{Key: logging.FieldOutputFile, Value: root.OutputDir})
}
