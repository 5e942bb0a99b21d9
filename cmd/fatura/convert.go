// Package fatura handles single-statement conversion commands
package fatura

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"mepoupeze/fatura-csv/cmd/root"
	"mepoupeze/fatura-csv/internal/itauparser"
)

// Cmd represents the fatura command
var Cmd = &cobra.Command{
	Use:   "fatura",
	Short: "Convert one statement text file to CSV",
	Long: `Convert the extracted text of one Itaú credit-card statement to CSV.
With --json the full parse result (items, stats, rejects) is emitted instead.`,
	Run: faturaFunc,
}

func faturaFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Fatura convert command called")
	root.Log.Infof("Input file: %s", root.SharedFlags.Input)

	if root.SharedFlags.Input == "" {
		root.Log.Fatal("No input file specified, use --input")
	}

	if root.SharedFlags.Validate {
		valid, err := itauparser.ValidateFormat(root.SharedFlags.Input)
		if err != nil {
			root.Log.Fatalf("Error validating file: %v", err)
		}
		if !valid {
			root.Log.Fatalf("File does not look like an extracted Itaú statement: %s", root.SharedFlags.Input)
		}
	}

	if root.SharedFlags.JSON {
		writeJSON()
		return
	}

	if root.SharedFlags.Output == "" {
		root.Log.Fatal("No output file specified, use --output")
	}
	if err := itauparser.ConvertToCSV(root.SharedFlags.Input, root.SharedFlags.Output); err != nil {
		root.Log.Fatalf("Error converting statement: %v", err)
	}
	root.Log.Info("Statement to CSV conversion completed successfully!")
}

func writeJSON() {
	result, err := itauparser.ParseFile(root.SharedFlags.Input)
	if err != nil {
		root.Log.Fatalf("Error parsing statement: %v", err)
	}

	out := os.Stdout
	if root.SharedFlags.Output != "" {
		file, err := os.Create(root.SharedFlags.Output)
		if err != nil {
			root.Log.Fatalf("Error creating output file: %v", err)
		}
		defer func() {
			if err := file.Close(); err != nil {
				root.Log.Warnf("Failed to close output file: %v", err)
			}
		}()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		root.Log.Fatalf("Error encoding result: %v", err)
	}
}
