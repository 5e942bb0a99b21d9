// Package common provides the shared CSV output layer.
package common

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"

	"mepoupeze/fatura-csv/internal/logging"
	"mepoupeze/fatura-csv/internal/models"
	"mepoupeze/fatura-csv/internal/parsererror"
)

var log = logging.GetLogger()

// Delimiter is the global CSV delimiter, configurable via config or the
// CSV_DELIMITER environment variable.
var Delimiter rune = ','

func init() {
	if val := os.Getenv("CSV_DELIMITER"); val != "" {
		SetDelimiter([]rune(val)[0])
	}
}

// SetDelimiter allows setting the delimiter for CSV output
func SetDelimiter(delim rune) {
	Delimiter = delim
	gocsv.TagSeparator = fmt.Sprintf("%c", delim)
}

// SetLogger allows setting a configured logger
func SetLogger(logger logging.Logger) {
	if logger == nil {
		return // Don't change the logger if nil is passed
	}
	log = logger
}

// transactionRow is the flat CSV shape of one transaction.
type transactionRow struct {
	Date          string `csv:"Date"`
	Description   string `csv:"Description"`
	Amount        string `csv:"Amount"`
	Card          string `csv:"Card"`
	Flux          string `csv:"Flux"`
	Source        string `csv:"Source"`
	NumeroParcela string `csv:"NumeroParcela"`
	Parcelas      string `csv:"Parcelas"`
	Category      string `csv:"Category"`
}

func toRow(t models.Transaction) transactionRow {
	row := transactionRow{
		Date:        t.ISODate(),
		Description: t.Description,
		Amount:      t.Amount.StringFixed(2),
		Card:        t.Card,
		Flux:        string(t.Flux),
		Source:      t.Source,
		Category:    t.Category,
	}
	if t.Installment != nil {
		row.NumeroParcela = strconv.Itoa(t.Installment.Number)
		row.Parcelas = strconv.Itoa(t.Installment.Total)
	}
	return row
}

// WriteTransactionsToCSV writes transactions to a CSV file in a standardized
// format. All output paths should use this function for consistent CSV shape.
func WriteTransactionsToCSV(transactions []models.Transaction, csvFile string) error {
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}

	log.Info("Writing transactions to CSV file",
		logging.Field{Key: logging.FieldOutputFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})

	dir := filepath.Dir(csvFile)
	if err := os.MkdirAll(dir, 0750); err != nil {
		log.WithError(err).Error("Failed to create directory")
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(csvFile)
	if err != nil {
		log.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	rows := make([]transactionRow, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, toRow(t))
	}

	csvWriter := csv.NewWriter(file)
	csvWriter.Comma = Delimiter

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		log.WithError(err).Error("Failed to marshal transactions to CSV")
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	log.Info("Successfully wrote transactions to CSV file",
		logging.Field{Key: logging.FieldOutputFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})

	return nil
}

// GeneralizedConvertToCSV combines validation, parsing and CSV writing.
func GeneralizedConvertToCSV(
	inputFile string,
	outputFile string,
	parseFunc func(string) ([]models.Transaction, error),
	validateFunc func(string) (bool, error),
) error {
	log.Info("Converting file to CSV",
		logging.Field{Key: logging.FieldInputFile, Value: inputFile},
		logging.Field{Key: logging.FieldOutputFile, Value: outputFile})

	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	if validateFunc != nil {
		isValid, err := validateFunc(inputFile)
		if err != nil {
			return fmt.Errorf("error validating file format: %w", err)
		}
		if !isValid {
			return &parsererror.ValidationError{FilePath: inputFile, Reason: "file format validation failed"}
		}
	}

	transactions, err := parseFunc(inputFile)
	if err != nil {
		return fmt.Errorf("error parsing file: %w", err)
	}

	if err := WriteTransactionsToCSV(transactions, outputFile); err != nil {
		return fmt.Errorf("error writing transactions to CSV: %w", err)
	}

	log.Info("Successfully converted file to CSV",
		logging.Field{Key: logging.FieldInputFile, Value: inputFile},
		logging.Field{Key: logging.FieldOutputFile, Value: outputFile},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})

	return nil
}
