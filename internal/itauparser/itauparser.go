// Package itauparser is the entry point for parsing Itaú credit-card
// statement text: it feeds the extracted line sequence through the
// classifier and assembles the final result with reconciliation stats.
package itauparser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mepoupeze/fatura-csv/internal/classifier"
	"mepoupeze/fatura-csv/internal/common"
	"mepoupeze/fatura-csv/internal/config"
	"mepoupeze/fatura-csv/internal/extract"
	"mepoupeze/fatura-csv/internal/logging"
	"mepoupeze/fatura-csv/internal/models"
	"mepoupeze/fatura-csv/internal/parsererror"
	"mepoupeze/fatura-csv/internal/patterns"
	"mepoupeze/fatura-csv/internal/rules"
	"mepoupeze/fatura-csv/internal/stats"
)

var log = logging.GetLogger()

// SetLogger allows setting a custom logger for this package.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
	classifier.SetLogger(logger)
}

// Options bundles the tunables of one parse run.
type Options struct {
	Extract       extract.Options
	ToleranceDays int
	DefaultYear   int // 0 means detect, falling back to the current year
	YearScanLines int
	Rules         *rules.Rules
}

// DefaultParseOptions returns the calibrated defaults.
func DefaultParseOptions() Options {
	return Options{
		Extract:       extract.DefaultOptions(),
		ToleranceDays: 60,
		YearScanLines: 100,
		Rules:         rules.Default(),
	}
}

var activeOptions = DefaultParseOptions()

// Configure replaces the options used by Parse and ParseFile. Called once at
// startup after configuration is loaded.
func Configure(opt Options) {
	activeOptions = opt
}

// OptionsFromAppConfig maps the configured thresholds onto parse options.
func OptionsFromAppConfig(cfg *config.Config) Options {
	opt := DefaultParseOptions()
	opt.Extract = extract.OptionsFromConfig(cfg.Parser)
	if cfg.Parser.DateToleranceDays > 0 {
		opt.ToleranceDays = cfg.Parser.DateToleranceDays
	}
	if cfg.Parser.DefaultInvoiceYear > 0 {
		opt.DefaultYear = cfg.Parser.DefaultInvoiceYear
	}
	if cfg.Parser.InvoiceYearScanLines > 0 {
		opt.YearScanLines = cfg.Parser.InvoiceYearScanLines
	}
	return opt
}

// Parse classifies the statement line stream with the active options.
func Parse(r io.Reader) (*models.ParseResult, error) {
	return ParseWithOptions(r, activeOptions)
}

// ParseWithOptions classifies the statement line stream. Structural input
// problems (empty stream) return an error; everything else is recorded as
// items or rejections in the result.
func ParseWithOptions(r io.Reader, opt Options) (*models.ParseResult, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	if !hasContent(lines) {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat: "Itaú fatura text lines",
			Msg:            "empty input stream",
		}
	}

	year := DetectInvoiceYear(lines, opt.DefaultYear, opt.YearScanLines)
	log.Debug("invoice year resolved", logging.Field{Key: "year", Value: year})

	cls := classifier.New(opt.Extract, year, opt.ToleranceDays)
	for _, line := range lines {
		cls.ProcessLine(line)
	}

	items := cls.Items()
	if opt.Rules != nil {
		opt.Rules.Apply(items)
	}
	rejects := cls.Rejects()
	if rejects == nil {
		rejects = []models.RejectedLine{}
	}

	result := &models.ParseResult{
		Items:   items,
		Stats:   stats.Build(items, rejects, cls.Controls(), cls.TotalLines()),
		Rejects: rejects,
	}

	log.Info("statement parsed",
		logging.Field{Key: logging.FieldCount, Value: len(items)},
		logging.Field{Key: "rejected", Value: len(rejects)})
	return result, nil
}

// DetectInvoiceYear scans the leading lines for a 4-digit year token,
// falling back to the configured default and finally the current year.
func DetectInvoiceYear(lines []string, fallback, scanLines int) int {
	if scanLines <= 0 {
		scanLines = 100
	}
	for i, line := range lines {
		if i >= scanLines {
			break
		}
		if year, ok := patterns.FindYear(line); ok {
			return year
		}
	}
	if fallback > 0 {
		return fallback
	}
	return time.Now().Year()
}

// ParseFile parses a statement text file from disk.
func ParseFile(path string) (*models.ParseResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening statement file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file",
				logging.Field{Key: logging.FieldFile, Value: path})
		}
	}()

	result, err := ParseWithOptions(file, activeOptions)
	if err != nil {
		if inv, ok := err.(*parsererror.InvalidFormatError); ok {
			inv.FilePath = path
		}
		return nil, err
	}
	return result, nil
}

// ValidateFormat checks whether the file plausibly holds an extracted Itaú
// statement: at least one line carrying a date and a value, or a card-section
// marker, within the leading lines.
func ValidateFormat(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("error opening file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file",
				logging.Field{Key: logging.FieldFile, Value: path})
		}
	}()

	scanner := bufio.NewScanner(file)
	for i := 0; scanner.Scan() && i < 500; i++ {
		line := scanner.Text()
		if extract.DetectCardMarker(line).Kind != extract.MarkerNone {
			return true, nil
		}
		if len(patterns.FindDates(line)) > 0 && len(patterns.FindValues(line)) > 0 {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("error reading file: %w", err)
	}
	return false, nil
}

// ConvertToCSV parses a statement text file and writes the accepted
// transactions as CSV.
func ConvertToCSV(inputFile, outputFile string) error {
	return common.GeneralizedConvertToCSV(inputFile, outputFile, parseTransactions, ValidateFormat)
}

func parseTransactions(path string) ([]models.Transaction, error) {
	result, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// BatchConvert converts every .txt statement under inputDir, writing one CSV
// per statement into outputDir. Returns the number of converted files.
func BatchConvert(inputDir, outputDir string) (int, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return 0, fmt.Errorf("error reading input directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			continue
		}
		input := filepath.Join(inputDir, entry.Name())
		output := filepath.Join(outputDir, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))+".csv")
		if err := ConvertToCSV(input, output); err != nil {
			log.WithError(err).Error("Failed to convert statement",
				logging.Field{Key: logging.FieldInputFile, Value: input})
			continue
		}
		count++
	}

	log.Info("batch conversion finished",
		logging.Field{Key: logging.FieldCount, Value: count})
	return count, nil
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return lines, nil
}

func hasContent(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}
