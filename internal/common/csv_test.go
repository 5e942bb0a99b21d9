package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mepoupeze/fatura-csv/internal/models"
	"mepoupeze/fatura-csv/internal/parsererror"
)

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{
			Date:        time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC),
			Description: "SUPERMERCADO ZONA SUL",
			Amount:      decimal.RequireFromString("100.00"),
			Card:        "Final 9826 - ALINE I DE SOUSA",
			Flux:        models.FluxSaida,
			Source:      models.SourceCartaoCredito,
			Category:    "Alimentação",
		},
		{
			Date:        time.Date(2025, time.May, 12, 0, 0, 0, 0, time.UTC),
			Description: "PG *SHOPGEORGIA",
			Amount:      decimal.RequireFromString("356.68"),
			Card:        "Final 9826 - ALINE I DE SOUSA",
			Flux:        models.FluxSaida,
			Source:      models.SourceCartaoCredito,
			Installment: &models.Installment{Number: 4, Total: 5},
		},
	}
}

func TestWriteTransactionsToCSV(t *testing.T) {
	dir := t.TempDir()
	csvFile := filepath.Join(dir, "out", "fatura.csv")

	err := WriteTransactionsToCSV(sampleTransactions(), csvFile)
	require.NoError(t, err)

	data, err := os.ReadFile(csvFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "Date,Description,Amount,Card,Flux,Source,NumeroParcela,Parcelas,Category", lines[0])
	assert.Contains(t, lines[1], "2025-07-13")
	assert.Contains(t, lines[1], "SUPERMERCADO ZONA SUL")
	assert.Contains(t, lines[1], "100.00")
	assert.Contains(t, lines[1], "Alimentação")
	assert.Contains(t, lines[2], "PG *SHOPGEORGIA")
	assert.Contains(t, lines[2], ",4,5,")
}

func TestWriteTransactionsToCSVNil(t *testing.T) {
	err := WriteTransactionsToCSV(nil, filepath.Join(t.TempDir(), "out.csv"))
	assert.Error(t, err)
}

func TestWriteTransactionsToCSVEmpty(t *testing.T) {
	csvFile := filepath.Join(t.TempDir(), "empty.csv")

	err := WriteTransactionsToCSV([]models.Transaction{}, csvFile)
	require.NoError(t, err)

	data, err := os.ReadFile(csvFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Date")
}

func TestGeneralizedConvertToCSV(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	output := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(input, []byte("conteudo"), 0600))

	parse := func(string) ([]models.Transaction, error) {
		return sampleTransactions(), nil
	}
	validate := func(string) (bool, error) {
		return true, nil
	}

	require.NoError(t, GeneralizedConvertToCSV(input, output, parse, validate))
	assert.FileExists(t, output)
}

func TestGeneralizedConvertToCSVInvalidFormat(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(input, []byte("conteudo"), 0600))

	validate := func(string) (bool, error) {
		return false, nil
	}

	err := GeneralizedConvertToCSV(input, filepath.Join(dir, "out.csv"), nil, validate)
	require.Error(t, err)

	var validationErr *parsererror.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, input, validationErr.FilePath)
}

func TestGeneralizedConvertToCSVMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := GeneralizedConvertToCSV(filepath.Join(dir, "nope.txt"), filepath.Join(dir, "out.csv"), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
