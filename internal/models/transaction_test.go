package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedAmount(t *testing.T) {
	saida := Transaction{Amount: decimal.RequireFromString("10.50"), Flux: FluxSaida}
	entrada := Transaction{Amount: decimal.RequireFromString("10.50"), Flux: FluxEntrada}

	assert.Equal(t, "10.5", saida.SignedAmount().String())
	assert.Equal(t, "-10.5", entrada.SignedAmount().String())
}

func TestKeyDistinguishesCards(t *testing.T) {
	base := Transaction{
		Date:        time.Date(2025, time.July, 13, 0, 0, 0, 0, time.UTC),
		Description: "SUPERMERCADO",
		Amount:      decimal.RequireFromString("100.00"),
		Card:        "Final 9826 - ALINE",
	}
	other := base
	other.Card = "Final 1234 - JOAO"

	assert.NotEqual(t, base.Key(), other.Key())

	same := base
	same.Amount = decimal.RequireFromString("100.0000")
	assert.Equal(t, base.Key(), same.Key())
}

func TestTransactionMarshalJSON(t *testing.T) {
	tx := Transaction{
		Date:        time.Date(2025, time.May, 12, 0, 0, 0, 0, time.UTC),
		Description: "PG *SHOPGEORGIA",
		Amount:      decimal.RequireFromString("356.68"),
		Card:        "Final 9826 - ALINE I DE SOUSA",
		Flux:        FluxSaida,
		Source:      SourceCartaoCredito,
		Installment: &Installment{Number: 4, Total: 5},
	}

	data, err := json.Marshal(tx)
	require.NoError(t, err)

	expected := `{
		"date": "2025-05-12",
		"description": "PG *SHOPGEORGIA",
		"amount": "356.68",
		"last4": "Final 9826 - ALINE I DE SOUSA",
		"flux": "Saida",
		"source": "Cartão de Crédito",
		"parcelas": 5,
		"numero_parcela": 4
	}`
	assert.JSONEq(t, expected, string(data))
}

func TestTransactionMarshalJSONNullableFields(t *testing.T) {
	tx := Transaction{
		Date:        time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC),
		Description: "ANUIDADE DIFERENCIADA",
		Amount:      decimal.RequireFromString("25.00"),
		Flux:        FluxSaida,
		Source:      SourceCartaoCredito,
	}

	data, err := json.Marshal(tx)
	require.NoError(t, err)

	expected := `{
		"date": "2025-07-15",
		"description": "ANUIDADE DIFERENCIADA",
		"amount": "25.00",
		"last4": null,
		"flux": "Saida",
		"source": "Cartão de Crédito",
		"parcelas": null,
		"numero_parcela": null
	}`
	assert.JSONEq(t, expected, string(data))
}

func TestCardSectionLabel(t *testing.T) {
	withHolder := CardSection{Last4: "9826", Holder: "ALINE I DE SOUSA"}
	assert.Equal(t, "Final 9826 - ALINE I DE SOUSA", withHolder.Label())

	noHolder := CardSection{Last4: "9826"}
	assert.Equal(t, "Final 9826", noHolder.Label())
}
