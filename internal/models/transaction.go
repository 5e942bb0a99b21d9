// Package models provides the data structures shared by the statement parser.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Flux is the direction of money movement on a statement line.
type Flux string

const (
	// FluxSaida is an outflow (a charge, printed with a positive face value).
	FluxSaida Flux = "Saida"
	// FluxEntrada is an inflow (a credit or refund, printed negative).
	FluxEntrada Flux = "Entrada"
)

// SourceCartaoCredito labels every transaction extracted from a card statement.
const SourceCartaoCredito = "Cartão de Crédito"

// Installment is the N-of-M annotation attached to installment purchases.
type Installment struct {
	Number int
	Total  int
}

// Transaction is one accepted statement line. Amount is always the absolute
// magnitude; Flux carries the sign of the printed value.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Card        string // "Final NNNN - HOLDER NAME", empty when not tied to a card
	Flux        Flux
	Source      string
	Installment *Installment
	Category    string
}

// SignedAmount returns the amount with the statement sign restored:
// positive for Saida, negative for Entrada.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Flux == FluxEntrada {
		return t.Amount.Neg()
	}
	return t.Amount
}

// ISODate renders the transaction date as YYYY-MM-DD.
func (t *Transaction) ISODate() string {
	return t.Date.Format("2006-01-02")
}

// Key identifies a transaction for column-merge deduplication.
func (t *Transaction) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", t.ISODate(), t.Description, t.Amount.StringFixed(2), t.Card)
}
