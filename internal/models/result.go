package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RejectReason tags why a line (or a split candidate) was not accepted.
type RejectReason string

const (
	ReasonNoDateOrValue      RejectReason = "no-date-or-value"
	ReasonInvalidDescription RejectReason = "invalid-description"
	ReasonDateOutOfOrder     RejectReason = "date-out-of-order"
	ReasonDuplicateSubtotal  RejectReason = "duplicate-subtotal"
	ReasonAmountOutOfRange   RejectReason = "amount-out-of-range"
	ReasonNoActiveCard       RejectReason = "no-active-card"
)

// RejectedLine is an immutable audit record for a line that did not yield a
// transaction. Rejections are never retried.
type RejectedLine struct {
	Line   string       `json:"line"`
	Reason RejectReason `json:"reason"`
}

// CardSection tracks one card block of the statement, bounded by a start
// marker and a subtotal marker. Sections with the same card number but a
// different label are tracked independently.
type CardSection struct {
	Last4        string
	Holder       string
	ControlTotal decimal.Decimal
	HasControl   bool
}

// Label renders the output identifier for the section's card.
func (s *CardSection) Label() string {
	if s.Holder == "" {
		return "Final " + s.Last4
	}
	return "Final " + s.Last4 + " - " + s.Holder
}

// CardStats is the reconciliation report for one card, pt-BR formatted.
type CardStats struct {
	ControlTotal    string `json:"control_total"`
	CalculatedTotal string `json:"calculated_total"`
	Delta           string `json:"delta"`
}

// ParseStats aggregates one statement parse. Monetary sums are pt-BR
// formatted strings to match the source document convention.
type ParseStats struct {
	TotalLines   int                  `json:"total_lines"`
	Matched      int                  `json:"matched"`
	Rejected     int                  `json:"rejected"`
	SumAbsValues string               `json:"sum_abs_values"`
	SumSaida     string               `json:"sum_saida"`
	SumEntrada   string               `json:"sum_entrada"`
	ByCard       map[string]CardStats `json:"by_card"`
}

// ParseResult is the full output contract of one statement parse.
type ParseResult struct {
	Items   []Transaction  `json:"items"`
	Stats   ParseStats     `json:"stats"`
	Rejects []RejectedLine `json:"rejects"`
}

// transactionJSON is the wire shape of one item (§ output contract): ISO
// date, fixed two-place amount, nullable card label and installment pair.
type transactionJSON struct {
	Date          string  `json:"date"`
	Description   string  `json:"description"`
	Amount        string  `json:"amount"`
	Last4         *string `json:"last4"`
	Flux          Flux    `json:"flux"`
	Source        string  `json:"source"`
	Parcelas      *int    `json:"parcelas"`
	NumeroParcela *int    `json:"numero_parcela"`
	Category      string  `json:"category,omitempty"`
}

// MarshalJSON renders the transaction in the output contract shape.
func (t Transaction) MarshalJSON() ([]byte, error) {
	out := transactionJSON{
		Date:        t.ISODate(),
		Description: t.Description,
		Amount:      t.Amount.StringFixed(2),
		Flux:        t.Flux,
		Source:      t.Source,
		Category:    t.Category,
	}
	if t.Card != "" {
		card := t.Card
		out.Last4 = &card
	}
	if t.Installment != nil {
		parcelas, numero := t.Installment.Total, t.Installment.Number
		out.Parcelas = &parcelas
		out.NumeroParcela = &numero
	}
	return json.Marshal(out)
}
