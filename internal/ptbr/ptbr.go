// Package ptbr converts between Brazilian decimal notation
// ("." thousands, "," decimal) and exact decimal values.
package ptbr

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"mepoupeze/fatura-csv/internal/parsererror"
)

// ParseValue parses a pt-BR formatted monetary string into an exact decimal.
// Accepts an optional leading sign, possibly separated from the digits by a
// space ("- 0,18"), grouped thousands and a two-digit comma fraction.
func ParseValue(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty monetary value")
	}

	negative := false
	switch raw[0] {
	case '-':
		negative = true
		raw = strings.TrimSpace(raw[1:])
	case '+':
		raw = strings.TrimSpace(raw[1:])
	}

	raw = strings.ReplaceAll(raw, ".", "")
	raw = strings.Replace(raw, ",", ".", 1)

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &parsererror.ParseError{Parser: "ptbr", Field: "value", Value: s, Err: err}
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// FormatValue renders a decimal in pt-BR notation with two fixed decimal
// places and dot-grouped thousands, e.g. 9139.39 -> "9.139,39".
func FormatValue(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		grouped.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if grouped.Len() > 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteString(intPart[i : i+3])
	}

	return sign + grouped.String() + "," + fracPart
}
