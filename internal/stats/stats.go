// Package stats aggregates accepted transactions per card and reconciles
// them against the printed control totals.
package stats

import (
	"regexp"
	"sort"

	"github.com/shopspring/decimal"

	"mepoupeze/fatura-csv/internal/models"
	"mepoupeze/fatura-csv/internal/ptbr"
)

var last4Re = regexp.MustCompile(`Final\s+(\d{4})`)

// UnknownCard keys transactions not tied to any card section.
const UnknownCard = "unknown"

type cardSums struct {
	saida   decimal.Decimal
	entrada decimal.Decimal
}

// Build computes the reconciliation report: per-card control vs calculated
// totals with signed delta, plus global aggregates. A non-zero delta signals
// an upstream classification error.
func Build(items []models.Transaction, rejects []models.RejectedLine, controls map[string]decimal.Decimal, totalLines int) models.ParseStats {
	sumSaida := decimal.Zero
	sumEntrada := decimal.Zero
	byCardSums := map[string]*cardSums{}

	for _, item := range items {
		key := UnknownCard
		if m := last4Re.FindStringSubmatch(item.Card); m != nil {
			key = m[1]
		}
		sums := byCardSums[key]
		if sums == nil {
			sums = &cardSums{saida: decimal.Zero, entrada: decimal.Zero}
			byCardSums[key] = sums
		}
		if item.Flux == models.FluxEntrada {
			sumEntrada = sumEntrada.Add(item.Amount)
			sums.entrada = sums.entrada.Add(item.Amount)
		} else {
			sumSaida = sumSaida.Add(item.Amount)
			sums.saida = sums.saida.Add(item.Amount)
		}
	}

	keys := map[string]bool{}
	for key := range byCardSums {
		keys[key] = true
	}
	for key := range controls {
		keys[key] = true
	}
	sorted := make([]string, 0, len(keys))
	for key := range keys {
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)

	byCard := make(map[string]models.CardStats, len(sorted))
	for _, key := range sorted {
		sums := byCardSums[key]
		if sums == nil {
			sums = &cardSums{saida: decimal.Zero, entrada: decimal.Zero}
		}
		calculated := sums.saida.Sub(sums.entrada)

		control := decimal.Zero
		if key != UnknownCard {
			if v, ok := controls[key]; ok {
				control = v
			}
		}
		delta := control.Sub(calculated)

		byCard[key] = models.CardStats{
			ControlTotal:    ptbr.FormatValue(control),
			CalculatedTotal: ptbr.FormatValue(calculated),
			Delta:           ptbr.FormatValue(delta),
		}
	}

	return models.ParseStats{
		TotalLines:   totalLines,
		Matched:      len(items),
		Rejected:     len(rejects),
		SumAbsValues: ptbr.FormatValue(sumSaida.Sub(sumEntrada)),
		SumSaida:     ptbr.FormatValue(sumSaida),
		SumEntrada:   ptbr.FormatValue(sumEntrada),
		ByCard:       byCard,
	}
}
