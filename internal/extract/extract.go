// Package extract implements the per-candidate field extractors: one date,
// one signed monetary value, an optional installment pair and a description,
// disambiguated by the positional heuristics the statement layout demands.
package extract

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mepoupeze/fatura-csv/internal/config"
	"mepoupeze/fatura-csv/internal/models"
	"mepoupeze/fatura-csv/internal/patterns"
	"mepoupeze/fatura-csv/internal/textnorm"
)

// Outcome tags an extractor result so callers handle ambiguity explicitly
// instead of branching on match counts.
type Outcome int

const (
	NoMatch Outcome = iota
	OneMatch
	MultipleMatches
)

// DateResult is the outcome of ExtractDate. Date is resolved to a calendar
// date only when Outcome != NoMatch.
type DateResult struct {
	Outcome Outcome
	Date    time.Time
	Match   patterns.DateMatch
	All     []patterns.DateMatch
}

// ValueResult is the outcome of ExtractValue. Match is the chosen occurrence
// when Outcome != NoMatch.
type ValueResult struct {
	Outcome Outcome
	Match   patterns.ValueMatch
	All     []patterns.ValueMatch
}

// Options carries the tuned extraction thresholds. The defaults reproduce the
// calibrated values; override through configuration for recalibration runs.
type Options struct {
	MinValue decimal.Decimal
	MaxValue decimal.Decimal

	// Installment disambiguation ladder.
	Window     int     // chars before the value searched for N/M
	MinStart   int     // N/M starting earlier is the transaction date
	MinRatio   float64 // below this position ratio, never an installment
	MidRatio   float64 // above it, context demands grow
	EqualRatio float64 // extra bar for the self-referential N==N shape
	MaxTotal   int     // upper bound on total installments
}

// DefaultOptions returns the calibrated thresholds.
func DefaultOptions() Options {
	return Options{
		MinValue:   decimal.NewFromFloat(0.01),
		MaxValue:   decimal.NewFromInt(1000000),
		Window:     50,
		MinStart:   10,
		MinRatio:   0.15,
		MidRatio:   0.40,
		EqualRatio: 0.50,
		MaxTotal:   31,
	}
}

// OptionsFromConfig builds Options from the configured thresholds, falling
// back to the calibrated defaults for unset or malformed entries.
func OptionsFromConfig(t config.Thresholds) Options {
	opt := DefaultOptions()
	if min, err := decimal.NewFromString(t.MinValue); err == nil && min.IsPositive() {
		opt.MinValue = min
	}
	if max, err := decimal.NewFromString(t.MaxValue); err == nil && max.IsPositive() {
		opt.MaxValue = max
	}
	if t.InstallmentWindow > 0 {
		opt.Window = t.InstallmentWindow
	}
	if t.InstallmentMinStart > 0 {
		opt.MinStart = t.InstallmentMinStart
	}
	if t.InstallmentMinRatio > 0 {
		opt.MinRatio = t.InstallmentMinRatio
	}
	if t.InstallmentMidRatio > 0 {
		opt.MidRatio = t.InstallmentMidRatio
	}
	if t.InstallmentEqualRatio > 0 {
		opt.EqualRatio = t.InstallmentEqualRatio
	}
	if t.InstallmentMaxTotal > 0 {
		opt.MaxTotal = t.InstallmentMaxTotal
	}
	return opt
}

// ExtractValue collects every monetary occurrence inside the accepted
// magnitude band and returns the left-most one, or the right-most when
// preferLast is set (the second half of a concatenated line reads
// right-to-left).
func ExtractValue(line string, preferLast bool, opt Options) ValueResult {
	var inBand []patterns.ValueMatch
	for _, m := range patterns.FindValues(line) {
		abs := m.Amount.Abs()
		if abs.LessThan(opt.MinValue) || abs.GreaterThan(opt.MaxValue) {
			continue
		}
		inBand = append(inBand, m)
	}
	switch len(inBand) {
	case 0:
		return ValueResult{Outcome: NoMatch}
	case 1:
		return ValueResult{Outcome: OneMatch, Match: inBand[0], All: inBand}
	}
	chosen := inBand[0]
	if preferLast {
		chosen = inBand[len(inBand)-1]
	}
	return ValueResult{Outcome: MultipleMatches, Match: chosen, All: inBand}
}

// ExtractDate returns the leading date of the candidate line, resolving the
// year to defaultYear unless the token carries an explicit one.
func ExtractDate(line string, defaultYear int) DateResult {
	all := patterns.FindDates(line)
	if len(all) == 0 {
		return DateResult{Outcome: NoMatch}
	}
	m := all[0]
	year := defaultYear
	if m.HasYear {
		year = m.Year
	}
	if year == 0 {
		year = time.Now().Year()
	}
	outcome := OneMatch
	if len(all) > 1 {
		outcome = MultipleMatches
	}
	return DateResult{
		Outcome: outcome,
		Date:    time.Date(year, time.Month(m.Month), m.Day, 0, 0, 0, 0, time.UTC),
		Match:   m,
		All:     all,
	}
}

var installmentKeywords = []string{"parcela", "parcelas", "x de", "de x", "vezes"}

// ExtractInstallments looks for an N/M annotation in the window immediately
// preceding the chosen value and applies the acceptance ladder that keeps a
// second transaction's date from being misread as parcel notation. Returns
// the annotation and its span, or nil when no credible one exists.
func ExtractInstallments(line string, value patterns.ValueMatch, opt Options) (*models.Installment, *patterns.FractionMatch) {
	windowStart := value.Start - opt.Window
	if windowStart < 0 {
		windowStart = 0
	}

	var frac *patterns.FractionMatch
	for _, f := range patterns.FindFractions(line) {
		if f.Start >= windowStart && f.End <= value.Start {
			f := f
			frac = &f // last one wins, it sits closest to the value
		}
	}
	if frac == nil {
		return nil, nil
	}
	if frac.Num < 1 || frac.Num > frac.Den || frac.Den > opt.MaxTotal {
		return nil, nil
	}
	if frac.Start < opt.MinStart {
		return nil, nil
	}

	ratio := float64(frac.Start) / float64(len(line))
	if ratio < opt.MinRatio {
		return nil, nil
	}

	// An explicit DD/MM/YYYY nearby is strong evidence of a real date.
	around := line[max(0, frac.Start-20):min(len(line), frac.End+20)]
	if patterns.HasFullDate(around) {
		return nil, nil
	}

	context := line[max(0, frac.Start-20):frac.Start]
	alpha := textnorm.AlphaCount(context)
	keyword := hasInstallmentKeyword(line, frac)

	if frac.Num == frac.Den {
		if !keyword && !(ratio > opt.EqualRatio && alpha >= 3) {
			return nil, nil
		}
	}

	switch {
	case ratio <= opt.MidRatio:
		if !keyword && alpha < 5 {
			return nil, nil
		}
	default:
		if frac.Start < opt.MinStart {
			return nil, nil
		}
		if !keyword && alpha < 5 {
			return nil, nil
		}
	}

	return &models.Installment{Number: frac.Num, Total: frac.Den}, frac
}

func hasInstallmentKeyword(line string, frac *patterns.FractionMatch) bool {
	region := textnorm.Fold(line[max(0, frac.Start-30):min(len(line), frac.End+10)])
	for _, kw := range installmentKeywords {
		if strings.Contains(region, kw) {
			return true
		}
	}
	return false
}

// ExtractDescription takes the text strictly between the date and the value,
// strips the installment fragment and stray punctuation, and returns "" when
// nothing alphabetic enough remains.
func ExtractDescription(line string, date patterns.DateMatch, value patterns.ValueMatch, frac *patterns.FractionMatch) string {
	if date.End > value.Start {
		return ""
	}
	raw := line[date.End:value.Start]

	if frac != nil && frac.Start >= date.End && frac.End <= value.Start {
		raw = line[date.End:frac.Start] + line[frac.End:value.Start]
	}

	desc := strings.Trim(raw, " \t-–.,;:")
	desc = textnorm.CollapseSpaces(desc)
	if !textnorm.HasAlphaRun(desc, 3) {
		return ""
	}
	return desc
}

// MarkerKind discriminates the card-section markers a line can carry.
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerStart
	MarkerTotal
)

// CardMarker is a detected section boundary on one line.
type CardMarker struct {
	Kind  MarkerKind
	Start *patterns.CardStart
	Total *patterns.CardTotal
}

// DetectCardMarker recognizes a start or total marker on the line. The total
// phrase embeds the same "(final NNNN)" shape as a start marker, so it is
// checked first.
func DetectCardMarker(line string) CardMarker {
	if t := patterns.MatchCardTotal(line); t != nil {
		return CardMarker{Kind: MarkerTotal, Total: t}
	}
	if s := patterns.MatchCardStart(line); s != nil {
		return CardMarker{Kind: MarkerStart, Start: s}
	}
	return CardMarker{Kind: MarkerNone}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
