// Package patterns holds the compiled lexical matchers for statement lines:
// dates, pt-BR monetary values, installment fractions and card-section
// markers. All matchers are pure and stateless.
package patterns

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"mepoupeze/fatura-csv/internal/ptbr"
	"mepoupeze/fatura-csv/internal/textnorm"
)

var (
	dateRe     = regexp.MustCompile(`\d{1,2}/\d{1,2}(?:/\d{4})?`)
	fullDateRe = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	valueRe    = regexp.MustCompile(`[-+]?\s?\d{1,3}(?:\.\d{3})*,\d{2}`)
	fractionRe = regexp.MustCompile(`\d{1,2}/\d{1,2}`)
	yearRe     = regexp.MustCompile(`20\d{2}`)

	cardStartRe = regexp.MustCompile(`([a-z][a-z .]*?)\s*\(\s*final\s*(\d{4})\s*\)`)
	cardTotalRe = regexp.MustCompile(`lancamentos\s+no\s+cartao\s*\(\s*final\s*(\d{4})\s*\)\s*([-+]?\s?\d{1,3}(?:\.\d{3})*,\d{2})`)
)

// Words that can precede "(final NNNN)" without being a cardholder name.
var notHolderWords = map[string]bool{
	"lancamentos": true,
	"cartao":      true,
	"total":       true,
	"limites":     true,
}

// DateMatch is one DD/MM or DD/MM/YYYY occurrence. Offsets are byte
// positions into the scanned line.
type DateMatch struct {
	Start, End int
	Day, Month int
	Year       int
	HasYear    bool
}

// ValueMatch is one pt-BR monetary occurrence, already parsed to a decimal.
type ValueMatch struct {
	Start, End int
	Raw        string
	Amount     decimal.Decimal
}

// FractionMatch is one N/M occurrence, the shape shared by short dates and
// installment annotations.
type FractionMatch struct {
	Start, End int
	Num, Den   int
}

// CardStart is a card-section start marker: cardholder name plus last four
// digits. Offsets are rune positions into the original line.
type CardStart struct {
	Holder     string
	Last4      string
	Start, End int
}

// CardTotal is a card-section subtotal marker carrying the printed control
// total. Offsets are rune positions into the original line.
type CardTotal struct {
	Last4      string
	Amount     decimal.Decimal
	Start, End int
}

// standalone reports whether the match at [start,end) is bounded by
// non-digit, non-slash characters, rejecting fragments of longer tokens.
func standalone(s string, start, end int) bool {
	if start > 0 {
		c := s[start-1]
		if c >= '0' && c <= '9' || c == '/' {
			return false
		}
	}
	if end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' || c == '/' {
			return false
		}
	}
	return true
}

// FindDates returns every standalone date occurrence with day 1-31 and
// month 1-12. No calendar validation beyond the range check.
func FindDates(line string) []DateMatch {
	var out []DateMatch
	for _, loc := range dateRe.FindAllStringIndex(line, -1) {
		if !standalone(line, loc[0], loc[1]) {
			continue
		}
		token := line[loc[0]:loc[1]]
		parts := strings.Split(token, "/")
		day, _ := strconv.Atoi(parts[0])
		month, _ := strconv.Atoi(parts[1])
		if day < 1 || day > 31 || month < 1 || month > 12 {
			continue
		}
		m := DateMatch{Start: loc[0], End: loc[1], Day: day, Month: month}
		if len(parts) == 3 {
			m.Year, _ = strconv.Atoi(parts[2])
			m.HasYear = true
		}
		out = append(out, m)
	}
	return out
}

// FindValues returns every standalone pt-BR monetary occurrence.
func FindValues(line string) []ValueMatch {
	var out []ValueMatch
	for _, loc := range valueRe.FindAllStringIndex(line, -1) {
		if !standaloneValue(line, loc[0], loc[1]) {
			continue
		}
		raw := line[loc[0]:loc[1]]
		amount, err := ptbr.ParseValue(raw)
		if err != nil {
			continue
		}
		out = append(out, ValueMatch{Start: loc[0], End: loc[1], Raw: raw, Amount: amount})
	}
	return out
}

func standaloneValue(s string, start, end int) bool {
	// A sign or space inside the match already separates it from whatever
	// precedes; only a match opening directly with a digit can be the tail
	// fragment of a longer number.
	if start > 0 && s[start] >= '0' && s[start] <= '9' {
		c := s[start-1]
		if c >= '0' && c <= '9' || c == '.' || c == ',' {
			return false
		}
	}
	if end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			return false
		}
	}
	return true
}

// FindFractions returns every standalone N/M occurrence, the candidates for
// installment annotations.
func FindFractions(line string) []FractionMatch {
	var out []FractionMatch
	for _, loc := range fractionRe.FindAllStringIndex(line, -1) {
		if !standalone(line, loc[0], loc[1]) {
			continue
		}
		parts := strings.Split(line[loc[0]:loc[1]], "/")
		num, _ := strconv.Atoi(parts[0])
		den, _ := strconv.Atoi(parts[1])
		out = append(out, FractionMatch{Start: loc[0], End: loc[1], Num: num, Den: den})
	}
	return out
}

// HasFullDate reports whether s contains an explicit DD/MM/YYYY date.
func HasFullDate(s string) bool {
	return fullDateRe.MatchString(s)
}

// FindYear returns the first plausible 4-digit year token in the line.
func FindYear(line string) (int, bool) {
	tok := yearRe.FindString(line)
	if tok == "" {
		return 0, false
	}
	year, _ := strconv.Atoi(tok)
	return year, true
}

// MatchCardStart recognizes a card-section start marker on the line,
// matching case- and accent-insensitively. Returns nil when the line carries
// no start marker or the candidate holder is a statement phrase rather than
// a name.
func MatchCardStart(line string) *CardStart {
	fl := foldLine(line)
	m := cardStartRe.FindStringSubmatchIndex(fl.text)
	if m == nil {
		return nil
	}
	holder := textnorm.CollapseSpaces(strings.Trim(fl.text[m[2]:m[3]], " ."))
	if holder == "" {
		return nil
	}
	for _, word := range strings.Fields(holder) {
		if notHolderWords[word] {
			return nil
		}
	}
	return &CardStart{
		Holder: strings.ToUpper(holder),
		Last4:  fl.text[m[4]:m[5]],
		Start:  fl.runeOffset(m[0]),
		End:    fl.runeOffset(m[1]),
	}
}

// MatchCardTotal recognizes the "lançamentos no cartão (final NNNN) <value>"
// subtotal marker. Returns nil when absent or the value is malformed.
func MatchCardTotal(line string) *CardTotal {
	fl := foldLine(line)
	m := cardTotalRe.FindStringSubmatchIndex(fl.text)
	if m == nil {
		return nil
	}
	amount, err := ptbr.ParseValue(fl.text[m[4]:m[5]])
	if err != nil {
		return nil
	}
	return &CardTotal{
		Last4:  fl.text[m[2]:m[3]],
		Amount: amount,
		Start:  fl.runeOffset(m[0]),
		End:    fl.runeOffset(m[1]),
	}
}

// foldedLine pairs the folded form of a line with a byte-to-rune offset map
// back into the original. Folding one rune can emit zero or several folded
// runes (stripped combining marks, compatibility expansions such as ligatures),
// so folded offsets cannot be converted by rune counting alone.
type foldedLine struct {
	text string
	src  []int // src[byteOff] = rune offset in the original line
}

func foldLine(s string) foldedLine {
	var b strings.Builder
	src := make([]int, 0, len(s)+1)
	runeIdx := 0
	for _, r := range s {
		folded := textnorm.Fold(string(r))
		b.WriteString(folded)
		for i := 0; i < len(folded); i++ {
			src = append(src, runeIdx)
		}
		runeIdx++
	}
	src = append(src, runeIdx)
	return foldedLine{text: b.String(), src: src}
}

// runeOffset translates a byte offset into the folded text to a rune offset
// into the original line.
func (f foldedLine) runeOffset(byteOff int) int {
	return f.src[byteOff]
}
