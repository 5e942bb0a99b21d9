// Package classifier implements the single-pass state machine that turns the
// ordered statement line sequence into accepted transactions, rejection
// records and per-card control totals.
package classifier

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mepoupeze/fatura-csv/internal/extract"
	"mepoupeze/fatura-csv/internal/logging"
	"mepoupeze/fatura-csv/internal/models"
	"mepoupeze/fatura-csv/internal/patterns"
	"mepoupeze/fatura-csv/internal/splitter"
	"mepoupeze/fatura-csv/internal/textnorm"
)

var log = logging.GetLogger()

// SetLogger allows setting a custom logger for this package.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

type section int

const (
	sectionNone section = iota
	sectionCompras
	sectionProdutos
	sectionIgnore
)

// Classifier holds the mutable state of one statement parse. Each parse must
// use a fresh instance; there is no cross-statement sharing.
type Classifier struct {
	opt         extract.Options
	invoiceYear int
	tolerance   time.Duration

	section        section
	currentCard    string
	previousCard   string
	summarizedCard string
	sinceStart     bool // a start marker was seen after the last total marker
	done           bool

	sections       map[string]*models.CardSection
	lastDateByCard map[string]time.Time

	totalLines int
	items      []models.Transaction
	rejects    []models.RejectedLine
}

// New builds a classifier for one statement. invoiceYear resolves short
// dates; toleranceDays bounds how far a date may regress within a card before
// the line is rejected.
func New(opt extract.Options, invoiceYear, toleranceDays int) *Classifier {
	return &Classifier{
		opt:            opt,
		invoiceYear:    invoiceYear,
		tolerance:      time.Duration(toleranceDays) * 24 * time.Hour,
		sections:       map[string]*models.CardSection{},
		lastDateByCard: map[string]time.Time{},
	}
}

// Done reports whether a statement terminator was reached; further lines are
// ignored.
func (c *Classifier) Done() bool {
	return c.done
}

// Items returns the accepted transactions, duplicates from merged columns
// collapsed.
func (c *Classifier) Items() []models.Transaction {
	seen := make(map[string]bool, len(c.items))
	out := make([]models.Transaction, 0, len(c.items))
	for _, item := range c.items {
		key := item.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// Rejects returns the rejection audit records in encounter order.
func (c *Classifier) Rejects() []models.RejectedLine {
	return c.rejects
}

// Controls returns the printed control total per card (last four digits).
func (c *Classifier) Controls() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(c.sections))
	for last4, sec := range c.sections {
		if sec.HasControl {
			out[last4] = sec.ControlTotal
		}
	}
	return out
}

// TotalLines returns the number of lines fed in.
func (c *Classifier) TotalLines() int {
	return c.totalLines
}

// ProcessLine consumes the next statement line. Rejections never abort
// processing of subsequent lines.
func (c *Classifier) ProcessLine(raw string) {
	c.totalLines++
	if c.done {
		return
	}
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}

	folded := textnorm.Fold(line)
	hasTransaction := len(patterns.FindDates(line)) > 0 && len(patterns.FindValues(line)) > 0

	if c.handleSectionHeader(folded, hasTransaction) {
		return
	}
	if c.done {
		return
	}

	// Ignored-section markers can share a line with a real transaction when
	// columns merge; in that case process the text before the marker.
	line = c.truncateAtIgnoredMarker(line, folded, hasTransaction)
	if line == "" {
		return
	}

	headerInLine := false
	if start := patterns.MatchCardStart(line); start != nil {
		headerInLine = true
		newCard := c.registerHolder(start)
		c.summarizedCard = ""
		c.sinceStart = true
		if c.section == sectionIgnore {
			c.section = sectionCompras
		}

		if total := patterns.MatchCardTotal(line); total != nil {
			c.recordControl(line, total, false)
		}

		rest := strings.TrimSpace(cutRunes(line, start.Start, start.End))
		prevOpen := c.currentCard
		c.previousCard = c.currentCard
		c.currentCard = newCard
		if hasTransaction && prevOpen != "" && prevOpen != newCard {
			// The trailing transaction came from the column of the card that
			// was open before the switch.
			c.processText(rest, prevOpen, headerInLine)
			return
		}
		if !hasTransaction {
			return
		}
		line = rest
	}

	if total := patterns.MatchCardTotal(line); total != nil {
		if c.recordControl(line, total, !hasTransaction) {
			return
		}
		if !hasTransaction {
			return
		}
		line = strings.TrimSpace(runeSlice(line, 0, total.Start))
	}

	if c.section != sectionCompras && c.section != sectionProdutos {
		return
	}

	c.processText(line, "", headerInLine)
}

// handleSectionHeader recognizes the free-text section headers and column
// headers, updating section state. Returns true when the line is consumed.
func (c *Classifier) handleSectionHeader(folded string, hasTransaction bool) bool {
	switch {
	case containsAll(folded, "lancamentos", "compras", "saques"):
		c.section = sectionCompras
		return true
	case containsAll(folded, "lancamentos", "produtos", "servicos"):
		c.section = sectionProdutos
		c.currentCard = ""
		return true
	case strings.HasPrefix(folded, "novo teto de juros do cartao de credito"):
		c.done = true
		return true
	case strings.HasPrefix(folded, "total dos lancamentos atuais"):
		c.done = true
		return true
	case strings.HasPrefix(folded, "data estabelecimento valor em r$"),
		strings.HasPrefix(folded, "data produtos/servicos valor em r$"):
		return true
	case containsAll(folded, "encargos", "cobrados", "nesta", "fatura"):
		// Subheading inside produtos; only an ignore trigger during compras.
		if !hasTransaction && c.section != sectionProdutos {
			c.section = sectionIgnore
			c.currentCard = ""
			return true
		}
	case containsAll(folded, "limites", "credito"):
		if !hasTransaction && c.currentCard == "" {
			c.section = sectionIgnore
			return true
		}
		if !hasTransaction {
			return true
		}
	}
	return false
}

// truncateAtIgnoredMarker handles the "compras parceladas - próximas faturas"
// marker: a pure marker line switches to the ignore section, a merged line is
// cut at the marker so the leading transaction survives.
func (c *Classifier) truncateAtIgnoredMarker(line, folded string, hasTransaction bool) string {
	if !containsAll(folded, "compras", "parceladas", "proximas", "faturas") {
		return line
	}
	if !hasTransaction {
		c.section = sectionIgnore
		c.currentCard = ""
		return ""
	}
	pos := strings.Index(folded, "compras")
	if pos <= 0 {
		return line
	}
	return strings.TrimSpace(runeSlice(line, 0, len([]rune(folded[:pos]))))
}

func (c *Classifier) registerHolder(start *patterns.CardStart) string {
	sec := c.cardSection(start.Last4)
	sec.Holder = start.Holder
	return sec.Label()
}

func (c *Classifier) cardSection(last4 string) *models.CardSection {
	sec, ok := c.sections[last4]
	if !ok {
		sec = &models.CardSection{Last4: last4}
		c.sections[last4] = sec
	}
	return sec
}

// recordControl stores the printed control total. A repeated identical
// subtotal line is a column-merge artifact and becomes a rejection when it
// carries nothing else. Returns true when the line is fully consumed.
func (c *Classifier) recordControl(line string, total *patterns.CardTotal, standalone bool) bool {
	sec := c.cardSection(total.Last4)
	if sec.HasControl && sec.ControlTotal.Equal(total.Amount) && standalone {
		c.reject(line, models.ReasonDuplicateSubtotal)
		return true
	}
	sec.ControlTotal = total.Amount
	sec.HasControl = true
	c.summarizedCard = sec.Label()
	c.sinceStart = false
	log.Debug("control total recorded",
		logging.Field{Key: logging.FieldCard, Value: total.Last4},
		logging.Field{Key: logging.FieldAmount, Value: total.Amount.StringFixed(2)})
	return false
}

// processText splits the text into candidates and classifies each one.
// forcedCard, when set, overrides card attribution (trailing transaction on a
// start-marker line).
func (c *Classifier) processText(text string, forcedCard string, headerInLine bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	candidates := splitter.SplitConcatenatedLine(text)
	split := len(candidates) > 1
	// Candidates from one physical row are checked against the dates seen
	// before the row: the column flattening can order the halves either way,
	// so one half must not shrink the regression window of the other.
	baseline := make(map[string]time.Time, len(c.lastDateByCard))
	for card, d := range c.lastDateByCard {
		baseline[card] = d
	}
	for _, cand := range candidates {
		c.processCandidate(cand, forcedCard, headerInLine, split, baseline)
	}
}

func (c *Classifier) processCandidate(cand splitter.Candidate, forcedCard string, headerInLine, split bool, baseline map[string]time.Time) {
	dateRes := extract.ExtractDate(cand.Text, c.invoiceYear)
	valRes := extract.ExtractValue(cand.Text, cand.PreferLast, c.opt)
	if dateRes.Outcome == extract.NoMatch || valRes.Outcome == extract.NoMatch {
		if valRes.Outcome == extract.NoMatch && len(patterns.FindValues(cand.Text)) > 0 {
			c.reject(cand.Text, models.ReasonAmountOutOfRange)
			return
		}
		c.reject(cand.Text, models.ReasonNoDateOrValue)
		return
	}

	inst, frac := extract.ExtractInstallments(cand.Text, valRes.Match, c.opt)
	desc := extract.ExtractDescription(cand.Text, dateRes.Match, valRes.Match, frac)
	if desc == "" {
		c.reject(cand.Text, models.ReasonInvalidDescription)
		return
	}

	card := c.attributeCard(cand, forcedCard, headerInLine, split)
	if c.section == sectionCompras && card == "" {
		// The column reading order can surface a transaction before any card
		// header; without an owner the amount cannot be reconciled.
		c.reject(cand.Text, models.ReasonNoActiveCard)
		return
	}

	date := dateRes.Date
	if last, ok := baseline[card]; ok && date.Before(last) && last.Sub(date) > c.tolerance {
		c.reject(cand.Text, models.ReasonDateOutOfOrder)
		return
	}
	if last, ok := c.lastDateByCard[card]; !ok || date.After(last) {
		c.lastDateByCard[card] = date
	}

	flux := models.FluxSaida
	if valRes.Match.Amount.IsNegative() {
		flux = models.FluxEntrada
	}

	c.items = append(c.items, models.Transaction{
		Date:        date,
		Description: desc,
		Amount:      valRes.Match.Amount.Abs(),
		Card:        card,
		Flux:        flux,
		Source:      models.SourceCartaoCredito,
		Installment: inst,
	})
}

// attributeCard resolves which card owns the candidate, honoring the
// column-transition rules of the two-column layout.
func (c *Classifier) attributeCard(cand splitter.Candidate, forcedCard string, headerInLine, split bool) string {
	if c.section == sectionProdutos {
		return ""
	}
	if forcedCard != "" {
		return forcedCard
	}
	// Transactions surfacing after a subtotal belong to the summarized card
	// until a new header appears.
	if c.summarizedCard != "" && c.summarizedCard != c.currentCard && !headerInLine {
		return c.summarizedCard
	}
	// The left half of a split row trails the card that was active before the
	// most recent start marker.
	if split && !cand.Right && c.sinceStart && c.previousCard != "" {
		return c.previousCard
	}
	return c.currentCard
}

func (c *Classifier) reject(line string, reason models.RejectReason) {
	c.rejects = append(c.rejects, models.RejectedLine{Line: line, Reason: reason})
	log.Debug("line rejected",
		logging.Field{Key: logging.FieldReason, Value: string(reason)},
		logging.Field{Key: logging.FieldLine, Value: line})
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// runeSlice slices s by rune offsets.
func runeSlice(s string, start, end int) string {
	r := []rune(s)
	if start < 0 {
		start = 0
	}
	if end > len(r) {
		end = len(r)
	}
	if start >= end {
		return ""
	}
	return string(r[start:end])
}

// cutRunes removes the rune range [start,end) from s.
func cutRunes(s string, start, end int) string {
	r := []rune(s)
	if start < 0 || end > len(r) || start >= end {
		return s
	}
	return string(r[:start]) + " " + string(r[end:])
}
