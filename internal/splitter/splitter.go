// Package splitter detects text rows that concatenate two transactions from
// adjacent statement columns and splits them back into independent
// candidates, preserving order.
package splitter

import (
	"mepoupeze/fatura-csv/internal/patterns"
)

// Candidate is one sub-line ready for field extraction. Right marks the
// second (right-column) half of a split row, which reads its value
// right-to-left and follows the column-transition card attribution rule.
type Candidate struct {
	Text       string
	PreferLast bool
	Right      bool
}

// SplitConcatenatedLine returns the candidates contained in one text row.
// A row holding at least two dates and two monetary values is presumed to be
// two transactions glued together by the lossy column flattening: the first
// date and first value bound candidate A, the second date and last value
// bound candidate B. Anything else passes through unchanged.
func SplitConcatenatedLine(line string) []Candidate {
	dates := patterns.FindDates(line)
	values := patterns.FindValues(line)
	if len(dates) < 2 || len(values) < 2 {
		return []Candidate{{Text: line}}
	}

	firstDate := dates[0]
	secondDate := dates[1]
	firstValue := values[0]
	lastValue := values[len(values)-1]

	if firstValue.End <= firstDate.End || lastValue.End <= secondDate.End {
		// Degenerate ordering, not a two-column merge.
		return []Candidate{{Text: line}}
	}

	left := line[firstDate.Start:firstValue.End]
	right := line[secondDate.Start:lastValue.End]

	return []Candidate{
		{Text: left},
		{Text: right, PreferLast: true, Right: true},
	}
}
