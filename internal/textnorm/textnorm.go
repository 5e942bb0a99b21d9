// Package textnorm provides text normalization helpers for matching
// statement marker phrases regardless of accents and casing.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes combining diacritical marks, so "lançamentos"
// becomes "lancamentos". Invalid input is returned unchanged.
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lowercases and strips accents, the canonical form used for
// marker-phrase comparison.
func Fold(s string) string {
	return strings.ToLower(StripAccents(s))
}

// CollapseSpaces trims the string and squeezes internal whitespace runs
// down to single spaces.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// AlphaCount returns the number of letter runes in s.
func AlphaCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// HasAlphaRun reports whether s contains a run of at least n consecutive letters.
func HasAlphaRun(s string, n int) bool {
	run := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}
