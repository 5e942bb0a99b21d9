package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripAccents(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"lançamentos", "lancamentos"},
		{"LANÇAMENTOS NO CARTÃO", "LANCAMENTOS NO CARTAO"},
		{"crédito", "credito"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, StripAccents(tt.input))
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "lancamentos no cartao (final 9826)", Fold("LANÇAMENTOS NO CARTÃO (final 9826)"))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpaces("  a   b \t c  "))
	assert.Equal(t, "", CollapseSpaces("   "))
}

func TestAlphaCount(t *testing.T) {
	assert.Equal(t, 0, AlphaCount("123 45,67"))
	assert.Equal(t, 5, AlphaCount("ab c12d e"))
	assert.Equal(t, 7, AlphaCount("crédito"))
}

func TestHasAlphaRun(t *testing.T) {
	assert.True(t, HasAlphaRun("PG *SHOPGEORGIA", 3))
	assert.True(t, HasAlphaRun("ab cde", 3))
	assert.False(t, HasAlphaRun("ab cd 12/34", 3))
	assert.False(t, HasAlphaRun("12.345,67", 1))
}
