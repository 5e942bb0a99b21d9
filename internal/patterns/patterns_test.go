package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDates(t *testing.T) {
	t.Run("short and full dates", func(t *testing.T) {
		dates := FindDates("13/08 LOJA 12/05/2025 fim")
		require.Len(t, dates, 2)
		assert.Equal(t, 13, dates[0].Day)
		assert.Equal(t, 8, dates[0].Month)
		assert.False(t, dates[0].HasYear)
		assert.Equal(t, 12, dates[1].Day)
		assert.Equal(t, 5, dates[1].Month)
		assert.True(t, dates[1].HasYear)
		assert.Equal(t, 2025, dates[1].Year)
	})

	t.Run("range bounds", func(t *testing.T) {
		assert.Empty(t, FindDates("32/08 invalido"))
		assert.Empty(t, FindDates("10/13 invalido"))
		assert.Len(t, FindDates("31/12 valido"), 1)
		assert.Len(t, FindDates("1/1 valido"), 1)
	})

	t.Run("fragments of longer tokens are skipped", func(t *testing.T) {
		assert.Empty(t, FindDates("telefone 11/22334455"))
		assert.Empty(t, FindDates("codigo 123/45"))
	})
}

func TestFindValues(t *testing.T) {
	t.Run("multiple occurrences", func(t *testing.T) {
		values := FindValues("13/08 LOJA 16,60 outra 356,68")
		require.Len(t, values, 2)
		assert.Equal(t, "16.6", values[0].Amount.String())
		assert.Equal(t, "356.68", values[1].Amount.String())
	})

	t.Run("signed with space", func(t *testing.T) {
		values := FindValues("29/07 TRELA*Pedido Trela - 0,01")
		require.Len(t, values, 1)
		assert.Equal(t, "-0.01", values[0].Amount.String())
	})

	t.Run("three decimal digits do not match", func(t *testing.T) {
		assert.Empty(t, FindValues("ruido 0,009 aqui"))
	})
}

func TestFindFractions(t *testing.T) {
	fractions := FindFractions("12/05 PG *SHOPGEORGIA 04/05 356,68")
	require.Len(t, fractions, 2)
	assert.Equal(t, 4, fractions[1].Num)
	assert.Equal(t, 5, fractions[1].Den)
}

func TestHasFullDate(t *testing.T) {
	assert.True(t, HasFullDate("vencimento 12/05/2025"))
	assert.False(t, HasFullDate("parcela 04/05"))
}

func TestFindYear(t *testing.T) {
	year, ok := FindYear("fatura de agosto de 2025")
	require.True(t, ok)
	assert.Equal(t, 2025, year)

	_, ok = FindYear("sem ano aqui")
	assert.False(t, ok)
}

func TestMatchCardStart(t *testing.T) {
	t.Run("holder with accents and spacing", func(t *testing.T) {
		start := MatchCardStart("ALINE I DE SOUSA (final 9826)")
		require.NotNil(t, start)
		assert.Equal(t, "ALINE I DE SOUSA", start.Holder)
		assert.Equal(t, "9826", start.Last4)
	})

	t.Run("glued header", func(t *testing.T) {
		start := MatchCardStart("JOAO SILVA(final1234)")
		require.NotNil(t, start)
		assert.Equal(t, "JOAO SILVA", start.Holder)
		assert.Equal(t, "1234", start.Last4)
	})

	t.Run("summary phrase is not a holder", func(t *testing.T) {
		assert.Nil(t, MatchCardStart("LANÇAMENTOS NO CARTÃO (final 9826) 9.139,39"))
		assert.Nil(t, MatchCardStart("LIMITES DE CRÉDITO TOTAL (final 1111)"))
	})

	t.Run("no marker", func(t *testing.T) {
		assert.Nil(t, MatchCardStart("13/08 ESPORTE CLUBE PINHEIRO 16,60"))
	})

	t.Run("offsets survive compatibility expansions", func(t *testing.T) {
		// № folds to two runes ("no"), shifting folded offsets past it.
		line := "№ 123 MARIA SOUZA (final 5678)"
		start := MatchCardStart(line)
		require.NotNil(t, start)
		assert.Equal(t, "MARIA SOUZA", start.Holder)
		assert.Equal(t, "5678", start.Last4)
		assert.Equal(t, 6, start.Start)
		assert.Equal(t, "MARIA SOUZA (final 5678)", string([]rune(line)[start.Start:start.End]))
	})
}

func TestMatchCardTotal(t *testing.T) {
	t.Run("accented marker", func(t *testing.T) {
		total := MatchCardTotal("LANÇAMENTOS NO CARTÃO (FINAL 9826) 9.139,39")
		require.NotNil(t, total)
		assert.Equal(t, "9826", total.Last4)
		assert.Equal(t, "9139.39", total.Amount.String())
	})

	t.Run("start marker is not a total", func(t *testing.T) {
		assert.Nil(t, MatchCardTotal("ALINE I DE SOUSA (final 9826)"))
	})

	t.Run("offsets survive compatibility expansions", func(t *testing.T) {
		// The ﬁ ligature folds to two runes ("fi") ahead of the marker.
		line := "ﬁm LANÇAMENTOS NO CARTÃO (final 9826) 9.139,39"
		total := MatchCardTotal(line)
		require.NotNil(t, total)
		assert.Equal(t, "9826", total.Last4)
		assert.Equal(t, "9139.39", total.Amount.String())
		assert.Equal(t, "LANÇAMENTOS NO CARTÃO (final 9826) 9.139,39", string([]rune(line)[total.Start:total.End]))
	})
}
