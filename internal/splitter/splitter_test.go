package splitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitConcatenatedLine(t *testing.T) {
	t.Run("two transactions glued by column flattening", func(t *testing.T) {
		candidates := SplitConcatenatedLine("13/08 ESPORTE CLUBE PINHEIRO 16,60 12/05 PG *SHOPGEORGIA 04/05 356,68")
		require.Len(t, candidates, 2)

		assert.Equal(t, "13/08 ESPORTE CLUBE PINHEIRO 16,60", candidates[0].Text)
		assert.False(t, candidates[0].Right)
		assert.False(t, candidates[0].PreferLast)

		assert.Contains(t, candidates[1].Text, "12/05 PG *SHOPGEORGIA")
		assert.Contains(t, candidates[1].Text, "356,68")
		assert.True(t, candidates[1].Right)
		assert.True(t, candidates[1].PreferLast)
	})

	t.Run("single transaction passes through", func(t *testing.T) {
		line := "29/07 TRELA*Pedido Trela - 0,01"
		candidates := SplitConcatenatedLine(line)
		require.Len(t, candidates, 1)
		assert.Equal(t, line, candidates[0].Text)
	})

	t.Run("installment date does not force a split", func(t *testing.T) {
		line := "12/05 PG *SHOPGEORGIA 04/05 356,68"
		candidates := SplitConcatenatedLine(line)
		require.Len(t, candidates, 1)
		assert.Equal(t, line, candidates[0].Text)
	})

	t.Run("two dates one value passes through", func(t *testing.T) {
		line := "13/08 LOJA 12/05 OUTRA COISA"
		candidates := SplitConcatenatedLine(line)
		require.Len(t, candidates, 1)
	})
}
