package workspace

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rectangular reports whether every row has exactly one entry per portfolio.
func rectangular(m *Matrix) bool {
	for _, row := range m.assets {
		if len(row.weights) != len(m.portfolios) {
			return false
		}
		for _, p := range m.portfolios {
			if _, ok := row.weights[p.ID]; !ok {
				return false
			}
		}
	}
	return true
}

func names(m *Matrix) []string {
	var out []string
	for _, p := range m.Portfolios() {
		out = append(out, p.Name)
	}
	return out
}

func TestDefaultMatrix(t *testing.T) {
	m := DefaultMatrix(5)

	assert.Equal(t, []string{"Portfolio 1", "Portfolio 2"}, names(m))
	require.Equal(t, 2, m.Len())

	tk, _ := m.Ticker(0)
	assert.Equal(t, "QQQ", tk)
	w, err := m.Weight(0, "Portfolio 1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, w)
	w, _ = m.Weight(1, "Portfolio 1")
	assert.Equal(t, 0.0, w)
	w, _ = m.Weight(1, "Portfolio 2")
	assert.Equal(t, 100.0, w)
}

func TestMatrix_RectangularUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := DefaultMatrix(0)

	for step := 0; step < 500; step++ {
		switch rng.Intn(5) {
		case 0:
			m.AddAsset()
		case 1:
			_, err := m.AddPortfolio()
			require.NoError(t, err)
		case 2:
			ps := m.Portfolios()
			if len(ps) > 0 {
				p := ps[rng.Intn(len(ps))]
				require.NoError(t, m.RenamePortfolio(p.Name, fmt.Sprintf("R%d", step)))
			}
		case 3:
			if m.Len() > 0 {
				require.NoError(t, m.RemoveAsset(rng.Intn(m.Len())))
			}
		case 4:
			ps := m.Portfolios()
			if len(ps) > 1 {
				require.NoError(t, m.RemovePortfolio(ps[rng.Intn(len(ps))].Name))
			}
		}
		require.True(t, rectangular(m), "matrix not rectangular after step %d", step)
	}
}

func TestMatrix_RenamePreservesEveryWeight(t *testing.T) {
	m := DefaultMatrix(5)
	m.AddAsset()
	require.NoError(t, m.SetTicker(2, "vti"))
	require.NoError(t, m.SetWeight(2, "Portfolio 1", 0))
	require.NoError(t, m.SetWeight(0, "Portfolio 1", 62.5))

	before := make([]float64, m.Len())
	for i := range before {
		before[i], _ = m.Weight(i, "Portfolio 1")
	}

	require.NoError(t, m.RenamePortfolio("Portfolio 1", "Growth"))

	for i, want := range before {
		got, err := m.Weight(i, "Growth")
		require.NoError(t, err)
		assert.Equal(t, want, got, "row %d", i)
	}
	_, err := m.Weight(0, "Portfolio 1")
	assert.ErrorIs(t, err, ErrPortfolioNotFound)
	assert.True(t, rectangular(m))
}

func TestMatrix_RenameEdgeCases(t *testing.T) {
	m := DefaultMatrix(5)

	assert.NoError(t, m.RenamePortfolio("Portfolio 1", "Portfolio 1"), "same name is a no-op")

	err := m.RenamePortfolio("Portfolio 1", "Portfolio 2")
	assert.ErrorIs(t, err, ErrPortfolioNameTaken)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	err = m.RenamePortfolio("Portfolio 1", "   ")
	assert.ErrorIs(t, err, ErrBlankName)

	err = m.RenamePortfolio("Nope", "Other")
	assert.ErrorIs(t, err, ErrPortfolioNotFound)

	assert.Equal(t, []string{"Portfolio 1", "Portfolio 2"}, names(m), "failed renames change nothing")
}

func TestMatrix_AddPortfolioCapacity(t *testing.T) {
	m := DefaultMatrix(5)
	for i := 0; i < 3; i++ {
		_, err := m.AddPortfolio()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Portfolio 1", "Portfolio 2", "Portfolio 3", "Portfolio 4", "Portfolio 5"}, names(m))

	_, err := m.AddPortfolio()
	var ce *CapacityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 5, ce.Max)
	assert.Len(t, m.Portfolios(), 5)
}

func TestMatrix_AddPortfolioSkipsTakenNames(t *testing.T) {
	m := DefaultMatrix(0)
	require.NoError(t, m.RenamePortfolio("Portfolio 1", "Portfolio 3"))

	p, err := m.AddPortfolio()
	require.NoError(t, err)
	assert.Equal(t, "Portfolio 4", p.Name)
	w, _ := m.Weight(0, "Portfolio 4")
	assert.Equal(t, 0.0, w)
}

func TestMatrix_RemoveAssetOutOfRange(t *testing.T) {
	m := DefaultMatrix(5)
	for _, idx := range []int{-1, 2, 99} {
		err := m.RemoveAsset(idx)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", idx)
	}
	assert.Equal(t, 2, m.Len())

	require.NoError(t, m.RemoveAsset(0))
	tk, _ := m.Ticker(0)
	assert.Equal(t, "SOXX", tk)
}

func TestMatrix_SetWeight(t *testing.T) {
	m := DefaultMatrix(5)

	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"plain", 40, 40},
		{"above hundred kept", 250, 250},
		{"negative clamps", -5, 0},
		{"nan clamps", math.NaN(), 0},
		{"inf clamps", math.Inf(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, m.SetWeight(0, "Portfolio 2", tt.value))
			got, _ := m.Weight(0, "Portfolio 2")
			assert.Equal(t, tt.want, got)
		})
	}

	require.NoError(t, m.SetWeightText(0, "Portfolio 2", "abc"))
	got, _ := m.Weight(0, "Portfolio 2")
	assert.Equal(t, 0.0, got)
	require.NoError(t, m.SetWeightText(0, "Portfolio 2", " 12.5 "))
	got, _ = m.Weight(0, "Portfolio 2")
	assert.Equal(t, 12.5, got)

	assert.ErrorIs(t, m.SetWeight(0, "Missing", 1), ErrPortfolioNotFound)
	assert.ErrorIs(t, m.SetWeight(5, "Portfolio 1", 1), ErrIndexOutOfRange)
}

func TestMatrix_ClearOperations(t *testing.T) {
	m := DefaultMatrix(5)
	require.NoError(t, m.ClearPortfolioWeights("Portfolio 1"))
	w, _ := m.Weight(0, "Portfolio 1")
	assert.Equal(t, 0.0, w)
	w, _ = m.Weight(1, "Portfolio 2")
	assert.Equal(t, 100.0, w, "other portfolios untouched")

	m.ClearAllTickers()
	assert.Equal(t, 2, m.Len())
	for i := 0; i < m.Len(); i++ {
		tk, _ := m.Ticker(i)
		assert.Empty(t, tk)
	}
	w, _ = m.Weight(1, "Portfolio 2")
	assert.Equal(t, 100.0, w, "weights survive clearing tickers")
}

func TestMatrix_SetTickerUppercases(t *testing.T) {
	m := DefaultMatrix(5)
	require.NoError(t, m.SetTicker(0, "aapl"))
	tk, _ := m.Ticker(0)
	assert.Equal(t, "AAPL", tk)
}

func TestMatrix_Totals(t *testing.T) {
	m := NewMatrix(5)
	_, _ = m.AddPortfolio()
	_, _ = m.AddPortfolio()
	require.NoError(t, m.RenamePortfolio("Portfolio 1", "P1"))
	require.NoError(t, m.RenamePortfolio("Portfolio 2", "P2"))
	m.AddAsset()
	m.AddAsset()
	require.NoError(t, m.SetTicker(0, "X"))
	require.NoError(t, m.SetTicker(1, "Y"))
	require.NoError(t, m.SetWeight(0, "P1", 100))
	require.NoError(t, m.SetWeight(1, "P2", 100))

	totals := m.Totals()
	require.Len(t, totals, 2)
	assert.Equal(t, "P1", totals[0].Portfolio)
	assert.Equal(t, "100", totals[0].Sum.String())
	assert.True(t, totals[0].Balanced)
	assert.Equal(t, "100", totals[1].Sum.String())
	assert.True(t, totals[1].Balanced)
}

func TestMatrix_TotalsExactDecimal(t *testing.T) {
	m := NewMatrix(0)
	_, _ = m.AddPortfolio()
	for i, w := range []float64{33.3, 33.3, 33.4} {
		m.AddAsset()
		require.NoError(t, m.SetWeight(i, "Portfolio 1", w))
	}
	totals := m.Totals()
	assert.True(t, totals[0].Balanced, "33.3+33.3+33.4 is exactly 100, got %s", totals[0].Sum)

	require.NoError(t, m.SetWeight(2, "Portfolio 1", 33.39))
	assert.False(t, m.Totals()[0].Balanced)
}

func TestMatrix_AddNamedPortfolio(t *testing.T) {
	m := DefaultMatrix(3)

	_, err := m.AddNamedPortfolio("Portfolio 1")
	assert.ErrorIs(t, err, ErrPortfolioNameTaken)
	assert.Len(t, m.Portfolios(), 2)

	p, err := m.AddNamedPortfolio("  ")
	require.NoError(t, err)
	assert.Equal(t, "Portfolio 3", p.Name)

	_, err = m.AddNamedPortfolio("Income")
	var ce *CapacityError
	assert.ErrorAs(t, err, &ce, "capacity is checked before the name")
}
