package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vire-backtest/internal/models"
)

func f64(v float64) *float64 { return &v }

func tickers(rows []models.ScanRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Ticker
	}
	return out
}

func sampleRows() []models.ScanRow {
	return []models.ScanRow{
		{Ticker: "A", Error: "x"},
		{Ticker: "B", Metrics: models.Metrics{CAGR: f64(0.1), MDD: f64(-0.3)}},
		{Ticker: "C", Metrics: models.Metrics{CAGR: f64(0.2), MDD: f64(-0.5)}},
	}
}

func TestResults_DefaultSort(t *testing.T) {
	r := NewResults()
	assert.Equal(t, SortState{Key: models.MetricCAGR, Direction: Descending}, r.Sort())
}

func TestResults_ErrorRowsLast(t *testing.T) {
	r := NewResults()
	r.Load(sampleRows())
	assert.Equal(t, []string{"C", "B", "A"}, tickers(r.Rows()))

	require.NoError(t, r.SortBy("cagr", false))
	assert.Equal(t, Ascending, r.Sort().Direction)
	assert.Equal(t, []string{"B", "C", "A"}, tickers(r.Rows()), "errors stay last when ascending")
}

func TestResults_ToggleTwiceRestores(t *testing.T) {
	rows := append(sampleRows(),
		models.ScanRow{Ticker: "D", Metrics: models.Metrics{CAGR: f64(0.1)}},
		models.ScanRow{Ticker: "E", Error: "y"},
	)
	r := NewResults()
	r.Load(rows)
	original := tickers(r.Rows())
	dir := r.Sort().Direction

	require.NoError(t, r.SortBy("cagr", false))
	require.NoError(t, r.SortBy("cagr", false))

	assert.Equal(t, dir, r.Sort().Direction)
	assert.Equal(t, original, tickers(r.Rows()))
}

func TestResults_NewKeyUsesDefaultDirection(t *testing.T) {
	r := NewResults()
	r.Load(sampleRows())

	require.NoError(t, r.SortBy("mdd", false))
	assert.Equal(t, SortState{Key: models.MetricMDD, Direction: Ascending}, r.Sort())
	assert.Equal(t, []string{"C", "B", "A"}, tickers(r.Rows()), "deepest drawdown first")

	require.NoError(t, r.SortBy("sharpe_ratio", false))
	assert.Equal(t, Descending, r.Sort().Direction)
}

func TestResults_InitialDoesNotToggle(t *testing.T) {
	r := NewResults()
	require.NoError(t, r.SortBy("volatility", false))
	require.NoError(t, r.SortBy("volatility", false))
	assert.Equal(t, Descending, r.Sort().Direction)

	require.NoError(t, r.SortBy("volatility", true))
	assert.Equal(t, Ascending, r.Sort().Direction)
}

func TestResults_LoadResortsOnActiveKey(t *testing.T) {
	r := NewResults()
	require.NoError(t, r.SortBy("mdd", false))
	require.NoError(t, r.SortBy("mdd", false))
	require.Equal(t, Descending, r.Sort().Direction)

	r.Load(sampleRows())
	assert.Equal(t, SortState{Key: models.MetricMDD, Direction: Ascending}, r.Sort())
	assert.Equal(t, []string{"C", "B", "A"}, tickers(r.Rows()))
}

func TestResults_NullValuesAboveErrors(t *testing.T) {
	rows := []models.ScanRow{
		{Ticker: "ERR", Error: "boom"},
		{Ticker: "NOBETA"},
		{Ticker: "LOW", Metrics: models.Metrics{Beta: f64(0.5)}},
		{Ticker: "HIGH", Metrics: models.Metrics{Beta: f64(1.5)}},
	}
	r := NewResults()
	r.Load(rows)
	require.NoError(t, r.SortBy("beta", false))
	assert.Equal(t, []string{"HIGH", "LOW", "NOBETA", "ERR"}, tickers(r.Rows()))

	require.NoError(t, r.SortBy("beta", false))
	assert.Equal(t, []string{"LOW", "HIGH", "NOBETA", "ERR"}, tickers(r.Rows()))
}

func TestResults_UnknownKey(t *testing.T) {
	r := NewResults()
	r.Load(sampleRows())
	before := r.Sort()

	err := r.SortBy("ticker", false)
	assert.ErrorIs(t, err, ErrUnknownSortKey)
	assert.Equal(t, before, r.Sort())
}

func TestResults_RowsAreCopies(t *testing.T) {
	r := NewResults()
	r.Load(sampleRows())
	rows := r.Rows()
	rows[0].Ticker = "MUTATED"
	assert.NotEqual(t, "MUTATED", r.Rows()[0].Ticker)
}
