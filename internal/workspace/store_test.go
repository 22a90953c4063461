package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	state := NewState(Options{
		MaxPortfolios:   5,
		SuggestionLimit: 10,
		Params:          testParams(),
		Now:             func() time.Time { return testNow },
	})
	s := NewStore(state, common.NewSilentLogger())
	t.Cleanup(s.Close)
	return s
}

func TestStore_InitialSnapshot(t *testing.T) {
	s := newTestStore(t)
	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(0), snap.Version)
	require.Len(t, snap.Assets, 2)
	assert.Equal(t, map[string]float64{"Portfolio 1": 100, "Portfolio 2": 0}, snap.Assets[0].Weights)
	assert.Equal(t, []TotalView{
		{Portfolio: "Portfolio 1", Sum: 100, Balanced: true},
		{Portfolio: "Portfolio 2", Sum: 100, Balanced: true},
	}, snap.Totals)
	assert.Equal(t, -1, snap.Highlight)
	assert.Equal(t, "SPY", snap.Params.Benchmark)
	assert.Equal(t, 5, snap.MaxPortfolios)
}

func TestStore_DispatchMatrixIntents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	add := &AddPortfolio{}
	_, err := s.Dispatch(ctx, add)
	require.NoError(t, err)
	assert.Equal(t, "Portfolio 3", add.Added.Name)

	_, err = s.Dispatch(ctx, RenamePortfolio{From: "Portfolio 3", To: "Income"})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, SetWeightText{Index: 1, Portfolio: "Income", Text: "100"})
	require.NoError(t, err)

	snap, err := s.Dispatch(ctx, AddAsset{})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), snap.Version)
	require.Len(t, snap.Assets, 3)
	assert.Equal(t, 100.0, snap.Assets[1].Weights["Income"])
	assert.Equal(t, 0.0, snap.Assets[2].Weights["Income"])
}

func TestStore_AddWithValues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap, err := s.Dispatch(ctx, AddAsset{Ticker: "vti"})
	require.NoError(t, err)
	require.Len(t, snap.Assets, 3)
	assert.Equal(t, "VTI", snap.Assets[2].Ticker)

	add := &AddPortfolio{Label: " Income "}
	_, err = s.Dispatch(ctx, add)
	require.NoError(t, err)
	assert.Equal(t, "Income", add.Added.Name)

	snap, err = s.Dispatch(ctx, &AddPortfolio{Label: "Portfolio 2"})
	assert.ErrorIs(t, err, ErrPortfolioNameTaken)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Len(t, snap.Portfolios, 3, "taken name adds no column")
}

func TestStore_SuggestTickersIsReadOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.Dispatch(ctx, SetCatalog{Tickers: []string{"AAPL", "AMD", "AMZN"}})
	require.NoError(t, err)
	before, err := s.Dispatch(ctx, SetTagText{Text: "aa"})
	require.NoError(t, err)

	in := &SuggestTickers{Prefix: "am"}
	after, err := s.Dispatch(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"AMD", "AMZN"}, in.Matches)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, "aa", after.TagText)
	assert.Equal(t, []string{"AAPL"}, after.Suggestions)
}

func TestStore_RefusedIntentKeepsState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	before, _ := s.Snapshot(ctx)
	snap, err := s.Dispatch(ctx, RemoveAsset{Index: 9})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, before.Assets, snap.Assets)

	for i := 0; i < 3; i++ {
		_, err = s.Dispatch(ctx, &AddPortfolio{})
		require.NoError(t, err)
	}
	_, err = s.Dispatch(ctx, &AddPortfolio{})
	var ce *CapacityError
	assert.ErrorAs(t, err, &ce)
}

func TestStore_TagFlow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Dispatch(ctx, SetCatalog{Tickers: []string{"AAPL", "AMZN", "MSFT"}})
	require.NoError(t, err)

	snap, _ := s.Dispatch(ctx, SetTagText{Text: "a"})
	assert.Equal(t, []string{"AAPL", "AMZN"}, snap.Suggestions)

	_, _ = s.Dispatch(ctx, MoveHighlight{Delta: 1})
	_, _ = s.Dispatch(ctx, MoveHighlight{Delta: 1})
	confirm := &ConfirmTag{}
	snap, err = s.Dispatch(ctx, confirm)
	require.NoError(t, err)
	assert.Equal(t, "AMZN", confirm.Committed)
	assert.Equal(t, []string{"AMZN"}, snap.Tags)
	assert.Empty(t, snap.Suggestions)

	snap, _ = s.Dispatch(ctx, EraseTag{})
	assert.Empty(t, snap.Tags)
}

func TestStore_BacktestInFlightGuard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	begin := &BeginBacktest{}
	snap, err := s.Dispatch(ctx, begin)
	require.NoError(t, err)
	assert.True(t, snap.Busy(KindBacktest))
	assert.Len(t, begin.Request.Portfolios, 2)

	_, err = s.Dispatch(ctx, &BeginBacktest{})
	assert.ErrorIs(t, err, ErrBusy)

	// other kinds are not blocked
	_, err = s.Dispatch(ctx, BeginScreener{})
	assert.NoError(t, err)

	result := &models.BacktestResult{Warning: "benchmark starts later"}
	snap, err = s.Dispatch(ctx, EndBacktest{Result: result})
	require.NoError(t, err)
	assert.False(t, snap.Busy(KindBacktest))
	assert.Equal(t, "benchmark starts later", snap.Backtest.Warning)

	_, err = s.Dispatch(ctx, &BeginBacktest{})
	assert.NoError(t, err, "guard released after completion")
}

func TestStore_BacktestValidationRecorded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _ = s.Dispatch(ctx, SetWeight{Index: 0, Portfolio: "Portfolio 1", Value: 95})
	snap, err := s.Dispatch(ctx, &BeginBacktest{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.False(t, snap.Busy(KindBacktest))
	assert.Contains(t, snap.Errors[KindBacktest], "Portfolio 1")
}

func TestStore_ScanFlow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Dispatch(ctx, &BeginScan{})
	assert.ErrorIs(t, err, ErrEmptyTickerSet)

	_, _ = s.Dispatch(ctx, &ImportTags{Tickers: []string{"A", "B", "C"}})
	begin := &BeginScan{}
	_, err = s.Dispatch(ctx, begin)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, begin.Request.Tickers)

	snap, err := s.Dispatch(ctx, EndScan{Rows: sampleRows()})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, tickers(snap.Results))

	snap, err = s.Dispatch(ctx, SortResults{Key: "cagr"})
	require.NoError(t, err)
	assert.Equal(t, Ascending, snap.Sort.Direction)

	_, err = s.Dispatch(ctx, SortResults{Key: "bogus"})
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}

func TestStore_ScanFailureKeepsPreviousRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _ = s.Dispatch(ctx, CommitTag{Ticker: "A"})
	_, _ = s.Dispatch(ctx, &BeginScan{})
	_, _ = s.Dispatch(ctx, EndScan{Rows: sampleRows()})

	_, _ = s.Dispatch(ctx, &BeginScan{})
	snap, err := s.Dispatch(ctx, EndScan{Err: errors.New("engine down")})
	require.NoError(t, err)
	assert.Len(t, snap.Results, 3)
	assert.Equal(t, "engine down", snap.Errors[KindScan])
	assert.False(t, snap.Busy(KindScan))
}

func TestStore_ScreenerImportsMatches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _ = s.Dispatch(ctx, CommitTag{Ticker: "MSFT"})
	_, _ = s.Dispatch(ctx, BeginScreener{})
	snap, err := s.Dispatch(ctx, EndScreener{Tickers: []string{"AAPL", "MSFT"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT", "AAPL"}, snap.Tags)
	assert.Equal(t, []string{"AAPL", "MSFT"}, snap.ScreenerMatches)

	_, _ = s.Dispatch(ctx, BeginScreener{})
	snap, err = s.Dispatch(ctx, EndScreener{Err: errors.New("timeout")})
	require.NoError(t, err, "screener failure degrades")
	assert.Empty(t, snap.ScreenerMatches)
	assert.Contains(t, snap.Errors[KindScreener], "timeout")
}

func TestStore_ConcurrentDispatchSerialized(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Dispatch(ctx, AddAsset{})
			_, _ = s.Dispatch(ctx, CommitTag{Ticker: fmt.Sprintf("T%d", i)})
		}(i)
	}
	wg.Wait()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Assets, 2+workers)
	assert.Len(t, snap.Tags, workers)
	assert.Equal(t, uint64(2*workers), snap.Version)
}

func TestStore_Closed(t *testing.T) {
	state := NewState(Options{Params: testParams()})
	s := NewStore(state, nil)
	s.Close()
	s.Close()

	_, err := s.Dispatch(context.Background(), AddAsset{})
	assert.ErrorIs(t, err, ErrStoreClosed)
}
