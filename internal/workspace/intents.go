package workspace

import (
	"fmt"

	"github.com/bobmcallan/vire-backtest/internal/models"
)

// Intent is a discrete user action applied by the Store. Intents that
// produce a value carry an output field filled in when Dispatch succeeds.
type Intent interface {
	Name() string
	apply(s *State) error
}

// query marks intents that only read state; they leave the version alone.
type query interface {
	Intent
	readOnly()
}

// --- matrix ---

// AddAsset appends a row, with Ticker set on it when given.
type AddAsset struct{ Ticker string }

func (AddAsset) Name() string { return "add_asset" }
func (i AddAsset) apply(s *State) error {
	row := s.matrix.AddAsset()
	if i.Ticker == "" {
		return nil
	}
	return s.matrix.SetTicker(row, i.Ticker)
}

type RemoveAsset struct{ Index int }

func (RemoveAsset) Name() string           { return "remove_asset" }
func (i RemoveAsset) apply(s *State) error { return s.matrix.RemoveAsset(i.Index) }

type SetTicker struct {
	Index int
	Text  string
}

func (SetTicker) Name() string           { return "set_ticker" }
func (i SetTicker) apply(s *State) error { return s.matrix.SetTicker(i.Index, i.Text) }

type ClearAllTickers struct{}

func (ClearAllTickers) Name() string { return "clear_all_tickers" }
func (ClearAllTickers) apply(s *State) error {
	s.matrix.ClearAllTickers()
	return nil
}

// AddPortfolio appends a portfolio named Label, or "Portfolio N" when Label is
// blank; Added holds it afterwards. A taken name adds nothing.
type AddPortfolio struct {
	Label string
	Added Portfolio
}

func (*AddPortfolio) Name() string { return "add_portfolio" }
func (i *AddPortfolio) apply(s *State) error {
	p, err := s.matrix.AddNamedPortfolio(i.Label)
	if err != nil {
		return err
	}
	i.Added = p
	return nil
}

type RemovePortfolio struct{ Portfolio string }

func (RemovePortfolio) Name() string           { return "remove_portfolio" }
func (i RemovePortfolio) apply(s *State) error { return s.matrix.RemovePortfolio(i.Portfolio) }

type RenamePortfolio struct {
	From string
	To   string
}

func (RenamePortfolio) Name() string           { return "rename_portfolio" }
func (i RenamePortfolio) apply(s *State) error { return s.matrix.RenamePortfolio(i.From, i.To) }

type SetWeight struct {
	Index     int
	Portfolio string
	Value     float64
}

func (SetWeight) Name() string { return "set_weight" }
func (i SetWeight) apply(s *State) error {
	return s.matrix.SetWeight(i.Index, i.Portfolio, i.Value)
}

// SetWeightText stores typed weight text; non-numeric input counts as 0.
type SetWeightText struct {
	Index     int
	Portfolio string
	Text      string
}

func (SetWeightText) Name() string { return "set_weight_text" }
func (i SetWeightText) apply(s *State) error {
	return s.matrix.SetWeightText(i.Index, i.Portfolio, i.Text)
}

type ClearPortfolioWeights struct{ Portfolio string }

func (ClearPortfolioWeights) Name() string { return "clear_portfolio_weights" }
func (i ClearPortfolioWeights) apply(s *State) error {
	return s.matrix.ClearPortfolioWeights(i.Portfolio)
}

// --- run parameters ---

// SetParams replaces the run parameters. They are validated on submit.
type SetParams struct{ Params models.RunParams }

func (SetParams) Name() string { return "set_params" }
func (i SetParams) apply(s *State) error {
	p := i.Params
	p.Benchmark = models.NormalizeTicker(p.Benchmark)
	s.params = p
	return nil
}

// --- tag input ---

type SetTagText struct{ Text string }

func (SetTagText) Name() string { return "set_tag_text" }
func (i SetTagText) apply(s *State) error {
	s.tags.SetText(i.Text, s.catalog)
	return nil
}

// ConfirmTag commits the highlighted suggestion or the typed text.
type ConfirmTag struct {
	Committed string
	Added     bool
}

func (*ConfirmTag) Name() string { return "confirm_tag" }
func (i *ConfirmTag) apply(s *State) error {
	i.Committed, i.Added = s.tags.Confirm()
	return nil
}

// MoveHighlight moves the suggestion cursor; +1 is down.
type MoveHighlight struct{ Delta int }

func (MoveHighlight) Name() string { return "move_highlight" }
func (i MoveHighlight) apply(s *State) error {
	s.tags.Navigate(i.Delta)
	return nil
}

type EraseTag struct{}

func (EraseTag) Name() string { return "erase_tag" }
func (EraseTag) apply(s *State) error {
	s.tags.EraseBackward()
	return nil
}

type DismissSuggestions struct{}

func (DismissSuggestions) Name() string { return "dismiss_suggestions" }
func (DismissSuggestions) apply(s *State) error {
	s.tags.Dismiss()
	return nil
}

type CommitTag struct{ Ticker string }

func (CommitTag) Name() string { return "commit_tag" }
func (i CommitTag) apply(s *State) error {
	s.tags.Commit(i.Ticker)
	return nil
}

type RemoveTag struct{ Ticker string }

func (RemoveTag) Name() string { return "remove_tag" }
func (i RemoveTag) apply(s *State) error {
	s.tags.Remove(i.Ticker)
	return nil
}

type ClearTags struct{}

func (ClearTags) Name() string { return "clear_tags" }
func (ClearTags) apply(s *State) error {
	s.tags.Clear()
	return nil
}

// ImportTags appends tickers not yet in the tag set. An empty list imports
// the last screener matches.
type ImportTags struct {
	Tickers []string
	Added   int
}

func (*ImportTags) Name() string { return "import_tags" }
func (i *ImportTags) apply(s *State) error {
	tickers := i.Tickers
	if len(tickers) == 0 {
		tickers = s.matches
	}
	i.Added = s.tags.Import(tickers)
	return nil
}

// SuggestTickers lists catalog tickers starting with Prefix without
// touching the tag input.
type SuggestTickers struct {
	Prefix  string
	Matches []string
}

func (*SuggestTickers) Name() string { return "suggest_tickers" }
func (*SuggestTickers) readOnly()    {}
func (i *SuggestTickers) apply(s *State) error {
	i.Matches = MatchPrefix(i.Prefix, s.catalog, s.tags.limit)
	return nil
}

// --- results ---

type SortResults struct{ Key string }

func (SortResults) Name() string { return "sort_results" }
func (i SortResults) apply(s *State) error {
	return s.results.SortBy(i.Key, false)
}

// SetCatalog replaces the ticker catalog used for suggestions.
type SetCatalog struct{ Tickers []string }

func (SetCatalog) Name() string { return "set_catalog" }
func (i SetCatalog) apply(s *State) error {
	s.catalog = append([]string(nil), i.Tickers...)
	return nil
}

// --- remote requests ---

// BeginBacktest assembles the request from the matrix and marks a backtest
// in flight.
type BeginBacktest struct {
	Request models.BacktestRequest
}

func (*BeginBacktest) Name() string { return "begin_backtest" }
func (i *BeginBacktest) apply(s *State) error {
	if s.inFlight[KindBacktest] {
		return ErrBusy
	}
	req, err := AssembleBacktest(s.matrix, s.params, s.now())
	if err != nil {
		s.errors[KindBacktest] = err.Error()
		return err
	}
	i.Request = req
	return s.begin(KindBacktest)
}

// EndBacktest stores the outcome of a backtest.
type EndBacktest struct {
	Result *models.BacktestResult
	Err    error
}

func (EndBacktest) Name() string { return "end_backtest" }
func (i EndBacktest) apply(s *State) error {
	s.end(KindBacktest, i.Err)
	if i.Err == nil {
		s.backtest = i.Result
	}
	return nil
}

// BeginScan assembles a scan of the tag set and marks it in flight.
type BeginScan struct {
	Request models.ScanRequest
}

func (*BeginScan) Name() string { return "begin_scan" }
func (i *BeginScan) apply(s *State) error {
	if s.inFlight[KindScan] {
		return ErrBusy
	}
	req, err := AssembleScan(s.tags.tags, s.params, s.now())
	if err != nil {
		s.errors[KindScan] = err.Error()
		return err
	}
	i.Request = req
	return s.begin(KindScan)
}

// EndScan loads scan rows under the active sort key.
type EndScan struct {
	Rows []models.ScanRow
	Err  error
}

func (EndScan) Name() string { return "end_scan" }
func (i EndScan) apply(s *State) error {
	s.end(KindScan, i.Err)
	if i.Err == nil {
		s.results.Load(i.Rows)
	}
	return nil
}

// BeginScreener marks a screener request in flight.
type BeginScreener struct{}

func (BeginScreener) Name() string         { return "begin_screener" }
func (BeginScreener) apply(s *State) error { return s.begin(KindScreener) }

// EndScreener stores the matches and imports them into the tag set. A
// failure leaves no matches and records a message.
type EndScreener struct {
	Tickers []string
	Err     error
}

func (EndScreener) Name() string { return "end_screener" }
func (i EndScreener) apply(s *State) error {
	if i.Err != nil {
		s.end(KindScreener, fmt.Errorf("screener unavailable: %w", i.Err))
		s.matches = nil
		return nil
	}
	s.end(KindScreener, nil)
	s.matches = append([]string(nil), i.Tickers...)
	s.tags.Import(s.matches)
	return nil
}

// Refresh applies nothing and returns the current snapshot.
type Refresh struct{}

func (Refresh) Name() string       { return "refresh" }
func (Refresh) readOnly()          {}
func (Refresh) apply(*State) error { return nil }
