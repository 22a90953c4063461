package workspace

import (
	"slices"
	"time"

	"github.com/bobmcallan/vire-backtest/internal/models"
)

// Kind identifies a class of remote request for the in-flight guard.
type Kind string

const (
	KindBacktest Kind = "backtest"
	KindScan     Kind = "scan"
	KindScreener Kind = "screener"
)

// Options configure a new State.
type Options struct {
	MaxPortfolios   int
	SuggestionLimit int
	Params          models.RunParams
	Now             func() time.Time
}

// State is everything the user edits plus the last results fetched. It is
// owned by a Store; nothing else mutates it.
type State struct {
	matrix   *Matrix
	tags     *TagInput
	results  *Results
	params   models.RunParams
	catalog  []string
	backtest *models.BacktestResult
	matches  []string
	errors   map[Kind]string
	inFlight map[Kind]bool
	now      func() time.Time
}

// NewState builds the default workspace.
func NewState(opts Options) *State {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	params := opts.Params
	params.Benchmark = models.NormalizeTicker(params.Benchmark)
	return &State{
		matrix:   DefaultMatrix(opts.MaxPortfolios),
		tags:     NewTagInput(opts.SuggestionLimit),
		results:  NewResults(),
		params:   params,
		errors:   map[Kind]string{},
		inFlight: map[Kind]bool{},
		now:      now,
	}
}

// AssetView is one matrix row with weights keyed by portfolio name.
type AssetView struct {
	Ticker  string             `json:"ticker"`
	Weights map[string]float64 `json:"weights"`
}

// TotalView is a portfolio's weight sum.
type TotalView struct {
	Portfolio string  `json:"portfolio"`
	Sum       float64 `json:"sum"`
	Balanced  bool    `json:"balanced"`
}

// Snapshot is a read-only copy of the state for presentation.
type Snapshot struct {
	Version         uint64                 `json:"version"`
	Portfolios      []Portfolio            `json:"portfolios"`
	Assets          []AssetView            `json:"assets"`
	Totals          []TotalView            `json:"totals"`
	MaxPortfolios   int                    `json:"maxPortfolios"`
	Params          models.RunParams       `json:"params"`
	Tags            []string               `json:"tags"`
	TagText         string                 `json:"tagText"`
	Suggestions     []string               `json:"suggestions"`
	Highlight       int                    `json:"highlight"`
	Sort            SortState              `json:"sort"`
	Results         []models.ScanRow       `json:"results"`
	Backtest        *models.BacktestResult `json:"backtest,omitempty"`
	ScreenerMatches []string               `json:"screenerMatches"`
	Errors          map[Kind]string        `json:"errors"`
	InFlight        []Kind                 `json:"inFlight"`
	CatalogSize     int                    `json:"catalogSize"`
}

// Busy reports whether a request of kind is outstanding.
func (s Snapshot) Busy(kind Kind) bool {
	return slices.Contains(s.InFlight, kind)
}

func (s *State) snapshot(version uint64) Snapshot {
	snap := Snapshot{
		Version:         version,
		Portfolios:      s.matrix.Portfolios(),
		Assets:          make([]AssetView, len(s.matrix.assets)),
		MaxPortfolios:   s.matrix.MaxPortfolios(),
		Params:          s.params,
		Tags:            s.tags.Tags(),
		TagText:         s.tags.Text(),
		Suggestions:     s.tags.Suggestions(),
		Highlight:       s.tags.Cursor(),
		Sort:            s.results.Sort(),
		Results:         s.results.Rows(),
		Backtest:        s.backtest,
		ScreenerMatches: slices.Clone(s.matches),
		Errors:          make(map[Kind]string, len(s.errors)),
		CatalogSize:     len(s.catalog),
	}
	for i, row := range s.matrix.assets {
		view := AssetView{Ticker: row.ticker, Weights: make(map[string]float64, len(snap.Portfolios))}
		for _, p := range snap.Portfolios {
			view.Weights[p.Name] = row.weights[p.ID]
		}
		snap.Assets[i] = view
	}
	for _, t := range s.matrix.Totals() {
		snap.Totals = append(snap.Totals, TotalView{Portfolio: t.Portfolio, Sum: t.Sum.InexactFloat64(), Balanced: t.Balanced})
	}
	for k, v := range s.errors {
		snap.Errors[k] = v
	}
	for _, k := range []Kind{KindBacktest, KindScan, KindScreener} {
		if s.inFlight[k] {
			snap.InFlight = append(snap.InFlight, k)
		}
	}
	return snap
}

func (s *State) begin(kind Kind) error {
	if s.inFlight[kind] {
		return ErrBusy
	}
	s.inFlight[kind] = true
	delete(s.errors, kind)
	return nil
}

func (s *State) end(kind Kind, err error) {
	s.inFlight[kind] = false
	if err != nil {
		s.errors[kind] = err.Error()
	}
}
