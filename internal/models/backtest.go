package models

import "time"

// RebalancingPeriod is how often a simulated portfolio is reset to its target weights.
type RebalancingPeriod string

const (
	RebalanceNever     RebalancingPeriod = "never"
	RebalanceAnnually  RebalancingPeriod = "annually"
	RebalanceQuarterly RebalancingPeriod = "quarterly"
	RebalanceMonthly   RebalancingPeriod = "monthly"
)

// RebalancingPeriods lists the accepted periods.
var RebalancingPeriods = []RebalancingPeriod{
	RebalanceNever, RebalanceAnnually, RebalanceQuarterly, RebalanceMonthly,
}

// Valid reports whether p is a known period.
func (p RebalancingPeriod) Valid() bool {
	for _, known := range RebalancingPeriods {
		if p == known {
			return true
		}
	}
	return false
}

// PortfolioRequest is one portfolio in a backtest request. Tickers and
// Weights are parallel slices.
type PortfolioRequest struct {
	Name              string            `json:"name"`
	Tickers           []string          `json:"tickers"`
	Weights           []float64         `json:"weights"`
	RebalancingPeriod RebalancingPeriod `json:"rebalancingPeriod"`
}

// BacktestRequest is the body of POST /api/backtest.
type BacktestRequest struct {
	InitialAmount     float64            `json:"initialAmount"`
	StartYear         int                `json:"startYear"`
	StartMonth        int                `json:"startMonth"`
	EndYear           int                `json:"endYear"`
	EndMonth          int                `json:"endMonth"`
	RebalancingPeriod RebalancingPeriod  `json:"rebalancingPeriod"`
	Benchmark         string             `json:"benchmark"`
	Portfolios        []PortfolioRequest `json:"portfolios"`
}

// HistoryPoint is one day of simulated portfolio value.
type HistoryPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Time parses the engine's YYYY-MM-DD date.
func (h HistoryPoint) Time() (time.Time, error) {
	return time.Parse("2006-01-02", h.Date)
}

// PortfolioResult is the engine's outcome for one portfolio or the benchmark.
type PortfolioResult struct {
	Name string `json:"name"`
	Metrics
	History []HistoryPoint `json:"portfolioHistory"`
}

// BacktestResult is the response of POST /api/backtest.
type BacktestResult struct {
	Data      []PortfolioResult `json:"data"`
	Benchmark *PortfolioResult  `json:"benchmark"`
	Warning   string            `json:"warning,omitempty"`
}
