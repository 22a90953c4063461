package workspace

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/vire-backtest/internal/models"
)

// WeightTolerance is how far a portfolio's weights may sum from 100.
var WeightTolerance = decimal.RequireFromString("0.01")

// AssembleBacktest derives the engine request from the matrix. Portfolios
// with no ticker holding a positive weight are left out; any other
// portfolio whose weights do not sum to 100 fails the whole request.
func AssembleBacktest(m *Matrix, params models.RunParams, now time.Time) (models.BacktestRequest, error) {
	if err := params.Validate(now); err != nil {
		return models.BacktestRequest{}, &ValidationError{Message: err.Error(), Err: err}
	}

	req := models.BacktestRequest{
		InitialAmount:     params.InitialAmount,
		StartYear:         params.StartYear,
		StartMonth:        params.StartMonth,
		EndYear:           params.EndYear,
		EndMonth:          params.EndMonth,
		RebalancingPeriod: params.Rebalancing,
		Benchmark:         models.NormalizeTicker(params.Benchmark),
	}

	for _, p := range m.portfolios {
		pr := models.PortfolioRequest{Name: p.Name, RebalancingPeriod: params.Rebalancing}
		sum := decimal.Zero
		for _, row := range m.assets {
			ticker := strings.TrimSpace(row.ticker)
			w := row.weights[p.ID]
			if ticker == "" || w <= 0 {
				continue
			}
			pr.Tickers = append(pr.Tickers, ticker)
			pr.Weights = append(pr.Weights, w)
			sum = sum.Add(decimal.NewFromFloat(w))
		}
		if len(pr.Tickers) == 0 {
			continue
		}
		if sum.Sub(hundred).Abs().GreaterThan(WeightTolerance) {
			return models.BacktestRequest{}, &ValidationError{
				Portfolio: p.Name,
				Message:   "weights sum to " + sum.String() + "%, expected 100%",
			}
		}
		req.Portfolios = append(req.Portfolios, pr)
	}

	if len(req.Portfolios) == 0 {
		return models.BacktestRequest{}, &ValidationError{Err: ErrNoValidPortfolio}
	}
	return req, nil
}

// AssembleScan derives a scan request from the tag set.
func AssembleScan(tags []string, params models.RunParams, now time.Time) (models.ScanRequest, error) {
	if len(tags) == 0 {
		return models.ScanRequest{}, &ValidationError{Err: ErrEmptyTickerSet}
	}
	if err := params.ValidateRange(now); err != nil {
		return models.ScanRequest{}, &ValidationError{Message: err.Error(), Err: err}
	}
	tickers := make([]string, len(tags))
	copy(tickers, tags)
	return models.ScanRequest{
		Tickers:    tickers,
		Benchmark:  models.NormalizeTicker(params.Benchmark),
		StartYear:  params.StartYear,
		StartMonth: params.StartMonth,
		EndYear:    params.EndYear,
		EndMonth:   params.EndMonth,
	}, nil
}
