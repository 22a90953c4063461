package chart

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bobmcallan/vire-backtest/internal/models"
)

func history(values ...float64) []models.HistoryPoint {
	dates := []string{"2020-01-02", "2020-06-01", "2021-01-04", "2021-06-01"}
	out := make([]models.HistoryPoint, len(values))
	for i, v := range values {
		out[i] = models.HistoryPoint{Date: dates[i], Value: v}
	}
	return out
}

func TestRenderGrowthChart_PNG(t *testing.T) {
	result := &models.BacktestResult{
		Data: []models.PortfolioResult{
			{Name: "Portfolio 1", History: history(10000, 11000, 12500)},
			{Name: "Portfolio 2", History: history(10000, 9000, 14000)},
		},
		Benchmark: &models.PortfolioResult{Name: "SPY", History: history(10000, 10500, 11000)},
	}

	png, err := RenderGrowthChart(result)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG signature")
	}
}

func TestRenderGrowthChart_NoHistory(t *testing.T) {
	if _, err := RenderGrowthChart(nil); !errors.Is(err, ErrNoHistory) {
		t.Errorf("expected ErrNoHistory for nil result, got %v", err)
	}

	result := &models.BacktestResult{
		Data: []models.PortfolioResult{{Name: "Portfolio 1", History: history(10000)}},
	}
	if _, err := RenderGrowthChart(result); !errors.Is(err, ErrNoHistory) {
		t.Errorf("expected ErrNoHistory for single point, got %v", err)
	}
}
