// Package chart renders backtest value histories as PNG line charts.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/vire-backtest/internal/models"
)

// ErrNoHistory is returned when no series has enough points to draw.
var ErrNoHistory = errors.New("no portfolio history to chart")

var palette = []string{
	"2563eb", // blue-600
	"16a34a", // green-600
	"db2777", // pink-600
	"ea580c", // orange-600
	"7c3aed", // violet-600
}

const benchmarkColor = "6b7280" // gray-500

// RenderGrowthChart draws one line per portfolio plus a dashed benchmark
// line. Returns raw PNG bytes.
func RenderGrowthChart(result *models.BacktestResult) ([]byte, error) {
	if result == nil {
		return nil, ErrNoHistory
	}

	var series []chart.Series
	for i, p := range result.Data {
		s, ok := timeSeries(p, chart.Style{
			StrokeColor: drawing.ColorFromHex(palette[i%len(palette)]),
			StrokeWidth: 2.5,
		})
		if ok {
			series = append(series, s)
		}
	}
	if len(series) == 0 {
		return nil, ErrNoHistory
	}
	if result.Benchmark != nil {
		s, ok := timeSeries(*result.Benchmark, chart.Style{
			StrokeColor:     drawing.ColorFromHex(benchmarkColor),
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		})
		if ok {
			series = append(series, s)
		}
	}

	graph := chart.Chart{
		Title:  "Portfolio Growth",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0fk", f/1000)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// timeSeries converts a history; points with unparseable dates are skipped.
func timeSeries(p models.PortfolioResult, style chart.Style) (chart.TimeSeries, bool) {
	xs := make([]time.Time, 0, len(p.History))
	ys := make([]float64, 0, len(p.History))
	for _, h := range p.History {
		t, err := h.Time()
		if err != nil {
			continue
		}
		xs = append(xs, t)
		ys = append(ys, h.Value)
	}
	if len(xs) < 2 {
		return chart.TimeSeries{}, false
	}
	return chart.TimeSeries{Name: p.Name, Style: style, XValues: xs, YValues: ys}, true
}
