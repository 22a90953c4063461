package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

func metricHeader(sort *workspace.SortState) table.Row {
	row := table.Row{}
	for _, k := range models.MetricKeys {
		label := k.Label()
		if sort != nil && k == sort.Key {
			if sort.Direction == workspace.Ascending {
				label += " ▲"
			} else {
				label += " ▼"
			}
		}
		row = append(row, label)
	}
	return row
}

func metricCells(m models.Metrics) table.Row {
	row := table.Row{}
	for _, k := range models.MetricKeys {
		row = append(row, k.Format(m.Value(k)))
	}
	return row
}

// renderScan writes the scan rows in their current order.
func renderScan(w io.Writer, snap workspace.Snapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := append(table.Row{"Ticker"}, metricHeader(&snap.Sort)...)
	t.AppendHeader(append(header, "Note"))

	for _, r := range snap.Results {
		note := r.Note
		if r.Failed() {
			note = "error: " + r.Error
		}
		row := append(table.Row{r.Ticker}, metricCells(r.Metrics)...)
		t.AppendRow(append(row, note))
	}
	t.Render()
}

// renderBacktest writes one row per portfolio plus the benchmark.
func renderBacktest(w io.Writer, result *models.BacktestResult, currency string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := append(table.Row{"Portfolio"}, metricHeader(nil)...)
	t.AppendHeader(append(header, "Final Value"))

	rows := result.Data
	if result.Benchmark != nil {
		bench := *result.Benchmark
		bench.Name += " (benchmark)"
		rows = append(rows[:len(rows):len(rows)], bench)
	}
	for _, p := range rows {
		final := common.NotAvailable
		if n := len(p.History); n > 0 {
			final = common.FormatMoney(p.History[n-1].Value, currency)
		}
		row := append(table.Row{p.Name}, metricCells(p.Metrics)...)
		t.AppendRow(append(row, final))
	}
	t.Render()

	if result.Warning != "" {
		fmt.Fprintf(w, "warning: %s\n", result.Warning)
	}
}

func renderList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintln(w, item)
	}
}
