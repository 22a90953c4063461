package mcp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func formatPeriod(p models.RunParams) string {
	return fmt.Sprintf("%d-%02d to %d-%02d", p.StartYear, p.StartMonth, p.EndYear, p.EndMonth)
}

func formatParams(sb *strings.Builder, p models.RunParams, currency string) {
	sb.WriteString(fmt.Sprintf("**Period:** %s\n", formatPeriod(p)))
	sb.WriteString(fmt.Sprintf("**Initial Amount:** %s\n", common.FormatMoney(p.InitialAmount, currency)))
	sb.WriteString(fmt.Sprintf("**Rebalancing:** %s\n", p.Rebalancing))
	sb.WriteString(fmt.Sprintf("**Benchmark:** %s\n\n", p.Benchmark))
}

// formatWorkspace formats the matrix, totals and run parameters as markdown
func formatWorkspace(snap workspace.Snapshot, currency string) string {
	var sb strings.Builder

	sb.WriteString("# Workspace\n\n")
	formatParams(&sb, snap.Params, currency)

	sb.WriteString(fmt.Sprintf("## Allocations (%d of %d portfolios)\n\n", len(snap.Portfolios), snap.MaxPortfolios))
	sb.WriteString("| # | Ticker |")
	for _, p := range snap.Portfolios {
		sb.WriteString(" " + p.Name + " |")
	}
	sb.WriteString("\n|---|--------|")
	for range snap.Portfolios {
		sb.WriteString("------|")
	}
	sb.WriteString("\n")
	for i, a := range snap.Assets {
		ticker := a.Ticker
		if ticker == "" {
			ticker = "_(blank)_"
		}
		sb.WriteString(fmt.Sprintf("| %d | %s |", i, ticker))
		for _, p := range snap.Portfolios {
			sb.WriteString(" " + formatWeight(a.Weights[p.Name]) + " |")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("| | **Total** |")
	for _, t := range snap.Totals {
		mark := ""
		if !t.Balanced {
			mark = " (must be 100%)"
		}
		sb.WriteString(" **" + formatWeight(t.Sum) + "**" + mark + " |")
	}
	sb.WriteString("\n\n")

	sb.WriteString(formatTags(snap))

	if len(snap.Errors) > 0 {
		sb.WriteString("\n## Errors\n\n")
		kinds := make([]string, 0, len(snap.Errors))
		for k := range snap.Errors {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			sb.WriteString(fmt.Sprintf("- **%s:** %s\n", k, snap.Errors[workspace.Kind(k)]))
		}
	}

	return sb.String()
}

func formatTags(snap workspace.Snapshot) string {
	if len(snap.Tags) == 0 {
		return "## Scan Tickers\n\nNone.\n"
	}
	return fmt.Sprintf("## Scan Tickers (%d)\n\n%s\n", len(snap.Tags), strings.Join(snap.Tags, ", "))
}

// formatBacktest formats backtest metrics per portfolio and the benchmark as markdown
func formatBacktest(result *models.BacktestResult, params models.RunParams, currency string) string {
	if result == nil {
		return "No backtest result."
	}
	var sb strings.Builder

	sb.WriteString("# Backtest\n\n")
	formatParams(&sb, params, currency)
	if result.Warning != "" {
		sb.WriteString(fmt.Sprintf("**Warning:** %s\n\n", result.Warning))
	}

	sb.WriteString("| Portfolio | Final Value |")
	for _, k := range models.MetricKeys {
		sb.WriteString(" " + k.Label() + " |")
	}
	sb.WriteString("\n|-----------|-------------|")
	for range models.MetricKeys {
		sb.WriteString("------|")
	}
	sb.WriteString("\n")

	row := func(name string, p models.PortfolioResult) {
		final := common.NotAvailable
		if n := len(p.History); n > 0 {
			final = common.FormatMoney(p.History[n-1].Value, currency)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s |", name, final))
		for _, k := range models.MetricKeys {
			sb.WriteString(" " + k.Format(p.Value(k)) + " |")
		}
		sb.WriteString("\n")
	}
	for _, p := range result.Data {
		row(p.Name, p)
	}
	if result.Benchmark != nil {
		row(fmt.Sprintf("_Benchmark (%s)_", params.Benchmark), *result.Benchmark)
	}

	return sb.String()
}

// formatScan formats scan rows in their current order as markdown
func formatScan(snap workspace.Snapshot) string {
	if len(snap.Results) == 0 {
		return "No scan results."
	}
	var sb strings.Builder

	sb.WriteString("# Scan Results\n\n")
	sb.WriteString(fmt.Sprintf("**Period:** %s\n", formatPeriod(snap.Params)))
	sb.WriteString(fmt.Sprintf("**Sorted by:** %s (%s)\n\n", snap.Sort.Key.Label(), snap.Sort.Direction))

	sb.WriteString("| Ticker |")
	for _, k := range models.MetricKeys {
		sb.WriteString(" " + k.Label() + " |")
	}
	sb.WriteString(" Note |\n|--------|")
	for range models.MetricKeys {
		sb.WriteString("------|")
	}
	sb.WriteString("------|\n")

	for _, r := range snap.Results {
		sb.WriteString("| " + r.Ticker + " |")
		for _, k := range models.MetricKeys {
			sb.WriteString(" " + k.Format(r.Value(k)) + " |")
		}
		note := r.Note
		if r.Failed() {
			note = r.Error
		}
		sb.WriteString(" " + note + " |\n")
	}

	return sb.String()
}

func formatScreener(snap workspace.Snapshot) string {
	if len(snap.ScreenerMatches) == 0 {
		return "Screener matched no tickers."
	}
	return fmt.Sprintf("Screener matched %d ticker(s): %s\n\n%s",
		len(snap.ScreenerMatches), strings.Join(snap.ScreenerMatches, ", "), formatTags(snap))
}
