package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

const (
	tickerWidth = 8
	weightWidth = 13
	metricWidth = 13
)

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pad(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// View renders the screen.
func (m Model) View() string {
	if m.quit {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("vire backtest " + common.GetVersion()))
	sb.WriteString("\n")
	sb.WriteString(m.viewTabs())
	sb.WriteString("\n")
	if m.pane == paneMatrix {
		sb.WriteString(panelStyle.Render(m.viewMatrix()))
	} else {
		sb.WriteString(panelStyle.Render(m.viewScan()))
	}
	sb.WriteString("\n")
	sb.WriteString(m.viewStatus())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(m.help()))
	return sb.String()
}

func (m Model) viewTabs() string {
	tabs := []string{"Backtest", "Scan"}
	out := make([]string, len(tabs))
	for i, t := range tabs {
		if pane(i) == m.pane {
			out[i] = activeTabStyle.Render(t)
		} else {
			out[i] = tabStyle.Render(t)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func (m Model) viewMatrix() string {
	var sb strings.Builder

	header := []string{headerCellStyle.Render(pad("Ticker", tickerWidth))}
	for i, p := range m.snap.Portfolios {
		if m.rename && i == m.col-1 {
			header = append(header, cursorStyle.Render(pad(m.cell.View(), weightWidth)))
			continue
		}
		header = append(header, headerCellStyle.Render(pad(p.Name, weightWidth)))
	}
	sb.WriteString(strings.Join(header, " ") + "\n")

	for r, a := range m.snap.Assets {
		cells := make([]string, 0, len(m.snap.Portfolios)+1)
		for c := 0; c <= len(m.snap.Portfolios); c++ {
			width := weightWidth
			text := ""
			if c == 0 {
				width = tickerWidth
				text = a.Ticker
				if text == "" {
					text = mutedStyle.Render("-")
				}
			} else {
				text = formatWeight(a.Weights[m.snap.Portfolios[c-1].Name]) + "%"
			}
			if r == m.row && c == m.col {
				if m.edit && !m.rename {
					text = m.cell.View()
				}
				cells = append(cells, cursorStyle.Render(pad(text, width)))
				continue
			}
			cells = append(cells, pad(text, width))
		}
		sb.WriteString(strings.Join(cells, " ") + "\n")
	}

	totals := []string{mutedStyle.Render(pad("Total", tickerWidth))}
	for _, t := range m.snap.Totals {
		text := formatWeight(t.Sum) + "%"
		if t.Balanced {
			totals = append(totals, okStyle.Render(pad(text, weightWidth)))
		} else {
			totals = append(totals, badStyle.Render(pad(text+" !", weightWidth)))
		}
	}
	sb.WriteString(strings.Join(totals, " ") + "\n\n")
	sb.WriteString(m.viewParams())

	if bt := m.snap.Backtest; bt != nil {
		sb.WriteString("\n\n")
		sb.WriteString(m.viewBacktest(bt))
	}
	if msg := m.snap.Errors[workspace.KindBacktest]; msg != "" {
		sb.WriteString("\n" + errorStyle.Render(msg))
	}
	return sb.String()
}

func (m Model) viewParams() string {
	p := m.snap.Params
	return mutedStyle.Render(fmt.Sprintf("%02d/%d - %02d/%d  %s  rebalance %s  benchmark %s",
		p.StartMonth, p.StartYear, p.EndMonth, p.EndYear,
		common.FormatMoney(p.InitialAmount, m.currency), p.Rebalancing, p.Benchmark))
}

func (m Model) viewBacktest(bt *models.BacktestResult) string {
	var sb strings.Builder
	header := []string{headerCellStyle.Render(pad("Portfolio", weightWidth))}
	for _, k := range models.MetricKeys {
		header = append(header, headerCellStyle.Render(pad(k.Label(), metricWidth)))
	}
	sb.WriteString(strings.Join(header, " ") + "\n")

	rows := bt.Data
	if bt.Benchmark != nil {
		rows = append(rows[:len(rows):len(rows)], *bt.Benchmark)
	}
	for _, pr := range rows {
		cells := []string{pad(pr.Name, weightWidth)}
		for _, k := range models.MetricKeys {
			cells = append(cells, pad(k.Format(pr.Value(k)), metricWidth))
		}
		sb.WriteString(strings.Join(cells, " ") + "\n")
	}
	if bt.Warning != "" {
		sb.WriteString(statusStyle.Render("warning: " + bt.Warning))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) viewScan() string {
	var sb strings.Builder

	tags := make([]string, len(m.snap.Tags))
	for i, t := range m.snap.Tags {
		tags[i] = tagStyle.Render(t)
	}
	if len(tags) == 0 {
		sb.WriteString(mutedStyle.Render("no tickers yet"))
	} else {
		sb.WriteString(strings.Join(tags, " "))
	}
	sb.WriteString("\n" + m.tags.View() + "\n")

	for i, s := range m.snap.Suggestions {
		if i == m.snap.Highlight {
			sb.WriteString(cursorStyle.Render("  "+s+"  ") + "\n")
		} else {
			sb.WriteString("  " + s + "\n")
		}
	}

	if len(m.snap.Results) > 0 {
		sb.WriteString("\n" + m.viewResults())
	}
	if msg := m.snap.Errors[workspace.KindScan]; msg != "" {
		sb.WriteString("\n" + errorStyle.Render(msg))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) viewResults() string {
	var sb strings.Builder
	header := []string{headerCellStyle.Render(pad("Ticker", tickerWidth))}
	for _, k := range models.MetricKeys {
		label := k.Label()
		if k == m.snap.Sort.Key {
			label += arrow(m.snap.Sort.Direction)
		}
		header = append(header, headerCellStyle.Render(pad(label, metricWidth)))
	}
	sb.WriteString(strings.Join(header, " ") + "\n")

	for _, row := range m.snap.Results {
		cells := []string{pad(row.Ticker, tickerWidth)}
		if row.Failed() {
			cells = append(cells, errorStyle.Render(row.Error))
			sb.WriteString(strings.Join(cells, " ") + "\n")
			continue
		}
		for _, k := range models.MetricKeys {
			cells = append(cells, pad(k.Format(row.Value(k)), metricWidth))
		}
		if row.Note != "" {
			cells = append(cells, mutedStyle.Render(row.Note))
		}
		sb.WriteString(strings.Join(cells, " ") + "\n")
	}
	return sb.String()
}

func arrow(d workspace.Direction) string {
	if d == workspace.Ascending {
		return " ▲"
	}
	return " ▼"
}

func (m Model) viewStatus() string {
	switch {
	case len(m.snap.InFlight) > 0:
		return m.spin.View() + " " + statusStyle.Render(m.status)
	case m.err != "":
		return errorStyle.Render(m.err)
	case m.status != "":
		return statusStyle.Render(m.status)
	}
	return ""
}

func (m Model) help() string {
	if m.pane == paneMatrix {
		if m.edit {
			return "enter save • esc cancel"
		}
		return "arrows move • enter edit • n rename portfolio • a add asset • d remove asset • p add portfolio • P remove portfolio • x clear weights • X clear tickers • r run • tab scan • q quit"
	}
	return "enter add • up/down suggestions • esc dismiss • ctrl+r run • ctrl+s sort • ctrl+o reverse • ctrl+g import • ctrl+x clear • tab backtest"
}
