// Package tui is the terminal client. It edits the allocation matrix and
// the scan tag set through the same intents as the HTTP and MCP surfaces.
package tui

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bobmcallan/vire-backtest/internal/interfaces"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

type pane int

const (
	paneMatrix pane = iota
	paneScan
)

type runDoneMsg struct {
	kind workspace.Kind
	snap workspace.Snapshot
	err  error
}

type catalogMsg struct {
	snap workspace.Snapshot
	err  error
}

// Model is the bubbletea model.
type Model struct {
	ctx      context.Context
	ws       interfaces.Workspace
	currency string

	snap   workspace.Snapshot
	pane   pane
	row    int
	col    int // 0 is the ticker column, i > 0 is portfolio i-1
	cell   textinput.Model
	edit   bool
	rename bool // the edit targets the portfolio header, not a cell
	tags   textinput.Model
	spin   spinner.Model
	status string
	err    string
	width  int
	quit   bool
}

// Loader fetches the ticker catalog into the workspace.
type Loader interface {
	LoadCatalog(ctx context.Context) (workspace.Snapshot, error)
}

// NewModel creates the terminal model over ws.
func NewModel(ctx context.Context, ws interfaces.Workspace, currency string) Model {
	cell := textinput.New()
	cell.Prompt = ""
	cell.CharLimit = 16

	tags := textinput.New()
	tags.Prompt = "> "
	tags.Placeholder = "type a ticker, Enter to add"
	tags.CharLimit = 12

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = statusStyle

	m := Model{
		ctx:      ctx,
		ws:       ws,
		currency: currency,
		cell:     cell,
		tags:     tags,
		spin:     spin,
	}
	m.apply(workspace.Refresh{})
	return m
}

// Init loads the catalog when the workspace can fetch one.
func (m Model) Init() tea.Cmd {
	loader, ok := m.ws.(Loader)
	if !ok {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		snap, err := loader.LoadCatalog(ctx)
		return catalogMsg{snap: snap, err: err}
	}
}

// apply dispatches a local edit and records the outcome.
func (m *Model) apply(in workspace.Intent) bool {
	snap, err := m.ws.Dispatch(m.ctx, in)
	if snap.Errors != nil {
		m.snap = snap
		m.clampCursor()
	}
	if err != nil {
		m.err = err.Error()
		return false
	}
	m.err = ""
	return true
}

func (m *Model) clampCursor() {
	m.row = min(m.row, max(len(m.snap.Assets)-1, 0))
	m.col = min(m.col, len(m.snap.Portfolios))
}

func (m Model) run(kind workspace.Kind) tea.Cmd {
	ws, ctx := m.ws, m.ctx
	return func() tea.Msg {
		var snap workspace.Snapshot
		var err error
		switch kind {
		case workspace.KindBacktest:
			snap, err = ws.RunBacktest(ctx)
		case workspace.KindScan:
			snap, err = ws.RunScan(ctx)
		}
		return runDoneMsg{kind: kind, snap: snap, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case catalogMsg:
		if msg.err == nil {
			m.snap = msg.snap
			m.status = fmt.Sprintf("%d tickers in catalog", msg.snap.CatalogSize)
		}
		return m, nil

	case runDoneMsg:
		if msg.snap.Errors != nil {
			m.snap = msg.snap
			m.clampCursor()
		} else {
			// drop the optimistic in-flight marker
			m.apply(workspace.Refresh{})
		}
		if msg.err != nil {
			m.err = msg.err.Error()
			m.status = ""
		} else {
			m.err = ""
			m.status = fmt.Sprintf("%s complete", msg.kind)
		}
		return m, nil

	case spinner.TickMsg:
		if len(m.snap.InFlight) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quit = true
			return m, tea.Quit
		}
		if m.pane == paneMatrix {
			return m.updateMatrix(msg)
		}
		return m.updateScan(msg)
	}
	return m, nil
}

func (m Model) startRun(kind workspace.Kind) (tea.Model, tea.Cmd) {
	if m.snap.Busy(kind) {
		m.err = workspace.ErrBusy.Error()
		return m, nil
	}
	m.snap.InFlight = append(m.snap.InFlight, kind)
	m.status = fmt.Sprintf("running %s", kind)
	return m, tea.Batch(m.run(kind), m.spin.Tick)
}

func (m Model) updateMatrix(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.edit {
		switch msg.String() {
		case "enter":
			if m.rename {
				m.apply(workspace.RenamePortfolio{From: m.portfolio(), To: m.cell.Value()})
			} else {
				m.commitCell()
			}
			m.edit, m.rename = false, false
			m.cell.Blur()
			return m, nil
		case "esc":
			m.edit, m.rename = false, false
			m.cell.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.cell, cmd = m.cell.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quit = true
		return m, tea.Quit
	case "tab":
		m.pane = paneScan
		cmd := m.tags.Focus()
		return m, cmd
	case "up", "k":
		m.row = max(m.row-1, 0)
	case "down", "j":
		m.row = min(m.row+1, max(len(m.snap.Assets)-1, 0))
	case "left", "h":
		m.col = max(m.col-1, 0)
	case "right", "l":
		m.col = min(m.col+1, len(m.snap.Portfolios))
	case "enter":
		if len(m.snap.Assets) == 0 {
			return m, nil
		}
		m.edit = true
		m.cell.SetValue(m.cellText())
		m.cell.CursorEnd()
		cmd := m.cell.Focus()
		return m, cmd
	case "n":
		name := m.portfolio()
		if name == "" {
			return m, nil
		}
		m.edit, m.rename = true, true
		m.cell.SetValue(name)
		m.cell.CursorEnd()
		cmd := m.cell.Focus()
		return m, cmd
	case "a":
		if m.apply(workspace.AddAsset{}) {
			m.row = len(m.snap.Assets) - 1
		}
	case "d":
		m.apply(workspace.RemoveAsset{Index: m.row})
	case "p":
		in := &workspace.AddPortfolio{}
		if m.apply(in) {
			m.status = "added " + in.Added.Name
		}
	case "P":
		if name := m.portfolio(); name != "" {
			m.apply(workspace.RemovePortfolio{Portfolio: name})
		}
	case "x":
		if name := m.portfolio(); name != "" {
			m.apply(workspace.ClearPortfolioWeights{Portfolio: name})
		}
	case "X":
		m.apply(workspace.ClearAllTickers{})
	case "r":
		return m.startRun(workspace.KindBacktest)
	}
	return m, nil
}

// portfolio is the name under the cursor, empty on the ticker column.
func (m Model) portfolio() string {
	if m.col == 0 || m.col > len(m.snap.Portfolios) {
		return ""
	}
	return m.snap.Portfolios[m.col-1].Name
}

func (m Model) cellText() string {
	a := m.snap.Assets[m.row]
	if m.col == 0 {
		return a.Ticker
	}
	return formatWeight(a.Weights[m.portfolio()])
}

func (m *Model) commitCell() {
	text := m.cell.Value()
	if m.col == 0 {
		m.apply(workspace.SetTicker{Index: m.row, Text: text})
		return
	}
	m.apply(workspace.SetWeightText{Index: m.row, Portfolio: m.portfolio(), Text: text})
}

func (m Model) updateScan(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.pane = paneMatrix
		m.tags.Blur()
		return m, nil
	case "up":
		m.apply(workspace.MoveHighlight{Delta: -1})
		return m, nil
	case "down":
		m.apply(workspace.MoveHighlight{Delta: 1})
		return m, nil
	case "enter":
		in := &workspace.ConfirmTag{}
		if m.apply(in) && in.Committed != "" && !in.Added {
			m.status = in.Committed + " already added"
		}
		m.tags.SetValue(m.snap.TagText)
		return m, nil
	case "esc":
		m.apply(workspace.DismissSuggestions{})
		return m, nil
	case "backspace":
		if m.tags.Value() == "" {
			m.apply(workspace.EraseTag{})
			return m, nil
		}
	case "ctrl+r":
		return m.startRun(workspace.KindScan)
	case "ctrl+s":
		m.apply(workspace.SortResults{Key: string(nextKey(m.snap.Sort.Key))})
		return m, nil
	case "ctrl+o":
		m.apply(workspace.SortResults{Key: string(m.snap.Sort.Key)})
		return m, nil
	case "ctrl+x":
		m.apply(workspace.ClearTags{})
		m.tags.SetValue("")
		return m, nil
	case "ctrl+g":
		in := &workspace.ImportTags{}
		if m.apply(in) {
			m.status = fmt.Sprintf("imported %d screener match(es)", in.Added)
		}
		return m, nil
	}

	before := m.tags.Value()
	var cmd tea.Cmd
	m.tags, cmd = m.tags.Update(msg)
	if m.tags.Value() != before {
		m.apply(workspace.SetTagText{Text: m.tags.Value()})
	}
	return m, cmd
}

func nextKey(k models.MetricKey) models.MetricKey {
	i := slices.Index(models.MetricKeys, k)
	return models.MetricKeys[(i+1)%len(models.MetricKeys)]
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, ws interfaces.Workspace, currency string) error {
	p := tea.NewProgram(NewModel(ctx, ws, currency), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
