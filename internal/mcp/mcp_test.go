package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/session"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

var testNow = time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

type stubEngine struct {
	tickers     []string
	screener    []string
	screenerErr error
	scanRows    []models.ScanRow
	backtest    *models.BacktestResult
}

func (s *stubEngine) Backtest(ctx context.Context, req models.BacktestRequest) (*models.BacktestResult, error) {
	return s.backtest, nil
}

func (s *stubEngine) Scan(ctx context.Context, req models.ScanRequest) ([]models.ScanRow, error) {
	return s.scanRows, nil
}

func (s *stubEngine) Screener(ctx context.Context, req models.ScreenerRequest) ([]string, error) {
	return s.screener, s.screenerErr
}

func (s *stubEngine) Tickers(ctx context.Context) ([]string, error) {
	return s.tickers, nil
}

func newTestSession(t *testing.T, engine *stubEngine) *session.Session {
	t.Helper()
	state := workspace.NewState(workspace.Options{
		MaxPortfolios:   3,
		SuggestionLimit: 5,
		Params:          models.DefaultRunParams(testNow, 2015, 10000, models.RebalanceAnnually, "SPY"),
		Now:             func() time.Time { return testNow },
	})
	store := workspace.NewStore(state, nil)
	t.Cleanup(store.Close)
	return session.New(store, engine, time.Minute, nil)
}

func toolMap(sess *session.Session) map[string]server.ToolHandlerFunc {
	out := make(map[string]server.ToolHandlerFunc)
	for _, st := range Tools(sess, "USD") {
		out[st.Tool.Name] = st.Handler
	}
	return out
}

func call(t *testing.T, h server.ToolHandlerFunc, args map[string]interface{}) *mcpgo.CallToolResult {
	t.Helper()
	request := mcpgo.CallToolRequest{}
	request.Params.Arguments = args
	result, err := h(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func text(result *mcpgo.CallToolResult) string {
	return result.Content[0].(mcpgo.TextContent).Text
}

func TestTools_Names(t *testing.T) {
	tools := toolMap(newTestSession(t, &stubEngine{}))
	for _, name := range []string{
		"get_workspace", "add_asset", "set_ticker", "remove_asset", "clear_tickers",
		"add_portfolio", "rename_portfolio", "remove_portfolio", "set_weight",
		"clear_portfolio_weights", "set_params", "add_tags", "remove_tag", "clear_tags",
		"suggest_tickers", "run_backtest", "run_scan", "sort_results", "run_screener", "get_version",
	} {
		assert.Contains(t, tools, name)
	}
}

func TestTools_EditMatrix(t *testing.T) {
	tools := toolMap(newTestSession(t, &stubEngine{}))

	result := call(t, tools["add_asset"], map[string]interface{}{"ticker": "vti"})
	require.False(t, result.IsError, text(result))
	assert.Contains(t, text(result), "| 2 | VTI |")

	result = call(t, tools["set_weight"], map[string]interface{}{"index": 2, "portfolio": "Portfolio 1", "weight": 20})
	require.False(t, result.IsError, text(result))
	assert.Contains(t, text(result), "**120%** (must be 100%)")

	result = call(t, tools["add_portfolio"], map[string]interface{}{"name": "Income"})
	require.False(t, result.IsError, text(result))
	assert.Contains(t, text(result), "| Income |")
	assert.Contains(t, text(result), "3 of 3 portfolios")

	result = call(t, tools["add_portfolio"], nil)
	assert.True(t, result.IsError)
}

func TestTools_AddPortfolioRefusedLeavesMatrix(t *testing.T) {
	sess := newTestSession(t, &stubEngine{})
	tools := toolMap(sess)

	for _, name := range []string{"Portfolio 1", " Portfolio 2 "} {
		result := call(t, tools["add_portfolio"], map[string]interface{}{"name": name})
		assert.True(t, result.IsError, "name %q", name)
	}

	snap, err := sess.Dispatch(context.Background(), workspace.Refresh{})
	require.NoError(t, err)
	require.Len(t, snap.Portfolios, 2)
	assert.Equal(t, "Portfolio 1", snap.Portfolios[0].Name)
	assert.Equal(t, "Portfolio 2", snap.Portfolios[1].Name)

	result := call(t, tools["add_portfolio"], map[string]interface{}{"name": "  "})
	require.False(t, result.IsError, text(result))
	assert.Contains(t, text(result), "| Portfolio 3 |")
}

func TestTools_MissingParameters(t *testing.T) {
	tools := toolMap(newTestSession(t, &stubEngine{}))

	tests := []struct {
		tool string
		args map[string]interface{}
	}{
		{"set_ticker", map[string]interface{}{"index": 0}},
		{"set_ticker", map[string]interface{}{"ticker": "A"}},
		{"remove_asset", map[string]interface{}{}},
		{"set_weight", map[string]interface{}{"portfolio": "Portfolio 1"}},
		{"rename_portfolio", map[string]interface{}{"from": "Portfolio 1"}},
		{"sort_results", map[string]interface{}{}},
	}
	for _, tt := range tests {
		result := call(t, tools[tt.tool], tt.args)
		assert.True(t, result.IsError, "%s %v", tt.tool, tt.args)
	}
}

func TestMissing(t *testing.T) {
	one := missing("ticker")
	require.True(t, one.IsError)
	assert.Equal(t, "Error: ticker parameter is required", one.Content[0].(mcpgo.TextContent).Text)

	two := missing("index", "weight")
	assert.Equal(t, "Error: index and weight parameters are required", two.Content[0].(mcpgo.TextContent).Text)
}

func TestTools_SetParamsKeepsOmittedFields(t *testing.T) {
	sess := newTestSession(t, &stubEngine{})
	tools := toolMap(sess)

	result := call(t, tools["set_params"], map[string]interface{}{"start_year": 2020, "rebalancing": "Monthly"})
	require.False(t, result.IsError, text(result))

	snap, err := sess.Dispatch(context.Background(), workspace.Refresh{})
	require.NoError(t, err)
	assert.Equal(t, 2020, snap.Params.StartYear)
	assert.Equal(t, models.RebalanceMonthly, snap.Params.Rebalancing)
	assert.Equal(t, 10000.0, snap.Params.InitialAmount)
	assert.Equal(t, "SPY", snap.Params.Benchmark)

	// parameters are checked when a run is submitted
	result = call(t, tools["set_params"], map[string]interface{}{"start_month": 13})
	require.False(t, result.IsError, text(result))
	result = call(t, tools["run_backtest"], nil)
	assert.True(t, result.IsError)
}

func TestTools_RunBacktest(t *testing.T) {
	cagr, beta := 0.12, 1.1
	engine := &stubEngine{backtest: &models.BacktestResult{
		Data: []models.PortfolioResult{
			{Name: "Portfolio 1", Metrics: models.Metrics{CAGR: &cagr}, History: []models.HistoryPoint{{Date: "2026-03-01", Value: 31000}}},
			{Name: "Portfolio 2", Metrics: models.Metrics{CAGR: &cagr, Beta: &beta}},
		},
		Benchmark: &models.PortfolioResult{Name: "SPY", Metrics: models.Metrics{CAGR: &cagr}},
		Warning:   "SOXX history starts 2001",
	}}
	tools := toolMap(newTestSession(t, engine))

	result := call(t, tools["run_backtest"], nil)
	require.False(t, result.IsError, text(result))
	out := text(result)
	assert.Contains(t, out, "| Portfolio 1 | $31,000.00 | 12.00% |")
	assert.Contains(t, out, "_Benchmark (SPY)_")
	assert.Contains(t, out, "**Warning:** SOXX history starts 2001")
	assert.Contains(t, out, "1.10")
}

func TestTools_RunBacktestValidation(t *testing.T) {
	tools := toolMap(newTestSession(t, &stubEngine{}))

	call(t, tools["set_weight"], map[string]interface{}{"index": 0, "portfolio": "Portfolio 1", "weight": 50})
	result := call(t, tools["run_backtest"], nil)
	require.True(t, result.IsError)
	assert.True(t, strings.HasPrefix(text(result), "Portfolio 1:"), text(result))
}

func TestTools_ScanAndSort(t *testing.T) {
	lo, hi := 0.05, 0.3
	engine := &stubEngine{scanRows: []models.ScanRow{
		{Ticker: "AAA", Metrics: models.Metrics{CAGR: &lo}},
		{Ticker: "BBB", Metrics: models.Metrics{CAGR: &hi}},
		{Ticker: "CCC", Error: "no price history"},
	}}
	tools := toolMap(newTestSession(t, engine))

	result := call(t, tools["run_scan"], nil)
	assert.True(t, result.IsError, "empty tag set must be refused")

	result = call(t, tools["add_tags"], map[string]interface{}{"tickers": []interface{}{"aaa", "bbb", "ccc"}})
	require.False(t, result.IsError, text(result))
	assert.Contains(t, text(result), "Added 3 ticker(s)")

	result = call(t, tools["run_scan"], nil)
	require.False(t, result.IsError, text(result))
	out := text(result)
	assert.Less(t, strings.Index(out, "| BBB |"), strings.Index(out, "| AAA |"))
	assert.Less(t, strings.Index(out, "| AAA |"), strings.Index(out, "| CCC |"))
	assert.Contains(t, out, "no price history")

	result = call(t, tools["sort_results"], map[string]interface{}{"key": "cagr"})
	require.False(t, result.IsError, text(result))
	out = text(result)
	assert.Contains(t, out, "CAGR (asc)")
	assert.Less(t, strings.Index(out, "| AAA |"), strings.Index(out, "| BBB |"))

	result = call(t, tools["sort_results"], map[string]interface{}{"key": "bogus"})
	assert.True(t, result.IsError)
}

func TestTools_Screener(t *testing.T) {
	tools := toolMap(newTestSession(t, &stubEngine{screener: []string{"KO", "PEP"}}))

	result := call(t, tools["run_screener"], map[string]interface{}{"dividendYield_min": 2.5})
	require.False(t, result.IsError, text(result))
	assert.Contains(t, text(result), "Screener matched 2 ticker(s): KO, PEP")
	assert.Contains(t, text(result), "## Scan Tickers (2)")
}

func TestTools_ScreenerUnavailable(t *testing.T) {
	tools := toolMap(newTestSession(t, &stubEngine{screenerErr: errors.New("dial tcp: refused")}))

	result := call(t, tools["run_screener"], nil)
	require.True(t, result.IsError)
	assert.Contains(t, text(result), "screener unavailable")
}

func TestTools_SuggestKeepsTypedText(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, &stubEngine{tickers: []string{"AAPL", "AMD", "AMZN", "MSFT"}})
	_, err := sess.LoadCatalog(ctx)
	require.NoError(t, err)
	tools := toolMap(sess)

	before, err := sess.Dispatch(ctx, workspace.SetTagText{Text: "AA"})
	require.NoError(t, err)

	result := call(t, tools["suggest_tickers"], map[string]interface{}{"prefix": "am"})
	require.False(t, result.IsError, text(result))
	assert.Equal(t, "AMD\nAMZN", text(result))

	after, err := sess.Dispatch(ctx, workspace.Refresh{})
	require.NoError(t, err)
	assert.Equal(t, "AA", after.TagText)
	assert.Equal(t, []string{"AAPL"}, after.Suggestions)
	assert.Equal(t, before.Version, after.Version, "a lookup is not an edit")

	result = call(t, tools["suggest_tickers"], map[string]interface{}{"prefix": "zz"})
	assert.Contains(t, text(result), `No catalog tickers start with "ZZ"`)
}

func TestVersionToolHandler(t *testing.T) {
	sess := newTestSession(t, &stubEngine{tickers: []string{"A", "B"}})
	_, err := sess.LoadCatalog(context.Background())
	require.NoError(t, err)

	result := call(t, VersionToolHandler(sess), nil)
	require.False(t, result.IsError)

	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(text(result)), &info))
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, 2, info.CatalogSize)
	assert.Zero(t, info.InFlight)
}

func TestHandler_CatalogAndInitialize(t *testing.T) {
	h := NewHandler(newTestSession(t, &stubEngine{}), "USD", nil)

	catalog := h.Catalog()
	require.Len(t, catalog, 20)
	catalog[0].Name = "mutated"
	assert.NotEqual(t, "mutated", h.Catalog()[0].Name)

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
	req := httptest.NewRequest("POST", "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vire-backtest")
}
