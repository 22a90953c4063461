package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vire-backtest/internal/interfaces"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

// ToolInfo is one entry of the published tool list.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Tools builds every workspace tool. Each tool dispatches intents against
// ws and answers with markdown.
func Tools(ws interfaces.Workspace, currency string) []server.ServerTool {
	t := &toolset{ws: ws, currency: currency}
	return []server.ServerTool{
		{Tool: mcp.NewTool("get_workspace",
			mcp.WithDescription("Show the allocation matrix, weight totals, run parameters and scan tickers."),
		), Handler: t.getWorkspace},
		{Tool: mcp.NewTool("add_asset",
			mcp.WithDescription("Append an asset row, optionally with its ticker."),
			mcp.WithString("ticker", mcp.Description("Ticker for the new row (e.g. 'VTI')")),
		), Handler: t.addAsset},
		{Tool: mcp.NewTool("set_ticker",
			mcp.WithDescription("Set the ticker of an asset row."),
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based row index")),
			mcp.WithString("ticker", mcp.Required(), mcp.Description("Ticker symbol")),
		), Handler: t.setTicker},
		{Tool: mcp.NewTool("remove_asset",
			mcp.WithDescription("Remove an asset row and its weights."),
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based row index")),
		), Handler: t.removeAsset},
		{Tool: mcp.NewTool("clear_tickers",
			mcp.WithDescription("Blank every ticker in the matrix, keeping weights."),
		), Handler: t.dispatch(workspace.ClearAllTickers{})},
		{Tool: mcp.NewTool("add_portfolio",
			mcp.WithDescription("Add a portfolio column with zero weights."),
			mcp.WithString("name", mcp.Description("Name for the new portfolio (default: Portfolio N)")),
		), Handler: t.addPortfolio},
		{Tool: mcp.NewTool("rename_portfolio",
			mcp.WithDescription("Rename a portfolio, keeping its weights."),
			mcp.WithString("from", mcp.Required(), mcp.Description("Current name")),
			mcp.WithString("to", mcp.Required(), mcp.Description("New unique name")),
		), Handler: t.renamePortfolio},
		{Tool: mcp.NewTool("remove_portfolio",
			mcp.WithDescription("Remove a portfolio column."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Portfolio name")),
		), Handler: t.removePortfolio},
		{Tool: mcp.NewTool("set_weight",
			mcp.WithDescription("Set one allocation weight in percent."),
			mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based row index")),
			mcp.WithString("portfolio", mcp.Required(), mcp.Description("Portfolio name")),
			mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight in percent, e.g. 60")),
		), Handler: t.setWeight},
		{Tool: mcp.NewTool("clear_portfolio_weights",
			mcp.WithDescription("Zero every weight of one portfolio."),
			mcp.WithString("portfolio", mcp.Required(), mcp.Description("Portfolio name")),
		), Handler: t.clearWeights},
		{Tool: mcp.NewTool("set_params",
			mcp.WithDescription("Change run parameters. Omitted fields keep their current value."),
			mcp.WithNumber("initial_amount", mcp.Description("Starting capital")),
			mcp.WithNumber("start_year", mcp.Description("First year")),
			mcp.WithNumber("start_month", mcp.Description("First month, 1-12")),
			mcp.WithNumber("end_year", mcp.Description("Last year")),
			mcp.WithNumber("end_month", mcp.Description("Last month, 1-12")),
			mcp.WithString("rebalancing", mcp.Description("never, annually, quarterly or monthly")),
			mcp.WithString("benchmark", mcp.Description("Benchmark ticker")),
		), Handler: t.setParams},
		{Tool: mcp.NewTool("add_tags",
			mcp.WithDescription("Add tickers to the scan set. With no tickers the last screener matches are added."),
			mcp.WithArray("tickers", mcp.WithStringItems(), mcp.Description("Tickers to add")),
		), Handler: t.addTags},
		{Tool: mcp.NewTool("remove_tag",
			mcp.WithDescription("Remove one ticker from the scan set."),
			mcp.WithString("ticker", mcp.Required(), mcp.Description("Ticker to remove")),
		), Handler: t.removeTag},
		{Tool: mcp.NewTool("clear_tags",
			mcp.WithDescription("Empty the scan set."),
		), Handler: t.dispatch(workspace.ClearTags{})},
		{Tool: mcp.NewTool("suggest_tickers",
			mcp.WithDescription("List catalog tickers starting with a prefix."),
			mcp.WithString("prefix", mcp.Required(), mcp.Description("Ticker prefix, case-insensitive")),
		), Handler: t.suggest},
		{Tool: mcp.NewTool("run_backtest",
			mcp.WithDescription("Backtest every portfolio with a non-empty allocation against the benchmark."),
		), Handler: t.runBacktest},
		{Tool: mcp.NewTool("run_scan",
			mcp.WithDescription("Compute metrics for every ticker in the scan set."),
		), Handler: t.runScan},
		{Tool: mcp.NewTool("sort_results",
			mcp.WithDescription("Sort scan results by a metric. Sorting by the active metric flips the direction."),
			mcp.WithString("key", mcp.Required(), mcp.Description("cagr, volatility, mdd, sharpe_ratio, sortino_ratio, beta or alpha")),
		), Handler: t.sortResults},
		{Tool: screenerTool(), Handler: t.runScreener},
		{Tool: VersionTool(), Handler: VersionToolHandler(ws)},
	}
}

func screenerTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Screen an index by fundamentals and add the matches to the scan set."),
		mcp.WithString("index", mcp.Description("sp500 or nasdaq100 (default: sp500)")),
		mcp.WithString("sector", mcp.Description("Sector name (default: any)")),
	}
	for _, f := range models.ScreenerFilters {
		opts = append(opts,
			mcp.WithNumber(f.Key+"_min", mcp.Description("Minimum "+f.Label)),
			mcp.WithNumber(f.Key+"_max", mcp.Description("Maximum "+f.Label)),
		)
	}
	return mcp.NewTool("run_screener", opts...)
}

type toolset struct {
	ws       interfaces.Workspace
	currency string
}

// apply dispatches in and renders the workspace, or the refusal.
func (t *toolset) apply(ctx context.Context, in workspace.Intent) (*mcp.CallToolResult, error) {
	snap, err := t.ws.Dispatch(ctx, in)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(formatWorkspace(snap, t.currency)), nil
}

func (t *toolset) dispatch(in workspace.Intent) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return t.apply(ctx, in)
	}
}

func (t *toolset) getWorkspace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.apply(ctx, workspace.Refresh{})
}

func (t *toolset) addAsset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.apply(ctx, workspace.AddAsset{Ticker: request.GetString("ticker", "")})
}

func (t *toolset) setTicker(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticker, err := request.RequireString("ticker")
	if err != nil {
		return missing("ticker"), nil
	}
	if !has(request, "index") {
		return missing("index"), nil
	}
	return t.apply(ctx, workspace.SetTicker{Index: request.GetInt("index", 0), Text: ticker})
}

func (t *toolset) removeAsset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !has(request, "index") {
		return missing("index"), nil
	}
	return t.apply(ctx, workspace.RemoveAsset{Index: request.GetInt("index", 0)})
}

func (t *toolset) addPortfolio(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.apply(ctx, &workspace.AddPortfolio{Label: request.GetString("name", "")})
}

func (t *toolset) renamePortfolio(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := request.RequireString("from")
	if err != nil {
		return missing("from"), nil
	}
	to, err := request.RequireString("to")
	if err != nil {
		return missing("to"), nil
	}
	return t.apply(ctx, workspace.RenamePortfolio{From: from, To: to})
}

func (t *toolset) removePortfolio(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return missing("name"), nil
	}
	return t.apply(ctx, workspace.RemovePortfolio{Portfolio: name})
}

func (t *toolset) setWeight(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	portfolio, err := request.RequireString("portfolio")
	if err != nil {
		return missing("portfolio"), nil
	}
	if !has(request, "index") || !has(request, "weight") {
		return missing("index", "weight"), nil
	}
	return t.apply(ctx, workspace.SetWeight{
		Index:     request.GetInt("index", 0),
		Portfolio: portfolio,
		Value:     request.GetFloat("weight", 0),
	})
}

func (t *toolset) clearWeights(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	portfolio, err := request.RequireString("portfolio")
	if err != nil {
		return missing("portfolio"), nil
	}
	return t.apply(ctx, workspace.ClearPortfolioWeights{Portfolio: portfolio})
}

func (t *toolset) setParams(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := t.ws.Dispatch(ctx, workspace.Refresh{})
	if err != nil {
		return errorResult(err.Error()), nil
	}
	p := snap.Params
	if v := optionalFloat(request, "initial_amount"); v != nil {
		p.InitialAmount = *v
	}
	ints := map[string]*int{
		"start_year":  &p.StartYear,
		"start_month": &p.StartMonth,
		"end_year":    &p.EndYear,
		"end_month":   &p.EndMonth,
	}
	for key, field := range ints {
		if has(request, key) {
			*field = request.GetInt(key, *field)
		}
	}
	if v := request.GetString("rebalancing", ""); v != "" {
		p.Rebalancing = models.RebalancingPeriod(strings.ToLower(v))
	}
	if v := request.GetString("benchmark", ""); v != "" {
		p.Benchmark = v
	}
	return t.apply(ctx, workspace.SetParams{Params: p})
}

func (t *toolset) addTags(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := &workspace.ImportTags{Tickers: request.GetStringSlice("tickers", nil)}
	snap, err := t.ws.Dispatch(ctx, in)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(fmt.Sprintf("Added %d ticker(s).\n\n%s", in.Added, formatTags(snap))), nil
}

func (t *toolset) removeTag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticker, err := request.RequireString("ticker")
	if err != nil {
		return missing("ticker"), nil
	}
	return t.apply(ctx, workspace.RemoveTag{Ticker: models.NormalizeTicker(ticker)})
}

func (t *toolset) suggest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix, err := request.RequireString("prefix")
	if err != nil {
		return missing("prefix"), nil
	}
	in := &workspace.SuggestTickers{Prefix: prefix}
	if _, err := t.ws.Dispatch(ctx, in); err != nil {
		return errorResult(err.Error()), nil
	}
	if len(in.Matches) == 0 {
		return textResult(fmt.Sprintf("No catalog tickers start with %q.", models.NormalizeTicker(prefix))), nil
	}
	return textResult(strings.Join(in.Matches, "\n")), nil
}

func (t *toolset) runBacktest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := t.ws.RunBacktest(ctx)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(formatBacktest(snap.Backtest, snap.Params, t.currency)), nil
}

func (t *toolset) runScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := t.ws.RunScan(ctx)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(formatScan(snap)), nil
}

func (t *toolset) sortResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return missing("key"), nil
	}
	snap, err := t.ws.Dispatch(ctx, workspace.SortResults{Key: key})
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(formatScan(snap)), nil
}

func (t *toolset) runScreener(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bounds := make(map[string]models.Bounds)
	for _, f := range models.ScreenerFilters {
		b := models.Bounds{
			Min: optionalFloat(request, f.Key+"_min"),
			Max: optionalFloat(request, f.Key+"_max"),
		}
		if !b.Empty() {
			bounds[f.Key] = b
		}
	}
	req := models.NewScreenerRequest(request.GetString("index", ""), request.GetString("sector", ""), bounds)

	snap, err := t.ws.RunScreener(ctx, req)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if msg := snap.Errors[workspace.KindScreener]; msg != "" {
		return errorResult(msg), nil
	}
	return textResult(formatScreener(snap)), nil
}
