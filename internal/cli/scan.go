package cli

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-backtest/internal/app"
	"github.com/bobmcallan/vire-backtest/internal/interfaces"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

type scanCmd struct {
	params  paramFlags
	sort    string
	reverse bool
}

func (*scanCmd) Name() string     { return "scan" }
func (*scanCmd) Synopsis() string { return "scan tickers and print their metrics" }
func (*scanCmd) Usage() string {
	return `vire-lab scan [-start YYYY-MM] [-end YYYY-MM] [-sort key] [-reverse] TICKER...

  Scans each ticker over the period and prints one row per ticker, sorted by
  the chosen metric (cagr, volatility, mdd, sharpe_ratio, sortino_ratio,
  beta, alpha).
`
}

func (c *scanCmd) SetFlags(f *flag.FlagSet) {
	c.params.register(f, false)
	f.StringVar(&c.sort, "sort", "", "Metric to sort by")
	f.BoolVar(&c.reverse, "reverse", false, "Reverse the default sort direction")
}

func (c *scanCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, false, func(ctx context.Context, a *app.App) error {
		return c.run(ctx, a.Session, f.Args(), os.Stdout)
	})
}

func (c *scanCmd) run(ctx context.Context, ws interfaces.Workspace, tickers []string, w io.Writer) error {
	if c.sort != "" {
		if _, err := models.ParseMetricKey(c.sort); err != nil {
			return err
		}
	}
	if _, err := dispatch(ctx, ws, workspace.ClearTags{}, &workspace.ImportTags{Tickers: tickers}); err != nil {
		return err
	}
	if err := c.params.apply(ctx, ws); err != nil {
		return err
	}

	snap, err := ws.RunScan(ctx)
	if err != nil {
		return err
	}
	if snap, err = c.order(ctx, ws, snap); err != nil {
		return err
	}
	renderScan(w, snap)
	return nil
}

// order applies -sort then -reverse to loaded rows.
func (c *scanCmd) order(ctx context.Context, ws interfaces.Workspace, snap workspace.Snapshot) (workspace.Snapshot, error) {
	var err error
	if c.sort != "" && models.MetricKey(c.sort) != snap.Sort.Key {
		if snap, err = dispatch(ctx, ws, workspace.SortResults{Key: c.sort}); err != nil {
			return snap, err
		}
	}
	if c.reverse {
		return dispatch(ctx, ws, workspace.SortResults{Key: string(snap.Sort.Key)})
	}
	return snap, nil
}
