package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-backtest/internal/app"
	"github.com/bobmcallan/vire-backtest/internal/chart"
	"github.com/bobmcallan/vire-backtest/internal/interfaces"
)

type backtestCmd struct {
	params     paramFlags
	portfolios portfolioFlags
	chart      string
}

func (*backtestCmd) Name() string     { return "backtest" }
func (*backtestCmd) Synopsis() string { return "backtest one or more portfolios" }
func (*backtestCmd) Usage() string {
	return `vire-lab backtest [-p [Name=]TICKER:WEIGHT,...]... [-start YYYY-MM] [-end YYYY-MM]
                 [-amount N] [-rebalance period] [-benchmark T] [-chart out.png]

  Each -p defines a portfolio column, weights in percent summing to 100.
  Without -p the default matrix is used.
`
}

func (c *backtestCmd) SetFlags(f *flag.FlagSet) {
	c.params.register(f, true)
	f.Var(&c.portfolios, "p", "Portfolio as [Name=]TICKER:WEIGHT,..., repeatable")
	f.StringVar(&c.chart, "chart", "", "Write the growth chart PNG to this file")
}

func (c *backtestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, false, func(ctx context.Context, a *app.App) error {
		return c.run(ctx, a.Session, a.Config.Workspace.Currency, os.Stdout)
	})
}

func (c *backtestCmd) run(ctx context.Context, ws interfaces.Workspace, currency string, w io.Writer) error {
	if len(c.portfolios) > 0 {
		if err := loadMatrix(ctx, ws, c.portfolios); err != nil {
			return err
		}
	}
	if err := c.params.apply(ctx, ws); err != nil {
		return err
	}

	snap, err := ws.RunBacktest(ctx)
	if err != nil {
		return err
	}
	renderBacktest(w, snap.Backtest, currency)

	if c.chart == "" {
		return nil
	}
	png, err := chart.RenderGrowthChart(snap.Backtest)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.chart, png, 0o644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	fmt.Fprintf(w, "chart written to %s\n", c.chart)
	return nil
}
