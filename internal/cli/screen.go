package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-backtest/internal/app"
	"github.com/bobmcallan/vire-backtest/internal/interfaces"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

type screenCmd struct {
	index   string
	sector  string
	filters filterFlags
	scan    scanCmd
	andScan bool
}

func (*screenCmd) Name() string     { return "screen" }
func (*screenCmd) Synopsis() string { return "list index members matching fundamental filters" }
func (*screenCmd) Usage() string {
	return `vire-lab screen [-index sp500|nasdaq100] [-sector name] [-filter key=min:max]... [-scan]

  Filters are given in display units: marketCap in 100M, percentages as
  whole numbers. With -scan the matches are scanned and printed as a table.
`
}

func (c *screenCmd) SetFlags(f *flag.FlagSet) {
	c.filters = filterFlags{}
	f.StringVar(&c.index, "index", models.IndexSP500, "Index to screen")
	f.StringVar(&c.sector, "sector", models.SectorAny, "Sector to keep")
	f.Var(c.filters, "filter", "Filter as key=min:max, repeatable")
	f.BoolVar(&c.andScan, "scan", false, "Scan the matches")
	f.StringVar(&c.scan.sort, "sort", "", "Metric to sort the scan by")
}

func (c *screenCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, false, func(ctx context.Context, a *app.App) error {
		return c.run(ctx, a.Session, os.Stdout)
	})
}

func (c *screenCmd) run(ctx context.Context, ws interfaces.Workspace, w io.Writer) error {
	snap, err := ws.RunScreener(ctx, models.NewScreenerRequest(c.index, c.sector, c.filters))
	if err != nil {
		return err
	}
	if msg := snap.Errors[workspace.KindScreener]; msg != "" {
		return errors.New(msg)
	}
	if len(snap.ScreenerMatches) == 0 {
		fmt.Fprintln(w, "no matches")
		return nil
	}
	if !c.andScan {
		renderList(w, snap.ScreenerMatches)
		return nil
	}

	// the matches are already in the tag set
	if snap, err = ws.RunScan(ctx); err != nil {
		return err
	}
	if snap, err = c.scan.order(ctx, ws, snap); err != nil {
		return err
	}
	renderScan(w, snap)
	return nil
}
