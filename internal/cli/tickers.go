package cli

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-backtest/internal/app"
	"github.com/bobmcallan/vire-backtest/internal/interfaces"
)

type tickersCmd struct {
	prefix string
	limit  int
}

func (*tickersCmd) Name() string     { return "tickers" }
func (*tickersCmd) Synopsis() string { return "list the engine's ticker catalog" }
func (*tickersCmd) Usage() string {
	return `vire-lab tickers [-prefix P] [-n limit]

  Prints catalog tickers, optionally only those starting with a prefix.
`
}

func (c *tickersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.prefix, "prefix", "", "Only tickers starting with this prefix")
	f.IntVar(&c.limit, "n", 0, "Maximum number of tickers (0 for all)")
}

func (c *tickersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return execute(ctx, false, func(ctx context.Context, a *app.App) error {
		return c.run(ctx, a.Session, os.Stdout)
	})
}

func (c *tickersCmd) run(ctx context.Context, ws interfaces.Workspace, w io.Writer) error {
	catalog := ws.Catalog(ctx)
	if len(catalog) == 0 {
		return errors.New("ticker catalog unavailable")
	}
	prefix := strings.ToUpper(strings.TrimSpace(c.prefix))
	var out []string
	for _, t := range catalog {
		if !strings.HasPrefix(t, prefix) {
			continue
		}
		out = append(out, t)
		if c.limit > 0 && len(out) == c.limit {
			break
		}
	}
	renderList(w, out)
	return nil
}
