package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/vire-backtest/internal/interfaces"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

// filterFlags collects repeated -filter key=min:max values. Either side may
// be empty.
type filterFlags map[string]models.Bounds

func (f filterFlags) String() string {
	parts := make([]string, 0, len(f))
	for k := range f {
		parts = append(parts, k)
	}
	return strings.Join(parts, ",")
}

func (f filterFlags) Set(value string) error {
	key, bounds, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return fmt.Errorf("filter %q: expected key=min:max", value)
	}
	lo, hi, ok := strings.Cut(bounds, ":")
	if !ok {
		return fmt.Errorf("filter %q: expected key=min:max", value)
	}
	var b models.Bounds
	var err error
	if b.Min, err = parseBound(lo); err != nil {
		return fmt.Errorf("filter %q: %w", value, err)
	}
	if b.Max, err = parseBound(hi); err != nil {
		return fmt.Errorf("filter %q: %w", value, err)
	}
	f[key] = b
	return nil
}

func parseBound(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &v, nil
}

type holding struct {
	Ticker string
	Weight float64
}

type portfolioDef struct {
	Name     string
	Holdings []holding
}

// portfolioFlags collects repeated -p [Name=]TICKER:WEIGHT,... values.
type portfolioFlags []portfolioDef

func (p *portfolioFlags) String() string {
	names := make([]string, len(*p))
	for i, s := range *p {
		names[i] = s.Name
	}
	return strings.Join(names, ",")
}

func (p *portfolioFlags) Set(value string) error {
	var def portfolioDef
	list := value
	if name, rest, ok := strings.Cut(value, "="); ok {
		def.Name = strings.TrimSpace(name)
		list = rest
	}
	for _, item := range strings.Split(list, ",") {
		ticker, weight, ok := strings.Cut(item, ":")
		ticker = models.NormalizeTicker(ticker)
		if !ok || ticker == "" {
			return fmt.Errorf("portfolio %q: expected TICKER:WEIGHT, got %q", value, item)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil {
			return fmt.Errorf("portfolio %q: invalid weight %q", value, weight)
		}
		def.Holdings = append(def.Holdings, holding{Ticker: ticker, Weight: w})
	}
	*p = append(*p, def)
	return nil
}

// paramFlags overrides the shared run parameters. Zero values keep the
// workspace defaults.
type paramFlags struct {
	start       string
	end         string
	amount      float64
	rebalancing string
	benchmark   string
}

func (p *paramFlags) register(f *flag.FlagSet, withPortfolioOptions bool) {
	f.StringVar(&p.start, "start", "", "First month, YYYY-MM")
	f.StringVar(&p.end, "end", "", "Last month, YYYY-MM")
	if withPortfolioOptions {
		f.Float64Var(&p.amount, "amount", 0, "Initial amount")
		f.StringVar(&p.rebalancing, "rebalance", "", "Rebalancing period (never, annually, quarterly, monthly)")
		f.StringVar(&p.benchmark, "benchmark", "", "Benchmark ticker")
	}
}

func parseMonth(s string) (int, int, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return t.Year(), int(t.Month()), nil
}

// apply stores the overrides. Range checks happen when a run is submitted.
func (p *paramFlags) apply(ctx context.Context, ws interfaces.Workspace) error {
	snap, err := ws.Dispatch(ctx, workspace.Refresh{})
	if err != nil {
		return err
	}
	params := snap.Params
	if p.start != "" {
		if params.StartYear, params.StartMonth, err = parseMonth(p.start); err != nil {
			return err
		}
	}
	if p.end != "" {
		if params.EndYear, params.EndMonth, err = parseMonth(p.end); err != nil {
			return err
		}
	}
	if p.amount > 0 {
		params.InitialAmount = p.amount
	}
	if p.rebalancing != "" {
		params.Rebalancing = models.RebalancingPeriod(p.rebalancing)
	}
	if p.benchmark != "" {
		params.Benchmark = p.benchmark
	}
	_, err = ws.Dispatch(ctx, workspace.SetParams{Params: params})
	return err
}
