package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/bobmcallan/vire-backtest/internal/interfaces"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

// loadMatrix replaces the allocation matrix with defs. Existing columns are
// reused in order and leftovers removed before any rename, so defs may swap
// or take over names the workspace already holds.
func loadMatrix(ctx context.Context, ws interfaces.Workspace, defs []portfolioDef) error {
	snap, err := ws.Dispatch(ctx, workspace.Refresh{})
	if err != nil {
		return err
	}
	current := make([]string, len(snap.Portfolios))
	for i, p := range snap.Portfolios {
		current[i] = p.Name
	}
	names, err := columnNames(defs, current)
	if err != nil {
		return err
	}
	reused := min(len(defs), len(current))

	var intents []workspace.Intent
	for _, name := range current[reused:] {
		intents = append(intents, workspace.RemovePortfolio{Portfolio: name})
	}
	// park renamed columns on names nothing else uses, then apply targets
	var parked []workspace.Intent
	taken := slices.Concat(current, names)
	for i := range reused {
		if names[i] == current[i] {
			continue
		}
		tmp := fmt.Sprintf("~%d", i)
		for slices.Contains(taken, tmp) {
			tmp = "~" + tmp
		}
		taken = append(taken, tmp)
		intents = append(intents, workspace.RenamePortfolio{From: current[i], To: tmp})
		parked = append(parked, workspace.RenamePortfolio{From: tmp, To: names[i]})
	}
	intents = append(intents, parked...)
	for _, name := range names[reused:] {
		intents = append(intents, &workspace.AddPortfolio{Label: name})
	}
	if _, err := dispatch(ctx, ws, intents...); err != nil {
		return err
	}

	var tickers []string
	for _, def := range defs {
		for _, h := range def.Holdings {
			if !slices.Contains(tickers, h.Ticker) {
				tickers = append(tickers, h.Ticker)
			}
		}
	}

	intents = intents[:0]
	for n := len(snap.Assets); n < len(tickers); n++ {
		intents = append(intents, workspace.AddAsset{})
	}
	for n := len(snap.Assets); n > len(tickers); n-- {
		intents = append(intents, workspace.RemoveAsset{Index: n - 1})
	}
	for i, t := range tickers {
		intents = append(intents, workspace.SetTicker{Index: i, Text: t})
	}
	for i, def := range defs {
		intents = append(intents, workspace.ClearPortfolioWeights{Portfolio: names[i]})
		for _, h := range def.Holdings {
			intents = append(intents, workspace.SetWeight{
				Index:     slices.Index(tickers, h.Ticker),
				Portfolio: names[i],
				Value:     h.Weight,
			})
		}
	}
	_, err = dispatch(ctx, ws, intents...)
	return err
}

// columnNames resolves the final name of every def. Unnamed defs keep the
// name of the column they reuse unless another def claims it; the rest get
// the first free "Portfolio N".
func columnNames(defs []portfolioDef, current []string) ([]string, error) {
	names := make([]string, len(defs))
	for i, def := range defs {
		if def.Name == "" {
			continue
		}
		if slices.Contains(names[:i], def.Name) {
			return nil, fmt.Errorf("portfolio %q is given more than once", def.Name)
		}
		names[i] = def.Name
	}
	for i := range min(len(defs), len(current)) {
		if names[i] == "" && !slices.Contains(names, current[i]) {
			names[i] = current[i]
		}
	}
	for i := range names {
		if names[i] != "" {
			continue
		}
		for n := i + 1; ; n++ {
			if name := fmt.Sprintf("Portfolio %d", n); !slices.Contains(names, name) {
				names[i] = name
				break
			}
		}
	}
	return names, nil
}
