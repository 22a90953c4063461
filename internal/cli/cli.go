// Package cli implements the vire-lab command line: a terminal client and
// one-shot scan, screen, ticker and backtest commands over the workspace.
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-backtest/internal/app"
	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/config"
	"github.com/bobmcallan/vire-backtest/internal/interfaces"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

// Commands lists the subcommands registered by main.
var Commands = []subcommands.Command{
	&tuiCmd{},
	&scanCmd{},
	&screenCmd{},
	&tickersCmd{},
	&backtestCmd{},
	&versionCmd{},
}

// a CLI run is short lived, global flags are fine.
var (
	configFile = flag.String("config", "", "Configuration file (TOML)")
	engineURL  = flag.String("engine", "", "Computation engine URL (overrides config)")
	envFile    = flag.String("env-file", ".env", "dotenv file loaded before configuration")
)

// loadConfig resolves the configuration from the dotenv file, the TOML file
// (given or discovered), VIRE_* variables and the -engine flag.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(*envFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", *envFile, err)
	}
	var files []string
	if path := *configFile; path != "" {
		files = append(files, path)
	} else if path := config.Discover(config.DefaultFileName); path != "" {
		files = append(files, path)
	}
	cfg, err := config.LoadFromFiles(files...)
	if err != nil {
		return nil, err
	}
	config.ApplyFlagOverrides(cfg, 0, "", *engineURL)
	if issues := cfg.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(issues, "; "))
	}
	return cfg, nil
}

// newApp builds the application. Interactive runs keep log lines off the
// terminal; one-shot runs only surface warnings unless debugging.
func newApp(interactive bool) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if interactive {
		cfg.Logging.Outputs = slices.DeleteFunc(slices.Clone(cfg.Logging.Outputs), func(o string) bool { return o == "console" })
		if len(cfg.Logging.Outputs) == 0 {
			cfg.Logging.Outputs = []string{"file"}
		}
	} else if cfg.Logging.Level == "" || cfg.Logging.Level == "info" {
		cfg.Logging.Level = "warn"
	}
	return app.New(cfg, common.NewLoggerFromConfig(cfg.Logging))
}

// execute runs fn against a fresh application and maps the outcome to an
// exit status.
func execute(ctx context.Context, interactive bool, fn func(ctx context.Context, a *app.App) error) subcommands.ExitStatus {
	a, err := newApp(interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// dispatch applies intents in order and stops at the first refusal.
func dispatch(ctx context.Context, ws interfaces.Workspace, intents ...workspace.Intent) (workspace.Snapshot, error) {
	var snap workspace.Snapshot
	for _, in := range intents {
		var err error
		if snap, err = ws.Dispatch(ctx, in); err != nil {
			return snap, fmt.Errorf("%s: %w", in.Name(), err)
		}
	}
	return snap, nil
}
