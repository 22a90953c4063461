// Command vire-backtest serves the backtest workspace over HTTP and MCP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bobmcallan/vire-backtest/internal/app"
	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/config"
	"github.com/bobmcallan/vire-backtest/internal/server"
)

const shutdownTimeout = 10 * time.Second

// fileList collects repeated -config flags in order.
type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

type options struct {
	configs     fileList
	port        int
	host        string
	engine      string
	envFile     string
	showVersion bool
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	var short int
	fs.Var(&o.configs, "config", "Configuration file path (repeatable, later files win)")
	fs.Var(&o.configs, "c", "Configuration file path (shorthand)")
	fs.IntVar(&o.port, "port", 0, "Server port (overrides config)")
	fs.IntVar(&short, "p", 0, "Server port (shorthand)")
	fs.StringVar(&o.host, "host", "", "Server host (overrides config)")
	fs.StringVar(&o.engine, "engine", "", "Computation engine URL (overrides config)")
	fs.StringVar(&o.envFile, "env-file", ".env", "dotenv file loaded before configuration")
	fs.BoolVar(&o.showVersion, "version", false, "Print version information")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if short != 0 {
		o.port = short
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	common.LoadVersionFromFile()

	if opts.showVersion {
		fmt.Printf("vire-backtest version %s\n", common.GetFullVersion())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig layers dotenv, TOML, VIRE_* variables and flags, in that order.
func loadConfig(opts options) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", opts.envFile, err)
	}

	files := opts.configs
	if len(files) == 0 {
		if path := config.Discover(config.DefaultFileName); path != "" {
			files = fileList{path}
		}
	}

	cfg, err := config.LoadFromFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	config.ApplyFlagOverrides(cfg, opts.port, opts.host, opts.engine)

	if issues := cfg.Validate(); len(issues) > 0 {
		var b strings.Builder
		writeIssues(&b, issues)
		return nil, errors.New(b.String())
	}
	return cfg, nil
}

func writeIssues(w io.Writer, issues []string) {
	fmt.Fprintln(w, "Configuration error, fields are missing or invalid:")
	for _, issue := range issues {
		fmt.Fprintf(w, "  - %s\n", issue)
	}
	fmt.Fprint(w, "Values can be set via TOML file, VIRE_* environment variables, or CLI flags.")
}

func run(ctx context.Context, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)
	common.PrintBanner(os.Stderr, common.BannerInfo{
		Environment: cfg.Environment,
		ServiceURL:  fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port),
		EngineURL:   cfg.Engine.URL,
	})
	logger.Info().
		Str("environment", cfg.Environment).
		Str("config_files", opts.configs.String()).
		Msg("configuration loaded")

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error().Err(err).Msg("application shutdown failed")
		}
	}()

	application.WarmCatalog(ctx)

	srv := server.New(application)
	served := make(chan error, 1)
	go func() { served <- srv.Start() }()

	select {
	case err := <-served:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
