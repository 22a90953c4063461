package app

import (
	"context"
	"time"

	"github.com/bobmcallan/vire-backtest/internal/client"
	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/config"
	"github.com/bobmcallan/vire-backtest/internal/handlers"
	"github.com/bobmcallan/vire-backtest/internal/interfaces"
	"github.com/bobmcallan/vire-backtest/internal/mcp"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/session"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Engine  interfaces.EngineClient
	Store   *workspace.Store
	Session *session.Session

	// HTTP handlers
	HealthHandler       *handlers.HealthHandler
	VersionHandler      *handlers.VersionHandler
	EngineHealthHandler *handlers.EngineHealthHandler
	WorkspaceHandler    *handlers.WorkspaceHandler
	TagHandler          *handlers.TagHandler
	RunHandler          *handlers.RunHandler
	MCPHandler          *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	engine := client.NewEngineClient(cfg.Engine.URL,
		client.WithLogger(logger),
		client.WithTimeout(cfg.Engine.GetTimeout()),
		client.WithRateLimit(cfg.Engine.RateLimit),
	)
	return NewWithEngine(cfg, logger, engine)
}

// NewWithEngine initializes the application against the given engine.
func NewWithEngine(cfg *config.Config, logger *common.Logger, engine interfaces.EngineClient) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		Engine: engine,
	}

	for _, issue := range cfg.Validate() {
		logger.Warn().Str("issue", issue).Msg("configuration issue")
	}

	a.initWorkspace(time.Now)
	a.initHandlers()

	logger.Info().
		Str("engine_url", cfg.Engine.URL).
		Int("max_portfolios", cfg.Workspace.MaxPortfolios).
		Msg("application initialization complete")

	return a, nil
}

// NewState builds the initial workspace from the configured defaults.
func NewState(cfg *config.Config, now func() time.Time) *workspace.State {
	return workspace.NewState(workspace.Options{
		MaxPortfolios:   cfg.Workspace.MaxPortfolios,
		SuggestionLimit: cfg.Workspace.SuggestionLimit,
		Params: models.DefaultRunParams(
			now(),
			cfg.Workspace.StartYear,
			cfg.Workspace.InitialAmount,
			models.RebalancingPeriod(cfg.Workspace.Rebalancing),
			cfg.Workspace.DefaultBenchmark,
		),
		Now: now,
	})
}

func (a *App) initWorkspace(now func() time.Time) {
	a.Store = workspace.NewStore(NewState(a.Config, now), a.Logger)
	a.Session = session.New(a.Store, a.Engine, a.Config.Engine.GetCatalogTTL(), a.Logger)
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.HealthHandler = handlers.NewHealthHandler(a.Logger, a.Session)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger, a.Config.Engine.URL)
	a.EngineHealthHandler = handlers.NewEngineHealthHandler(a.Logger, a.pinger())
	a.WorkspaceHandler = handlers.NewWorkspaceHandler(a.Logger, a.Session)
	a.TagHandler = handlers.NewTagHandler(a.Logger, a.Session)
	a.RunHandler = handlers.NewRunHandler(a.Logger, a.Session)
	a.MCPHandler = mcp.NewHandler(a.Session, a.Config.Workspace.Currency, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// WarmCatalog loads the ticker catalog in the background so suggestions
// are ready before the first keystroke.
func (a *App) WarmCatalog(ctx context.Context) {
	go func() {
		if _, err := a.Session.LoadCatalog(ctx); err != nil {
			a.Logger.Debug().Err(err).Msg("catalog warm-up skipped")
		}
	}()
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	return nil
}

// pinger probes the configured engine, reusing the run client when it can.
func (a *App) pinger() handlers.Pinger {
	if p, ok := a.Engine.(handlers.Pinger); ok {
		return p
	}
	return client.NewEngineClient(a.Config.Engine.URL, client.WithLogger(a.Logger))
}
