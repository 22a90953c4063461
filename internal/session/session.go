// Package session runs the remote round-trips around the workspace store:
// a Begin intent claims the in-flight slot, the engine is called outside
// the store, and an End intent records the outcome.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bobmcallan/vire-backtest/internal/cache"
	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/interfaces"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

const catalogKey = "catalog"

// Session couples a workspace store with the engine.
type Session struct {
	store  *workspace.Store
	engine interfaces.EngineClient
	cache  *cache.Cache[[]string]
	logger *common.Logger
}

// New creates a session. catalogTTL controls how long the ticker catalog
// and screener matches are reused.
func New(store *workspace.Store, engine interfaces.EngineClient, catalogTTL time.Duration, logger *common.Logger) *Session {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Session{
		store:  store,
		engine: engine,
		cache:  cache.New[[]string](catalogTTL, 64),
		logger: logger,
	}
}

// Store returns the underlying workspace store.
func (s *Session) Store() *workspace.Store { return s.store }

// Dispatch forwards an intent to the store.
func (s *Session) Dispatch(ctx context.Context, in workspace.Intent) (workspace.Snapshot, error) {
	return s.store.Dispatch(ctx, in)
}

// LoadCatalog fetches the ticker catalog into the workspace. An engine
// failure leaves an empty catalog and is only logged.
func (s *Session) LoadCatalog(ctx context.Context) (workspace.Snapshot, error) {
	tickers, ok := s.cache.Get(catalogKey)
	if !ok {
		var err error
		tickers, err = s.engine.Tickers(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Ticker catalog unavailable, suggestions disabled")
			tickers = nil
		} else {
			s.cache.Set(catalogKey, tickers)
			s.logger.Info().Int("tickers", len(tickers)).Msg("Ticker catalog loaded")
		}
	}
	return s.store.Dispatch(ctx, workspace.SetCatalog{Tickers: tickers})
}

// Catalog returns the cached catalog, fetching it if needed.
func (s *Session) Catalog(ctx context.Context) []string {
	if tickers, ok := s.cache.Get(catalogKey); ok {
		return tickers
	}
	if _, err := s.LoadCatalog(ctx); err != nil {
		return nil
	}
	tickers, _ := s.cache.Get(catalogKey)
	return tickers
}

// RunBacktest validates the matrix, calls the engine and stores the result.
// Validation, busy and remote errors are returned.
func (s *Session) RunBacktest(ctx context.Context) (workspace.Snapshot, error) {
	begin := &workspace.BeginBacktest{}
	if snap, err := s.store.Dispatch(ctx, begin); err != nil {
		return snap, err
	}

	start := time.Now()
	result, err := s.engine.Backtest(ctx, begin.Request)
	s.logOutcome("backtest", start, len(begin.Request.Portfolios), err)
	if err == nil && result.Warning != "" {
		s.logger.Warn().Str("warning", result.Warning).Msg("Backtest completed with warning")
	}

	return s.finish(ctx, workspace.EndBacktest{Result: result, Err: err}, err)
}

// RunScan scans the tag set and loads the rows under the active sort key.
func (s *Session) RunScan(ctx context.Context) (workspace.Snapshot, error) {
	begin := &workspace.BeginScan{}
	if snap, err := s.store.Dispatch(ctx, begin); err != nil {
		return snap, err
	}

	start := time.Now()
	rows, err := s.engine.Scan(ctx, begin.Request)
	s.logOutcome("scan", start, len(begin.Request.Tickers), err)

	return s.finish(ctx, workspace.EndScan{Rows: rows, Err: err}, err)
}

// RunScreener queries the screener and imports the matches into the tag
// set. Engine failures degrade to no matches with a message in the
// snapshot; only a busy or closed store is returned as an error.
func (s *Session) RunScreener(ctx context.Context, req models.ScreenerRequest) (workspace.Snapshot, error) {
	if snap, err := s.store.Dispatch(ctx, workspace.BeginScreener{}); err != nil {
		return snap, err
	}

	key := screenerKey(req)
	matches, ok := s.cache.Get(key)
	var err error
	if !ok {
		start := time.Now()
		matches, err = s.engine.Screener(ctx, req)
		s.logOutcome("screener", start, len(req.Filters), err)
		if err == nil {
			s.cache.Set(key, matches)
		}
	}

	snap, derr := s.store.Dispatch(context.WithoutCancel(ctx), workspace.EndScreener{Tickers: matches, Err: err})
	return snap, derr
}

func (s *Session) finish(ctx context.Context, end workspace.Intent, remoteErr error) (workspace.Snapshot, error) {
	// the in-flight slot is released even if the caller has gone away
	snap, err := s.store.Dispatch(context.WithoutCancel(ctx), end)
	if err != nil {
		return snap, err
	}
	return snap, remoteErr
}

func (s *Session) logOutcome(kind string, start time.Time, size int, err error) {
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Error().Str("kind", kind).Int("size", size).Dur("elapsed", elapsed).Err(err).Msg("Engine request failed")
		return
	}
	s.logger.Info().Str("kind", kind).Int("size", size).Dur("elapsed", elapsed).Msg("Engine request completed")
}

func screenerKey(req models.ScreenerRequest) string {
	// map keys marshal sorted, so equal requests produce equal keys
	b, _ := json.Marshal(req)
	return cache.MakeKey("screener", string(b))
}
