package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/config"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

func TestNewState_UsesWorkspaceDefaults(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Workspace.DefaultBenchmark = "qqq"
	cfg.Workspace.StartYear = 2010
	cfg.Workspace.Rebalancing = "quarterly"
	now := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

	store := workspace.NewStore(NewState(cfg, func() time.Time { return now }), nil)
	defer store.Close()

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "QQQ", snap.Params.Benchmark)
	assert.Equal(t, 2010, snap.Params.StartYear)
	assert.Equal(t, 2026, snap.Params.EndYear)
	assert.Equal(t, models.RebalanceQuarterly, snap.Params.Rebalancing)
	assert.Equal(t, cfg.Workspace.MaxPortfolios, snap.MaxPortfolios)
}

func TestNew_WiresHandlers(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Engine.URL = "http://127.0.0.1:1"

	a, err := New(cfg, common.NewSilentLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.HealthHandler)
	assert.NotNil(t, a.WorkspaceHandler)
	assert.NotNil(t, a.TagHandler)
	assert.NotNil(t, a.RunHandler)
	assert.NotNil(t, a.MCPHandler)
	assert.NotEmpty(t, a.MCPHandler.Catalog())
}

func TestClose_IsIdempotent(t *testing.T) {
	a, err := New(config.NewDefaultConfig(), common.NewSilentLogger())
	require.NoError(t, err)
	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}
