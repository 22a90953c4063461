package interfaces

import (
	"context"

	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

// Workspace is the editing session shared by the HTTP API, the MCP tools
// and the terminal UI.
type Workspace interface {
	Dispatch(ctx context.Context, in workspace.Intent) (workspace.Snapshot, error)
	RunBacktest(ctx context.Context) (workspace.Snapshot, error)
	RunScan(ctx context.Context) (workspace.Snapshot, error)
	RunScreener(ctx context.Context, req models.ScreenerRequest) (workspace.Snapshot, error)
	Catalog(ctx context.Context) []string
}
