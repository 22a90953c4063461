package interfaces

import (
	"context"

	"github.com/bobmcallan/vire-backtest/internal/models"
)

// EngineClient is the remote computation engine.
type EngineClient interface {
	Backtest(ctx context.Context, req models.BacktestRequest) (*models.BacktestResult, error)
	Scan(ctx context.Context, req models.ScanRequest) ([]models.ScanRow, error)
	Screener(ctx context.Context, req models.ScreenerRequest) ([]string, error)
	Tickers(ctx context.Context) ([]string, error)
}
