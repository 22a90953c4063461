package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/interfaces"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

// versionInfo holds version fields plus workspace status.
type versionInfo struct {
	Version     string `json:"version"`
	Build       string `json:"build"`
	Commit      string `json:"commit"`
	CatalogSize int    `json:"catalog_size"`
	InFlight    int    `json:"in_flight"`
}

// VersionTool returns the mcp.Tool definition for get_version.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get vire-backtest version and status. Use this to verify connectivity."),
	)
}

// VersionToolHandler reports the build plus how many catalog tickers are
// loaded and how many engine requests are outstanding.
func VersionToolHandler(ws interfaces.Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := versionInfo{
			Version: common.GetVersion(),
			Build:   common.GetBuild(),
			Commit:  common.GetGitCommit(),
		}
		if snap, err := ws.Dispatch(ctx, workspace.Refresh{}); err == nil {
			info.CatalogSize = snap.CatalogSize
			info.InFlight = len(snap.InFlight)
		}

		out, err := json.Marshal(info)
		if err != nil {
			return errorResult("failed to marshal version info"), nil
		}
		return textResult(string(out)), nil
	}
}
