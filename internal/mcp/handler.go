package mcp

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/interfaces"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
	catalog    []ToolInfo
}

// NewHandler creates an MCP handler whose tools edit and run ws.
// currency is used when reporting money amounts.
func NewHandler(ws interfaces.Workspace, currency string, logger *common.Logger) *Handler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	mcpSrv := mcpserver.NewMCPServer(
		"vire-backtest",
		common.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	tools := Tools(ws, currency)
	catalog := make([]ToolInfo, 0, len(tools))
	for _, t := range tools {
		mcpSrv.AddTool(t.Tool, t.Handler)
		catalog = append(catalog, ToolInfo{Name: t.Tool.Name, Description: t.Tool.Description})
	}

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().Int("tools", len(catalog)).Msg("MCP handler initialized")

	return &Handler{
		streamable: streamable,
		logger:     logger,
		catalog:    catalog,
	}
}

// Catalog returns a copy of the registered tool list.
func (h *Handler) Catalog() []ToolInfo {
	result := make([]ToolInfo, len(h.catalog))
	copy(result, h.catalog)
	return result
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
