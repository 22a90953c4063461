package server

import (
	"net/http"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/handlers"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	ws := s.app.WorkspaceHandler
	tags := s.app.TagHandler
	runs := s.app.RunHandler

	mux.HandleFunc("/", s.handleIndex)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
		mux.HandleFunc("/api/mcp/tools", s.handleToolList)
	}

	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)
	mux.HandleFunc("/api/engine-health", s.app.EngineHealthHandler.ServeHTTP)

	// Allocation matrix and run parameters
	mux.HandleFunc("/api/workspace", ws.HandleSnapshot)
	mux.HandleFunc("/api/workspace/options", ws.HandleOptions)
	mux.HandleFunc("/api/workspace/params", ws.HandleParams)
	mux.HandleFunc("/api/workspace/weights", ws.HandleSetWeight)
	mux.HandleFunc("/api/workspace/assets", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceCollection(w, r, nil, ws.HandleAddAsset)
	})
	mux.HandleFunc("/api/workspace/assets/clear", ws.HandleClearTickers)
	mux.HandleFunc("/api/workspace/assets/", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceItem(w, r, nil, ws.HandleSetTicker, ws.HandleRemoveAsset)
	})
	mux.HandleFunc("/api/workspace/portfolios", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceCollection(w, r, nil, ws.HandleAddPortfolio)
	})
	mux.HandleFunc("/api/workspace/portfolios/", func(w http.ResponseWriter, r *http.Request) {
		RouteItemActions(w, r, map[string]RouteHandler{"clear": ws.HandleClearPortfolio}, func(w http.ResponseWriter, r *http.Request) {
			RouteResourceItem(w, r, nil, ws.HandleRenamePortfolio, ws.HandleRemovePortfolio)
		})
	})

	// Scan ticker tag input
	mux.HandleFunc("/api/tags", tags.HandleTags)
	mux.HandleFunc("/api/tags/text", tags.HandleText)
	mux.HandleFunc("/api/tags/confirm", tags.HandleConfirm)
	mux.HandleFunc("/api/tags/highlight", tags.HandleHighlight)
	mux.HandleFunc("/api/tags/erase", tags.HandleErase)
	mux.HandleFunc("/api/tags/dismiss", tags.HandleDismiss)
	mux.HandleFunc("/api/tags/import", tags.HandleImport)
	mux.HandleFunc("/api/tags/", tags.HandleRemove)

	// Engine round-trips
	mux.HandleFunc("/api/backtest", runs.HandleBacktest)
	mux.HandleFunc("/api/backtest/chart.png", runs.HandleChart)
	mux.HandleFunc("/api/scan", runs.HandleScan)
	mux.HandleFunc("/api/scan/sort", runs.HandleSort)
	mux.HandleFunc("/api/screener", runs.HandleScreener)
	mux.HandleFunc("/api/catalog", runs.HandleCatalog)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleIndex describes the service at the root path.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.handleNotFound(w, r)
		return
	}
	if !handlers.RequireMethod(w, r, http.MethodGet) {
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]string{
		"name":      "vire-backtest",
		"version":   common.GetVersion(),
		"workspace": "/api/workspace",
		"mcp":       "/mcp",
	})
}

// handleToolList returns the MCP tool names and descriptions.
func (s *Server) handleToolList(w http.ResponseWriter, r *http.Request) {
	if !handlers.RequireMethod(w, r, http.MethodGet) {
		return
	}
	handlers.WriteJSON(w, http.StatusOK, s.app.MCPHandler.Catalog())
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
