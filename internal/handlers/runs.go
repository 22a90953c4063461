package handlers

import (
	"errors"
	"net/http"

	"github.com/bobmcallan/vire-backtest/internal/chart"
	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/interfaces"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

// RunHandler serves the backtest, scan and screener endpoints.
type RunHandler struct {
	logger *common.Logger
	runner interfaces.Workspace
}

// NewRunHandler creates a new run handler.
func NewRunHandler(logger *common.Logger, runner interfaces.Workspace) *RunHandler {
	return &RunHandler{logger: logger, runner: runner}
}

// runResponse carries the snapshot alongside any error so clients can
// render the recorded message without a second request.
type runResponse struct {
	Status   string             `json:"status"`
	Error    string             `json:"error,omitempty"`
	Kind     string             `json:"kind,omitempty"`
	Snapshot workspace.Snapshot `json:"snapshot"`
}

func writeRun(w http.ResponseWriter, snap workspace.Snapshot, err error) {
	if err != nil {
		status, kind := ClassifyError(err)
		WriteJSON(w, status, runResponse{Status: "error", Error: err.Error(), Kind: kind, Snapshot: snap})
		return
	}
	WriteJSON(w, http.StatusOK, runResponse{Status: "ok", Snapshot: snap})
}

// HandleBacktest handles POST /api/backtest.
func (h *RunHandler) HandleBacktest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	snap, err := h.runner.RunBacktest(r.Context())
	writeRun(w, snap, err)
}

// HandleChart handles GET /api/backtest/chart.png, rendering the growth of
// the last successful backtest.
func (h *RunHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	snap, err := h.runner.Dispatch(r.Context(), workspace.Refresh{})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if snap.Backtest == nil {
		WriteError(w, http.StatusNotFound, "no backtest result")
		return
	}
	png, err := chart.RenderGrowthChart(snap.Backtest)
	if err != nil {
		if errors.Is(err, chart.ErrNoHistory) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("Chart render failed")
		WriteError(w, http.StatusInternalServerError, "chart render failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// HandleScan handles POST /api/scan.
func (h *RunHandler) HandleScan(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	snap, err := h.runner.RunScan(r.Context())
	writeRun(w, snap, err)
}

// HandleSort handles POST /api/scan/sort with {"key": "sharpe_ratio"}.
// Sorting the active key again flips the direction.
func (h *RunHandler) HandleSort(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Key string `json:"key"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	apply(w, r, h.runner, workspace.SortResults{Key: body.Key})
}

// screenerBody holds bounds in user units, e.g. dividendYield 2.5 for 2.5%.
type screenerBody struct {
	Index   string                   `json:"index"`
	Sector  string                   `json:"sector"`
	Filters map[string]models.Bounds `json:"filters"`
}

// HandleScreener handles POST /api/screener. Matches are imported into the
// tag set; an unavailable screener is reported in the snapshot errors.
func (h *RunHandler) HandleScreener(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var body screenerBody
	if r.ContentLength != 0 {
		if err := DecodeJSON(r, &body); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	req := models.NewScreenerRequest(body.Index, body.Sector, body.Filters)
	snap, err := h.runner.RunScreener(r.Context(), req)
	writeRun(w, snap, err)
}

// HandleCatalog handles GET /api/catalog.
func (h *RunHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	tickers := h.runner.Catalog(r.Context())
	if tickers == nil {
		tickers = []string{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(tickers),
		"tickers": tickers,
	})
}
