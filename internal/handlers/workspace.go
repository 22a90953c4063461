package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/models"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

// Dispatcher applies workspace intents.
type Dispatcher interface {
	Dispatch(ctx context.Context, in workspace.Intent) (workspace.Snapshot, error)
}

// WorkspaceHandler exposes the allocation matrix and run parameters.
type WorkspaceHandler struct {
	logger *common.Logger
	store  Dispatcher
	now    func() time.Time
}

// NewWorkspaceHandler creates a new workspace handler.
func NewWorkspaceHandler(logger *common.Logger, store Dispatcher) *WorkspaceHandler {
	return &WorkspaceHandler{logger: logger, store: store, now: time.Now}
}

// apply dispatches in and writes the snapshot or the classified error.
func apply(w http.ResponseWriter, r *http.Request, store Dispatcher, in workspace.Intent) {
	snap, err := store.Dispatch(r.Context(), in)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// HandleSnapshot handles GET /api/workspace.
func (h *WorkspaceHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	apply(w, r, h.store, workspace.Refresh{})
}

// HandleAddAsset handles POST /api/workspace/assets with an optional {"ticker": "..."}.
func (h *WorkspaceHandler) HandleAddAsset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Ticker string `json:"ticker"`
	}
	if err := DecodeOptionalJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	apply(w, r, h.store, workspace.AddAsset{Ticker: body.Ticker})
}

// HandleRemoveAsset handles DELETE /api/workspace/assets/{index}.
func (h *WorkspaceHandler) HandleRemoveAsset(w http.ResponseWriter, r *http.Request) {
	index, ok := assetIndex(w, r)
	if !ok {
		return
	}
	apply(w, r, h.store, workspace.RemoveAsset{Index: index})
}

// HandleSetTicker handles PUT /api/workspace/assets/{index} with {"ticker": "..."}.
func (h *WorkspaceHandler) HandleSetTicker(w http.ResponseWriter, r *http.Request) {
	index, ok := assetIndex(w, r)
	if !ok {
		return
	}
	var body struct {
		Ticker string `json:"ticker"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	apply(w, r, h.store, workspace.SetTicker{Index: index, Text: body.Ticker})
}

// HandleClearTickers handles POST /api/workspace/assets/clear.
func (h *WorkspaceHandler) HandleClearTickers(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	apply(w, r, h.store, workspace.ClearAllTickers{})
}

// HandleAddPortfolio handles POST /api/workspace/portfolios with an optional {"name": "..."}.
func (h *WorkspaceHandler) HandleAddPortfolio(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := DecodeOptionalJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	apply(w, r, h.store, &workspace.AddPortfolio{Label: body.Name})
}

// HandleRenamePortfolio handles PUT /api/workspace/portfolios/{name} with {"name": "..."}.
func (h *WorkspaceHandler) HandleRenamePortfolio(w http.ResponseWriter, r *http.Request) {
	name, ok := pathTail(w, r, "/api/workspace/portfolios/")
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := DecodeJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	apply(w, r, h.store, workspace.RenamePortfolio{From: name, To: body.Name})
}

// HandleRemovePortfolio handles DELETE /api/workspace/portfolios/{name}.
func (h *WorkspaceHandler) HandleRemovePortfolio(w http.ResponseWriter, r *http.Request) {
	name, ok := pathTail(w, r, "/api/workspace/portfolios/")
	if !ok {
		return
	}
	apply(w, r, h.store, workspace.RemovePortfolio{Portfolio: name})
}

// HandleClearPortfolio handles POST /api/workspace/portfolios/{name}/clear.
func (h *WorkspaceHandler) HandleClearPortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	name, ok := pathTail(w, r, "/api/workspace/portfolios/")
	if !ok {
		return
	}
	apply(w, r, h.store, workspace.ClearPortfolioWeights{Portfolio: strings.TrimSuffix(name, "/clear")})
}

// weightBody accepts either a number or the raw text typed by the user.
type weightBody struct {
	Index     int      `json:"index"`
	Portfolio string   `json:"portfolio"`
	Value     *float64 `json:"value,omitempty"`
	Text      *string  `json:"text,omitempty"`
}

// HandleSetWeight handles PUT /api/workspace/weights.
func (h *WorkspaceHandler) HandleSetWeight(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	var body weightBody
	if err := DecodeJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch {
	case body.Value != nil:
		apply(w, r, h.store, workspace.SetWeight{Index: body.Index, Portfolio: body.Portfolio, Value: *body.Value})
	case body.Text != nil:
		apply(w, r, h.store, workspace.SetWeightText{Index: body.Index, Portfolio: body.Portfolio, Text: *body.Text})
	default:
		WriteError(w, http.StatusBadRequest, "value or text is required")
	}
}

// HandleParams handles GET and PUT /api/workspace/params.
func (h *WorkspaceHandler) HandleParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap, err := h.store.Dispatch(r.Context(), workspace.Refresh{})
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, snap.Params)
	case http.MethodPut:
		var params models.RunParams
		if err := DecodeJSON(r, &params); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		apply(w, r, h.store, workspace.SetParams{Params: params})
	default:
		MethodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

// HandleOptions handles GET /api/workspace/options: selectable years,
// rebalancing periods, metrics and screener filters.
func (h *WorkspaceHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	type filter struct {
		Key   string  `json:"key"`
		Label string  `json:"label"`
		Unit  float64 `json:"unit"`
	}
	type metric struct {
		Key   models.MetricKey `json:"key"`
		Label string           `json:"label"`
	}
	resp := struct {
		Years       []int                      `json:"years"`
		Rebalancing []models.RebalancingPeriod `json:"rebalancing"`
		Metrics     []metric                   `json:"metrics"`
		Filters     []filter                   `json:"filters"`
		Indexes     []string                   `json:"indexes"`
	}{
		Years:       models.YearOptions(h.now()),
		Rebalancing: models.RebalancingPeriods,
		Indexes:     []string{models.IndexSP500, models.IndexNasdaq100},
	}
	for _, k := range models.MetricKeys {
		resp.Metrics = append(resp.Metrics, metric{Key: k, Label: k.Label()})
	}
	for _, f := range models.ScreenerFilters {
		resp.Filters = append(resp.Filters, filter{Key: f.Key, Label: f.Label, Unit: f.Unit})
	}
	WriteJSON(w, http.StatusOK, resp)
}

func assetIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	tail, ok := pathTail(w, r, "/api/workspace/assets/")
	if !ok {
		return 0, false
	}
	index, err := strconv.Atoi(tail)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "asset index must be an integer")
		return 0, false
	}
	return index, true
}

// pathTail returns the unescaped path after prefix.
func pathTail(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	raw := strings.TrimPrefix(r.URL.EscapedPath(), prefix)
	tail, err := url.PathUnescape(raw)
	if err != nil || tail == "" {
		WriteError(w, http.StatusBadRequest, "missing path parameter")
		return "", false
	}
	return tail, true
}
