package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/workspace"
)

// healthProbeTimeout bounds the store round trip made by a health check.
const healthProbeTimeout = 2 * time.Second

// HealthHandler reports whether the workspace store is accepting intents.
type HealthHandler struct {
	logger *common.Logger
	store  Dispatcher
}

// NewHealthHandler creates a health handler probing store.
func NewHealthHandler(logger *common.Logger, store Dispatcher) *HealthHandler {
	return &HealthHandler{logger: logger, store: store}
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	snap, err := h.store.Dispatch(ctx, workspace.Refresh{})
	if err != nil {
		if h.logger != nil {
			h.logger.Warn().Err(err).Msg("Health probe failed")
		}
		WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	inFlight := make([]string, len(snap.InFlight))
	for i, k := range snap.InFlight {
		inFlight[i] = string(k)
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"version":      snap.Version,
		"in_flight":    inFlight,
		"catalog_size": snap.CatalogSize,
	})
}
