package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bobmcallan/vire-backtest/internal/common"
)

const engineProbeTimeout = 3 * time.Second

// Pinger is the slice of the engine client the probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
	BaseURL() string
}

// EngineHealthHandler reports whether the computation engine answers.
type EngineHealthHandler struct {
	logger *common.Logger
	engine Pinger
}

func NewEngineHealthHandler(logger *common.Logger, engine Pinger) *EngineHealthHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &EngineHealthHandler{logger: logger, engine: engine}
}

// ServeHTTP handles GET /api/engine-health.
func (h *EngineHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), engineProbeTimeout)
	defer cancel()

	start := time.Now()
	err := h.engine.Ping(ctx)
	body := map[string]interface{}{
		"engine_url": h.engine.BaseURL(),
		"latency_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		h.logger.Warn().Str("engine", h.engine.BaseURL()).Err(err).Msg("engine probe failed")
		body["status"] = "down"
		body["error"] = err.Error()
		WriteJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ok"
	WriteJSON(w, http.StatusOK, body)
}
