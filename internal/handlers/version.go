package handlers

import (
	"net/http"
	"runtime"

	"github.com/bobmcallan/vire-backtest/internal/common"
)

// VersionInfo is the body of GET /api/version.
type VersionInfo struct {
	Version   string `json:"version"`
	Build     string `json:"build"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Engine    string `json:"engine_url"`
}

// VersionHandler reports the build and the engine this service talks to.
type VersionHandler struct {
	logger    *common.Logger
	engineURL string
}

func NewVersionHandler(logger *common.Logger, engineURL string) *VersionHandler {
	return &VersionHandler{logger: logger, engineURL: engineURL}
}

func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, VersionInfo{
		Version:   common.GetVersion(),
		Build:     common.GetBuild(),
		GitCommit: common.GetGitCommit(),
		GoVersion: runtime.Version(),
		Engine:    h.engineURL,
	})
}
