package api

import (
	"net/http"

	"github.com/brads3290/ccviewer/internal/store"
)

type HealthHandler struct {
	cache   *store.SessionMetaStore
	version string
}

func NewHealthHandler(cache *store.SessionMetaStore, version string) *HealthHandler {
	return &HealthHandler{cache: cache, version: version}
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	Cache         string `json:"cache"`
	CachedEntries int    `json:"cachedEntries,omitempty"`
	Message       string `json:"message,omitempty"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: h.version, Cache: "disabled"}

	if h.cache != nil {
		count, err := h.cache.Count()
		if err != nil {
			resp.Status = "degraded"
			resp.Cache = "error"
			resp.Message = err.Error()
		} else {
			resp.Cache = "ok"
			resp.CachedEntries = count
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
