package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/brads3290/ccviewer/internal/userconfig"
)

// ConfigHandler serves the user preferences.
type ConfigHandler struct {
	store *userconfig.Store
}

func NewConfigHandler(store *userconfig.Store) *ConfigHandler {
	return &ConfigHandler{store: store}
}

// Get handles GET /api/config
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, loadPrefs(h.store))
}

// Update handles PUT /api/config. Fields absent from the body keep their
// stored values.
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "user config is not configured")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	var probe userconfig.Config
	if err := decodeOverlay(body, &probe); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cfg, err := h.store.Update(func(c *userconfig.Config) error {
		return decodeOverlay(body, c)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func decodeOverlay(body []byte, c *userconfig.Config) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(c)
}
