package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brads3290/ccviewer/internal/models"
	"github.com/brads3290/ccviewer/internal/process"
)

// ProcessHandler exposes the live process registry.
type ProcessHandler struct {
	tracker *process.Tracker
}

func NewProcessHandler(tracker *process.Tracker) *ProcessHandler {
	return &ProcessHandler{tracker: tracker}
}

type processesResponse struct {
	Processes []models.SessionProcess `json:"processes"`
}

type setProcessRequest struct {
	Status models.ProcessStatus `json:"status"`
}

// List handles GET /api/processes
func (h *ProcessHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, processesResponse{Processes: h.tracker.List()})
}

// Set handles PUT /api/processes/{sessionID}
func (h *ProcessHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setProcessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if err := h.tracker.Set(sessionID, req.Status); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, process.ErrInvalidStatus) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.SessionProcess{SessionID: sessionID, Status: req.Status})
}

// Remove handles DELETE /api/processes/{sessionID}
func (h *ProcessHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if !h.tracker.Remove(chi.URLParam(r, "sessionID")) {
		writeError(w, http.StatusNotFound, "process not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
