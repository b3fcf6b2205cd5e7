package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brads3290/ccviewer/internal/models"
	"github.com/brads3290/ccviewer/internal/service"
)

// ProjectHandler serves projects, session pages and conversations.
type ProjectHandler struct {
	deps Deps
}

func NewProjectHandler(deps Deps) *ProjectHandler {
	return &ProjectHandler{deps: deps}
}

type projectsResponse struct {
	Projects []models.Project `json:"projects"`
}

// List handles GET /api/projects?sort=
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.deps.Services.Project.ListProjects(r.URL.Query().Get("sort"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeJSON(w, http.StatusOK, projectsResponse{Projects: projects})
}

// Get handles GET /api/projects/{projectID}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.deps.Services.Project.GetProject(chi.URLParam(r, "projectID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// ListSessions handles GET /api/projects/{projectID}/sessions?cursor=&limit=
func (h *ProjectHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, h.deps.PageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prefs := loadPrefs(h.deps.UserConfig)
	page, err := h.deps.Services.Session.ListSessions(chi.URLParam(r, "projectID"), service.ListOptions{
		Cursor:            r.URL.Query().Get("cursor"),
		Limit:             limit,
		HideNoUserMessage: prefs.HideNoUserMessageSession,
		UnifySameTitle:    prefs.UnifySameTitleSession,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetConversation handles GET /api/projects/{projectID}/sessions/{sessionID}
func (h *ProjectHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	opts := renderOptions(h.deps, loadPrefs(h.deps.UserConfig))
	conv, err := h.deps.Services.Session.GetConversation(
		chi.URLParam(r, "projectID"), chi.URLParam(r, "sessionID"), &opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// parseLimit reads ?limit=, defaulting to fallback.
func parseLimit(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	return n, nil
}
