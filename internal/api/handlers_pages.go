package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brads3290/ccviewer/internal/datefmt"
	"github.com/brads3290/ccviewer/internal/renderer"
	"github.com/brads3290/ccviewer/internal/service"
	"github.com/brads3290/ccviewer/internal/sessionlist"
	"github.com/brads3290/ccviewer/internal/userconfig"
)

// PageHandler serves the HTML viewer.
type PageHandler struct {
	deps Deps
}

func NewPageHandler(deps Deps) *PageHandler {
	return &PageHandler{deps: deps}
}

// Projects handles GET /
func (h *PageHandler) Projects(w http.ResponseWriter, r *http.Request) {
	prefs := loadPrefs(h.deps.UserConfig)
	projects, err := h.deps.Services.Project.ListProjects(r.URL.Query().Get("sort"))
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	page := renderer.ProjectsPage{Mode: prefs.ProjectViewMode}
	for _, p := range projects {
		card := renderer.ProjectCard{ID: p.ID, Name: p.Name, Path: p.Path, SessionCount: p.SessionCount}
		if p.LastModifiedAt != nil {
			card.LastModified = datefmt.FormatTime(*p.LastModifiedAt, datefmt.Options{
				Locale: prefs.Locale, Target: datefmt.TargetTime, Location: h.deps.Location,
			})
		}
		page.Projects = append(page.Projects, card)
	}

	h.writePage(w, r, func(buf *bytes.Buffer) error { return renderer.RenderProjects(buf, page) })
}

// Project handles GET /projects/{projectID}?session=&limit=
func (h *PageHandler) Project(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	selected := r.URL.Query().Get("session")
	limit, err := parseLimit(r, h.deps.PageSize)
	if err != nil {
		limit = h.deps.PageSize
	}

	prefs := loadPrefs(h.deps.UserConfig)
	project, err := h.deps.Services.Project.GetProject(projectID)
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	sessions, err := h.deps.Services.Session.ListSessions(projectID, service.ListOptions{
		Limit:             limit,
		HideNoUserMessage: prefs.HideNoUserMessageSession,
		UnifySameTitle:    prefs.UnifySameTitleSession,
	})
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	page := renderer.ProjectPage{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		ProjectPath: project.Path,
		Sessions: sessionlist.Present(sessions.Sessions, h.deps.Tracker, sessionlist.Options{
			Mode:             prefs.SessionViewMode,
			Locale:           prefs.Locale,
			Location:         h.deps.Location,
			CurrentSessionID: selected,
		}, sessionlist.Pagination{HasNextPage: sessions.HasNextPage, NextCursor: sessions.NextCursor}),
	}
	page.Sessions.Total = sessions.Total
	if sessions.HasNextPage {
		q := url.Values{"limit": {strconv.Itoa(limit + h.deps.PageSize)}}
		if selected != "" {
			q.Set("session", selected)
		}
		page.LoadMoreHref = "?" + q.Encode()
	}

	if selected != "" {
		doc, err := h.document(projectID, selected, prefs)
		if err != nil {
			h.pageError(w, r, err)
			return
		}
		page.Conversation = doc
	}

	h.writePage(w, r, func(buf *bytes.Buffer) error { return renderer.RenderProject(buf, page) })
}

// Session handles GET /projects/{projectID}/sessions/{sessionID}
func (h *PageHandler) Session(w http.ResponseWriter, r *http.Request) {
	prefs := loadPrefs(h.deps.UserConfig)
	doc, err := h.document(chi.URLParam(r, "projectID"), chi.URLParam(r, "sessionID"), prefs)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	h.writePage(w, r, func(buf *bytes.Buffer) error { return renderer.Render(buf, *doc) })
}

func (h *PageHandler) document(projectID, sessionID string, prefs userconfig.Config) (*renderer.Document, error) {
	opts := renderOptions(h.deps, prefs)
	conv, err := h.deps.Services.Session.GetConversation(projectID, sessionID, &opts)
	if err != nil {
		return nil, err
	}
	doc := &renderer.Document{
		Title:     conv.Title,
		SessionID: conv.Session.ID,
		Locale:    prefs.Locale,
		Items:     conv.Items,
		Meta:      conv.Session.Meta,
	}
	if project, err := h.deps.Services.Project.GetProject(projectID); err == nil {
		doc.ProjectName = project.Name
		doc.ProjectPath = project.Path
	}
	return doc, nil
}

// writePage renders into a buffer first so template errors still produce a
// clean 500.
func (h *PageHandler) writePage(w http.ResponseWriter, r *http.Request, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.pageError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck
}

func (h *PageHandler) pageError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("page render failed", "path", r.URL.Path, "error", err, "request_id", GetRequestID(r))
	}
	http.Error(w, err.Error(), status)
}
