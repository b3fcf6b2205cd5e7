// Package api serves the web viewer and its JSON API.
package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brads3290/ccviewer/internal/constants"
	"github.com/brads3290/ccviewer/internal/conversation"
	"github.com/brads3290/ccviewer/internal/process"
	"github.com/brads3290/ccviewer/internal/service"
	"github.com/brads3290/ccviewer/internal/store"
	"github.com/brads3290/ccviewer/internal/userconfig"
)

// Deps are the collaborators the handlers use. Cache may be nil.
type Deps struct {
	Services   *service.Services
	Tracker    *process.Tracker
	UserConfig *userconfig.Store
	Cache      *store.SessionMetaStore
	PageSize   int
	Location   *time.Location
	Version    string
}

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(deps Deps, logger *slog.Logger) *chi.Mux {
	if deps.PageSize < 1 {
		deps.PageSize = constants.DefaultPageSize
	}
	if deps.Tracker == nil {
		deps.Tracker = process.NewTracker()
	}

	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	healthH := NewHealthHandler(deps.Cache, deps.Version)
	projectH := NewProjectHandler(deps)
	configH := NewConfigHandler(deps.UserConfig)
	processH := NewProcessHandler(deps.Tracker)
	pageH := NewPageHandler(deps)

	r.Get("/health", healthH.Health)

	r.Get("/", pageH.Projects)
	r.Get("/projects/{projectID}", pageH.Project)
	r.Get("/projects/{projectID}/sessions/{sessionID}", pageH.Session)

	r.Route("/api", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectH.List)
			r.Get("/{projectID}", projectH.Get)
			r.Get("/{projectID}/sessions", projectH.ListSessions)
			r.Get("/{projectID}/sessions/{sessionID}", projectH.GetConversation)
		})

		r.Get("/config", configH.Get)
		r.Put("/config", configH.Update)

		r.Route("/processes", func(r chi.Router) {
			r.Get("/", processH.List)
			r.Put("/{sessionID}", processH.Set)
			r.Delete("/{sessionID}", processH.Remove)
		})
	})

	return r
}

// renderOptions builds the conversation options for the current preferences.
func renderOptions(deps Deps, prefs userconfig.Config) conversation.Options {
	return conversation.Options{
		Locale:   prefs.Locale,
		Location: deps.Location,
		MaxDepth: conversation.DefaultMaxDepth,
	}
}

func loadPrefs(store *userconfig.Store) userconfig.Config {
	if store == nil {
		return userconfig.Default()
	}
	prefs, err := store.Load()
	if err != nil {
		slog.Warn("user config unreadable, using defaults", "path", store.Path(), "error", err)
		return userconfig.Default()
	}
	return prefs
}
