package service

import (
	"github.com/brads3290/ccviewer/internal/conversation"
	"github.com/brads3290/ccviewer/internal/store"
)

// Services holds all service dependencies.
type Services struct {
	Project *ProjectService
	Session *SessionService
}

// Options configures optional service dependencies.
type Options struct {
	// Cache stores computed session metadata; nil disables caching.
	Cache *store.SessionMetaStore
	// Render is the default conversation rendering configuration.
	Render conversation.Options
}

// NewServices creates a new Services instance with default options.
func NewServices(claudeDir string) *Services {
	return NewServicesWithOptions(claudeDir, Options{})
}

// NewServicesWithOptions creates a new Services instance.
func NewServicesWithOptions(claudeDir string, opts Options) *Services {
	projectService := NewProjectService(claudeDir)
	sessionService := NewSessionService(projectService, opts.Cache, opts.Render)

	return &Services{
		Project: projectService,
		Session: sessionService,
	}
}
