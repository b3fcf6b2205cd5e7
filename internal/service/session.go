package service

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brads3290/ccviewer/internal/browser"
	"github.com/brads3290/ccviewer/internal/constants"
	"github.com/brads3290/ccviewer/internal/conversation"
	"github.com/brads3290/ccviewer/internal/cost"
	"github.com/brads3290/ccviewer/internal/models"
	"github.com/brads3290/ccviewer/internal/parser"
	"github.com/brads3290/ccviewer/internal/renderer"
	"github.com/brads3290/ccviewer/internal/sessionlist"
	"github.com/brads3290/ccviewer/internal/store"
	"github.com/brads3290/ccviewer/internal/textnorm"
)

// openInBrowser is replaced in tests.
var openInBrowser = browser.OpenInBrowser

// SessionService handles session listing and retrieval.
type SessionService struct {
	projectService *ProjectService
	cache          *store.SessionMetaStore
	render         conversation.Options
}

// NewSessionService creates a new SessionService. cache may be nil.
func NewSessionService(projectService *ProjectService, cache *store.SessionMetaStore, render conversation.Options) *SessionService {
	return &SessionService{projectService: projectService, cache: cache, render: render}
}

// ListOptions controls ListSessions.
type ListOptions struct {
	// Cursor is the ID of the last session of the previous page.
	Cursor string
	// Limit is the page size; zero or less returns everything.
	Limit int
	// Days drops sessions not modified within the last N days.
	Days              int
	HideNoUserMessage bool
	UnifySameTitle    bool
}

// SessionPage is one page of sessions, newest first.
type SessionPage struct {
	Sessions    []models.Session `json:"sessions"`
	Total       int              `json:"total"`
	HasNextPage bool             `json:"hasNextPage"`
	NextCursor  string           `json:"nextCursor,omitempty"`
}

// ListSessions returns a page of sessions of a project.
func (s *SessionService) ListSessions(projectID string, opts ListOptions) (*SessionPage, error) {
	project, err := s.projectService.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	projectDir := s.projectService.GetProjectDir(project.ID)
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("read project directory: %w", err)
	}

	var cutoff time.Time
	if opts.Days > 0 {
		cutoff = time.Now().AddDate(0, 0, -opts.Days)
	}

	var sessions []models.Session
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := sessionFilePattern.FindStringSubmatch(entry.Name())
		if len(matches) != 2 {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if opts.Days > 0 && info.ModTime().Before(cutoff) {
			continue
		}

		session, err := s.sessionFromFile(filepath.Join(projectDir, entry.Name()), project.ID, matches[1], info)
		if err != nil {
			slog.Debug("skipping unreadable session", "file", entry.Name(), "error", err)
			continue
		}
		sessions = append(sessions, *session)
	}

	// Live status ordering is applied by the presenter; here only recency.
	sessions = sessionlist.Sort(sessions, nil)

	if opts.HideNoUserMessage {
		sessions = hideNoUserMessage(sessions)
	}
	if opts.UnifySameTitle {
		sessions = unifySameTitle(sessions)
	}

	return paginate(sessions, opts.Cursor, opts.Limit), nil
}

func hideNoUserMessage(sessions []models.Session) []models.Session {
	out := sessions[:0:0]
	for _, s := range sessions {
		if s.Meta.FirstUserMessage != nil {
			out = append(out, s)
		}
	}
	return out
}

// unifySameTitle keeps the most recent session of each title. Input must be
// sorted newest first.
func unifySameTitle(sessions []models.Session) []models.Session {
	seen := map[string]bool{}
	out := sessions[:0:0]
	for _, s := range sessions {
		if s.Meta.FirstUserMessage == nil {
			out = append(out, s)
			continue
		}
		title := sessionlist.Title(s)
		if seen[title] {
			continue
		}
		seen[title] = true
		out = append(out, s)
	}
	return out
}

// paginate starts after cursor. An unknown cursor starts from the top.
func paginate(sessions []models.Session, cursor string, limit int) *SessionPage {
	start := 0
	if cursor != "" {
		for i, s := range sessions {
			if s.ID == cursor {
				start = i + 1
				break
			}
		}
	}

	page := &SessionPage{Total: len(sessions)}
	rest := sessions[start:]
	if limit > 0 && len(rest) > limit {
		page.Sessions = rest[:limit]
		page.HasNextPage = true
		page.NextCursor = rest[limit-1].ID
	} else {
		page.Sessions = rest
	}
	if page.Sessions == nil {
		page.Sessions = []models.Session{}
	}
	return page
}

// sessionFromFile builds a session, using the meta cache when it is fresh.
func (s *SessionService) sessionFromFile(filePath, projectID, sessionID string, info os.FileInfo) (*models.Session, error) {
	mod := info.ModTime()
	session := &models.Session{
		ID:             sessionID,
		ProjectID:      projectID,
		FilePath:       filePath,
		LastModifiedAt: &mod,
	}

	stamp := store.FileStamp{ModTime: mod, Size: info.Size()}
	if s.cache != nil {
		meta, ok, err := s.cache.Get(filePath, stamp)
		if err != nil {
			slog.Warn("session meta cache read failed", "file", filePath, "error", err)
		} else if ok {
			session.Meta = *meta
			return session, nil
		}
	}

	entries, err := parser.ReadSessionFile(filePath)
	if err != nil {
		return nil, err
	}
	session.Meta = ComputeMeta(entries)

	if s.cache != nil {
		if err := s.cache.Put(filePath, projectID, sessionID, stamp, session.Meta); err != nil {
			slog.Warn("session meta cache write failed", "file", filePath, "error", err)
		}
	}
	return session, nil
}

// ComputeMeta summarises a session log: its first user message, the number
// of visible user and assistant messages, and the estimated cost.
func ComputeMeta(entries []models.Entry) models.SessionMeta {
	var meta models.SessionMeta
	for _, entry := range entries {
		if meta.FirstUserMessage == nil {
			if text, ok := textnorm.FirstUserText(entry); ok {
				parsed := textnorm.ParseUserMessage(text)
				meta.FirstUserMessage = &parsed
			}
		}
		switch e := entry.(type) {
		case *models.UserEntry:
			if !e.IsSidechain && !e.IsMeta {
				meta.MessageCount++
			}
		case *models.AssistantEntry:
			if !e.IsSidechain && !e.IsMeta {
				meta.MessageCount++
			}
		}
	}
	meta.Cost = cost.Calculate(entries)
	return meta
}

// GetSession returns a session with all of its entries, subagents included.
func (s *SessionService) GetSession(projectID, sessionID string) (*models.SessionDetail, error) {
	project, err := s.projectService.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if !sessionFilePattern.MatchString(sessionID + constants.SessionFileExt) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	filePath := filepath.Join(s.projectService.GetProjectDir(project.ID), sessionID+constants.SessionFileExt)
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}

	entries, err := parser.ReadJSONLFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	mod := info.ModTime()
	return &models.SessionDetail{
		Session: models.Session{
			ID:             sessionID,
			ProjectID:      project.ID,
			FilePath:       filePath,
			Meta:           ComputeMeta(entries),
			LastModifiedAt: &mod,
		},
		Entries: entries,
	}, nil
}

// Conversation is a rendered session.
type Conversation struct {
	Session models.Session      `json:"session"`
	Title   string              `json:"title"`
	Items   []conversation.Item `json:"items"`
}

// GetConversation renders a session. A zero opts uses the service defaults.
func (s *SessionService) GetConversation(projectID, sessionID string, opts *conversation.Options) (*Conversation, error) {
	detail, err := s.GetSession(projectID, sessionID)
	if err != nil {
		return nil, err
	}
	render := s.render
	if opts != nil {
		render = *opts
	}
	return &Conversation{
		Session: detail.Session,
		Title:   sessionlist.Title(detail.Session),
		Items:   conversation.RenderConversation(detail.Entries, render),
	}, nil
}

// HTMLGenerationResult contains the result of HTML generation.
type HTMLGenerationResult struct {
	OutputPath    string `json:"output_path"`
	SessionID     string `json:"session_id"`
	Project       string `json:"project"`
	OpenedBrowser bool   `json:"opened_browser"`
}

// GenerateSessionHTML generates an HTML file from a session's logs.
// If outputPath is empty, a temporary file is created and auto-opened in the browser.
// If openBrowser is true, the HTML file is opened in the default browser.
func (s *SessionService) GenerateSessionHTML(sessionID, projectName, outputPath string, openBrowser bool) (*HTMLGenerationResult, error) {
	filePath, project, err := s.findSessionFile(sessionID, projectName)
	if err != nil {
		return nil, err
	}

	if outputPath == "" {
		outputPath = tempOutputPath(sessionID)
		openBrowser = true
	}

	if err := s.writeHTML(filePath, outputPath, project); err != nil {
		return nil, err
	}

	result := &HTMLGenerationResult{
		OutputPath: outputPath,
		SessionID:  sessionID,
		Project:    project.Name,
	}
	if openBrowser {
		// Not fatal: the file is still written.
		result.OpenedBrowser = openInBrowser(outputPath) == nil
	}
	return result, nil
}

// GenerateHTMLFromFile generates an HTML file from a JSONL file path directly.
// If outputPath is empty, a temporary file is created and auto-opened in the browser.
// If openBrowser is true, the HTML file is opened in the default browser.
func (s *SessionService) GenerateHTMLFromFile(inputPath, outputPath string, openBrowser bool) (*HTMLGenerationResult, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", inputPath)
	}

	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if outputPath == "" {
		outputPath = tempOutputPath(baseName)
		openBrowser = true
	}

	if err := s.writeHTML(inputPath, outputPath, nil); err != nil {
		return nil, err
	}

	result := &HTMLGenerationResult{OutputPath: outputPath}
	if sessionFilePattern.MatchString(filepath.Base(inputPath)) {
		result.SessionID = baseName
	}
	if openBrowser {
		result.OpenedBrowser = openInBrowser(outputPath) == nil
	}
	return result, nil
}

func (s *SessionService) writeHTML(inputPath, outputPath string, project *models.Project) error {
	entries, err := parser.ReadJSONLFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	session := models.Session{ID: baseName, FilePath: inputPath, Meta: ComputeMeta(entries)}
	doc := renderer.Document{
		Title:     sessionlist.Title(session),
		SessionID: baseName,
		Locale:    s.render.Locale,
		Items:     conversation.RenderConversation(entries, s.render),
		Meta:      session.Meta,
	}
	if project != nil {
		doc.ProjectName = project.Name
		doc.ProjectPath = project.Path
	}

	if err := renderer.GenerateHTML(doc, outputPath); err != nil {
		return fmt.Errorf("failed to generate HTML: %w", err)
	}
	return nil
}

func tempOutputPath(name string) string {
	if len(name) > 8 {
		name = name[:8]
	}
	timestamp := time.Now().Format(constants.TempFileTimestampFormat)
	return filepath.Join(os.TempDir(), fmt.Sprintf(constants.TempFileNameFormat, name, timestamp))
}

// findSessionFile finds the session file path, searching every project when
// projectName is empty.
func (s *SessionService) findSessionFile(sessionID, projectName string) (string, *models.Project, error) {
	var projectsToSearch []models.Project

	if projectName != "" {
		project, err := s.projectService.FindProjectByName(projectName)
		if err != nil {
			return "", nil, err
		}
		projectsToSearch = append(projectsToSearch, *project)
	} else {
		projects, err := s.projectService.ListProjects("")
		if err != nil {
			return "", nil, err
		}
		projectsToSearch = projects
	}

	for i := range projectsToSearch {
		project := &projectsToSearch[i]
		filePath := filepath.Join(s.projectService.GetProjectDir(project.ID), sessionID+constants.SessionFileExt)
		if _, err := os.Stat(filePath); err == nil {
			return filePath, project, nil
		}
	}

	return "", nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
}

// FindSession locates a session by ID across projects, or within
// projectName when it is set.
func (s *SessionService) FindSession(sessionID, projectName string) (*models.Project, error) {
	_, project, err := s.findSessionFile(sessionID, projectName)
	return project, err
}
