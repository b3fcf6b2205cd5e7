package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/brads3290/ccviewer/internal/service"
	"github.com/brads3290/ccviewer/internal/textview"
)

// ListProjectsTool implements the list_projects tool.
type ListProjectsTool struct {
	services *service.Services
}

func NewListProjectsTool(services *service.Services) *ListProjectsTool {
	return &ListProjectsTool{services: services}
}

func (t *ListProjectsTool) Name() string {
	return "list_projects"
}

func (t *ListProjectsTool) Description() string {
	return "List all Claude Code projects with session counts and metadata"
}

func (t *ListProjectsTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"sort_by": {
				"type": "string",
				"enum": ["last_modified", "name", "session_count"],
				"description": "Sort projects by this field",
				"default": "last_modified"
			}
		}
	}`)
}

func (t *ListProjectsTool) Execute(args map[string]any) (any, error) {
	sortBy := getString(args, "sort_by")
	if sortBy == "" {
		sortBy = "last_modified"
	}

	projects, err := t.services.Project.ListProjects(sortBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return map[string]any{
		"projects": projects,
		"total":    len(projects),
	}, nil
}

// ListSessionsTool implements the list_sessions tool.
type ListSessionsTool struct {
	services *service.Services
}

func NewListSessionsTool(services *service.Services) *ListSessionsTool {
	return &ListSessionsTool{services: services}
}

func (t *ListSessionsTool) Name() string {
	return "list_sessions"
}

func (t *ListSessionsTool) Description() string {
	return "List sessions for a project, newest first, with title, message count and estimated cost"
}

func (t *ListSessionsTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"project": {
				"type": "string",
				"description": "Project name or path (can be partial match)"
			},
			"days": {
				"type": "integer",
				"description": "Only include sessions from the last N days",
				"minimum": 1
			},
			"limit": {
				"type": "integer",
				"description": "Maximum number of sessions to return",
				"default": 50
			},
			"cursor": {
				"type": "string",
				"description": "Session ID after which to continue (from next_cursor)"
			},
			"hide_no_user_message": {
				"type": "boolean",
				"description": "Skip sessions without any user message",
				"default": true
			},
			"unify_same_title": {
				"type": "boolean",
				"description": "Keep only the most recent session of each title",
				"default": false
			}
		},
		"required": ["project"]
	}`)
}

func (t *ListSessionsTool) Execute(args map[string]any) (any, error) {
	name := getString(args, "project")
	if name == "" {
		return nil, fmt.Errorf("project is required")
	}

	project, err := t.services.Project.FindProjectByName(name)
	if err != nil {
		return nil, err
	}

	limit := getInt(args, "limit")
	if limit == 0 {
		limit = 50
	}

	page, err := t.services.Session.ListSessions(project.ID, service.ListOptions{
		Cursor:            getString(args, "cursor"),
		Limit:             limit,
		Days:              getInt(args, "days"),
		HideNoUserMessage: getBool(args, "hide_no_user_message", true),
		UnifySameTitle:    getBool(args, "unify_same_title", false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return map[string]any{
		"project":     project.Name,
		"project_id":  project.ID,
		"sessions":    page.Sessions,
		"count":       len(page.Sessions),
		"total":       page.Total,
		"next_cursor": page.NextCursor,
	}, nil
}

// GetConversationTool implements the get_conversation tool.
type GetConversationTool struct {
	services *service.Services
}

func NewGetConversationTool(services *service.Services) *GetConversationTool {
	return &GetConversationTool{services: services}
}

func (t *GetConversationTool) Name() string {
	return "get_conversation"
}

func (t *GetConversationTool) Description() string {
	return "Get a session's conversation as rendered items or as plain text, with subagent conversations nested under their Task tool calls"
}

func (t *GetConversationTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"session_id": {
				"type": "string",
				"description": "Session UUID"
			},
			"project": {
				"type": "string",
				"description": "Project name/path (optional if session_id is globally unique)"
			},
			"format": {
				"type": "string",
				"enum": ["items", "text"],
				"description": "items returns structured JSON; text returns a readable transcript",
				"default": "items"
			},
			"expand": {
				"type": "boolean",
				"description": "In text format, include thinking, context and tool details",
				"default": false
			}
		},
		"required": ["session_id"]
	}`)
}

func (t *GetConversationTool) Execute(args map[string]any) (any, error) {
	sessionID := getString(args, "session_id")
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	project, err := t.services.Session.FindSession(sessionID, getString(args, "project"))
	if err != nil {
		return nil, err
	}

	conv, err := t.services.Session.GetConversation(project.ID, sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	switch format := getString(args, "format"); format {
	case "", "items":
		return conv, nil
	case "text":
		text := textview.String(conv.Items, textview.Options{Width: 100, Expand: getBool(args, "expand", false)})
		return conv.Title + "\n\n" + text, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// GenerateHTMLTool implements the generate_html tool.
type GenerateHTMLTool struct {
	services *service.Services
}

func NewGenerateHTMLTool(services *service.Services) *GenerateHTMLTool {
	return &GenerateHTMLTool{services: services}
}

func (t *GenerateHTMLTool) Name() string {
	return "generate_html"
}

func (t *GenerateHTMLTool) Description() string {
	return "Generate an interactive HTML file from session logs. Accepts either a session_id or a direct file_path to a JSONL file. If no output path is specified, creates a temporary file and opens it in the browser."
}

func (t *GenerateHTMLTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"session_id": {
				"type": "string",
				"description": "Session UUID (use this OR file_path)"
			},
			"file_path": {
				"type": "string",
				"description": "Direct path to a JSONL log file (use this OR session_id)"
			},
			"project": {
				"type": "string",
				"description": "Project name/path (optional, only used with session_id)"
			},
			"output_path": {
				"type": "string",
				"description": "Output HTML file path (optional, creates temp file if not specified)"
			},
			"open_browser": {
				"type": "boolean",
				"description": "Open the generated HTML file in browser (default: true when output_path not specified)",
				"default": false
			}
		}
	}`)
}

func (t *GenerateHTMLTool) Execute(args map[string]any) (any, error) {
	sessionID := getString(args, "session_id")
	filePath := getString(args, "file_path")

	if sessionID == "" && filePath == "" {
		return nil, fmt.Errorf("either session_id or file_path is required")
	}

	outputPath := getString(args, "output_path")
	openBrowser := getBool(args, "open_browser", false)

	if filePath != "" {
		result, err := t.services.Session.GenerateHTMLFromFile(filePath, outputPath, openBrowser)
		if err != nil {
			return nil, fmt.Errorf("failed to generate HTML: %w", err)
		}
		return result, nil
	}

	result, err := t.services.Session.GenerateSessionHTML(sessionID, getString(args, "project"), outputPath, openBrowser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	return result, nil
}

// Helper functions for argument extraction
func getString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func getInt(args map[string]any, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}

func getBool(args map[string]any, key string, defaultVal bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return defaultVal
}

// RegisterAllTools registers all MCP tools with the server.
func RegisterAllTools(server *Server, services *service.Services) {
	server.RegisterTool(NewListProjectsTool(services))
	server.RegisterTool(NewListSessionsTool(services))
	server.RegisterTool(NewGetConversationTool(services))
	server.RegisterTool(NewGenerateHTMLTool(services))
}

var (
	_ Tool = (*ListProjectsTool)(nil)
	_ Tool = (*ListSessionsTool)(nil)
	_ Tool = (*GetConversationTool)(nil)
	_ Tool = (*GenerateHTMLTool)(nil)
)
