package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brads3290/ccviewer/internal/conversation"
	"github.com/brads3290/ccviewer/internal/models"
	"github.com/brads3290/ccviewer/internal/parser"
	"github.com/brads3290/ccviewer/internal/store"
)

const (
	projectID = "-Users-test-myproject"
	sessionA  = "aaaaaaaa-1111-2222-3333-444444444444"
	sessionB  = "bbbbbbbb-1111-2222-3333-444444444444"
	sessionC  = "cccccccc-1111-2222-3333-444444444444"
)

const sessionALog = `{"type":"user","uuid":"u1","parentUuid":null,"sessionId":"` + sessionA + `","timestamp":"2024-01-15T10:30:00Z","message":{"role":"user","content":"Fix the login bug"}}
{"type":"assistant","uuid":"a1","parentUuid":"u1","sessionId":"` + sessionA + `","timestamp":"2024-01-15T10:30:05Z","message":{"id":"msg_1","model":"claude-sonnet-4-20250514","role":"assistant","content":[{"type":"text","text":"On it."}],"usage":{"input_tokens":1000,"output_tokens":100}}}
{"type":"user","uuid":"u2","parentUuid":"a1","sessionId":"` + sessionA + `","timestamp":"2024-01-15T10:31:00Z","isMeta":true,"message":{"role":"user","content":"meta note"}}
`

const sessionBLog = `{"type":"summary","summary":"Nothing here","leafUuid":"x"}
{"type":"system","uuid":"s1","sessionId":"` + sessionB + `","timestamp":"2024-01-14T09:00:00Z","content":"boot","level":"info"}
`

const sessionCLog = `{"type":"user","uuid":"c1","parentUuid":null,"sessionId":"` + sessionC + `","timestamp":"2024-01-13T10:30:00Z","message":{"role":"user","content":"Fix the login bug"}}
`

func writeSession(t *testing.T, dir, id, content string, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, id+".jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

// setupClaudeDir builds a projects tree with three sessions: A newest, then
// B (no user message), then C (same title as A).
func setupClaudeDir(t *testing.T) string {
	t.Helper()

	claudeDir := t.TempDir()
	projectDir := filepath.Join(claudeDir, "projects", projectID)
	require.NoError(t, os.MkdirAll(projectDir, 0o755))

	now := time.Now()
	writeSession(t, projectDir, sessionA, sessionALog, now.Add(-1*time.Hour))
	writeSession(t, projectDir, sessionB, sessionBLog, now.Add(-2*time.Hour))
	writeSession(t, projectDir, sessionC, sessionCLog, now.Add(-72*time.Hour))

	// Ignored: not a session file name.
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "notes.txt"), []byte("x"), 0o644))

	other := filepath.Join(claudeDir, "projects", "-Users-test-other-app")
	require.NoError(t, os.MkdirAll(other, 0o755))

	return claudeDir
}

func TestListProjects(t *testing.T) {
	services := NewServices(setupClaudeDir(t))

	projects, err := services.Project.ListProjects("")
	require.NoError(t, err)
	require.Len(t, projects, 2)

	byID := map[string]models.Project{}
	for _, p := range projects {
		byID[p.ID] = p
	}
	p := byID[projectID]
	assert.Equal(t, "myproject", p.Name)
	assert.Equal(t, "/Users/test/myproject", p.Path)
	assert.Equal(t, 3, p.SessionCount)
	require.NotNil(t, p.LastModifiedAt)

	projects, err = services.Project.ListProjects("session_count")
	require.NoError(t, err)
	assert.Equal(t, projectID, projects[0].ID)
}

func TestListProjectsMissingDir(t *testing.T) {
	services := NewServices(t.TempDir())
	_, err := services.Project.ListProjects("")
	assert.Error(t, err)
}

func TestGetProject(t *testing.T) {
	services := NewServices(setupClaudeDir(t))

	p, err := services.Project.GetProject(projectID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.SessionCount)

	for _, id := range []string{"", "..", "a/b", "-Users-nobody"} {
		_, err := services.Project.GetProject(id)
		assert.True(t, errors.Is(err, ErrProjectNotFound), id)
	}
}

func TestFindProjectByName(t *testing.T) {
	services := NewServices(setupClaudeDir(t))

	for _, name := range []string{projectID, "/Users/test/myproject", "myproject", "MYPROJ"} {
		p, err := services.Project.FindProjectByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, projectID, p.ID, name)
	}

	_, err := services.Project.FindProjectByName("does-not-exist")
	assert.True(t, errors.Is(err, ErrProjectNotFound))
}

func TestProjectPathCoding(t *testing.T) {
	assert.Equal(t, "/Users/name/Projects/foo", decodeProjectPath("-Users-name-Projects-foo"))
	assert.Equal(t, "", decodeProjectPath(""))
	assert.Equal(t, "-Users-name-my-app", encodeProjectPath("/Users/name/my.app"))
}

func TestListSessions(t *testing.T) {
	services := NewServices(setupClaudeDir(t))

	page, err := services.Session.ListSessions(projectID, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Sessions, 3)
	assert.Equal(t, []string{sessionA, sessionB, sessionC},
		[]string{page.Sessions[0].ID, page.Sessions[1].ID, page.Sessions[2].ID})
	assert.False(t, page.HasNextPage)

	a := page.Sessions[0]
	require.NotNil(t, a.Meta.FirstUserMessage)
	assert.Equal(t, "Fix the login bug", a.Meta.FirstUserMessage.Content)
	assert.Equal(t, 2, a.Meta.MessageCount)
	assert.Greater(t, a.Meta.Cost.TotalUSD, 0.0)
	assert.Nil(t, page.Sessions[1].Meta.FirstUserMessage)
}

func TestListSessionsFilters(t *testing.T) {
	services := NewServices(setupClaudeDir(t))

	page, err := services.Session.ListSessions(projectID, ListOptions{HideNoUserMessage: true})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = services.Session.ListSessions(projectID, ListOptions{HideNoUserMessage: true, UnifySameTitle: true})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, sessionA, page.Sessions[0].ID)

	page, err = services.Session.ListSessions(projectID, ListOptions{Days: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestListSessionsPagination(t *testing.T) {
	services := NewServices(setupClaudeDir(t))

	page, err := services.Session.ListSessions(projectID, ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Sessions, 2)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, sessionB, page.NextCursor)

	page, err = services.Session.ListSessions(projectID, ListOptions{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Sessions, 1)
	assert.Equal(t, sessionC, page.Sessions[0].ID)
	assert.False(t, page.HasNextPage)
	assert.Empty(t, page.NextCursor)

	page, err = services.Session.ListSessions(projectID, ListOptions{Limit: 2, Cursor: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, sessionA, page.Sessions[0].ID)
}

func TestListSessionsUsesCache(t *testing.T) {
	claudeDir := setupClaudeDir(t)
	db, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cache := store.NewSessionMetaStore(db)

	services := NewServicesWithOptions(claudeDir, Options{Cache: cache})
	_, err = services.Session.ListSessions(projectID, ListOptions{})
	require.NoError(t, err)

	n, err := cache.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	page, err := services.Session.ListSessions(projectID, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Fix the login bug", page.Sessions[0].Meta.FirstUserMessage.Content)
}

func TestComputeMeta(t *testing.T) {
	entries, err := parser.ReadSessionFile(writeTemp(t, sessionALog))
	require.NoError(t, err)

	meta := ComputeMeta(entries)
	require.NotNil(t, meta.FirstUserMessage)
	assert.Equal(t, models.UserMessageText, meta.FirstUserMessage.Kind)
	assert.Equal(t, 2, meta.MessageCount)
	assert.Equal(t, int64(1100), meta.Cost.Breakdown.TotalTokens)
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetSession(t *testing.T) {
	services := NewServices(setupClaudeDir(t))

	detail, err := services.Session.GetSession(projectID, sessionA)
	require.NoError(t, err)
	assert.Len(t, detail.Entries, 3)
	assert.Equal(t, projectID, detail.ProjectID)

	_, err = services.Session.GetSession(projectID, "dddddddd-1111-2222-3333-444444444444")
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	_, err = services.Session.GetSession(projectID, "../../etc/passwd")
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	_, err = services.Session.GetSession("-nope", sessionA)
	assert.True(t, errors.Is(err, ErrProjectNotFound))
}

func TestGetConversation(t *testing.T) {
	services := NewServices(setupClaudeDir(t))

	conv, err := services.Session.GetConversation(projectID, sessionA, nil)
	require.NoError(t, err)
	assert.Equal(t, "Fix the login bug", conv.Title)
	require.NotEmpty(t, conv.Items)
	assert.Equal(t, conversation.ItemDateDivider, conv.Items[0].Type)
}

func TestGenerateSessionHTML(t *testing.T) {
	opened := ""
	orig := openInBrowser
	openInBrowser = func(path string) error { opened = path; return nil }
	t.Cleanup(func() { openInBrowser = orig })

	services := NewServices(setupClaudeDir(t))
	out := filepath.Join(t.TempDir(), "out.html")

	result, err := services.Session.GenerateSessionHTML(sessionA, "", out, false)
	require.NoError(t, err)
	assert.Equal(t, out, result.OutputPath)
	assert.Equal(t, "myproject", result.Project)
	assert.False(t, result.OpenedBrowser)
	assert.Empty(t, opened)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Fix the login bug")
	assert.Contains(t, string(data), "/Users/test/myproject")

	result, err = services.Session.GenerateSessionHTML(sessionA, "myproject", out, true)
	require.NoError(t, err)
	assert.True(t, result.OpenedBrowser)
	assert.Equal(t, out, opened)

	_, err = services.Session.GenerateSessionHTML("dddddddd-1111-2222-3333-444444444444", "", out, false)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestGenerateHTMLFromFile(t *testing.T) {
	orig := openInBrowser
	openInBrowser = func(string) error { return errors.New("no browser") }
	t.Cleanup(func() { openInBrowser = orig })

	services := NewServices(t.TempDir())
	input := writeTemp(t, sessionALog)
	out := filepath.Join(t.TempDir(), "out.html")

	result, err := services.Session.GenerateHTMLFromFile(input, out, true)
	require.NoError(t, err)
	assert.False(t, result.OpenedBrowser)
	assert.Empty(t, result.SessionID)
	assert.FileExists(t, out)

	_, err = services.Session.GenerateHTMLFromFile("/nonexistent/file.jsonl", out, false)
	assert.ErrorContains(t, err, "file not found")
}

func TestFindSession(t *testing.T) {
	services := NewServices(setupClaudeDir(t))

	p, err := services.Session.FindSession(sessionB, "")
	require.NoError(t, err)
	assert.Equal(t, projectID, p.ID)

	_, err = services.Session.FindSession(sessionB, "-Users-test-other-app")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}
