package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brads3290/ccviewer/internal/models"
	"github.com/brads3290/ccviewer/internal/process"
	"github.com/brads3290/ccviewer/internal/service"
	"github.com/brads3290/ccviewer/internal/store"
	"github.com/brads3290/ccviewer/internal/userconfig"
)

const (
	testProject = "-Users-test-webapp"
	sessionOne  = "11111111-1111-1111-1111-111111111111"
	sessionTwo  = "22222222-2222-2222-2222-222222222222"
)

func sessionLog(id, text, ts string) string {
	return `{"type":"user","uuid":"u-` + id[:4] + `","parentUuid":null,"sessionId":"` + id + `","timestamp":"` + ts + `","message":{"role":"user","content":"` + text + `"}}
{"type":"assistant","uuid":"a-` + id[:4] + `","parentUuid":"u-` + id[:4] + `","sessionId":"` + id + `","timestamp":"` + ts + `","message":{"id":"msg_` + id[:4] + `","model":"claude-sonnet-4","role":"assistant","content":[{"type":"text","text":"Answer to ` + text + `"}]}}
`
}

type testServer struct {
	*httptest.Server
	tracker *process.Tracker
	prefs   *userconfig.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	claudeDir := t.TempDir()
	dir := filepath.Join(claudeDir, "projects", testProject)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	now := time.Now()
	for i, s := range []struct{ id, text string }{{sessionOne, "first task"}, {sessionTwo, "second task"}} {
		path := filepath.Join(dir, s.id+".jsonl")
		require.NoError(t, os.WriteFile(path, []byte(sessionLog(s.id, s.text, "2024-01-15T10:30:00Z")), 0o644))
		mod := now.Add(-time.Duration(i+1) * time.Hour)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}

	db, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cache := store.NewSessionMetaStore(db)

	ts := &testServer{
		tracker: process.NewTracker(),
		prefs:   userconfig.NewStore(filepath.Join(t.TempDir(), "config.yaml")),
	}
	router := NewRouter(Deps{
		Services:   service.NewServicesWithOptions(claudeDir, service.Options{Cache: cache}),
		Tracker:    ts.tracker,
		UserConfig: ts.prefs,
		Cache:      cache,
		PageSize:   1,
		Location:   time.UTC,
		Version:    "test",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts.Server = httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Header.Get("X-Request-ID"), 8)

	body := decode[healthResponse](t, resp)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Cache)
	assert.Equal(t, "test", body.Version)
}

func TestNoCrossOriginAccess(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/projects/"+testProject+"/sessions/"+sessionOne, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodOptions, ts.URL+"/api/config", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	preflight, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer preflight.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, preflight.StatusCode)
	assert.Empty(t, preflight.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, preflight.Header.Get("Access-Control-Allow-Methods"))
}

func TestListProjects(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/projects", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[projectsResponse](t, resp)
	require.Len(t, body.Projects, 1)
	assert.Equal(t, testProject, body.Projects[0].ID)
	assert.Equal(t, "webapp", body.Projects[0].Name)
	assert.Equal(t, 2, body.Projects[0].SessionCount)
}

func TestGetProjectNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/projects/-nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decode[errorResponse](t, resp).Error, "project not found")
}

func TestListSessionsPaginates(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/projects/"+testProject+"/sessions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[service.SessionPage](t, resp)
	require.Len(t, page.Sessions, 1)
	assert.Equal(t, sessionOne, page.Sessions[0].ID)
	assert.Equal(t, 2, page.Total)
	assert.True(t, page.HasNextPage)

	resp = ts.do(t, http.MethodGet, "/api/projects/"+testProject+"/sessions?limit=5&cursor="+page.NextCursor, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page = decode[service.SessionPage](t, resp)
	require.Len(t, page.Sessions, 1)
	assert.Equal(t, sessionTwo, page.Sessions[0].ID)
	assert.False(t, page.HasNextPage)

	resp = ts.do(t, http.MethodGet, "/api/projects/"+testProject+"/sessions?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetConversation(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/projects/"+testProject+"/sessions/"+sessionOne, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conv := decode[service.Conversation](t, resp)
	assert.Equal(t, "first task", conv.Title)
	assert.NotEmpty(t, conv.Items)

	resp = ts.do(t, http.MethodGet, "/api/projects/"+testProject+"/sessions/33333333-3333-3333-3333-333333333333", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConfig(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, userconfig.Default(), decode[userconfig.Config](t, resp))

	resp = ts.do(t, http.MethodPut, "/api/config", `{"sessionViewMode":"list"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg := decode[userconfig.Config](t, resp)
	assert.Equal(t, "list", string(cfg.SessionViewMode))
	assert.Equal(t, userconfig.Default().HideNoUserMessageSession, cfg.HideNoUserMessageSession)

	stored, err := ts.prefs.Load()
	require.NoError(t, err)
	assert.Equal(t, "list", string(stored.SessionViewMode))

	resp = ts.do(t, http.MethodPut, "/api/config", `{"bogus":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProcesses(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPut, "/api/processes/"+sessionTwo, `{"status":"running"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPut, "/api/processes/"+sessionTwo, `{"status":"sleeping"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/processes", "")
	body := decode[processesResponse](t, resp)
	assert.Equal(t, []models.SessionProcess{{SessionID: sessionTwo, Status: models.ProcessRunning}}, body.Processes)

	resp = ts.do(t, http.MethodDelete, "/api/processes/"+sessionTwo, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, "/api/processes/"+sessionTwo, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPages(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, readBody(t, resp), "/projects/"+testProject)

	require.NoError(t, ts.tracker.Set(sessionTwo, models.ProcessRunning))
	resp = ts.do(t, http.MethodGet, "/projects/"+testProject+"?limit=2&session="+sessionOne, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := readBody(t, resp)
	assert.Contains(t, html, "second task")
	assert.Contains(t, html, "Running")
	assert.Contains(t, html, "Answer to first task")
	assert.Less(t, strings.Index(html, "second task"), strings.Index(html, "Answer to first task"))

	resp = ts.do(t, http.MethodGet, "/projects/"+testProject, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "?limit=2")

	resp = ts.do(t, http.MethodGet, "/projects/"+testProject+"/sessions/"+sessionTwo, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Answer to second task")

	resp = ts.do(t, http.MethodGet, "/projects/-missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
