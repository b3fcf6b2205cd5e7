package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brads3290/ccviewer/internal/config"
	"github.com/brads3290/ccviewer/internal/service"
	"github.com/brads3290/ccviewer/internal/userconfig"
)

const testSessionID = "12345678-1234-1234-1234-123456789abc"

func newTestContext(t *testing.T, jsonOutput bool) (*Context, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	projectDir := filepath.Join(dir, "projects", "-Users-test-myproject")
	require.NoError(t, os.MkdirAll(projectDir, 0755))

	log := `{"type":"user","uuid":"u1","sessionId":"` + testSessionID + `","timestamp":"2024-01-01T10:00:00Z","message":{"role":"user","content":"Fix the build"}}
{"type":"assistant","uuid":"a1","parentUuid":"u1","sessionId":"` + testSessionID + `","timestamp":"2024-01-01T10:00:05Z","message":{"id":"m1","role":"assistant","model":"claude-sonnet-4","content":[{"type":"text","text":"Done."}],"usage":{"input_tokens":1000,"output_tokens":100}}}
`
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, testSessionID+".jsonl"), []byte(log), 0644))

	var out bytes.Buffer
	ctx := &Context{
		Config:     &Config{JSONOutput: jsonOutput},
		Env:        &config.Config{ClaudeDir: dir, PageSize: 20, Location: time.UTC},
		UserConfig: userconfig.NewStore(filepath.Join(dir, "config.yaml")),
		Prefs:      userconfig.Default(),
		Output:     &out,
		ErrOutput:  &out,
	}
	ctx.Services = service.NewServicesWithOptions(dir, service.Options{Render: ctx.RenderOptions()})
	return ctx, &out
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	RegisterAll(r)

	var names []string
	for _, cmd := range r.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"projects", "sessions", "show", "browse", "serve", "html", "config"}, names)

	_, ok := r.Get("search")
	assert.False(t, ok)

	var help bytes.Buffer
	r.PrintHelp(&help)
	assert.Contains(t, help.String(), "ccviewer <command>")
	assert.Contains(t, help.String(), "serve")
}

func TestProjectsCmd(t *testing.T) {
	ctx, out := newTestContext(t, false)

	require.NoError(t, (&ProjectsCmd{}).Run(ctx, nil))
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "myproject")
	assert.Contains(t, out.String(), "/Users/test/myproject")
}

func TestProjectsCmd_JSON(t *testing.T) {
	ctx, out := newTestContext(t, true)

	require.NoError(t, (&ProjectsCmd{}).Run(ctx, nil))

	var payload struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.Equal(t, 1, payload.Total)
}

func TestSessionsCmd(t *testing.T) {
	ctx, out := newTestContext(t, false)

	err := (&SessionsCmd{}).Run(ctx, nil)
	assert.ErrorContains(t, err, "project name is required")

	require.NoError(t, (&SessionsCmd{Limit: 10}).Run(ctx, []string{"myproject"}))
	assert.Contains(t, out.String(), testSessionID)
	assert.Contains(t, out.String(), "Fix the build")
	assert.NotContains(t, out.String(), "More sessions")
}

func TestShowCmd(t *testing.T) {
	ctx, out := newTestContext(t, false)

	require.NoError(t, (&ShowCmd{Width: 80, NoColor: true}).Run(ctx, []string{testSessionID}))
	assert.Contains(t, out.String(), "Fix the build")
	assert.Contains(t, out.String(), "Done.")
	assert.Contains(t, out.String(), "2 messages")

	err := (&ShowCmd{}).Run(ctx, []string{"00000000-0000-0000-0000-000000000000"})
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestHTMLCmd(t *testing.T) {
	ctx, out := newTestContext(t, false)

	err := (&HTMLCmd{}).Run(ctx, nil)
	assert.ErrorContains(t, err, "either --session or --file")

	output := filepath.Join(t.TempDir(), "out.html")
	require.NoError(t, (&HTMLCmd{SessionID: testSessionID, OutputPath: output}).Run(ctx, nil))
	assert.Contains(t, out.String(), "HTML generated: "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Fix the build")
}

func TestConfigCmd(t *testing.T) {
	ctx, out := newTestContext(t, false)
	cmd := &ConfigCmd{}

	require.NoError(t, cmd.Run(ctx, nil))
	assert.Contains(t, out.String(), "session_view_mode:")

	out.Reset()
	require.NoError(t, cmd.Run(ctx, []string{"session_view_mode", "list"}))
	assert.Equal(t, "session_view_mode = list\n", out.String())

	out.Reset()
	require.NoError(t, cmd.Run(ctx, []string{"session_view_mode"}))
	assert.Equal(t, "list\n", out.String())

	err := cmd.Run(ctx, []string{"session_view_mode", "grid"})
	assert.Error(t, err)

	err = cmd.Run(ctx, []string{"colour"})
	assert.ErrorIs(t, err, userconfig.ErrUnknownKey)

	err = cmd.Run(ctx, []string{"a", "b", "c"})
	assert.ErrorContains(t, err, "too many arguments")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hello w...", Truncate("hello world again", 10))
	assert.Equal(t, "a b", Truncate("a\n  b", 10))
	assert.Equal(t, "日本...", Truncate("日本語のタイトル", 5))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "-", FormatTime(nil))
	assert.Equal(t, "-", FormatAgo(nil))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	NewOutputWriter(&buf, false).WriteTable([]string{"Name", "N"}, [][]string{{"日本", "1"}, {"abcdef", "22"}})

	assert.Equal(t, "NAME    N   \n日本    1   \nabcdef  22  \n", buf.String())
}
