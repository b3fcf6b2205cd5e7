package textview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brads3290/ccviewer/internal/conversation"
	"github.com/brads3290/ccviewer/internal/models"
	"github.com/brads3290/ccviewer/internal/textnorm"
)

func items() []conversation.Item {
	return []conversation.Item{
		{Type: conversation.ItemDateDivider, Label: "Monday, January 15th, 2024"},
		{
			Type:   "user",
			Header: &conversation.Header{Sender: conversation.SenderUser, Name: "You", Time: "10:30"},
			Blocks: []conversation.Block{
				{Kind: conversation.BlockContext, Label: "System Context",
					Context: &textnorm.ContextBlock{Type: textnorm.ContextSystemReminder, Content: "hidden reminder"}},
				{Kind: conversation.BlockMarkdown, Text: "Please fix the login bug"},
			},
		},
		{
			Type:   "user",
			Header: &conversation.Header{Sender: conversation.SenderUser, Name: "You"},
			Blocks: []conversation.Block{{
				Kind:    conversation.BlockCommand,
				Command: &models.ParsedUserMessage{Kind: models.UserMessageCommand, CommandName: "/review", CommandArgs: "main"},
			}},
		},
		{
			Type:   "assistant",
			Header: &conversation.Header{Sender: conversation.SenderAssistant, Name: "Claude Code", Time: "10:31"},
			Blocks: []conversation.Block{
				{Kind: conversation.BlockThinking, Text: "secret thoughts"},
				{Kind: conversation.BlockToolUse, Tool: &conversation.ToolUse{
					Name:   "Bash",
					Title:  "go test ./...",
					Input:  `{"command": "go test ./..."}`,
					Result: &conversation.ToolResult{IsError: true, Parts: []conversation.ResultPart{{Kind: conversation.ResultText, Text: "FAIL"}}},
					Sidechain: []conversation.Item{{
						Type:   "assistant",
						Header: &conversation.Header{Sender: conversation.SenderAssistant, Name: "Claude Code"},
						Blocks: []conversation.Block{{Kind: conversation.BlockMarkdown, Text: "subagent reply"}},
					}},
				}},
			},
		},
	}
}

func TestStringCollapsed(t *testing.T) {
	out := String(items(), Options{Width: 60})

	assert.Contains(t, out, "Monday, January 15th, 2024")
	assert.Contains(t, out, "You 10:30")
	assert.Contains(t, out, "▸ System Context")
	assert.NotContains(t, out, "hidden reminder")
	assert.Contains(t, out, "Please fix the login bug")
	assert.Contains(t, out, "$ /review main")
	assert.Contains(t, out, "▸ Thinking")
	assert.NotContains(t, out, "secret thoughts")
	assert.Contains(t, out, "⚙ Bash: go test ./...")
	assert.NotContains(t, out, "subagent reply")
	assert.NotContains(t, out, "\x1b[")
}

func TestStringExpanded(t *testing.T) {
	out := String(items(), Options{Width: 60, Expand: true})

	assert.Contains(t, out, "  hidden reminder")
	assert.Contains(t, out, "  secret thoughts")
	assert.Contains(t, out, "  error")
	assert.Contains(t, out, "    FAIL")
	assert.Contains(t, out, "    subagent reply")
}

func TestWrap(t *testing.T) {
	long := strings.Repeat("word ", 30)
	out := String([]conversation.Item{{
		Type:   "assistant",
		Blocks: []conversation.Block{{Kind: conversation.BlockMarkdown, Text: long}},
	}}, Options{Width: 20})

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(strings.TrimRight(line, " ")), 20)
	}
}

func TestCapLines(t *testing.T) {
	assert.Equal(t, "a\nb", capLines("a\nb", 2))
	assert.Equal(t, "a\nb\n… 2 more lines", capLines("a\nb\nc\nd", 2))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, items()[:2], Options{}))
	assert.Contains(t, buf.String(), "Please fix the login bug")
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, UseColor(&buf, true, false))
	assert.False(t, UseColor(&buf, false, true))
	assert.False(t, UseColor(&buf, false, false))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, UseColor(&buf, false, false))
}

func TestWidth(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 100, Width(&buf, 100))

	t.Setenv("COLUMNS", "132")
	assert.Equal(t, 132, Width(&buf, 0))

	t.Setenv("COLUMNS", "")
	assert.Equal(t, 80, Width(&buf, 0))
}
