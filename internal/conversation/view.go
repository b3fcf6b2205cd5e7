package conversation

import (
	"github.com/brads3290/ccviewer/internal/models"
	"github.com/brads3290/ccviewer/internal/textnorm"
	"github.com/brads3290/ccviewer/internal/tooldisplay"
)

// ItemType identifies a rendered item. Entry types are reused; date
// dividers are synthetic.
type ItemType string

const ItemDateDivider ItemType = "date_divider"

// BlockKind identifies a rendered block.
type BlockKind string

const (
	BlockMarkdown     BlockKind = "markdown"
	BlockContext      BlockKind = "context"
	BlockCommand      BlockKind = "command"
	BlockLocalCommand BlockKind = "local_command"
	BlockThinking     BlockKind = "thinking"
	BlockToolUse      BlockKind = "tool_use"
	BlockImage        BlockKind = "image"
	BlockSummary      BlockKind = "summary"
	BlockSystem       BlockKind = "system"
	BlockSnapshot     BlockKind = "file_history_snapshot"
	BlockQueue        BlockKind = "queue_operation"
)

// Sender is who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	SenderSystem    Sender = "system"
)

// Header is the sender line above a message.
type Header struct {
	Sender Sender `json:"sender"`
	Name   string `json:"name"`
	Time   string `json:"time,omitempty"`
}

// Item is one rendered conversation entry.
type Item struct {
	ID        string   `json:"id,omitempty"`
	Type      ItemType `json:"type"`
	Timestamp string   `json:"timestamp,omitempty"`
	Header    *Header  `json:"header,omitempty"`
	IsMeta    bool     `json:"isMeta,omitempty"`
	Label     string   `json:"label,omitempty"`
	Blocks    []Block  `json:"blocks,omitempty"`
}

// Block is one visual element of an item. Only the fields relevant to Kind
// are set.
type Block struct {
	Kind      BlockKind                 `json:"kind"`
	Text      string                    `json:"text,omitempty"`
	Collapsed bool                      `json:"collapsed,omitempty"`
	Context   *textnorm.ContextBlock    `json:"context,omitempty"`
	Label     string                    `json:"label,omitempty"`
	Command   *models.ParsedUserMessage `json:"command,omitempty"`
	Image     *Image                    `json:"image,omitempty"`
	Tool      *ToolUse                  `json:"tool,omitempty"`
	Queue     *QueueOperation           `json:"queue,omitempty"`
	Snapshot  *Snapshot                 `json:"snapshot,omitempty"`
	Level     string                    `json:"level,omitempty"`
}

// Image is an inline image.
type Image struct {
	MediaType string `json:"mediaType"`
	DataURI   string `json:"dataUri"`
}

// ToolUse is a tool invocation together with its result and, for Task
// tools, the nested subagent conversation.
type ToolUse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Title   string           `json:"title"`
	Display tooldisplay.Info `json:"display"`
	Input   string           `json:"input"`
	Result  *ToolResult      `json:"result,omitempty"`

	AgentID         string `json:"agentId,omitempty"`
	SidechainPrompt string `json:"sidechainPrompt,omitempty"`
	Sidechain       []Item `json:"sidechain,omitempty"`
}

// ResultPartKind is the kind of one tool result part.
type ResultPartKind string

const (
	ResultText  ResultPartKind = "text"
	ResultImage ResultPartKind = "image"
)

// ResultPart is one part of a tool result.
type ResultPart struct {
	Kind  ResultPartKind `json:"kind"`
	Text  string         `json:"text,omitempty"`
	Image *Image         `json:"image,omitempty"`
}

// ToolResult is the rendered output of a tool use.
type ToolResult struct {
	IsError bool         `json:"isError,omitempty"`
	Parts   []ResultPart `json:"parts"`
}

// QueueOperation is a rendered queue event.
type QueueOperation struct {
	Title     string `json:"title"`
	Operation string `json:"operation"`
	SessionID string `json:"sessionId"`
	Time      string `json:"time"`
	Content   string `json:"content,omitempty"`
}

// SnapshotFile is one tracked file in a snapshot.
type SnapshotFile struct {
	Path           string `json:"path"`
	BackupFileName string `json:"backupFileName,omitempty"`
	Version        int    `json:"version"`
}

// Snapshot is a rendered file-history snapshot.
type Snapshot struct {
	MessageID string         `json:"messageId"`
	Time      string         `json:"time"`
	IsUpdate  bool           `json:"isUpdate,omitempty"`
	Files     []SnapshotFile `json:"files,omitempty"`
}
