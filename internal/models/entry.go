package models

import (
	"encoding/json"
	"strings"
)

// EntryType discriminates the records of a session log.
type EntryType string

const (
	EntryTypeSummary             EntryType = "summary"
	EntryTypeSystem              EntryType = "system"
	EntryTypeFileHistorySnapshot EntryType = "file-history-snapshot"
	EntryTypeQueueOperation      EntryType = "queue-operation"
	EntryTypeUser                EntryType = "user"
	EntryTypeAssistant           EntryType = "assistant"
)

// Entry is one record of a persisted conversation log. The set of
// implementations is closed; see the assertions below.
type Entry interface {
	EntryType() EntryType
	isEntry()
}

var (
	_ Entry = (*SummaryEntry)(nil)
	_ Entry = (*SystemEntry)(nil)
	_ Entry = (*FileHistorySnapshotEntry)(nil)
	_ Entry = (*QueueOperationEntry)(nil)
	_ Entry = (*UserEntry)(nil)
	_ Entry = (*AssistantEntry)(nil)
	_ Entry = (*UnknownEntry)(nil)
)

// BaseEntry holds the fields shared by user, assistant and system records.
type BaseEntry struct {
	ParentUUID  *string `json:"parentUuid"`
	IsSidechain bool    `json:"isSidechain"`
	UserType    string  `json:"userType"`
	CWD         string  `json:"cwd"`
	SessionID   string  `json:"sessionId"`
	Version     string  `json:"version"`
	GitBranch   string  `json:"gitBranch"`
	UUID        string  `json:"uuid"`
	Timestamp   string  `json:"timestamp"`
	IsMeta      bool    `json:"isMeta"`
	AgentID     string  `json:"agentId"`
}

// Base returns the shared fields.
func (b *BaseEntry) Base() *BaseEntry { return b }

// Parent returns the parent UUID or "" for roots.
func (b *BaseEntry) Parent() string {
	if b.ParentUUID == nil {
		return ""
	}
	return *b.ParentUUID
}

// BaseProvider is implemented by entries that embed BaseEntry.
type BaseProvider interface {
	Entry
	Base() *BaseEntry
}

// SummaryEntry is a compacted-conversation summary. It has no timestamp.
type SummaryEntry struct {
	Summary  string `json:"summary"`
	LeafUUID string `json:"leafUuid"`
}

func (*SummaryEntry) EntryType() EntryType { return EntryTypeSummary }
func (*SummaryEntry) isEntry()             {}

// SystemEntry is a note emitted by the assistant runtime.
type SystemEntry struct {
	BaseEntry
	Content string `json:"content"`
	Subtype string `json:"subtype,omitempty"`
	Level   string `json:"level,omitempty"`
}

func (*SystemEntry) EntryType() EntryType { return EntryTypeSystem }
func (*SystemEntry) isEntry()             {}

// FileBackup describes one tracked file inside a snapshot.
type FileBackup struct {
	BackupFileName *string `json:"backupFileName"`
	Version        int     `json:"version"`
	BackupTime     string  `json:"backupTime"`
}

// FileHistorySnapshot is the payload of a file-history-snapshot entry.
type FileHistorySnapshot struct {
	MessageID          string                `json:"messageId"`
	TrackedFileBackups map[string]FileBackup `json:"trackedFileBackups"`
	Timestamp          string                `json:"timestamp"`
}

// FileHistorySnapshotEntry records the tracked-file state at a message.
type FileHistorySnapshotEntry struct {
	MessageID        string              `json:"messageId"`
	Snapshot         FileHistorySnapshot `json:"snapshot"`
	IsSnapshotUpdate bool                `json:"isSnapshotUpdate"`
}

func (*FileHistorySnapshotEntry) EntryType() EntryType { return EntryTypeFileHistorySnapshot }
func (*FileHistorySnapshotEntry) isEntry()             {}

// QueueOperation is the kind of a queue-operation entry.
type QueueOperation string

const (
	QueueOperationEnqueue QueueOperation = "enqueue"
	QueueOperationDequeue QueueOperation = "dequeue"
)

// QueueOperationEntry marks a message being enqueued to, or taken from, the
// assistant backend queue.
type QueueOperationEntry struct {
	Operation QueueOperation `json:"operation"`
	SessionID string         `json:"sessionId"`
	Timestamp string         `json:"timestamp"`
	Content   *UserContent   `json:"content,omitempty"`
}

func (*QueueOperationEntry) EntryType() EntryType { return EntryTypeQueueOperation }
func (*QueueOperationEntry) isEntry()             {}

// Text returns the queued content as plain text. Block content is reduced to
// its text blocks joined by newlines.
func (e *QueueOperationEntry) Text() string {
	if e.Content == nil {
		return ""
	}
	if e.Content.IsString {
		return e.Content.Text
	}
	var parts []string
	for _, block := range e.Content.Blocks {
		if tb, ok := block.(*TextBlock); ok {
			parts = append(parts, tb.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// UserMessage is the message body of a user entry.
type UserMessage struct {
	Role    string      `json:"role"`
	Content UserContent `json:"content"`
}

// UserEntry is a user turn. Tool results are delivered as user turns too.
type UserEntry struct {
	BaseEntry
	Message       UserMessage     `json:"message"`
	ToolUseResult json.RawMessage `json:"toolUseResult,omitempty"`
}

func (*UserEntry) EntryType() EntryType { return EntryTypeUser }
func (*UserEntry) isEntry()             {}

// HasToolResult reports whether any content block is a tool result.
func (e *UserEntry) HasToolResult() bool {
	if e.Message.Content.IsString {
		return false
	}
	for _, block := range e.Message.Content.Blocks {
		if _, ok := block.(*ToolResultBlock); ok {
			return true
		}
	}
	return false
}

// Usage is the token accounting attached to an assistant message.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

// AssistantMessage is the message body of an assistant entry.
type AssistantMessage struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Role       string         `json:"role"`
	Content    []ContentBlock `json:"-"`
	StopReason *string        `json:"stop_reason"`
	Usage      *Usage         `json:"usage,omitempty"`
}

// UnmarshalJSON decodes the content block sequence into concrete blocks.
func (m *AssistantMessage) UnmarshalJSON(data []byte) error {
	type alias AssistantMessage
	var raw struct {
		alias
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = AssistantMessage(raw.alias)
	if len(raw.Content) == 0 || string(raw.Content) == "null" {
		return nil
	}
	var content UserContent
	if err := content.UnmarshalJSON(raw.Content); err != nil {
		return err
	}
	if content.IsString {
		m.Content = []ContentBlock{&TextBlock{Text: content.Text}}
		return nil
	}
	m.Content = content.Blocks
	return nil
}

// AssistantEntry is an assistant turn.
type AssistantEntry struct {
	BaseEntry
	Message   AssistantMessage `json:"message"`
	RequestID string           `json:"requestId,omitempty"`
}

func (*AssistantEntry) EntryType() EntryType { return EntryTypeAssistant }
func (*AssistantEntry) isEntry()             {}

// OnlyToolUseOrThinking reports whether every block is a tool use or a
// thinking block.
func (e *AssistantEntry) OnlyToolUseOrThinking() bool {
	for _, block := range e.Message.Content {
		switch block.(type) {
		case *ToolUseBlock, *ThinkingBlock:
		default:
			return false
		}
	}
	return true
}

// UnknownEntry keeps a record whose type this viewer does not recognise.
type UnknownEntry struct {
	RawType string
	Raw     json.RawMessage
}

func (e *UnknownEntry) EntryType() EntryType { return EntryType(e.RawType) }
func (*UnknownEntry) isEntry()               {}
