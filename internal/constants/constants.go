// Package constants holds values shared across the viewer packages.
package constants

// Version strings.
const (
	DefaultVersion           = ""
	DevelopmentVersionString = "(devel)"
	DevVersionString         = "dev"
	UnknownVersionString     = "unknown"
)

// Temporary HTML output naming.
const (
	TempFileTimestampFormat = "20060102-150405"
	TempFileNameFormat      = "ccviewer-%s-%s.html"
)

// DefaultScannerBufferSize is the initial buffer for JSONL line scanning.
const DefaultScannerBufferSize = 1024 * 1024

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Tool names with dedicated handling.
const (
	TaskToolName      = "Task"
	ReadToolName      = "Read"
	WriteToolName     = "Write"
	EditToolName      = "Edit"
	BashToolName      = "Bash"
	GrepToolName      = "Grep"
	GlobToolName      = "Glob"
	WebFetchToolName  = "WebFetch"
	WebSearchToolName = "WebSearch"
	TodoWriteToolName = "TodoWrite"
)

// Inline tags found in user message text.
const (
	TagIDEOpenedFile       = "ide_opened_file"
	TagIDEOpenedFileHyphen = "ide-opened-file"
	TagSystemReminder      = "system-reminder"
	TagIDESelection        = "ide_selection"
	TagCommandName         = "command-name"
	TagCommandArgs         = "command-args"
	TagCommandMessage      = "command-message"
	TagCommandStdout       = "local-command-stdout"
)

// AssistantName is the display name used in assistant message headers.
const AssistantName = "Claude Code"

// Claude directory layout.
const (
	ProjectsDirName  = "projects"
	SubagentsDirName = "subagents"
	SessionFileExt   = ".jsonl"
)

// DefaultPageSize is the number of sessions returned per page.
const DefaultPageSize = 20
