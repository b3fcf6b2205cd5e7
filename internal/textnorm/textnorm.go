// Package textnorm extracts IDE and system context tags from user message
// text and classifies what remains.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/brads3290/ccviewer/internal/constants"
	"github.com/brads3290/ccviewer/internal/models"
)

// ContextType is the semantic kind of an extracted context block.
type ContextType string

const (
	ContextIDEOpenedFile  ContextType = "ide_opened_file"
	ContextSystemReminder ContextType = "system_reminder"
	ContextIDESelection   ContextType = "ide_selection"
)

// Label is the heading shown for a context block.
func (t ContextType) Label() string {
	switch t {
	case ContextIDEOpenedFile:
		return "IDE Context: File Opened"
	case ContextSystemReminder:
		return "System Context"
	case ContextIDESelection:
		return "IDE Context: Selection"
	}
	return string(t)
}

// ContextBlock is one tagged region lifted out of message text.
type ContextBlock struct {
	Type    ContextType `json:"type"`
	Content string      `json:"content"`
}

// Result is the outcome of ExtractSystemContext.
type Result struct {
	MainContent   string         `json:"mainContent"`
	ContextBlocks []ContextBlock `json:"contextBlocks"`
}

type tagPattern struct {
	kind ContextType
	re   *regexp.Regexp
}

func tagRegexp(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(tag) + `>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
}

// Each kind is scanned as a full pass, in this order.
var contextTags = []tagPattern{
	{ContextIDEOpenedFile, tagRegexp(constants.TagIDEOpenedFile)},
	{ContextIDEOpenedFile, tagRegexp(constants.TagIDEOpenedFileHyphen)},
	{ContextSystemReminder, tagRegexp(constants.TagSystemReminder)},
	{ContextIDESelection, tagRegexp(constants.TagIDESelection)},
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// ExtractSystemContext lifts every context tag out of text. Blocks are
// ordered by tag kind, then by position. Unterminated tags stay in the text.
func ExtractSystemContext(text string) Result {
	var blocks []ContextBlock
	for _, tag := range contextTags {
		for _, m := range tag.re.FindAllStringSubmatch(text, -1) {
			blocks = append(blocks, ContextBlock{Type: tag.kind, Content: strings.TrimSpace(m[1])})
		}
	}
	return Result{MainContent: StripSystemContextTags(text), ContextBlocks: blocks}
}

// StripSystemContextTags removes every context tag and tidies the leftover
// whitespace.
func StripSystemContextTags(text string) string {
	for _, tag := range contextTags {
		text = tag.re.ReplaceAllString(text, "")
	}
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

var (
	commandNameRe    = tagRegexp(constants.TagCommandName)
	commandArgsRe    = tagRegexp(constants.TagCommandArgs)
	commandMessageRe = tagRegexp(constants.TagCommandMessage)
	commandStdoutRe  = tagRegexp(constants.TagCommandStdout)
)

func firstMatch(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ParseUserMessage recognises slash-command invocations and local command
// output. Anything else is plain text.
func ParseUserMessage(text string) models.ParsedUserMessage {
	if name, ok := firstMatch(commandNameRe, text); ok {
		args, _ := firstMatch(commandArgsRe, text)
		message, _ := firstMatch(commandMessageRe, text)
		return models.ParsedUserMessage{
			Kind:           models.UserMessageCommand,
			CommandName:    name,
			CommandArgs:    args,
			CommandMessage: message,
		}
	}
	if stdout, ok := firstMatch(commandStdoutRe, text); ok {
		return models.ParsedUserMessage{Kind: models.UserMessageLocalCommand, Stdout: stdout}
	}
	return models.ParsedUserMessage{Kind: models.UserMessageText, Content: text}
}

// FirstUserText returns the title-worthy text of a user entry: the string
// content, or the first block if it is text, with context tags removed.
// It reports false for non-user entries and tag-only messages.
func FirstUserText(entry models.Entry) (string, bool) {
	user, ok := entry.(*models.UserEntry)
	if !ok {
		return "", false
	}

	var raw string
	content := user.Message.Content
	if content.IsString {
		raw = content.Text
	} else {
		if len(content.Blocks) == 0 {
			return "", false
		}
		tb, ok := content.Blocks[0].(*models.TextBlock)
		if !ok {
			return "", false
		}
		raw = tb.Text
	}

	cleaned := StripSystemContextTags(raw)
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}

// Title renders a parsed first message as a one-line session title.
func Title(msg models.ParsedUserMessage) string {
	switch msg.Kind {
	case models.UserMessageCommand:
		title := msg.CommandName
		if msg.CommandArgs != "" {
			title += " " + msg.CommandArgs
		}
		return title
	case models.UserMessageLocalCommand:
		return msg.Stdout
	default:
		return msg.Content
	}
}
