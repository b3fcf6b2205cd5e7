// Package conversation turns parsed log entries into a medium-independent
// view model that the HTML, terminal and API front ends render.
package conversation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brads3290/ccviewer/internal/constants"
	"github.com/brads3290/ccviewer/internal/datefmt"
	"github.com/brads3290/ccviewer/internal/models"
	"github.com/brads3290/ccviewer/internal/processor"
	"github.com/brads3290/ccviewer/internal/textnorm"
	"github.com/brads3290/ccviewer/internal/tooldisplay"
)

// DefaultMaxDepth bounds how deep nested subagent conversations are rendered.
const DefaultMaxDepth = 3

// Options controls rendering.
type Options struct {
	Locale   datefmt.Locale
	Location *time.Location
	MaxDepth int
}

// Renderer dispatches entries to their visual blocks.
type Renderer struct {
	index *processor.Index
	opts  Options
	depth int
}

// New returns a renderer backed by index.
func New(index *processor.Index, opts Options) *Renderer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Renderer{index: index, opts: opts}
}

// RenderConversation indexes entries and renders the main conversation.
func RenderConversation(entries []models.Entry, opts Options) []Item {
	return New(processor.BuildIndex(entries), opts).Render(entries)
}

// Render renders the main conversation. Sidechain entries are skipped since
// they appear nested under their Task tool use. Empty items are dropped and
// a date divider precedes each new calendar day.
func (r *Renderer) Render(entries []models.Entry) []Item {
	var items []Item
	for _, entry := range entries {
		if bp, ok := entry.(models.BaseProvider); ok && bp.Base().IsSidechain {
			continue
		}
		item, ok := r.RenderEntry(entry)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return r.withDateDividers(items)
}

func (r *Renderer) withDateDividers(items []Item) []Item {
	out := make([]Item, 0, len(items))
	last := ""
	for _, item := range items {
		if datefmt.DateFromTimestamp(item.Timestamp) != "" && (last == "" || !datefmt.IsSameDay(last, item.Timestamp)) {
			out = append(out, Item{
				Type:      ItemDateDivider,
				Timestamp: item.Timestamp,
				Label:     r.format(item.Timestamp, datefmt.TargetFull),
			})
			last = item.Timestamp
		}
		out = append(out, item)
	}
	return out
}

func (r *Renderer) renderNested(entries []models.Entry) []Item {
	nested := &Renderer{index: r.index, opts: r.opts, depth: r.depth + 1}
	var items []Item
	for _, entry := range entries {
		if item, ok := nested.RenderEntry(entry); ok {
			items = append(items, item)
		}
	}
	return items
}

func (r *Renderer) format(ts string, target datefmt.Target) string {
	return datefmt.FormatLocaleDate(ts, datefmt.Options{Locale: r.opts.Locale, Target: target, Location: r.opts.Location})
}

func (r *Renderer) header(sender Sender, ts string) *Header {
	name := "System"
	switch sender {
	case SenderUser:
		name = "You"
	case SenderAssistant:
		name = constants.AssistantName
	}
	return &Header{Sender: sender, Name: name, Time: r.format(ts, datefmt.TargetTimeOnly)}
}

// RenderEntry renders one entry. It reports false when the entry produces
// nothing visible.
func (r *Renderer) RenderEntry(entry models.Entry) (Item, bool) {
	var item Item
	switch e := entry.(type) {
	case *models.SummaryEntry:
		item = Item{
			Type:   ItemType(models.EntryTypeSummary),
			Blocks: []Block{{Kind: BlockSummary, Text: e.Summary}},
		}
	case *models.SystemEntry:
		item = Item{
			ID:     e.UUID,
			Type:   ItemType(models.EntryTypeSystem),
			Header: r.header(SenderSystem, e.Timestamp),
			Blocks: []Block{{Kind: BlockSystem, Text: e.Content, Level: e.Level}},
		}
	case *models.FileHistorySnapshotEntry:
		item = Item{
			ID:     e.MessageID,
			Type:   ItemType(models.EntryTypeFileHistorySnapshot),
			Blocks: []Block{{Kind: BlockSnapshot, Snapshot: r.snapshot(e)}},
		}
	case *models.QueueOperationEntry:
		item = Item{
			Type:   ItemType(models.EntryTypeQueueOperation),
			Blocks: []Block{{Kind: BlockQueue, Queue: r.queueOperation(e)}},
		}
	case *models.UserEntry:
		item = r.userItem(e)
	case *models.AssistantEntry:
		item = r.assistantItem(e)
	default:
		return Item{}, false
	}
	if ts, ok := datefmt.ConversationTimestamp(entry); ok {
		item.Timestamp = ts
	}
	return item, len(item.Blocks) > 0
}

func (r *Renderer) snapshot(e *models.FileHistorySnapshotEntry) *Snapshot {
	snap := &Snapshot{
		MessageID: e.Snapshot.MessageID,
		Time:      r.format(e.Snapshot.Timestamp, datefmt.TargetTime),
		IsUpdate:  e.IsSnapshotUpdate,
	}
	if snap.MessageID == "" {
		snap.MessageID = e.MessageID
	}
	for path, backup := range e.Snapshot.TrackedFileBackups {
		file := SnapshotFile{Path: path, Version: backup.Version}
		if backup.BackupFileName != nil {
			file.BackupFileName = *backup.BackupFileName
		}
		snap.Files = append(snap.Files, file)
	}
	sort.Slice(snap.Files, func(i, j int) bool { return snap.Files[i].Path < snap.Files[j].Path })
	return snap
}

func (r *Renderer) queueOperation(e *models.QueueOperationEntry) *QueueOperation {
	op := &QueueOperation{
		Operation: string(e.Operation),
		SessionID: e.SessionID,
		Time:      r.format(e.Timestamp, datefmt.TargetTime),
	}
	switch e.Operation {
	case models.QueueOperationEnqueue:
		op.Title = "Queue Operation: Enqueue"
		op.Content = e.Text()
	case models.QueueOperationDequeue:
		op.Title = "Queue Operation: Dequeue"
	default:
		op.Title = "Queue Operation: " + string(e.Operation)
	}
	return op
}

func (r *Renderer) userItem(e *models.UserEntry) Item {
	item := Item{
		ID:        e.UUID,
		Type:      ItemType(models.EntryTypeUser),
		Timestamp: e.Timestamp,
		IsMeta:    e.IsMeta,
	}
	if !e.IsMeta && !e.HasToolResult() {
		item.Header = r.header(SenderUser, e.Timestamp)
	}

	content := e.Message.Content
	if content.IsString {
		item.Blocks = UserTextBlocks(content.Text)
		return item
	}
	for _, block := range content.Blocks {
		switch b := block.(type) {
		case *models.TextBlock:
			item.Blocks = append(item.Blocks, UserTextBlocks(b.Text)...)
		case *models.ImageBlock:
			item.Blocks = append(item.Blocks, Block{Kind: BlockImage, Image: &Image{MediaType: b.Source.MediaType, DataURI: b.Source.DataURI()}})
		case *models.ToolResultBlock:
			// Shown under the originating tool use.
		}
	}
	return item
}

// UserTextBlocks renders user text: extracted context blocks first, then a
// command, local command or markdown block. Text consisting only of context
// tags renders the context blocks alone.
func UserTextBlocks(text string) []Block {
	res := textnorm.ExtractSystemContext(text)

	var blocks []Block
	for i := range res.ContextBlocks {
		cb := res.ContextBlocks[i]
		blocks = append(blocks, Block{Kind: BlockContext, Context: &cb, Label: cb.Type.Label(), Collapsed: true})
	}

	source := res.MainContent
	if source == "" {
		source = text
	}
	parsed := textnorm.ParseUserMessage(source)

	switch parsed.Kind {
	case models.UserMessageCommand:
		return append(blocks, Block{Kind: BlockCommand, Command: &parsed})
	case models.UserMessageLocalCommand:
		return append(blocks, Block{Kind: BlockLocalCommand, Text: parsed.Stdout, Command: &parsed})
	}

	if res.MainContent == "" {
		return blocks
	}
	return append(blocks, Block{Kind: BlockMarkdown, Text: parsed.Content})
}

func (r *Renderer) assistantItem(e *models.AssistantEntry) Item {
	item := Item{
		ID:        e.UUID,
		Type:      ItemType(models.EntryTypeAssistant),
		Timestamp: e.Timestamp,
	}
	if !e.OnlyToolUseOrThinking() {
		item.Header = r.header(SenderAssistant, e.Timestamp)
	}

	for _, block := range e.Message.Content {
		switch b := block.(type) {
		case *models.TextBlock:
			if strings.TrimSpace(b.Text) != "" {
				item.Blocks = append(item.Blocks, Block{Kind: BlockMarkdown, Text: b.Text})
			}
		case *models.ThinkingBlock:
			item.Blocks = append(item.Blocks, Block{Kind: BlockThinking, Text: b.Thinking, Collapsed: true})
		case *models.ToolUseBlock:
			item.Blocks = append(item.Blocks, Block{Kind: BlockToolUse, Tool: r.toolUse(b), Collapsed: true})
		}
	}
	return item
}

func (r *Renderer) toolUse(b *models.ToolUseBlock) *ToolUse {
	display := tooldisplay.Resolve(b.Name, b.Input)
	tool := &ToolUse{
		ID:      b.ID,
		Name:    b.Name,
		Title:   display.Title,
		Display: display,
		Input:   prettyJSON(b.Input),
	}
	if tool.Title == "" {
		tool.Title = b.Name
	}

	if r.index == nil {
		return tool
	}
	if result, ok := r.index.ToolResult(b.ID); ok {
		tool.Result = renderToolResult(result)
	}

	if b.Name != constants.TaskToolName {
		return tool
	}
	var task struct {
		Prompt *string `json:"prompt"`
	}
	if err := json.Unmarshal(b.Input, &task); err != nil || task.Prompt == nil {
		return tool
	}
	tool.SidechainPrompt = *task.Prompt
	if agentID, ok := r.index.AgentIDForToolUse(b.ID); ok {
		tool.AgentID = agentID
	}
	if r.depth < r.opts.MaxDepth {
		tool.Sidechain = r.renderNested(r.index.SidechainForTask(b.ID, *task.Prompt))
	}
	return tool
}

// renderToolResult panics on an item type the decoder should have rejected.
func renderToolResult(result *models.ToolResultBlock) *ToolResult {
	out := &ToolResult{IsError: result.IsError}
	if result.Content.IsString {
		out.Parts = []ResultPart{{Kind: ResultText, Text: result.Content.Text}}
		return out
	}
	for _, item := range result.Content.Items {
		switch it := item.(type) {
		case *models.ToolResultText:
			out.Parts = append(out.Parts, ResultPart{Kind: ResultText, Text: it.Text})
		case *models.ToolResultImage:
			out.Parts = append(out.Parts, ResultPart{Kind: ResultImage, Image: &Image{MediaType: it.Source.MediaType, DataURI: it.Source.DataURI()}})
		default:
			panic(fmt.Sprintf("conversation: unexpected tool result item %T", item))
		}
	}
	return out
}

func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
