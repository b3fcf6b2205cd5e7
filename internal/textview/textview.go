// Package textview renders conversation items as plain terminal text.
package textview

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"github.com/brads3290/ccviewer/internal/conversation"
)

const (
	defaultWidth     = 80
	minWidth         = 20
	maxToolLines     = 12
	sidechainPadding = 4
)

// Options controls rendering.
type Options struct {
	// Width wraps text; zero means defaultWidth.
	Width int
	Color bool
	// Expand shows collapsed blocks in full.
	Expand bool
}

type styles struct {
	user, assistant, system, muted, tool, errorText, divider, heading lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		user:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		system:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		tool:      lipgloss.NewStyle().Foreground(lipgloss.Color("183")),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		divider:   lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		heading:   lipgloss.NewStyle().Bold(true),
	}
}

// Render writes items to w.
func Render(w io.Writer, items []conversation.Item, opts Options) error {
	_, err := io.WriteString(w, String(items, opts))
	return err
}

// String renders items to a string.
func String(items []conversation.Item, opts Options) string {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Width < minWidth {
		opts.Width = minWidth
	}
	p := &printer{opts: opts, st: newStyles(opts.Color)}
	p.items(items)
	return p.b.String()
}

type printer struct {
	b    strings.Builder
	opts Options
	st   styles
}

func (p *printer) items(items []conversation.Item) {
	for i, item := range items {
		if i > 0 {
			p.b.WriteString("\n")
		}
		p.item(item)
	}
}

func (p *printer) item(item conversation.Item) {
	if item.Type == conversation.ItemDateDivider {
		label := " " + item.Label + " "
		pad := (p.opts.Width - lipgloss.Width(label)) / 2
		if pad < 2 {
			pad = 2
		}
		line := strings.Repeat("─", pad) + label + strings.Repeat("─", pad)
		p.b.WriteString(p.st.divider.Render(line) + "\n")
		return
	}

	if h := item.Header; h != nil {
		name := h.Name
		switch h.Sender {
		case conversation.SenderUser:
			name = p.st.user.Render(name)
		case conversation.SenderAssistant:
			name = p.st.assistant.Render(name)
		default:
			name = p.st.system.Render(name)
		}
		if h.Time != "" {
			name += " " + p.st.muted.Render(h.Time)
		}
		if item.IsMeta {
			name += " " + p.st.muted.Render("(meta)")
		}
		p.b.WriteString(name + "\n")
	}

	for _, block := range item.Blocks {
		p.block(block)
	}
}

func (p *printer) block(b conversation.Block) {
	switch b.Kind {
	case conversation.BlockMarkdown, conversation.BlockSystem:
		p.text(b.Text, 0)
	case conversation.BlockSummary:
		p.b.WriteString(p.st.heading.Render("Summary") + "\n")
		p.text(b.Text, 2)
	case conversation.BlockContext:
		p.collapsible("▸ "+b.Label, b.Context.Content)
	case conversation.BlockCommand:
		line := "$ /" + strings.TrimPrefix(b.Command.CommandName, "/")
		if b.Command.CommandArgs != "" {
			line += " " + b.Command.CommandArgs
		}
		p.b.WriteString(p.st.tool.Render(line) + "\n")
		if b.Command.CommandMessage != "" {
			p.text(b.Command.CommandMessage, 2)
		}
	case conversation.BlockLocalCommand:
		p.b.WriteString(p.st.muted.Render("local command output") + "\n")
		p.text(b.Text, 2)
	case conversation.BlockThinking:
		p.collapsible("▸ Thinking", b.Text)
	case conversation.BlockToolUse:
		p.tool(b.Tool)
	case conversation.BlockImage:
		p.b.WriteString(p.st.muted.Render("[image "+b.Image.MediaType+"]") + "\n")
	case conversation.BlockSnapshot:
		if s := b.Snapshot; s != nil {
			p.b.WriteString(p.st.muted.Render(fmt.Sprintf("File history snapshot %s (%d files)", s.Time, len(s.Files))) + "\n")
		}
	case conversation.BlockQueue:
		if q := b.Queue; q != nil {
			p.b.WriteString(p.st.heading.Render(q.Title) + " " + p.st.muted.Render(q.Time) + "\n")
			if q.Content != "" {
				p.text(q.Content, 2)
			}
		}
	}
}

func (p *printer) collapsible(label, body string) {
	p.b.WriteString(p.st.muted.Render(label) + "\n")
	if p.opts.Expand {
		p.text(body, 2)
	}
}

func (p *printer) tool(t *conversation.ToolUse) {
	if t == nil {
		return
	}
	head := "⚙ " + t.Name
	if t.Title != "" && t.Title != t.Name {
		head += ": " + t.Title
	}
	p.b.WriteString(p.st.tool.Render(head) + "\n")
	if !p.opts.Expand {
		return
	}

	p.text(t.Input, 2)
	if r := t.Result; r != nil {
		style := p.st.muted
		label := "result"
		if r.IsError {
			style = p.st.errorText
			label = "error"
		}
		p.b.WriteString(indent.String(style.Render(label), 2) + "\n")
		for _, part := range r.Parts {
			if part.Kind == conversation.ResultImage {
				p.b.WriteString(indent.String(p.st.muted.Render("[image]"), 4) + "\n")
				continue
			}
			p.text(capLines(part.Text, maxToolLines), 4)
		}
	}
	if len(t.Sidechain) > 0 {
		nested := &printer{opts: p.opts, st: p.st}
		nested.opts.Width = max(minWidth, p.opts.Width-sidechainPadding)
		nested.items(t.Sidechain)
		p.b.WriteString(indent.String(strings.TrimRight(nested.b.String(), "\n"), sidechainPadding) + "\n")
	}
}

func (p *printer) text(s string, pad int) {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return
	}
	wrapped := wordwrap.String(s, max(minWidth, p.opts.Width-pad))
	if pad > 0 {
		wrapped = indent.String(wrapped, uint(pad))
	}
	p.b.WriteString(wrapped + "\n")
}

func capLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + fmt.Sprintf("\n… %d more lines", len(lines)-n)
}

// UseColor reports whether output to out should be colored. NO_COLOR wins
// over auto detection; force flags win over both.
func UseColor(out io.Writer, force, forceNo bool) bool {
	if force {
		return true
	}
	if forceNo || os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Width returns wrap when positive, else the terminal width of out, else
// $COLUMNS, else 80.
func Width(out io.Writer, wrap int) int {
	if wrap > 0 {
		return wrap
	}
	if file, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(file.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if v, err := strconv.Atoi(cols); err == nil && v > 0 {
			return v
		}
	}
	return defaultWidth
}
