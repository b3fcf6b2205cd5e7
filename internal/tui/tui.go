// Package tui is the interactive terminal browser for projects, sessions
// and conversations.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/brads3290/ccviewer/internal/constants"
	"github.com/brads3290/ccviewer/internal/conversation"
	"github.com/brads3290/ccviewer/internal/models"
	"github.com/brads3290/ccviewer/internal/service"
	"github.com/brads3290/ccviewer/internal/sessionlist"
	"github.com/brads3290/ccviewer/internal/textview"
	"github.com/brads3290/ccviewer/internal/userconfig"
)

type screen int

const (
	screenProjects screen = iota
	screenSessions
	screenConversation
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))
)

// Options configures the browser.
type Options struct {
	Render   conversation.Options
	Prefs    userconfig.Config
	PageSize int
	// Statuses supplies live process badges; may be nil.
	Statuses sessionlist.StatusSource
}

// Model tracks TUI state across all navigation levels.
type Model struct {
	services *service.Services
	opts     Options

	screen screen

	projects      []models.Project
	projectCursor int

	sessions      []models.Session
	sessionTotal  int
	nextCursor    string
	hasMore       bool
	sessionCursor int

	conv     *service.Conversation
	expanded bool

	convViewport viewport.Model
	width        int
	height       int

	status string
}

// New loads the project list and returns the initial model.
func New(services *service.Services, opts Options) Model {
	if opts.PageSize < 1 {
		opts.PageSize = constants.DefaultPageSize
	}
	m := Model{services: services, opts: opts, screen: screenProjects}
	m.loadProjects()
	return m
}

// Run starts the browser on the alternate screen.
func Run(services *service.Services, opts Options) error {
	_, err := tea.NewProgram(New(services, opts), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		m.refreshConversationViewport()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenProjects:
			return m.handleProjectsKey(msg)
		case screenSessions:
			return m.handleSessionsKey(msg)
		case screenConversation:
			return m.handleConversationKey(msg)
		}
	}
	return m, nil
}

func (m Model) handleProjectsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.projectCursor = clamp(m.projectCursor-1, 0, len(m.projects)-1)
	case "down", "j":
		m.projectCursor = clamp(m.projectCursor+1, 0, len(m.projects)-1)
	case "enter":
		if len(m.projects) == 0 {
			m.status = "No projects found"
			return m, nil
		}
		if err := m.loadSessions(); err != nil {
			m.status = "Error: " + err.Error()
			return m, nil
		}
		m.sessionCursor = 0
		m.screen = screenSessions
		m.status = fmt.Sprintf("Loaded %d of %d sessions", len(m.sessions), m.sessionTotal)
	case "r":
		m.loadProjects()
	}
	return m, nil
}

func (m Model) handleSessionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.sessionCursor = clamp(m.sessionCursor-1, 0, len(m.sessions)-1)
	case "down", "j":
		if m.sessionCursor == len(m.sessions)-1 && m.hasMore {
			if err := m.loadMoreSessions(); err != nil {
				m.status = "Error: " + err.Error()
				return m, nil
			}
		}
		m.sessionCursor = clamp(m.sessionCursor+1, 0, len(m.sessions)-1)
	case "enter":
		if len(m.sessions) == 0 {
			m.status = "No session selected"
			return m, nil
		}
		if err := m.loadConversation(); err != nil {
			m.status = "Error: " + err.Error()
			return m, nil
		}
		m.screen = screenConversation
		m.refreshConversationViewport()
		m.status = fmt.Sprintf("%s messages, %s", humanize.Comma(int64(m.conv.Session.Meta.MessageCount)),
			sessionlist.FormatCost(m.conv.Session.Meta.Cost.TotalUSD))
	case "b", "backspace", "esc":
		m.screen = screenProjects
		m.sessions = nil
		m.status = "Back to projects"
	case "r":
		if err := m.loadSessions(); err != nil {
			m.status = "Error: " + err.Error()
			return m, nil
		}
		m.sessionCursor = clamp(m.sessionCursor, 0, len(m.sessions)-1)
		m.status = fmt.Sprintf("Reloaded %d of %d sessions", len(m.sessions), m.sessionTotal)
	}
	return m, nil
}

func (m Model) handleConversationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.convViewport.LineUp(1)
	case "down", "j":
		m.convViewport.LineDown(1)
	case "pgup":
		m.convViewport.HalfViewUp()
	case "pgdown", " ":
		m.convViewport.HalfViewDown()
	case "g":
		m.convViewport.GotoTop()
	case "G":
		m.convViewport.GotoBottom()
	case "e":
		m.expanded = !m.expanded
		m.refreshConversationViewport()
	case "b", "backspace", "esc":
		m.screen = screenSessions
		m.conv = nil
		m.status = "Back to sessions"
	}
	return m, nil
}

func (m *Model) loadProjects() {
	projects, err := m.services.Project.ListProjects("")
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.projects = projects
	m.projectCursor = clamp(m.projectCursor, 0, len(projects)-1)
	m.status = fmt.Sprintf("Loaded %d projects", len(projects))
}

func (m *Model) listOptions(cursor string) service.ListOptions {
	return service.ListOptions{
		Cursor:            cursor,
		Limit:             m.opts.PageSize,
		HideNoUserMessage: m.opts.Prefs.HideNoUserMessageSession,
		UnifySameTitle:    m.opts.Prefs.UnifySameTitleSession,
	}
}

func (m *Model) loadSessions() error {
	project, ok := m.currentProject()
	if !ok {
		return fmt.Errorf("no project selected")
	}
	page, err := m.services.Session.ListSessions(project.ID, m.listOptions(""))
	if err != nil {
		return err
	}
	m.sessions = page.Sessions
	m.sessionTotal = page.Total
	m.hasMore = page.HasNextPage
	m.nextCursor = page.NextCursor
	return nil
}

func (m *Model) loadMoreSessions() error {
	project, ok := m.currentProject()
	if !ok {
		return nil
	}
	page, err := m.services.Session.ListSessions(project.ID, m.listOptions(m.nextCursor))
	if err != nil {
		return err
	}
	m.sessions = append(m.sessions, page.Sessions...)
	m.hasMore = page.HasNextPage
	m.nextCursor = page.NextCursor
	return nil
}

func (m *Model) loadConversation() error {
	project, ok := m.currentProject()
	if !ok {
		return fmt.Errorf("no project selected")
	}
	render := m.opts.Render
	conv, err := m.services.Session.GetConversation(project.ID, m.sessions[m.sessionCursor].ID, &render)
	if err != nil {
		return err
	}
	m.conv = conv
	m.expanded = false
	return nil
}

func (m Model) currentProject() (models.Project, bool) {
	if len(m.projects) == 0 || m.projectCursor < 0 || m.projectCursor >= len(m.projects) {
		return models.Project{}, false
	}
	return m.projects[m.projectCursor], true
}

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Initializing ccviewer..."
	}
	return m.renderHeader() + "\n" + m.renderBody() + "\n" + helpStyle.Render(m.status)
}

func (m Model) renderHeader() string {
	title := "ccviewer"
	help := "q: quit"
	switch m.screen {
	case screenProjects:
		title += " | Projects"
		help = "up/down: move | enter: open sessions | r: reload | q: quit"
	case screenSessions:
		if p, ok := m.currentProject(); ok {
			title += " | " + p.Name
		}
		help = "up/down: move | enter: open conversation | b: back | r: reload | q: quit"
	case screenConversation:
		if m.conv != nil {
			title += " | " + truncate(m.conv.Title, max(10, m.width-20))
		}
		help = "j/k: scroll | pgup/pgdown | g/G: top/bottom | e: expand details | b: back | q: quit"
	}
	return titleStyle.Render(title) + "\n" + helpStyle.Render(help)
}

func (m Model) renderBody() string {
	switch m.screen {
	case screenProjects:
		return m.renderProjects()
	case screenSessions:
		return m.renderSessions()
	default:
		if m.convViewport.Width <= 0 || m.convViewport.Height <= 0 {
			return "Resizing conversation viewport..."
		}
		return m.convViewport.View()
	}
}

func (m Model) renderProjects() string {
	if len(m.projects) == 0 {
		return "No projects found"
	}
	visible := max(1, m.height-4)
	offset := listOffset(m.projectCursor, len(m.projects), visible)

	lines := make([]string, 0, visible)
	for idx := offset; idx < min(len(m.projects), offset+visible); idx++ {
		p := m.projects[idx]
		updated := ""
		if p.LastModifiedAt != nil {
			updated = humanize.Time(*p.LastModifiedAt)
		}
		line := fmt.Sprintf("%s  %s sessions  %s", p.Name, humanize.Comma(int64(p.SessionCount)), updated)
		if idx == m.projectCursor {
			lines = append(lines, selectedStyle.Render("> "+line))
		} else {
			lines = append(lines, "  "+line)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSessions() string {
	if len(m.sessions) == 0 {
		return "No sessions found for this project"
	}
	// Keep load order so the cursor stays stable; Present only supplies
	// the display fields.
	view := sessionlist.Present(m.sessions, m.opts.Statuses, sessionlist.Options{
		Mode:     sessionlist.ViewList,
		Locale:   m.opts.Render.Locale,
		Location: m.opts.Render.Location,
	}, sessionlist.Pagination{})
	byID := make(map[string]sessionlist.Item, len(view.Items))
	for _, item := range view.Items {
		byID[item.ID] = item
	}

	visible := max(1, m.height-4)
	offset := listOffset(m.sessionCursor, len(m.sessions), visible)
	width := max(20, m.width-40)

	lines := make([]string, 0, visible)
	for idx := offset; idx < min(len(m.sessions), offset+visible); idx++ {
		item := byID[m.sessions[idx].ID]
		badge := " "
		if item.Running() {
			badge = "●"
		} else if item.Paused() {
			badge = "◐"
		}
		line := fmt.Sprintf("%s %s  %s msgs  %s  %s", badge, truncate(item.Title, width),
			humanize.Comma(int64(item.MessageCount)), item.Cost, item.LastModified)
		if idx == m.sessionCursor {
			lines = append(lines, selectedStyle.Render("> "+line))
		} else {
			lines = append(lines, "  "+line)
		}
	}
	if m.hasMore {
		lines = append(lines, helpStyle.Render(fmt.Sprintf("  showing %d of %d, scroll down for more", len(m.sessions), m.sessionTotal)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) resizeViewport() {
	width := max(20, m.width-2)
	height := max(3, m.height-4)
	if m.convViewport.Width == 0 {
		m.convViewport = viewport.New(width, height)
		return
	}
	m.convViewport.Width = width
	m.convViewport.Height = height
}

func (m *Model) refreshConversationViewport() {
	if m.convViewport.Width <= 0 || m.convViewport.Height <= 0 || m.conv == nil {
		return
	}
	if len(m.conv.Items) == 0 {
		m.convViewport.SetContent("No messages in this session")
		m.convViewport.GotoTop()
		return
	}
	m.convViewport.SetContent(textview.String(m.conv.Items, textview.Options{
		Width:  m.convViewport.Width,
		Color:  true,
		Expand: m.expanded,
	}))
	m.convViewport.GotoTop()
}

func listOffset(cursor, total, visible int) int {
	if total <= visible {
		return 0
	}
	offset := cursor - visible/2
	return clamp(offset, 0, total-visible)
}

func truncate(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= width {
		return text
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

func clamp(value, low, high int) int {
	if high < low {
		return low
	}
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

var _ tea.Model = Model{}
