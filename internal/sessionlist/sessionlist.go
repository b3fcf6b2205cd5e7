// Package sessionlist orders sessions for display and builds the session
// sidebar view.
package sessionlist

import (
	"fmt"
	"sort"
	"time"

	"github.com/brads3290/ccviewer/internal/datefmt"
	"github.com/brads3290/ccviewer/internal/models"
	"github.com/brads3290/ccviewer/internal/textnorm"
)

// ViewMode is the persisted layout preference.
type ViewMode string

const (
	ViewCard ViewMode = "card"
	ViewList ViewMode = "list"
)

// ParseViewMode returns the mode for s, defaulting to card.
func ParseViewMode(s string) ViewMode {
	if ViewMode(s) == ViewList {
		return ViewList
	}
	return ViewCard
}

// StatusSource reports the live process status of a session.
type StatusSource interface {
	Status(sessionID string) (models.ProcessStatus, bool)
}

// StatusMap is a fixed StatusSource.
type StatusMap map[string]models.ProcessStatus

func (m StatusMap) Status(sessionID string) (models.ProcessStatus, bool) {
	s, ok := m[sessionID]
	return s, ok
}

// Priority ranks a status: running first, then paused, then everything else.
func Priority(status models.ProcessStatus) int {
	switch status {
	case models.ProcessRunning:
		return 0
	case models.ProcessPaused:
		return 1
	}
	return 2
}

func lookup(statuses StatusSource, id string) models.ProcessStatus {
	if statuses == nil {
		return ""
	}
	s, _ := statuses.Status(id)
	return s
}

func modifiedAt(s models.Session) int64 {
	if s.LastModifiedAt == nil {
		return 0
	}
	return s.LastModifiedAt.UnixMilli()
}

// Sort returns a stably sorted copy: by status priority, then most recently
// modified first. Sessions without a modification time sort as the epoch.
func Sort(sessions []models.Session, statuses StatusSource) []models.Session {
	sorted := make([]models.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi := Priority(lookup(statuses, sorted[i].ID))
		pj := Priority(lookup(statuses, sorted[j].ID))
		if pi != pj {
			return pi < pj
		}
		return modifiedAt(sorted[i]) > modifiedAt(sorted[j])
	})
	return sorted
}

// Title is the display title of a session: its first user message, or its
// ID when there is none.
func Title(s models.Session) string {
	if s.Meta.FirstUserMessage == nil {
		return s.ID
	}
	if title := textnorm.Title(*s.Meta.FirstUserMessage); title != "" {
		return title
	}
	return s.ID
}

// FormatCost renders a USD amount with two decimals.
func FormatCost(usd float64) string {
	return fmt.Sprintf("$%.2f", usd)
}

// Options controls Present.
type Options struct {
	Mode             ViewMode
	Locale           datefmt.Locale
	Location         *time.Location
	CurrentSessionID string
}

// Pagination mirrors the state of the page loader.
type Pagination struct {
	HasNextPage        bool
	IsFetchingNextPage bool
	NextCursor         string
}

// Item is one presented session.
type Item struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Status       models.ProcessStatus `json:"status,omitempty"`
	Active       bool                 `json:"active"`
	MessageCount int                  `json:"messageCount"`
	Cost         string               `json:"cost"`
	LastModified string               `json:"lastModified,omitempty"`
}

// Running reports whether the session has a running process.
func (i Item) Running() bool { return i.Status == models.ProcessRunning }

// Paused reports whether the session has a paused process.
func (i Item) Paused() bool { return i.Status == models.ProcessPaused }

// LoadMore describes the "load more" control.
type LoadMore struct {
	Visible    bool   `json:"visible"`
	Loading    bool   `json:"loading"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// View is the presented session list. Both modes share the same ordering.
type View struct {
	Mode     ViewMode `json:"mode"`
	Total    int      `json:"total"`
	Items    []Item   `json:"items"`
	LoadMore LoadMore `json:"loadMore"`
}

// Present sorts sessions and builds the view.
func Present(sessions []models.Session, statuses StatusSource, opts Options, page Pagination) View {
	mode := opts.Mode
	if mode != ViewList {
		mode = ViewCard
	}

	view := View{
		Mode:  mode,
		Total: len(sessions),
		Items: make([]Item, 0, len(sessions)),
		LoadMore: LoadMore{
			Visible:    page.HasNextPage,
			Loading:    page.IsFetchingNextPage,
			NextCursor: page.NextCursor,
		},
	}

	for _, s := range Sort(sessions, statuses) {
		item := Item{
			ID:           s.ID,
			Title:        Title(s),
			Status:       lookup(statuses, s.ID),
			Active:       s.ID == opts.CurrentSessionID,
			MessageCount: s.Meta.MessageCount,
			Cost:         FormatCost(s.Meta.Cost.TotalUSD),
		}
		if s.LastModifiedAt != nil {
			item.LastModified = datefmt.FormatTime(*s.LastModifiedAt, datefmt.Options{
				Locale:   opts.Locale,
				Target:   datefmt.TargetTime,
				Location: opts.Location,
			})
		}
		view.Items = append(view.Items, item)
	}
	return view
}
