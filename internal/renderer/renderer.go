// Package renderer renders conversations and the browser pages as HTML.
package renderer

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/brads3290/ccviewer/internal/conversation"
	"github.com/brads3290/ccviewer/internal/datefmt"
	"github.com/brads3290/ccviewer/internal/models"
	"github.com/brads3290/ccviewer/internal/sessionlist"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"cost":     sessionlist.FormatCost,
	"comma":    func(n int) string { return humanize.Comma(int64(n)) },
	"bigComma": humanize.Comma,
	"lower":    strings.ToLower,
	"safeURL":  func(s string) template.URL { return template.URL(s) },
	"add":      func(a, b int) int { return a + b },
}).ParseFS(templateFS, "templates/*.html"))

// Document is a standalone rendered session.
type Document struct {
	Title       string
	SessionID   string
	ProjectName string
	ProjectPath string
	Locale      datefmt.Locale
	Items       []conversation.Item
	Meta        models.SessionMeta
	GeneratedAt string
}

// ProjectCard is one project on the projects page.
type ProjectCard struct {
	ID           string
	Name         string
	Path         string
	SessionCount int
	LastModified string
}

// ProjectsPage is the project index.
type ProjectsPage struct {
	Mode     sessionlist.ViewMode
	Projects []ProjectCard
}

// ProjectPage is a project's session list plus the selected conversation.
type ProjectPage struct {
	ProjectID    string
	ProjectName  string
	ProjectPath  string
	Sessions     sessionlist.View
	LoadMoreHref string
	Conversation *Document
}

// Render writes a standalone session page.
func Render(w io.Writer, doc Document) error {
	if doc.GeneratedAt == "" {
		doc.GeneratedAt = datefmt.FormatTime(time.Now(), datefmt.Options{Locale: doc.Locale, Target: datefmt.TargetTime})
	}
	if err := templates.ExecuteTemplate(w, "session.html", doc); err != nil {
		return fmt.Errorf("render session: %w", err)
	}
	return nil
}

// RenderProjects writes the project index page.
func RenderProjects(w io.Writer, page ProjectsPage) error {
	if err := templates.ExecuteTemplate(w, "projects.html", page); err != nil {
		return fmt.Errorf("render projects: %w", err)
	}
	return nil
}

// RenderProject writes a project page.
func RenderProject(w io.Writer, page ProjectPage) error {
	if err := templates.ExecuteTemplate(w, "project.html", page); err != nil {
		return fmt.Errorf("render project: %w", err)
	}
	return nil
}

// GenerateHTML writes doc to outputPath.
func GenerateHTML(doc Document, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := Render(file, doc); err != nil {
		return err
	}
	return file.Close()
}
