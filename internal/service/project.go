package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/brads3290/ccviewer/internal/constants"
	"github.com/brads3290/ccviewer/internal/models"
)

var (
	// ErrProjectNotFound is returned when no project matches a lookup.
	ErrProjectNotFound = errors.New("project not found")
	// ErrSessionNotFound is returned when no session matches a lookup.
	ErrSessionNotFound = errors.New("session not found")
)

// sessionFilePattern matches main session files (UUID.jsonl), not agent-*.jsonl.
var sessionFilePattern = regexp.MustCompile(`^([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})\.jsonl$`)

// ProjectService handles project discovery.
type ProjectService struct {
	claudeDir string
}

// NewProjectService creates a new ProjectService.
func NewProjectService(claudeDir string) *ProjectService {
	if claudeDir == "" {
		home, _ := os.UserHomeDir()
		claudeDir = filepath.Join(home, ".claude")
	}
	return &ProjectService{claudeDir: claudeDir}
}

// ListProjects returns all projects with metadata.
func (s *ProjectService) ListProjects(sortBy string) ([]models.Project, error) {
	projectsDir := filepath.Join(s.claudeDir, constants.ProjectsDirName)
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return nil, fmt.Errorf("read projects directory: %w", err)
	}

	var projects []models.Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		project, err := s.loadProject(entry.Name())
		if err != nil {
			continue
		}
		projects = append(projects, *project)
	}

	sortProjects(projects, sortBy)

	return projects, nil
}

func (s *ProjectService) loadProject(id string) (*models.Project, error) {
	dir := s.GetProjectDir(id)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	decodedPath := decodeProjectPath(id)
	count, latest := scanSessionFiles(dir)
	if latest == nil {
		mod := info.ModTime()
		latest = &mod
	}

	return &models.Project{
		ID:             id,
		Name:           filepath.Base(decodedPath),
		Path:           decodedPath,
		SessionCount:   count,
		LastModifiedAt: latest,
	}, nil
}

// GetProject returns the project with the given ID (its encoded directory
// name).
func (s *ProjectService) GetProject(id string) (*models.Project, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	project, err := s.loadProject(id)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}
		return nil, err
	}
	return project, nil
}

// FindProjectByName finds a project by ID, name, or partial path match.
func (s *ProjectService) FindProjectByName(name string) (*models.Project, error) {
	projects, err := s.ListProjects("")
	if err != nil {
		return nil, err
	}

	for _, p := range projects {
		if p.ID == name || p.ID == encodeProjectPath(name) {
			return &p, nil
		}
	}

	// Exact name match next
	for _, p := range projects {
		if p.Name == name {
			return &p, nil
		}
	}

	// Partial path match
	nameLower := strings.ToLower(name)
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Path), nameLower) ||
			strings.Contains(strings.ToLower(p.Name), nameLower) {
			return &p, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
}

// GetProjectDir returns the project directory path.
func (s *ProjectService) GetProjectDir(id string) string {
	return filepath.Join(s.claudeDir, constants.ProjectsDirName, id)
}

// GetClaudeDir returns the Claude directory path.
func (s *ProjectService) GetClaudeDir() string {
	return s.claudeDir
}

// decodeProjectPath converts encoded path to actual path.
// "-Users-name-Projects-foo" -> "/Users/name/Projects/foo"
func decodeProjectPath(encoded string) string {
	if encoded == "" {
		return ""
	}

	// Leading dash is the root
	encoded = strings.TrimPrefix(encoded, "-")

	// Dashes inside directory names are indistinguishable from separators.
	return "/" + strings.ReplaceAll(encoded, "-", "/")
}

// encodeProjectPath converts actual path to encoded path.
// "/Users/name/Projects/foo" -> "-Users-name-Projects-foo"
func encodeProjectPath(path string) string {
	path = strings.TrimPrefix(path, "/")
	return "-" + strings.NewReplacer("/", "-", ".", "-", "_", "-").Replace(path)
}

// scanSessionFiles counts main session files and finds the newest mtime.
func scanSessionFiles(projectDir string) (int, *time.Time) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return 0, nil
	}

	count := 0
	var latest *time.Time
	for _, entry := range entries {
		if entry.IsDir() || !sessionFilePattern.MatchString(entry.Name()) {
			continue
		}
		count++
		if info, err := entry.Info(); err == nil {
			mod := info.ModTime()
			if latest == nil || mod.After(*latest) {
				latest = &mod
			}
		}
	}

	return count, latest
}

func modTime(p models.Project) time.Time {
	if p.LastModifiedAt == nil {
		return time.Time{}
	}
	return *p.LastModifiedAt
}

// sortProjects sorts projects by the specified field.
func sortProjects(projects []models.Project, sortBy string) {
	switch sortBy {
	case "name":
		sort.SliceStable(projects, func(i, j int) bool {
			return projects[i].Name < projects[j].Name
		})
	case "session_count":
		sort.SliceStable(projects, func(i, j int) bool {
			return projects[i].SessionCount > projects[j].SessionCount
		})
	default: // "last_modified" or empty
		sort.SliceStable(projects, func(i, j int) bool {
			return modTime(projects[i]).After(modTime(projects[j]))
		})
	}
}
