// Package process tracks which sessions currently have a live assistant
// process. The viewer does not start processes itself; external tooling
// reports them through the API.
package process

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/brads3290/ccviewer/internal/models"
)

// ErrInvalidStatus is returned for statuses other than running or paused.
var ErrInvalidStatus = errors.New("invalid process status")

// Tracker is an in-memory, concurrency-safe process registry.
type Tracker struct {
	mu        sync.RWMutex
	processes map[string]models.ProcessStatus
}

func NewTracker() *Tracker {
	return &Tracker{processes: make(map[string]models.ProcessStatus)}
}

// Set records the status of a session's process.
func (t *Tracker) Set(sessionID string, status models.ProcessStatus) error {
	if sessionID == "" {
		return errors.New("session id is required")
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processes[sessionID] = status
	return nil
}

// Remove forgets a session's process. It reports whether one was tracked.
func (t *Tracker) Remove(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.processes[sessionID]
	delete(t.processes, sessionID)
	return ok
}

// Status returns the tracked status of a session.
func (t *Tracker) Status(sessionID string) (models.ProcessStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.processes[sessionID]
	return s, ok
}

// List returns every tracked process ordered by session ID.
func (t *Tracker) List() []models.SessionProcess {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.SessionProcess, 0, len(t.processes))
	for id, status := range t.processes {
		out = append(out, models.SessionProcess{SessionID: id, Status: status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}
