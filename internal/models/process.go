package models

// ProcessStatus is the live state of a session's assistant process.
type ProcessStatus string

const (
	ProcessRunning ProcessStatus = "running"
	ProcessPaused  ProcessStatus = "paused"
)

// Valid reports whether s is a known status.
func (s ProcessStatus) Valid() bool {
	return s == ProcessRunning || s == ProcessPaused
}

// SessionProcess associates a session with a live process.
type SessionProcess struct {
	SessionID string        `json:"sessionId"`
	Status    ProcessStatus `json:"status"`
}
