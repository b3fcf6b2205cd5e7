package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brads3290/ccviewer/internal/models"
)

// FileStamp identifies one version of a log file.
type FileStamp struct {
	ModTime time.Time
	Size    int64
}

// SessionMetaStore caches SessionMeta keyed by log file path. An entry is
// valid only while the file's modification time and size are unchanged.
type SessionMetaStore struct {
	db *DB
}

func NewSessionMetaStore(db *DB) *SessionMetaStore {
	return &SessionMetaStore{db: db}
}

// Get returns the cached meta for filePath if it matches stamp.
func (s *SessionMetaStore) Get(filePath string, stamp FileStamp) (*models.SessionMeta, bool, error) {
	var (
		mtime int64
		size  int64
		raw   string
	)
	err := s.db.QueryRow(`
		SELECT mtime_ns, size, meta FROM session_meta WHERE file_path = ?
	`, filePath).Scan(&mtime, &size, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get session meta: %w", err)
	}
	if mtime != stamp.ModTime.UnixNano() || size != stamp.Size {
		return nil, false, nil
	}

	var meta models.SessionMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, false, fmt.Errorf("decode session meta: %w", err)
	}
	return &meta, true, nil
}

// Put stores meta for filePath at stamp, replacing any previous version.
func (s *SessionMetaStore) Put(filePath, projectID, sessionID string, stamp FileStamp, meta models.SessionMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode session meta: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO session_meta (file_path, project_id, session_id, mtime_ns, size, meta, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			mtime_ns = excluded.mtime_ns,
			size = excluded.size,
			meta = excluded.meta,
			updated_at = excluded.updated_at
	`, filePath, projectID, sessionID, stamp.ModTime.UnixNano(), stamp.Size, string(raw), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("put session meta: %w", err)
	}
	return nil
}

// Count returns the number of cached entries.
func (s *SessionMetaStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM session_meta`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count session meta: %w", err)
	}
	return n, nil
}
