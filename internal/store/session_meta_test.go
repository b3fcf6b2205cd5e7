package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brads3290/ccviewer/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestSessionMetaStore_GetPut(t *testing.T) {
	s := NewSessionMetaStore(setupTestDB(t))

	stamp := FileStamp{ModTime: time.Unix(1700000000, 123), Size: 42}
	meta := models.SessionMeta{
		FirstUserMessage: &models.ParsedUserMessage{Kind: models.UserMessageText, Content: "hello"},
		MessageCount:     3,
		Cost:             models.Cost{TotalUSD: 0.5},
	}

	_, ok, err := s.Get("/p/a.jsonl", stamp)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put("/p/a.jsonl", "proj", "a", stamp, meta))

	got, ok, err := s.Get("/p/a.jsonl", stamp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, meta, *got)

	t.Run("stale stamp misses", func(t *testing.T) {
		_, ok, err := s.Get("/p/a.jsonl", FileStamp{ModTime: stamp.ModTime, Size: 43})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("put replaces", func(t *testing.T) {
		newer := FileStamp{ModTime: stamp.ModTime.Add(time.Second), Size: 50}
		meta.MessageCount = 5
		require.NoError(t, s.Put("/p/a.jsonl", "proj", "a", newer, meta))

		got, ok, err := s.Get("/p/a.jsonl", newer)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 5, got.MessageCount)

		n, err := s.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}
