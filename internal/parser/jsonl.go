package parser

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/brads3290/ccviewer/internal/constants"
	"github.com/brads3290/ccviewer/internal/models"
)

// ReadJSONLFile reads a session log and returns its entries.
// It also loads any subagent files from the {session_id}/subagents/ directory.
func ReadJSONLFile(filename string) ([]models.Entry, error) {
	entries, err := ReadSessionFile(filename)
	if err != nil {
		return nil, err
	}

	subagentEntries, err := loadSubagentFiles(filename)
	if err != nil {
		// Not fatal: the main conversation is still usable.
		slog.Debug("could not load subagent files", "file", filename, "error", err)
	} else if len(subagentEntries) > 0 {
		slog.Debug("loaded subagent entries", "file", filename, "count", len(subagentEntries))
		entries = append(entries, subagentEntries...)
	}

	return entries, nil
}

// ReadSessionFile reads a single JSONL file without looking for subagents.
// Lines that fail to decode are skipped.
func ReadSessionFile(filename string) ([]models.Entry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []models.Entry
	scanner := bufio.NewScanner(file)
	// No maximum line size: tool results can be very large.
	buf := make([]byte, 0, constants.DefaultScannerBufferSize)
	scanner.Buffer(buf, math.MaxInt)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		entry, err := ParseEntry(line)
		if err != nil {
			slog.Debug("skipping malformed line", "file", filepath.Base(filename), "line", lineNum, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ParseEntry decodes one log line into its concrete entry type. Unrecognised
// types yield an *models.UnknownEntry rather than an error.
func ParseEntry(line []byte) (models.Entry, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return nil, fmt.Errorf("decode entry type: %w", err)
	}

	var entry models.Entry
	switch models.EntryType(head.Type) {
	case models.EntryTypeSummary:
		entry = &models.SummaryEntry{}
	case models.EntryTypeSystem:
		entry = &models.SystemEntry{}
	case models.EntryTypeFileHistorySnapshot:
		entry = &models.FileHistorySnapshotEntry{}
	case models.EntryTypeQueueOperation:
		entry = &models.QueueOperationEntry{}
	case models.EntryTypeUser:
		entry = &models.UserEntry{}
	case models.EntryTypeAssistant:
		entry = &models.AssistantEntry{}
	default:
		raw := make(json.RawMessage, len(line))
		copy(raw, line)
		return &models.UnknownEntry{RawType: head.Type, Raw: raw}, nil
	}

	if err := json.Unmarshal(line, entry); err != nil {
		return nil, fmt.Errorf("decode %s entry: %w", head.Type, err)
	}
	return entry, nil
}

// SubagentsDir returns the directory holding subagent logs for a session file.
func SubagentsDir(mainSessionFile string) string {
	baseName := filepath.Base(mainSessionFile)
	sessionID := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	return filepath.Join(filepath.Dir(mainSessionFile), sessionID, constants.SubagentsDirName)
}

// loadSubagentFiles loads all agent-*.jsonl files next to a session.
// Newer Claude Code versions store sidechain logs in separate files.
func loadSubagentFiles(mainSessionFile string) ([]models.Entry, error) {
	subagentsDir := SubagentsDir(mainSessionFile)

	info, err := os.Stat(subagentsDir)
	if err != nil {
		if os.IsNotExist(err) {
			// Normal for older sessions.
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	matches, err := filepath.Glob(filepath.Join(subagentsDir, "agent-*"+constants.SessionFileExt))
	if err != nil {
		return nil, err
	}

	var allEntries []models.Entry
	for _, agentFile := range matches {
		entries, err := ReadSessionFile(agentFile)
		if err != nil {
			slog.Debug("error reading subagent file", "file", agentFile, "error", err)
			continue
		}
		allEntries = append(allEntries, entries...)
	}

	return allEntries, nil
}
