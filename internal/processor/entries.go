package processor

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/brads3290/ccviewer/internal/models"
)

// Index answers the lookups the conversation renderer needs: tool results
// by tool-use ID, subagent IDs, and sidechain conversations.
type Index struct {
	toolResults map[string]*models.ToolResultBlock
	agentIDs    map[string]string

	sidechain []models.BaseProvider
	byUUID    map[string]models.BaseProvider
	children  map[string][]models.BaseProvider
	byAgent   map[string][]models.BaseProvider
	position  map[string]int
}

// BuildIndex scans entries once and indexes them.
func BuildIndex(entries []models.Entry) *Index {
	idx := &Index{
		toolResults: make(map[string]*models.ToolResultBlock),
		agentIDs:    make(map[string]string),
		byUUID:      make(map[string]models.BaseProvider),
		children:    make(map[string][]models.BaseProvider),
		byAgent:     make(map[string][]models.BaseProvider),
		position:    make(map[string]int),
	}

	for _, entry := range entries {
		if user, ok := entry.(*models.UserEntry); ok {
			idx.indexToolResults(user)
		}

		bp, ok := entry.(models.BaseProvider)
		if !ok {
			continue
		}
		base := bp.Base()
		if !base.IsSidechain || base.UUID == "" {
			continue
		}
		if _, dup := idx.byUUID[base.UUID]; dup {
			continue
		}
		idx.position[base.UUID] = len(idx.sidechain)
		idx.sidechain = append(idx.sidechain, bp)
		idx.byUUID[base.UUID] = bp
		if base.AgentID != "" {
			idx.byAgent[base.AgentID] = append(idx.byAgent[base.AgentID], bp)
		}
	}

	for _, bp := range idx.sidechain {
		if parent := bp.Base().Parent(); parent != "" {
			idx.children[parent] = append(idx.children[parent], bp)
		}
	}

	return idx
}

func (idx *Index) indexToolResults(user *models.UserEntry) {
	if user.Message.Content.IsString {
		return
	}
	agentID := agentIDFromToolUseResult(user.ToolUseResult)
	for _, block := range user.Message.Content.Blocks {
		result, ok := block.(*models.ToolResultBlock)
		if !ok || result.ToolUseID == "" {
			continue
		}
		idx.toolResults[result.ToolUseID] = result
		if agentID != "" {
			idx.agentIDs[result.ToolUseID] = agentID
		}
	}
}

// toolUseResult is free-form; only an object with agentId is of interest.
func agentIDFromToolUseResult(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var payload struct {
		AgentID string `json:"agentId"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.AgentID
}

// ToolResult returns the result recorded for a tool use.
func (idx *Index) ToolResult(toolUseID string) (*models.ToolResultBlock, bool) {
	r, ok := idx.toolResults[toolUseID]
	return r, ok
}

// AgentIDForToolUse returns the subagent that served a Task tool use.
func (idx *Index) AgentIDForToolUse(toolUseID string) (string, bool) {
	id, ok := idx.agentIDs[toolUseID]
	return id, ok
}

// IsRootSidechain reports whether entry starts a sidechain: it has no
// parent, or its parent is not a known sidechain entry.
func (idx *Index) IsRootSidechain(entry models.Entry) bool {
	bp, ok := entry.(models.BaseProvider)
	if !ok || !bp.Base().IsSidechain {
		return false
	}
	parent := bp.Base().Parent()
	if parent == "" {
		return true
	}
	_, known := idx.byUUID[parent]
	return !known
}

// SidechainByPrompt finds the root sidechain entry whose user text matches
// prompt, ignoring whitespace differences.
func (idx *Index) SidechainByPrompt(prompt string) (models.Entry, bool) {
	want := normalizeText(prompt)
	if want == "" {
		return nil, false
	}
	for _, bp := range idx.sidechain {
		user, ok := bp.(*models.UserEntry)
		if !ok || !idx.IsRootSidechain(user) {
			continue
		}
		if normalizeText(userText(user)) == want {
			return user, true
		}
	}
	return nil, false
}

// Sidechains returns the sidechain conversation rooted at rootUUID, in log
// order. When the parent chain is broken and the root has an agent ID, all
// entries of that agent are returned ordered by timestamp instead.
func (idx *Index) Sidechains(rootUUID string) []models.Entry {
	root, ok := idx.byUUID[rootUUID]
	if !ok {
		return nil
	}

	seen := map[string]bool{}
	var walk func(bp models.BaseProvider)
	walk = func(bp models.BaseProvider) {
		uuid := bp.Base().UUID
		if seen[uuid] {
			return
		}
		seen[uuid] = true
		for _, child := range idx.children[uuid] {
			walk(child)
		}
	}
	walk(root)

	collected := make([]models.BaseProvider, 0, len(seen))
	for uuid := range seen {
		collected = append(collected, idx.byUUID[uuid])
	}
	sort.Slice(collected, func(i, j int) bool {
		return idx.position[collected[i].Base().UUID] < idx.position[collected[j].Base().UUID]
	})

	// Fallback for broken parent-child chains.
	if agentID := root.Base().AgentID; agentID != "" && len(collected) < len(idx.byAgent[agentID]) {
		collected = append([]models.BaseProvider(nil), idx.byAgent[agentID]...)
		sort.SliceStable(collected, func(i, j int) bool {
			return collected[i].Base().Timestamp < collected[j].Base().Timestamp
		})
	}

	return toEntries(collected)
}

// SidechainsByAgent returns every sidechain entry written by agentID, in log
// order.
func (idx *Index) SidechainsByAgent(agentID string) []models.Entry {
	return toEntries(idx.byAgent[agentID])
}

// SidechainForTask resolves the nested conversation of a Task tool use,
// preferring the recorded agent ID and falling back to prompt matching.
func (idx *Index) SidechainForTask(toolUseID, prompt string) []models.Entry {
	if agentID, ok := idx.AgentIDForToolUse(toolUseID); ok {
		if entries := idx.SidechainsByAgent(agentID); len(entries) > 0 {
			return entries
		}
	}
	root, ok := idx.SidechainByPrompt(prompt)
	if !ok {
		return nil
	}
	return idx.Sidechains(root.(models.BaseProvider).Base().UUID)
}

func toEntries(bps []models.BaseProvider) []models.Entry {
	if len(bps) == 0 {
		return nil
	}
	out := make([]models.Entry, len(bps))
	for i, bp := range bps {
		out[i] = bp
	}
	return out
}

// userText returns the string content or the concatenated text blocks.
func userText(user *models.UserEntry) string {
	if user.Message.Content.IsString {
		return user.Message.Content.Text
	}
	var parts []string
	for _, block := range user.Message.Content.Blocks {
		if tb, ok := block.(*models.TextBlock); ok {
			parts = append(parts, tb.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// normalizeText collapses all whitespace runs to a single space.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
