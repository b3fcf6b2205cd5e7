// Package tooldisplay derives short titles for collapsed tool invocations.
package tooldisplay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/brads3290/ccviewer/internal/constants"
)

// Info is the collapsed display of a tool use.
type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// input is a decoded tool input that remembers key order.
type input struct {
	keys   []string
	values map[string]json.RawMessage
}

func decodeInput(raw json.RawMessage) input {
	in := input{values: map[string]json.RawMessage{}}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return in
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return in
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return in
		}
		key, ok := tok.(string)
		if !ok {
			return in
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return in
		}
		if _, seen := in.values[key]; !seen {
			in.keys = append(in.keys, key)
		}
		in.values[key] = value
	}
	return in
}

// str returns a non-empty string field.
func (in input) str(key string) (string, bool) {
	raw, ok := in.values[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// truncate keeps at most limit runes, replacing the tail with "..." when the
// text is longer.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

type rule func(in input) (Info, bool)

func filePathRule(in input) (Info, bool) {
	path, ok := in.str("file_path")
	if !ok {
		return Info{}, false
	}
	name := path
	if i := strings.LastIndex(path, "/"); i >= 0 && i < len(path)-1 {
		name = path[i+1:]
	}
	info := Info{Title: name}
	if path != name {
		info.Description = path
	}
	return info, true
}

func bashRule(in input) (Info, bool) {
	cmd, ok := in.str("command")
	if !ok {
		return Info{}, false
	}
	title := truncate(cmd, 50)
	info := Info{Title: title}
	if title != cmd {
		info.Description = cmd
	}
	return info, true
}

func grepRule(in input) (Info, bool) {
	pattern, ok := in.str("pattern")
	if !ok {
		return Info{}, false
	}
	path, _ := in.str("path")
	return Info{Title: `"` + pattern + `"`, Description: path}, true
}

func globRule(in input) (Info, bool) {
	pattern, ok := in.str("pattern")
	if !ok {
		return Info{}, false
	}
	path, _ := in.str("path")
	return Info{Title: pattern, Description: path}, true
}

func taskRule(in input) (Info, bool) {
	if desc, ok := in.str("description"); ok {
		return Info{Title: desc}, true
	}
	if prompt, ok := in.str("prompt"); ok {
		return Info{Title: truncate(prompt, 50)}, true
	}
	return Info{}, false
}

func webFetchRule(in input) (Info, bool) {
	raw, ok := in.str("url")
	if !ok {
		return Info{}, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return Info{Title: prefix(raw, 50)}, true
	}
	path := u.EscapedPath()
	if path == "" && u.Host != "" {
		path = "/"
	}
	return Info{Title: strings.ToLower(u.Hostname()) + prefix(path, 30), Description: raw}, true
}

func webSearchRule(in input) (Info, bool) {
	query, ok := in.str("query")
	if !ok {
		return Info{}, false
	}
	return Info{Title: `"` + query + `"`}, true
}

func todoWriteRule(in input) (Info, bool) {
	raw, ok := in.values["todos"]
	if !ok {
		return Info{}, false
	}
	var todos []json.RawMessage
	if err := json.Unmarshal(raw, &todos); err != nil || todos == nil {
		return Info{}, false
	}
	return Info{Title: fmt.Sprintf("%d todo(s)", len(todos))}, true
}

var rules = map[string]rule{
	constants.ReadToolName:      filePathRule,
	constants.WriteToolName:     filePathRule,
	constants.EditToolName:      filePathRule,
	constants.BashToolName:      bashRule,
	constants.GrepToolName:      grepRule,
	constants.GlobToolName:      globRule,
	constants.TaskToolName:      taskRule,
	constants.WebFetchToolName:  webFetchRule,
	constants.WebSearchToolName: webSearchRule,
	constants.TodoWriteToolName: todoWriteRule,
}

// Resolve returns the collapsed display for a tool invocation. Tools without
// a dedicated rule, or whose rule field is missing, fall back to the input's
// description or its first parameter when that is a non-empty string. Malformed input
// yields an empty title.
func Resolve(toolName string, raw json.RawMessage) Info {
	in := decodeInput(raw)

	if r, ok := rules[toolName]; ok {
		if info, ok := r(in); ok {
			return info
		}
	}

	if desc, ok := in.str("description"); ok {
		return Info{Title: truncate(desc, 60)}
	}
	if len(in.keys) > 0 {
		if value, ok := in.str(in.keys[0]); ok {
			return Info{Title: in.keys[0] + ": " + truncate(value, 50)}
		}
	}
	return Info{}
}
