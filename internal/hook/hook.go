// Package hook decodes the PreToolUse payload a coding agent sends to its
// hooks, so claudeguard can snapshot files before a tool touches them.
//
// A payload looks like:
//
//	{
//	  "session_id": "abc123",
//	  "cwd": "/work/project",
//	  "hook_event_name": "PreToolUse",
//	  "tool_name": "Edit",
//	  "tool_input": {"file_path": "/work/project/main.go", "old_string": "...", "new_string": "..."}
//	}
package hook

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/snapshot"
)

// MaxPayloadSize bounds how much of stdin is read.
const MaxPayloadSize = 8 << 20

// ErrNoTool indicates a payload without a tool name.
var ErrNoTool = errors.New("hook payload has no tool_name")

// pathKeys are tool_input keys that name a file the tool will modify.
var pathKeys = []string{"file_path", "notebook_path", "path"}

// bulkyKeys are tool_input keys carrying file contents. The backup already
// holds the file, so they are left out of the recorded details.
var bulkyKeys = map[string]bool{
	"content":    true,
	"old_string": true,
	"new_string": true,
	"new_source": true,
	"edits":      true,
}

// Event is a decoded PreToolUse payload.
type Event struct {
	SessionID      string           `json:"session_id"`
	TranscriptPath string           `json:"transcript_path"`
	Cwd            string           `json:"cwd"`
	HookEventName  string           `json:"hook_event_name"`
	ToolName       string           `json:"tool_name"`
	ToolInput      snapshot.Details `json:"tool_input"`
}

// Parse decodes a payload from r.
func Parse(r io.Reader) (*Event, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPayloadSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading hook payload")
	}
	if len(data) > MaxPayloadSize {
		return nil, errors.Newf("hook payload exceeds %d bytes", MaxPayloadSize)
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, errors.Wrap(err, "decoding hook payload")
	}
	if strings.TrimSpace(ev.ToolName) == "" {
		return nil, ErrNoTool
	}
	return &ev, nil
}

// Operation names the operation for risk classification. Shell commands
// are included so destructive commands are recognized.
func (e *Event) Operation() string {
	if cmd := e.ToolInput.Text("command"); cmd != "" {
		return e.ToolName + ": " + cmd
	}
	return e.ToolName
}

// Files returns the paths the tool input names, in key order.
func (e *Event) Files() []string {
	var files []string
	for _, key := range pathKeys {
		raw, ok := e.ToolInput.Get(key)
		if !ok {
			continue
		}
		var p string
		if err := json.Unmarshal(raw, &p); err == nil && p != "" {
			files = append(files, p)
		}
	}
	return files
}

// Details returns the tool input without file contents, followed by the
// session id.
func (e *Event) Details() snapshot.Details {
	var d snapshot.Details
	for _, key := range e.ToolInput.Keys() {
		if bulkyKeys[key] {
			continue
		}
		raw, _ := e.ToolInput.Get(key)
		d.SetRaw(key, raw)
	}
	if e.SessionID != "" {
		d.SetString("session_id", e.SessionID)
	}
	return d
}
