// Package session parses the per-invocation snapshot Claude Code pipes to the
// status line on stdin.
package session

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
)

// Model identifies the model serving the session.
type Model struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// ContextWindow reports context usage at render time.
type ContextWindow struct {
	UsedPercentage    float64 `json:"used_percentage"`
	ContextWindowSize float64 `json:"context_window_size"`
	TotalInputTokens  float64 `json:"total_input_tokens"`
	TotalOutputTokens float64 `json:"total_output_tokens"`
}

// Cost carries the session's running cost and duration counters.
type Cost struct {
	TotalCostUSD       float64 `json:"total_cost_usd"`
	TotalDurationMs    float64 `json:"total_duration_ms"`
	TotalAPIDurationMs float64 `json:"total_api_duration_ms"`
	TotalLinesAdded    float64 `json:"total_lines_added"`
	TotalLinesRemoved  float64 `json:"total_lines_removed"`
}

// Workspace describes where the session is running.
type Workspace struct {
	ProjectDir string `json:"project_dir"`
	CurrentDir string `json:"current_dir"`
}

// Snapshot is one render's worth of session telemetry. Every field is
// optional; a missing or malformed document parses to the zero value.
type Snapshot struct {
	Cwd            string        `json:"cwd"`
	SessionID      string        `json:"session_id"`
	Model          Model         `json:"model"`
	ContextWindow  ContextWindow `json:"context_window"`
	Cost           Cost          `json:"cost"`
	Version        string        `json:"version"`
	Workspace      Workspace     `json:"workspace"`
	TranscriptPath string        `json:"transcript_path"`
}

// Parse reads a snapshot from r. Read or decode failures yield an empty
// snapshot; a degraded render beats no render.
func Parse(r io.Reader) Snapshot {
	var s Snapshot
	data, err := io.ReadAll(r)
	if err != nil {
		return s
	}
	_ = json.Unmarshal(data, &s)
	return s
}

// DerivedSessionID returns the session id implied by the transcript path:
// the file's base name with its extension stripped. Empty when there is no
// transcript.
func (s Snapshot) DerivedSessionID() string {
	if s.TranscriptPath == "" {
		return ""
	}
	base := filepath.Base(s.TranscriptPath)
	return strings.TrimSuffix(base, ".jsonl")
}
