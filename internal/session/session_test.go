package session

import (
	"strings"
	"testing"
)

func TestParse_FullDocument(t *testing.T) {
	in := `{
		"model": {"id": "claude-opus-4-1", "display_name": "Claude Opus"},
		"context_window": {"used_percentage": 45, "total_input_tokens": 12000, "total_output_tokens": 3000},
		"cost": {"total_cost_usd": 2.5, "total_duration_ms": 125000, "total_api_duration_ms": 60000,
			"total_lines_added": 10, "total_lines_removed": 4},
		"workspace": {"project_dir": "/home/u/proj"},
		"transcript_path": "/home/u/.claude/projects/proj/abc-123.jsonl"
	}`

	s := Parse(strings.NewReader(in))

	if s.Model.DisplayName != "Claude Opus" {
		t.Errorf("DisplayName = %q", s.Model.DisplayName)
	}
	if s.ContextWindow.UsedPercentage != 45 {
		t.Errorf("UsedPercentage = %v", s.ContextWindow.UsedPercentage)
	}
	if s.Cost.TotalCostUSD != 2.5 {
		t.Errorf("TotalCostUSD = %v", s.Cost.TotalCostUSD)
	}
	if s.Workspace.ProjectDir != "/home/u/proj" {
		t.Errorf("ProjectDir = %q", s.Workspace.ProjectDir)
	}
	if got := s.DerivedSessionID(); got != "abc-123" {
		t.Errorf("DerivedSessionID() = %q, want abc-123", got)
	}
}

func TestParse_MalformedIsEmpty(t *testing.T) {
	for _, in := range []string{"", "{", "not json", "[1,2,3]", `{"model": 7}`} {
		s := Parse(strings.NewReader(in))
		if s.Model.DisplayName != "" || s.Cost.TotalCostUSD != 0 || s.TranscriptPath != "" {
			t.Errorf("Parse(%q) not empty: %+v", in, s)
		}
	}
}

func TestParse_ExtraKeysIgnored(t *testing.T) {
	s := Parse(strings.NewReader(`{"unknown": {"deep": true}, "cost": {"total_cost_usd": 1.25}}`))
	if s.Cost.TotalCostUSD != 1.25 {
		t.Errorf("TotalCostUSD = %v, want 1.25", s.Cost.TotalCostUSD)
	}
}

func TestDerivedSessionID_Empty(t *testing.T) {
	if got := (Snapshot{}).DerivedSessionID(); got != "" {
		t.Errorf("DerivedSessionID() = %q, want empty", got)
	}
}
