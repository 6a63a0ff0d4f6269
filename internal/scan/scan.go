// Package scan reads Claude Code JSONL transcripts and accumulates token
// usage per model identifier. This is the one aggregation pass the status
// line performs itself; everything longer-horizon belongs to the external
// cumulative-stats collaborator.
package scan

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Totals is the accumulated input/output token count for one model.
// Input folds direct, cache-read, and cache-creation tokens together.
type Totals struct {
	In  int
	Out int
}

type rawUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
}

type rawMessage struct {
	Model string    `json:"model"`
	Usage *rawUsage `json:"usage"`
}

type rawEntry struct {
	Type    string      `json:"type"`
	Message *rawMessage `json:"message"`
}

// File scans one JSONL transcript and returns per-model totals. Only
// assistant entries that carry a usage block and a "claude-" prefixed model
// identifier count. Unparseable lines are skipped, not fatal.
func File(path string) (map[string]Totals, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	totals := make(map[string]Totals)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 2*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry rawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.Type != "assistant" || entry.Message == nil || entry.Message.Usage == nil {
			continue
		}
		model := entry.Message.Model
		if !strings.HasPrefix(model, "claude-") {
			continue
		}
		u := entry.Message.Usage
		t := totals[model]
		t.In += u.InputTokens + u.CacheReadInputTokens + u.CacheCreationInputTokens
		t.Out += u.OutputTokens
		totals[model] = t
	}

	return totals, scanner.Err()
}

// SessionFiles lists the transcripts belonging to a session: the main
// transcript plus any subagent transcripts under
// <transcript dir>/<session id>/subagents/.
func SessionFiles(transcriptPath, sessionID string) []string {
	files := []string{transcriptPath}
	subagentDir := filepath.Join(filepath.Dir(transcriptPath), sessionID, "subagents")
	entries, err := os.ReadDir(subagentDir)
	if err != nil {
		return files
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".jsonl") {
			files = append(files, filepath.Join(subagentDir, e.Name()))
		}
	}
	return files
}
