// Package cache reads and writes the small JSON documents the status line
// shares with its background refreshers.
//
// Readers tolerate anything: a missing, empty, truncated, or malformed file
// reads as absent. Writers publish atomically (temp file + rename in the same
// directory), so a concurrent reader sees either the old document or the new
// one, never a half-written file.
package cache

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the user-scoped cache root.
func Dir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "clstat")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "clstat")
}

// ProjectHash derives the 8-hex-digit cache key for a project directory.
// The slug drops the leading "/" and flattens separators; the trailing
// newline is part of the hashed input (the cumulative-stats script pipes the
// slug through md5 with echo, which appends one).
func ProjectHash(dir string) string {
	slug := strings.TrimPrefix(dir, "/")
	slug = strings.ReplaceAll(slug, "/", "-")
	sum := md5.Sum([]byte(slug + "\n"))
	return fmt.Sprintf("%x", sum)[:8]
}

// ModelEntry is one model's accumulated token totals within a session.
type ModelEntry struct {
	Model string `json:"model"`
	In    int    `json:"in"`
	Out   int    `json:"out"`
}

// ModelsDocument is the on-disk shape of the per-session model cache.
type ModelsDocument struct {
	Models []ModelEntry `json:"models"`
}

// FamilyStats aggregates session token totals by model family.
type FamilyStats struct {
	OpusIn    int
	OpusOut   int
	SonnetIn  int
	SonnetOut int
	HaikuIn   int
	HaikuOut  int
}

// MaxOut returns the largest per-family output total.
func (f FamilyStats) MaxOut() int {
	max := f.OpusOut
	if f.SonnetOut > max {
		max = f.SonnetOut
	}
	if f.HaikuOut > max {
		max = f.HaikuOut
	}
	return max
}

// ModelsPath returns the per-session model cache location.
func ModelsPath(sessionID string) string {
	return filepath.Join(Dir(), fmt.Sprintf("models-%s.json", sessionID))
}

// ReadModels loads the per-session model cache and folds it into family
// totals. Nil when the cache is absent or unreadable. Family membership is a
// substring match on the raw model identifier.
func ReadModels(sessionID string) *FamilyStats {
	if sessionID == "" {
		return nil
	}
	return readModelsFile(ModelsPath(sessionID))
}

func readModelsFile(path string) *FamilyStats {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc ModelsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}

	stats := &FamilyStats{}
	for _, m := range doc.Models {
		switch {
		case strings.Contains(m.Model, "opus"):
			stats.OpusIn += m.In
			stats.OpusOut += m.Out
		case strings.Contains(m.Model, "sonnet"):
			stats.SonnetIn += m.In
			stats.SonnetOut += m.Out
		case strings.Contains(m.Model, "haiku"):
			stats.HaikuIn += m.In
			stats.HaikuOut += m.Out
		}
	}
	return stats
}

// WriteModels atomically publishes the per-session model cache.
func WriteModels(sessionID string, doc ModelsDocument) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return writeAtomic(ModelsPath(sessionID), data)
}

// writeAtomic writes to a sibling temp path and renames over the target.
// Rename is atomic within one filesystem.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

type windowDoc struct {
	Cost float64 `json:"cost"`
}

type cumulativeDoc struct {
	D1  windowDoc `json:"d1"`
	D7  windowDoc `json:"d7"`
	D30 windowDoc `json:"d30"`
}

// Windows holds the rolling 1/7/30-day cost totals.
type Windows struct {
	D1  float64
	D7  float64
	D30 float64
}

// ReadCumulative loads the per-project and global cumulative caches. Either
// may be nil; a document whose windows are all zero reads as absent.
func ReadCumulative(projectDir string) (proj, all *Windows) {
	dir := Dir()
	if projectDir != "" {
		proj = readCumulativeFile(filepath.Join(dir, fmt.Sprintf("proj-%s.json", ProjectHash(projectDir))))
	}
	all = readCumulativeFile(filepath.Join(dir, "all.json"))
	return proj, all
}

func readCumulativeFile(path string) *Windows {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc cumulativeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	if doc.D1.Cost == 0 && doc.D7.Cost == 0 && doc.D30.Cost == 0 {
		return nil
	}
	return &Windows{D1: doc.D1.Cost, D7: doc.D7.Cost, D30: doc.D30.Cost}
}
