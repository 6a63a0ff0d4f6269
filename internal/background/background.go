// Package background launches the detached refresh tasks the render path
// fires and forgets. Nothing here reports back to the caller: coordination
// with future renders happens only through atomically written cache files.
package background

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/theirongolddev/clstat/internal/cache"
	"github.com/theirongolddev/clstat/internal/scan"
	"github.com/theirongolddev/clstat/internal/store"
)

// SpawnModelRefresh re-executes the binary with the hidden refresh-models
// subcommand as a detached process. Failure to spawn is ignored; the cache
// simply stays stale until the next render.
func SpawnModelRefresh(sessionID, transcriptPath string) {
	if sessionID == "" || transcriptPath == "" {
		return
	}
	exe, err := os.Executable()
	if err != nil {
		return
	}

	cmd := exec.Command(exe, "refresh-models",
		"--session-id", sessionID,
		"--transcript-path", transcriptPath,
	)
	detach(cmd)
	_ = cmd.Start()
}

// SpawnCumulativeStats launches the external cumulative-stats script for the
// project, when one is installed and executable. The script owns the rolling
// cost windows; this process only triggers it.
func SpawnCumulativeStats(projectDir string) {
	if projectDir == "" {
		return
	}

	script := findCumulativeScript()
	if script == "" {
		return
	}

	cmd := exec.Command(script, projectDir)
	detach(cmd)
	_ = cmd.Start()
}

func findCumulativeScript() string {
	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "cumulative-stats.sh"))
	}
	home, _ := os.UserHomeDir()
	candidates = append(candidates, filepath.Join(home, ".claude", "cumulative-stats.sh"))

	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode()&0o111 == 0 {
			continue
		}
		return c
	}
	return ""
}

func detach(cmd *exec.Cmd) {
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// RefreshModelCache recomputes the per-session model totals from the session
// transcript and its subagent transcripts, then publishes them atomically.
// This runs in the detached process, never on the render path.
//
// A scan store under the cache root skips files whose mtime and size are
// unchanged since the previous refresh; if the store is unavailable every
// file is simply rescanned.
func RefreshModelCache(sessionID, transcriptPath string) {
	if sessionID == "" || transcriptPath == "" {
		return
	}

	tracker, err := store.Open(filepath.Join(cache.Dir(), "scan.db"))
	if err != nil {
		tracker = nil
	} else {
		defer func() { _ = tracker.Close() }()
	}

	agg := make(map[string]scan.Totals)
	for _, path := range scan.SessionFiles(transcriptPath, sessionID) {
		totals := fileTotals(tracker, path)
		for model, t := range totals {
			a := agg[model]
			a.In += t.In
			a.Out += t.Out
			agg[model] = a
		}
	}

	doc := cache.ModelsDocument{}
	for model, t := range agg {
		doc.Models = append(doc.Models, cache.ModelEntry{Model: model, In: t.In, Out: t.Out})
	}
	sort.Slice(doc.Models, func(i, j int) bool { return doc.Models[i].Model < doc.Models[j].Model })

	_ = cache.WriteModels(sessionID, doc)
}

// fileTotals returns the per-model totals for one transcript, served from
// the tracker when the file is unchanged, rescanned otherwise.
func fileTotals(tracker *store.Store, path string) map[string]scan.Totals {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}

	if tracker != nil {
		if known, ok, err := tracker.Lookup(path); err == nil && ok && known == fi {
			if totals, err := tracker.Models(path); err == nil {
				return totals
			}
		}
	}

	totals, err := scan.File(path)
	if err != nil {
		return nil
	}
	if tracker != nil {
		_ = tracker.Save(path, fi, totals)
	}
	return totals
}
