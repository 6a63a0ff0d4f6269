// Package gitinfo probes the working tree's git state for the status line.
//
// Every query is one short-lived git invocation with a hard 2s timeout. A
// failing or slow query contributes an empty result; the probe never returns
// an error and never blocks a render beyond the timeout.
package gitinfo

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const queryTimeout = 2 * time.Second

// Summary is the per-invocation git state. Nil when the directory is not in
// a git repository or HEAD is detached.
type Summary struct {
	Branch       string
	InWorktree   bool
	WorktreeName string
	Dirty        bool
	Ahead        int
	Behind       int
	Stash        int
}

// runner executes one git query and returns trimmed stdout, or "" on any
// failure. Swappable in tests.
type runner func(dir string, args ...string) string

func runGit(dir string, args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Probe queries the git state of dir.
func Probe(dir string) *Summary {
	return probe(dir, runGit, resolvePath)
}

// resolvePath resolves symlinks, falling back to the cleaned input when the
// target cannot be resolved.
func resolvePath(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return filepath.Clean(p)
}

func probe(dir string, run runner, resolve func(string) string) *Summary {
	branch := run(dir, "branch", "--show-current")
	if branch == "" {
		return nil
	}

	s := &Summary{Branch: branch}

	// Linked worktree detection: the common git dir of a linked worktree
	// resolves somewhere other than <toplevel>/.git.
	toplevel := run(dir, "rev-parse", "--show-toplevel")
	common := run(dir, "rev-parse", "--git-common-dir")
	if toplevel != "" && common != "" {
		if !filepath.IsAbs(common) {
			common = filepath.Join(toplevel, common)
		}
		resolved := resolve(common)
		if resolved != filepath.Join(toplevel, ".git") {
			s.InWorktree = true
			mainToplevel := filepath.Dir(resolved)
			wtPrefix := mainToplevel + "/.worktrees/"
			if strings.HasPrefix(toplevel, wtPrefix) {
				s.WorktreeName = toplevel[len(wtPrefix):]
			} else {
				s.WorktreeName = toplevel
			}
		}
	}

	s.Dirty = run(dir, "status", "--porcelain") != ""

	// No upstream configured reads as in sync.
	s.Ahead = atoiOrZero(run(dir, "rev-list", "--count", "@{u}..HEAD"))
	s.Behind = atoiOrZero(run(dir, "rev-list", "--count", "HEAD..@{u}"))

	if stash := run(dir, "stash", "list"); stash != "" {
		s.Stash = len(strings.Split(stash, "\n"))
	}

	return s
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
