package gitinfo

import (
	"path/filepath"
	"strings"
	"testing"
)

// stubRun builds a runner answering from a map keyed by the joined git args.
func stubRun(answers map[string]string) runner {
	return func(_ string, args ...string) string {
		return answers[strings.Join(args, " ")]
	}
}

func identity(p string) string { return filepath.Clean(p) }

func TestProbe_NotARepo(t *testing.T) {
	s := probe("/tmp", stubRun(nil), identity)
	if s != nil {
		t.Fatalf("expected nil summary outside a repo, got %+v", s)
	}
}

func TestProbe_PlainRepo(t *testing.T) {
	s := probe("/repo", stubRun(map[string]string{
		"branch --show-current":       "main",
		"rev-parse --show-toplevel":   "/repo",
		"rev-parse --git-common-dir":  ".git",
		"status --porcelain":          "",
		"rev-list --count @{u}..HEAD": "0",
		"rev-list --count HEAD..@{u}": "0",
		"stash list":                  "",
	}), identity)

	if s == nil {
		t.Fatal("expected summary")
	}
	if s.Branch != "main" {
		t.Errorf("Branch = %q", s.Branch)
	}
	if s.InWorktree {
		t.Error("plain repo should not report a worktree")
	}
	if s.Dirty || s.Ahead != 0 || s.Behind != 0 || s.Stash != 0 {
		t.Errorf("expected clean in-sync state, got %+v", s)
	}
}

func TestProbe_DirtyAheadBehindStash(t *testing.T) {
	s := probe("/repo", stubRun(map[string]string{
		"branch --show-current":       "feature/login",
		"rev-parse --show-toplevel":   "/repo",
		"rev-parse --git-common-dir":  ".git",
		"status --porcelain":          " M file.go",
		"rev-list --count @{u}..HEAD": "3",
		"rev-list --count HEAD..@{u}": "1",
		"stash list":                  "stash@{0}: WIP\nstash@{1}: WIP",
	}), identity)

	if !s.Dirty {
		t.Error("porcelain output should set dirty")
	}
	if s.Ahead != 3 || s.Behind != 1 {
		t.Errorf("ahead/behind = %d/%d, want 3/1", s.Ahead, s.Behind)
	}
	if s.Stash != 2 {
		t.Errorf("Stash = %d, want 2", s.Stash)
	}
}

func TestProbe_NoUpstreamReadsAsZero(t *testing.T) {
	// rev-list against a missing @{u} fails, which the runner reports as "".
	s := probe("/repo", stubRun(map[string]string{
		"branch --show-current":      "main",
		"rev-parse --show-toplevel":  "/repo",
		"rev-parse --git-common-dir": ".git",
	}), identity)

	if s.Ahead != 0 || s.Behind != 0 {
		t.Errorf("missing upstream should read as 0/0, got %d/%d", s.Ahead, s.Behind)
	}
}

func TestProbe_LinkedWorktree(t *testing.T) {
	s := probe("/repo/.worktrees/wip", stubRun(map[string]string{
		"branch --show-current":      "fix/crash",
		"rev-parse --show-toplevel":  "/repo/.worktrees/wip",
		"rev-parse --git-common-dir": "/repo/.git",
	}), identity)

	if !s.InWorktree {
		t.Fatal("expected worktree detection")
	}
	if s.WorktreeName != "wip" {
		t.Errorf("WorktreeName = %q, want wip (path under .worktrees trimmed)", s.WorktreeName)
	}
}

func TestProbe_LinkedWorktreeOutsideConvention(t *testing.T) {
	s := probe("/elsewhere/tree", stubRun(map[string]string{
		"branch --show-current":      "main",
		"rev-parse --show-toplevel":  "/elsewhere/tree",
		"rev-parse --git-common-dir": "/repo/.git",
	}), identity)

	if !s.InWorktree {
		t.Fatal("expected worktree detection")
	}
	if s.WorktreeName != "/elsewhere/tree" {
		t.Errorf("WorktreeName = %q, want full toplevel", s.WorktreeName)
	}
}

func TestProbe_RelativeCommonDir(t *testing.T) {
	// A plain repo reports its common dir relative to the toplevel.
	s := probe("/repo/sub", stubRun(map[string]string{
		"branch --show-current":      "main",
		"rev-parse --show-toplevel":  "/repo",
		"rev-parse --git-common-dir": ".git",
	}), identity)

	if s.InWorktree {
		t.Error("relative .git common dir should not look like a worktree")
	}
}
