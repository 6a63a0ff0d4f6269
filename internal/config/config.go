// Package config resolves which status line sections are enabled.
//
// Four layered sources, lowest to highest precedence: built-in defaults
// (everything on), ~/.claude/statusline.env, process environment, CLI disable
// flags. The merge is last-write-wins in that order; only the literal value
// "false" disables a feature from the file or environment.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Features holds the per-section toggles.
type Features struct {
	Model      bool
	ModelBars  bool
	Context    bool
	Cost       bool
	Duration   bool
	Git        bool
	Diff       bool
	Line2      bool
	Tokens     bool
	Speed      bool
	Cumulative bool
}

// Config is the effective configuration for one render.
type Config struct {
	Features
	NoColor bool
}

// Disables mirrors the CLI --no-* flags. Flag presence alone disables;
// there is no way to re-enable from the command line.
type Disables struct {
	Model      bool
	ModelBars  bool
	Context    bool
	Cost       bool
	Duration   bool
	Git        bool
	Diff       bool
	Line2      bool
	Tokens     bool
	Speed      bool
	Cumulative bool
	Color      bool
}

// envKeys lists the environment/file keys, one per feature.
var envKeys = map[string]func(*Features) *bool{
	"STATUSLINE_SHOW_MODEL":      func(f *Features) *bool { return &f.Model },
	"STATUSLINE_SHOW_MODEL_BARS": func(f *Features) *bool { return &f.ModelBars },
	"STATUSLINE_SHOW_CONTEXT":    func(f *Features) *bool { return &f.Context },
	"STATUSLINE_SHOW_COST":       func(f *Features) *bool { return &f.Cost },
	"STATUSLINE_SHOW_DURATION":   func(f *Features) *bool { return &f.Duration },
	"STATUSLINE_SHOW_GIT":        func(f *Features) *bool { return &f.Git },
	"STATUSLINE_SHOW_DIFF":       func(f *Features) *bool { return &f.Diff },
	"STATUSLINE_LINE2":           func(f *Features) *bool { return &f.Line2 },
	"STATUSLINE_SHOW_TOKENS":     func(f *Features) *bool { return &f.Tokens },
	"STATUSLINE_SHOW_SPEED":      func(f *Features) *bool { return &f.Speed },
	"STATUSLINE_SHOW_CUMULATIVE": func(f *Features) *bool { return &f.Cumulative },
}

// EnvFilePath returns the fixed location of the feature toggle file.
func EnvFilePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "statusline.env")
}

// Resolve computes the effective config from the toggle file, the process
// environment, and the parsed CLI flags.
func Resolve(d Disables) Config {
	fileVals := map[string]string{}
	if f, err := os.Open(EnvFilePath()); err == nil {
		fileVals = parseEnvFile(f)
		_ = f.Close()
	}
	return resolve(fileVals, os.LookupEnv, d)
}

func resolve(fileVals map[string]string, lookup func(string) (string, bool), d Disables) Config {
	cfg := Config{Features: Features{
		Model: true, ModelBars: true, Context: true, Cost: true,
		Duration: true, Git: true, Diff: true, Line2: true,
		Tokens: true, Speed: true, Cumulative: true,
	}}

	// File layer, then environment layer. A later layer's value replaces the
	// earlier one's even when it re-enables.
	for key, field := range envKeys {
		val, present := fileVals[key]
		if env, ok := lookup(key); ok {
			val, present = env, true
		}
		if present {
			*field(&cfg.Features) = val != "false"
		}
	}

	// CLI flags: unconditional disables.
	if d.Model {
		cfg.Model = false
	}
	if d.ModelBars {
		cfg.ModelBars = false
	}
	if d.Context {
		cfg.Context = false
	}
	if d.Cost {
		cfg.Cost = false
	}
	if d.Duration {
		cfg.Duration = false
	}
	if d.Git {
		cfg.Git = false
	}
	if d.Diff {
		cfg.Diff = false
	}
	if d.Line2 {
		cfg.Line2 = false
	}
	if d.Tokens {
		cfg.Tokens = false
	}
	if d.Speed {
		cfg.Speed = false
	}
	if d.Cumulative {
		cfg.Cumulative = false
	}

	cfg.NoColor = d.Color || envNonEmpty(lookup, "NO_COLOR") || envNonEmpty(lookup, "STATUSLINE_NO_COLOR")
	return cfg
}

// SaveToggles writes the feature toggle file. Only disabled features get a
// line; an absent key means enabled, so a fully-default setup writes just the
// header.
func SaveToggles(f Features) error {
	if err := os.MkdirAll(filepath.Dir(EnvFilePath()), 0o755); err != nil {
		return err
	}

	keys := make([]string, 0, len(envKeys))
	for k := range envKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("# Feature toggles for the clstat status line.\n")
	b.WriteString("# Delete a line (or set it to anything but \"false\") to re-enable.\n")
	for _, k := range keys {
		if !*envKeys[k](&f) {
			fmt.Fprintf(&b, "%s=false\n", k)
		}
	}
	return os.WriteFile(EnvFilePath(), []byte(b.String()), 0o644)
}

func envNonEmpty(lookup func(string) (string, bool), key string) bool {
	v, ok := lookup(key)
	return ok && v != ""
}

// parseEnvFile reads KEY=value lines. Comments, blank lines, and lines
// without "=" are skipped; unknown keys are kept and ignored downstream.
func parseEnvFile(r io.Reader) map[string]string {
	vals := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		k := strings.TrimSpace(line[:idx])
		v := strings.TrimSpace(line[idx+1:])
		vals[k] = v
	}
	return vals
}
