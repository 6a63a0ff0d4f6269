package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Appearance holds display tuning that is orthogonal to the feature toggles.
type Appearance struct {
	// BranchMaxLen is the truncation length for branch and worktree names.
	BranchMaxLen int `toml:"branch_max_len"`
	// ContextBarWidth is the context usage bar width in cells.
	ContextBarWidth int `toml:"context_bar_width"`
}

type fileConfig struct {
	Appearance Appearance `toml:"appearance"`
}

// DefaultAppearance returns the built-in display tuning.
func DefaultAppearance() Appearance {
	return Appearance{
		BranchMaxLen:    20,
		ContextBarWidth: 10,
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "clstat")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "clstat")
}

// AppearancePath returns the full path to the appearance config file.
func AppearancePath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadAppearance reads the appearance config, returning defaults when the
// file is missing or malformed. Nothing on the render path treats this as an
// error.
func LoadAppearance() Appearance {
	return loadAppearanceFrom(AppearancePath())
}

// SaveAppearance writes the appearance config, creating the config directory
// as needed.
func SaveAppearance(app Appearance) error {
	if err := os.MkdirAll(ConfigDir(), 0o755); err != nil {
		return err
	}
	f, err := os.Create(AppearancePath())
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(fileConfig{Appearance: app})
}

func loadAppearanceFrom(path string) Appearance {
	app := DefaultAppearance()

	data, err := os.ReadFile(path)
	if err != nil {
		return app
	}

	var fc fileConfig
	fc.Appearance = app
	if err := toml.Unmarshal(data, &fc); err != nil {
		return app
	}
	if fc.Appearance.BranchMaxLen <= 0 {
		fc.Appearance.BranchMaxLen = app.BranchMaxLen
	}
	if fc.Appearance.ContextBarWidth <= 0 {
		fc.Appearance.ContextBarWidth = app.ContextBarWidth
	}
	return fc.Appearance
}
