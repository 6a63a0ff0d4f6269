package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/clstat/internal/background"
	"github.com/theirongolddev/clstat/internal/config"
	"github.com/theirongolddev/clstat/internal/render"
	"github.com/theirongolddev/clstat/internal/session"
)

var flagDisable config.Disables

var rootCmd = &cobra.Command{
	Use:   "clstat",
	Short: "Two-line status bar for Claude Code",
	Long: "Render a two-line terminal status bar from the session snapshot\n" +
		"Claude Code pipes to stdin. Configure it as the statusLine command\n" +
		"in ~/.claude/settings.json.",
	Args: cobra.NoArgs,
	Run:  runRender,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Help and errors go to stderr. Stdout is reserved for the two status
	// lines; anything else there ends up rendered in the terminal title bar.
	rootCmd.SetOut(os.Stderr)
	rootCmd.SilenceUsage = true

	f := rootCmd.Flags()
	f.BoolVar(&flagDisable.Model, "no-model", false, "Hide the model name")
	f.BoolVar(&flagDisable.ModelBars, "no-model-bars", false, "Hide the per-model usage bars")
	f.BoolVar(&flagDisable.Context, "no-context", false, "Hide the context usage bar")
	f.BoolVar(&flagDisable.Cost, "no-cost", false, "Hide the session cost")
	f.BoolVar(&flagDisable.Duration, "no-duration", false, "Hide the session duration")
	f.BoolVar(&flagDisable.Git, "no-git", false, "Hide git branch and status")
	f.BoolVar(&flagDisable.Diff, "no-diff", false, "Hide lines added/removed")
	f.BoolVar(&flagDisable.Line2, "no-line2", false, "Suppress the second line entirely")
	f.BoolVar(&flagDisable.Tokens, "no-tokens", false, "Hide token totals")
	f.BoolVar(&flagDisable.Speed, "no-speed", false, "Hide generation speed")
	f.BoolVar(&flagDisable.Cumulative, "no-cumulative", false, "Hide cumulative cost windows")
	f.BoolVar(&flagDisable.Color, "no-color", false, "Strip all ANSI color codes")
}

func runRender(cmd *cobra.Command, _ []string) {
	// A status line that crashes takes the whole terminal chrome with it.
	// Whatever happens, emit the two-line shape and exit clean.
	defer func() {
		if r := recover(); r != nil {
			fmt.Print("\n\n")
		}
	}()

	s := session.Parse(cmd.InOrStdin())
	cfg := config.Resolve(flagDisable)
	app := config.LoadAppearance()

	fmt.Print(render.Render(s, render.Options{Config: cfg, Appearance: app}))

	// Kick off the cache refreshers after the output is on the wire; their
	// results show up on the next render.
	if id := s.DerivedSessionID(); id != "" {
		background.SpawnModelRefresh(id, s.TranscriptPath)
	}
	background.SpawnCumulativeStats(s.Workspace.ProjectDir)
}
