package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/clstat/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// featureFields pairs each toggle with its form label, in display order.
var featureFields = []struct {
	label string
	field func(*config.Features) *bool
}{
	{"Model name", func(f *config.Features) *bool { return &f.Model }},
	{"Per-model usage bars", func(f *config.Features) *bool { return &f.ModelBars }},
	{"Context usage bar", func(f *config.Features) *bool { return &f.Context }},
	{"Session cost", func(f *config.Features) *bool { return &f.Cost }},
	{"Session duration", func(f *config.Features) *bool { return &f.Duration }},
	{"Git branch and status", func(f *config.Features) *bool { return &f.Git }},
	{"Lines added/removed", func(f *config.Features) *bool { return &f.Diff }},
	{"Second line", func(f *config.Features) *bool { return &f.Line2 }},
	{"Token totals", func(f *config.Features) *bool { return &f.Tokens }},
	{"Generation speed", func(f *config.Features) *bool { return &f.Speed }},
	{"Cumulative cost windows", func(f *config.Features) *bool { return &f.Cumulative }},
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Seed the form with the current effective config so rerunning the
	// wizard edits rather than resets.
	current := config.Resolve(config.Disables{})
	app := config.LoadAppearance()

	var selected []string
	var options []huh.Option[string]
	for _, ff := range featureFields {
		options = append(options, huh.NewOption(ff.label, ff.label))
		if *ff.field(&current.Features) {
			selected = append(selected, ff.label)
		}
	}

	branchLen := strconv.Itoa(app.BranchMaxLen)
	barWidth := strconv.Itoa(app.ContextBarWidth)

	validatePositive := func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return fmt.Errorf("enter a positive number")
		}
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Status line sections").
				Description("Space toggles, Enter confirms.").
				Options(options...).
				Value(&selected),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Branch name length").
				Description("Longer branch and worktree names are truncated.").
				Validate(validatePositive).
				Value(&branchLen),
			huh.NewInput().
				Title("Context bar width").
				Description("Width of the context usage bar in cells.").
				Validate(validatePositive).
				Value(&barWidth),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	on := make(map[string]bool, len(selected))
	for _, label := range selected {
		on[label] = true
	}
	var features config.Features
	for _, ff := range featureFields {
		*ff.field(&features) = on[ff.label]
	}

	if err := config.SaveToggles(features); err != nil {
		return fmt.Errorf("saving toggles: %w", err)
	}

	app.BranchMaxLen, _ = strconv.Atoi(branchLen)
	app.ContextBarWidth, _ = strconv.Atoi(barWidth)
	if err := config.SaveAppearance(app); err != nil {
		return fmt.Errorf("saving appearance: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved toggles to %s\n", config.EnvFilePath())
	fmt.Printf("  Saved appearance to %s\n", config.AppearancePath())
	fmt.Println("  Run `clstat setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
