package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/clstat/internal/config"
	"github.com/theirongolddev/clstat/internal/gitinfo"
	"github.com/theirongolddev/clstat/internal/render"
	"github.com/theirongolddev/clstat/internal/session"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Interactively preview the status line",
	Long: "Toggle sections on and off against sample data and watch the\n" +
		"status line update live. Changes are not saved; run `clstat setup`\n" +
		"to persist a configuration.",
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(_ *cobra.Command, _ []string) error {
	p := tea.NewProgram(newPreviewModel())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("preview error: %w", err)
	}
	return nil
}

type previewKeymap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Color  key.Binding
	Quit   key.Binding
}

var previewKeys = previewKeymap{
	Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "move")),
	Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("", "")),
	Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	Color:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "color on/off")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

type previewModel struct {
	cfg    config.Config
	app    config.Appearance
	sample session.Snapshot
	cursor int
}

func newPreviewModel() previewModel {
	return previewModel{
		cfg: config.Resolve(config.Disables{}),
		app: config.LoadAppearance(),
		sample: session.Snapshot{
			Model: session.Model{ID: "claude-opus-4-20250514", DisplayName: "Claude Opus"},
			ContextWindow: session.ContextWindow{
				UsedPercentage:    45,
				TotalInputTokens:  12000,
				TotalOutputTokens: 3000,
			},
			Cost: session.Cost{
				TotalCostUSD:       2.5,
				TotalDurationMs:    125000,
				TotalAPIDurationMs: 90000,
				TotalLinesAdded:    120,
				TotalLinesRemoved:  15,
			},
		},
	}
}

// sampleProbe feeds the preview a representative repository state without
// touching git.
func sampleProbe(string) *gitinfo.Summary {
	return &gitinfo.Summary{Branch: "feature/login", Dirty: true, Ahead: 2, Stash: 1}
}

func (m previewModel) Init() tea.Cmd { return nil }

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, previewKeys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, previewKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, previewKeys.Down):
		if m.cursor < len(featureFields)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, previewKeys.Toggle):
		field := featureFields[m.cursor].field(&m.cfg.Features)
		*field = !*field
	case key.Matches(keyMsg, previewKeys.Color):
		m.cfg.NoColor = !m.cfg.NoColor
	}
	return m, nil
}

func (m previewModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Faint(true)
	cursorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	line := render.Render(m.sample, render.Options{
		Config:     m.cfg,
		Appearance: m.app,
		Probe:      sampleProbe,
	})

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  Status line preview"))
	b.WriteString("\n\n")
	for _, l := range strings.Split(strings.TrimRight(line, "\n"), "\n") {
		b.WriteString("  " + l + "\n")
	}
	b.WriteString("\n")

	for i, ff := range featureFields {
		mark := "x"
		if !*ff.field(&m.cfg.Features) {
			mark = " "
		}
		row := fmt.Sprintf("[%s] %s", mark, ff.label)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("  > " + row))
		} else {
			b.WriteString("    " + row)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  j/k move · space toggle · c color on/off · q quit"))
	b.WriteString("\n")
	return b.String()
}
