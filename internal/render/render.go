// Package render assembles the two status line output lines from whichever
// metric sections are enabled and non-empty.
package render

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/clstat/internal/ansi"
	"github.com/theirongolddev/clstat/internal/cache"
	"github.com/theirongolddev/clstat/internal/config"
	"github.com/theirongolddev/clstat/internal/format"
	"github.com/theirongolddev/clstat/internal/gitinfo"
	"github.com/theirongolddev/clstat/internal/session"
)

func init() {
	// The status line writes to a pipe, never a TTY. Force the ANSI profile
	// so lipgloss emits color codes instead of detecting a dumb terminal.
	lipgloss.SetColorProfile(termenv.ANSI)
}

var (
	faintStyle   = lipgloss.NewStyle().Faint(true)
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

// Options carries the per-invocation inputs of the composer beyond the
// snapshot itself. Zero values select the production defaults.
type Options struct {
	Config     config.Config
	Appearance config.Appearance

	// Cwd is where the git probe runs. Defaults to the process working
	// directory.
	Cwd string
	// Probe overrides the git probe, for tests.
	Probe func(dir string) *gitinfo.Summary
}

// Render produces the full status line output, trailing newlines included.
// It never fails: every data source degrades to an empty section.
func Render(s session.Snapshot, opts Options) string {
	cfg := opts.Config
	app := opts.Appearance
	if app.ContextBarWidth <= 0 {
		app = config.DefaultAppearance()
	}
	probe := opts.Probe
	if probe == nil {
		probe = gitinfo.Probe
	}

	sep := " " + faintStyle.Render("│") + " "
	sessionID := s.DerivedSessionID()

	// Model name.
	model := ""
	if cfg.Model {
		model = s.Model.DisplayName
		if model == "" {
			model = "?"
		}
		model = strings.TrimPrefix(model, "Claude ")
	}

	// Context usage bar.
	pct := int(s.ContextWindow.UsedPercentage)
	contextPart := ""
	if cfg.Context {
		filled := pct * app.ContextBarWidth / 100
		if filled < 0 {
			filled = 0
		}
		if filled > app.ContextBarWidth {
			filled = app.ContextBarWidth
		}
		bar := strings.Repeat("▓", filled) + strings.Repeat("░", app.ContextBarWidth-filled)

		clr := greenStyle
		warn := ""
		switch {
		case pct >= 90:
			clr = redStyle
			warn = " ⚠"
		case pct >= 70:
			clr = yellowStyle
			warn = " ⚠"
		}
		contextPart = clr.Render(fmt.Sprintf("%s %d%%%s", bar, pct, warn))
	}

	costPart := ""
	if cfg.Cost {
		costPart = format.Cost(s.Cost.TotalCostUSD)
	}

	durPart := ""
	if cfg.Duration {
		durPart = format.Duration(int(s.Cost.TotalDurationMs))
	}

	// Git summary.
	gitDisplay, dirty, gitExtra := "", "", ""
	if cfg.Git {
		cwd := opts.Cwd
		if cwd == "" {
			cwd = s.Workspace.CurrentDir
		}
		if cwd == "" {
			cwd = s.Cwd
		}
		if cwd == "" {
			cwd, _ = os.Getwd()
		}
		if g := probe(cwd); g != nil && g.Branch != "" {
			gitDisplay, dirty, gitExtra = gitSummary(g, app.BranchMaxLen)
		}
	}

	// Lines added/removed.
	diffPart := ""
	if cfg.Diff {
		added := int(s.Cost.TotalLinesAdded)
		removed := int(s.Cost.TotalLinesRemoved)
		if added > 0 || removed > 0 {
			diffPart = greenStyle.Render(fmt.Sprintf("+%d", added)) + " " +
				redStyle.Render(fmt.Sprintf("-%d", removed))
		}
	}

	inTok := int(s.ContextWindow.TotalInputTokens)
	outTok := int(s.ContextWindow.TotalOutputTokens)

	// Per-model session stats from the background-maintained cache.
	var stats *cache.FamilyStats
	if sessionID != "" {
		stats = cache.ReadModels(sessionID)
	}

	modelMix := ""
	if cfg.ModelBars && stats != nil {
		if maxOut := stats.MaxOut(); maxOut > 0 {
			modelMix = mixGlyph(magentaStyle, stats.OpusOut, maxOut) +
				mixGlyph(cyanStyle, stats.SonnetOut, maxOut) +
				mixGlyph(greenStyle, stats.HaikuOut, maxOut)
		}
	}

	speedPart := ""
	if cfg.Speed {
		apiMs := int(s.Cost.TotalAPIDurationMs)
		if apiMs > 0 && outTok > 0 {
			tps := int(math.RoundToEven(float64(outTok) * 1000 / float64(apiMs)))
			clr := redStyle
			switch {
			case tps > 30:
				clr = greenStyle
			case tps >= 15:
				clr = yellowStyle
			}
			speedPart = clr.Render(fmt.Sprintf("%d tok/s", tps))
		}
	}

	cumProj, cumAll := "", ""
	if cfg.Cumulative {
		proj, all := cache.ReadCumulative(s.Workspace.ProjectDir)
		if proj != nil {
			cumProj = fmt.Sprintf("⌂ %s/%s/%s",
				format.Cost(proj.D1), format.Cost(proj.D7), format.Cost(proj.D30))
		}
		if all != nil {
			cumAll = fmt.Sprintf("Σ %s/%s/%s",
				format.Cost(all.D1), format.Cost(all.D7), format.Cost(all.D30))
		}
	}

	// Line 1.
	var l1 []string
	switch {
	case model != "" && modelMix != "":
		l1 = append(l1, cyanStyle.Render(model)+" "+modelMix)
	case model != "":
		l1 = append(l1, cyanStyle.Render(model))
	case modelMix != "":
		l1 = append(l1, modelMix)
	}
	if contextPart != "" {
		l1 = append(l1, contextPart)
	}
	if costPart != "" {
		l1 = append(l1, costPart)
	}
	if durPart != "" {
		l1 = append(l1, durPart)
	}
	if gitDisplay != "" {
		part := magentaStyle.Render(gitDisplay)
		if dirty != "" {
			part += " " + yellowStyle.Render(dirty)
		}
		if gitExtra != "" {
			part += " " + cyanStyle.Render(gitExtra)
		}
		l1 = append(l1, part)
	}
	if diffPart != "" {
		l1 = append(l1, diffPart)
	}

	line1 := strings.Join(l1, sep)

	// Line 2. Suppressible as a unit.
	line2 := ""
	if cfg.Line2 {
		var l2 []string
		if cfg.Tokens {
			l2 = append(l2, tokensPart(stats, inTok, outTok))
		}
		if speedPart != "" {
			l2 = append(l2, speedPart)
		}
		if cumProj != "" {
			l2 = append(l2, cumProj)
		}
		if cumAll != "" {
			l2 = append(l2, cumAll)
		}
		line2 = strings.Join(l2, sep)
	}

	if cfg.NoColor {
		line1 = ansi.Strip(line1)
		line2 = ansi.Strip(line2)
	}

	// Stable contract: two lines plus trailing newline, second possibly blank.
	if line2 != "" {
		return line1 + "\n" + line2 + "\n"
	}
	return line1 + "\n\n"
}

// gitSummary renders the branch/worktree display, the dirty marker, and the
// ahead/behind/stash extras.
func gitSummary(g *gitinfo.Summary, maxLen int) (display, dirty, extra string) {
	branch := format.Truncate(format.ShortenBranch(g.Branch), maxLen)
	if g.InWorktree {
		wt := format.Truncate(format.ShortenBranch(g.WorktreeName), maxLen)
		if wt == branch {
			display = "⊕ " + branch
		} else {
			display = "⊕" + wt + " " + branch
		}
	} else {
		display = branch
	}

	if g.Dirty {
		dirty = "●"
	}

	var parts []string
	if g.Ahead > 0 {
		parts = append(parts, fmt.Sprintf("↑%d", g.Ahead))
	}
	if g.Behind > 0 {
		parts = append(parts, fmt.Sprintf("↓%d", g.Behind))
	}
	if g.Stash > 0 {
		parts = append(parts, fmt.Sprintf("stash:%d", g.Stash))
	}
	extra = strings.Join(parts, " ")
	return display, dirty, extra
}

// mixGlyph renders one family's bar in the model mix, or a faint placeholder
// for a family with no output.
func mixGlyph(clr lipgloss.Style, out, maxOut int) string {
	if g := format.BarGlyph(out, maxOut); g != "" {
		return clr.Render(g)
	}
	return faintStyle.Render("·")
}

// tokensPart renders the per-family token breakdown, falling back to the
// aggregate in/out display when no family has recorded usage.
func tokensPart(stats *cache.FamilyStats, inTok, outTok int) string {
	var parts []string
	if stats != nil {
		if stats.OpusIn > 0 || stats.OpusOut > 0 {
			parts = append(parts, fmt.Sprintf("%s:%s/%s",
				magentaStyle.Render("O"), format.Tokens(stats.OpusIn), format.Tokens(stats.OpusOut)))
		}
		if stats.SonnetIn > 0 || stats.SonnetOut > 0 {
			parts = append(parts, fmt.Sprintf("%s:%s/%s",
				cyanStyle.Render("S"), format.Tokens(stats.SonnetIn), format.Tokens(stats.SonnetOut)))
		}
		if stats.HaikuIn > 0 || stats.HaikuOut > 0 {
			parts = append(parts, fmt.Sprintf("%s:%s/%s",
				greenStyle.Render("H"), format.Tokens(stats.HaikuIn), format.Tokens(stats.HaikuOut)))
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return fmt.Sprintf("%s%s %s%s",
		faintStyle.Render("in:"), format.Tokens(inTok),
		faintStyle.Render("out:"), format.Tokens(outTok))
}
