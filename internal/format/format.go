// Package format provides compact human-readable formatting for status line metrics.
package format

import (
	"fmt"
	"strconv"

	"github.com/rivo/uniseg"
)

// Tokens formats a token count with compact suffixes.
// e.g., 1234567 -> "1.2M", 45231 -> "45k", 1234 -> "1.2k", 523 -> "523"
func Tokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 10_000:
		return fmt.Sprintf("%.0fk", float64(n)/1_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return strconv.Itoa(n)
	}
}

// Cost formats a USD cost value.
// e.g., 1834.5 -> "$1.8k", 374 -> "$374", 14.2 -> "$14", 8.4 -> "$8.4", 0.12 -> "$0.12"
//
// The >=100 and >=10 bands intentionally share zero-decimal rounding; the bar has
// always rendered mid-range costs as whole dollars.
func Cost(c float64) string {
	switch {
	case c >= 1000:
		return fmt.Sprintf("$%.1fk", c/1000)
	case c >= 100:
		return fmt.Sprintf("$%.0f", c)
	case c >= 10:
		return fmt.Sprintf("$%.0f", c)
	case c >= 1:
		return fmt.Sprintf("$%.1f", c)
	default:
		return fmt.Sprintf("$%.2f", c)
	}
}

// Duration formats a millisecond count as whole minutes.
// e.g., 14580000 -> "4h3m", 900000 -> "15m"
func Duration(ms int) string {
	min := ms / 60000
	if min >= 60 {
		return fmt.Sprintf("%dh%dm", min/60, min%60)
	}
	return fmt.Sprintf("%dm", min)
}

// branchPrefixes maps conventional branch prefixes to display glyphs.
// Order matters: the first matching prefix wins.
var branchPrefixes = []struct {
	prefix string
	glyph  string
}{
	{"feature/", "★"},
	{"feat/", "★"},
	{"fix/", "✦"},
	{"chore/", "⚙"},
	{"refactor/", "↻"},
	{"docs/", "§"},
}

// ShortenBranch replaces a conventional branch prefix with its glyph.
func ShortenBranch(name string) string {
	for _, p := range branchPrefixes {
		if len(name) >= len(p.prefix) && name[:len(p.prefix)] == p.prefix {
			return p.glyph + name[len(p.prefix):]
		}
	}
	return name
}

// Truncate shortens s to at most max grapheme clusters, appending an ellipsis
// when it cuts. A string exactly at max is returned unchanged.
func Truncate(s string, max int) string {
	if uniseg.GraphemeClusterCount(s) <= max {
		return s
	}
	g := uniseg.NewGraphemes(s)
	kept := 0
	out := make([]byte, 0, len(s))
	for g.Next() && kept < max-1 {
		out = append(out, g.Bytes()...)
		kept++
	}
	return string(out) + "…"
}

var barGlyphs = []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// BarGlyph returns a block glyph proportional to val/max across 8 levels,
// or "" when either argument is non-positive. Rounding is half-up: half the
// max is added before the integer division.
func BarGlyph(val, max int) string {
	if val <= 0 || max <= 0 {
		return ""
	}
	level := (val*8 + max/2) / max
	if level < 1 {
		level = 1
	}
	if level > 8 {
		level = 8
	}
	return barGlyphs[level-1]
}
