package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// NodeFg returns the color a node glyph is drawn in. Node colors carry
// meaning (subcategory, focus, highlight), so low-color terminals get the
// nearest ANSI color instead of plain white.
func NodeFg(hex string) lipgloss.TerminalColor {
	if TermProfile <= colorprofile.Ascii {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorFocus   = lipgloss.AdaptiveColor{Light: "#D9480F", Dark: "#FF6B35"}
	ColorBorder  = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"}
)

// Theme holds the pre-built chrome styles. Node glyph styles are built per
// color by the canvas and cached there.
type Theme struct {
	Renderer *lipgloss.Renderer

	Header    lipgloss.Style
	StatusBar lipgloss.Style
	StatusKey lipgloss.Style
	ModeBadge lipgloss.Style
	FocusName lipgloss.Style
	Muted     lipgloss.Style
	Info      lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Pane      lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{Renderer: r}

	t.Header = r.NewStyle().
		Background(ColorPrimary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.StatusBar = r.NewStyle().Foreground(ColorSubtext)
	t.StatusKey = r.NewStyle().Foreground(ColorInfo).Bold(true)
	t.ModeBadge = r.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.FocusName = r.NewStyle().Foreground(ColorFocus).Bold(true)
	t.Muted = r.NewStyle().Foreground(ColorMuted)
	t.Info = r.NewStyle().Foreground(ColorInfo)
	t.Warning = r.NewStyle().Foreground(ColorWarning)
	t.Error = r.NewStyle().Foreground(ColorDanger).Bold(true)
	t.Pane = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
