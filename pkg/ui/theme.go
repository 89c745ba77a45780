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

type Theme struct {
	Renderer *lipgloss.Renderer
	Dark     bool

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Status
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Danger  lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed text styles, created once instead of per frame.
	MutedText   lipgloss.Style
	InfoText    lipgloss.Style
	PrimaryBold lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	ErrorText   lipgloss.Style
	Section     lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme for r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,
		Dark:     r.HasDarkBackground(),

		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Subtext:   ColorSubtext,

		Success: ColorSuccess,
		Warning: ColorWarning,
		Danger:  ColorDanger,
		Info:    ColorInfo,

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     ColorMuted,
	}

	t.Base = r.NewStyle().Foreground(ColorText)

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		PaddingLeft(1).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.InfoText = r.NewStyle().Foreground(t.Info)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.SuccessText = r.NewStyle().Foreground(t.Success)
	t.WarningText = r.NewStyle().Foreground(t.Warning)
	t.ErrorText = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.Section = r.NewStyle().Foreground(t.Secondary).Bold(true)

	return t
}

// NewTheme builds a theme on a fresh renderer for stdout with the
// background forced dark or light.
func NewTheme(dark bool) Theme {
	r := lipgloss.NewRenderer(os.Stdout)
	r.SetHasDarkBackground(dark)
	return DefaultTheme(r)
}

// DifficultyColor maps a guide difficulty to its badge color.
func (t Theme) DifficultyColor(d string) lipgloss.AdaptiveColor {
	switch d {
	case "Beginner":
		return t.Success
	case "Intermediate":
		return t.Warning
	case "Advanced":
		return t.Danger
	default:
		return t.Subtext
	}
}

// TestTheme returns a dark theme suitable for use in tests.
func TestTheme() Theme {
	return NewTheme(true)
}
