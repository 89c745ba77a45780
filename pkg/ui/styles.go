package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// DESIGN TOKENS - Consistent spacing, colors, and visual language
// ══════════════════════════════════════════════════════════════════════════════

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
	SpaceLG = 4
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// Light mode colors tuned for WCAG AA compliance (contrast ratio >= 4.5:1)
// ══════════════════════════════════════════════════════════════════════════════

var (
	// Base colors
	ColorBg          = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	// Primary accent colors
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}
	ColorInfo      = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger    = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Difficulty badge backgrounds
	ColorBeginnerBg     = lipgloss.AdaptiveColor{Light: "#D4EDDA", Dark: "#1A3D2A"}
	ColorIntermediateBg = lipgloss.AdaptiveColor{Light: "#FFE8CC", Dark: "#3D2A1A"}
	ColorAdvancedBg     = lipgloss.AdaptiveColor{Light: "#F8D7DA", Dark: "#3D1A1A"}
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES
// ══════════════════════════════════════════════════════════════════════════════

var (
	// PanelStyle is the default style for unfocused panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle is the style for focused panels
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)
)

// ══════════════════════════════════════════════════════════════════════════════
// ICONS - Catalog icon names mapped to terminal glyphs
// ══════════════════════════════════════════════════════════════════════════════

var iconGlyphs = map[string]string{
	"Server":        "🖥",
	"Database":      "🗄",
	"Code":          "⌨",
	"Radio":         "📡",
	"Box":           "📦",
	"Shield":        "🛡",
	"Upload":        "⇪",
	"AlertTriangle": "⚠",
	"GitBranch":     "⎇",
	"Network":       "🕸",
}

// IconGlyph returns the glyph for a catalog icon name, or a bullet for
// unknown names.
func IconGlyph(name string) string {
	if g, ok := iconGlyphs[name]; ok {
		return g
	}
	return "•"
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE RENDERING
// ══════════════════════════════════════════════════════════════════════════════

// RenderDifficultyBadge returns a styled difficulty badge.
func RenderDifficultyBadge(t Theme, difficulty string) string {
	var bg lipgloss.AdaptiveColor
	switch difficulty {
	case "Beginner":
		bg = ColorBeginnerBg
	case "Intermediate":
		bg = ColorIntermediateBg
	case "Advanced":
		bg = ColorAdvancedBg
	default:
		bg = ColorBgSubtle
	}

	return t.Renderer.NewStyle().
		Foreground(t.DifficultyColor(difficulty)).
		Background(bg).
		Bold(true).
		Padding(0, 1).
		Render(difficulty)
}

// RenderTechBadges renders technology tags separated by spaces, stopping
// before the list would exceed width cells.
func RenderTechBadges(t Theme, techs []string, width int) string {
	style := t.Renderer.NewStyle().Foreground(t.Info)
	var parts []string
	used := 0
	for _, tech := range techs {
		label := "#" + tech
		w := lipgloss.Width(label) + 1
		if width > 0 && used+w > width {
			parts = append(parts, t.MutedText.Render("…"))
			break
		}
		parts = append(parts, style.Render(label))
		used += w
	}
	return strings.Join(parts, " ")
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS VISUALIZATION
// ══════════════════════════════════════════════════════════════════════════════

// RenderProgressBar renders a horizontal bar for percent (0-100).
func RenderProgressBar(t Theme, percent, width int) string {
	if width <= 0 {
		return ""
	}
	percent = clamp(percent, 0, 100)
	filled := percent * width / 100

	var barColor lipgloss.AdaptiveColor
	switch {
	case percent >= 100:
		barColor = t.Success
	case percent >= 50:
		barColor = t.Info
	case percent > 0:
		barColor = t.Warning
	default:
		barColor = t.Secondary
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return t.Renderer.NewStyle().Foreground(barColor).Render(bar)
}

// RenderProgressLabel renders "done/total (pct%)".
func RenderProgressLabel(t Theme, done, total, percent int) string {
	style := t.MutedText
	if total > 0 && done == total {
		style = t.SuccessText
	}
	return style.Render(fmt.Sprintf("%d/%d (%d%%)", done, total, percent))
}

// ══════════════════════════════════════════════════════════════════════════════
// DIVIDERS AND SEPARATORS
// ══════════════════════════════════════════════════════════════════════════════

// RenderDivider renders a horizontal divider line
func RenderDivider(t Theme, width int) string {
	if width <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}

// RenderSubtleDivider renders a more subtle divider using dots
func RenderSubtleDivider(t Theme, width int) string {
	if width <= 0 {
		return ""
	}
	return t.MutedText.Render(strings.Repeat("·", width))
}
