package ui

import (
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/devsetup/pkg/metrics"
)

// MarkdownRenderer wraps a glamour renderer whose style follows the theme.
// Terminals without color get the plain "notty" style so output stays free
// of escape sequences.
type MarkdownRenderer struct {
	tr    *glamour.TermRenderer
	width int
	style string
}

// markdownStyle picks the glamour standard style for the theme.
func markdownStyle(theme Theme) string {
	if TermProfile <= colorprofile.ASCII {
		return "notty"
	}
	if theme.Dark {
		return "dark"
	}
	return "light"
}

// NewMarkdownRendererWithTheme returns a renderer wrapping at width cells.
func NewMarkdownRendererWithTheme(width int, theme Theme) *MarkdownRenderer {
	if width < 20 {
		width = 20
	}
	m := &MarkdownRenderer{width: width, style: markdownStyle(theme)}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		m.tr = tr
	}
	return m
}

// Width returns the wrap width.
func (m *MarkdownRenderer) Width() int { return m.width }

// Style returns the glamour style name in use.
func (m *MarkdownRenderer) Style() string { return m.style }

// Render renders markdown, falling back to the raw text when glamour is
// unavailable or fails.
func (m *MarkdownRenderer) Render(markdown string) (string, error) {
	defer metrics.Timer(metrics.MarkdownRender)()
	if m == nil || m.tr == nil {
		return markdown, nil
	}
	out, err := m.tr.Render(markdown)
	if err != nil {
		return markdown, err
	}
	// Strip trailing whitespace/newlines that glamour adds
	return strings.TrimRight(out, " \n"), nil
}

// codeBlock formats code as a fenced markdown block tagged with lang.
func codeBlock(code, lang string) string {
	fence := "```"
	for strings.Contains(code, fence) {
		fence += "`"
	}
	return fence + lang + "\n" + strings.TrimRight(code, "\n") + "\n" + fence
}
