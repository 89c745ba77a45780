package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/devsetup/pkg/route"
)

func (m Model) updateNotFound(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter", "esc", "h":
		m.goHome()
	case "t":
		return m, m.toggleTheme()
	}
	return m, nil
}

// renderNotFound renders the catch-all view for unknown paths, listing the
// paths that do exist.
func (m Model) renderNotFound() string {
	t := m.theme
	r := t.Renderer

	var b strings.Builder
	b.WriteString(t.ErrorText.Render("404 Page Not Found"))
	b.WriteString("\n\n")
	b.WriteString(t.Base.Render("Nothing lives at "))
	b.WriteString(t.InfoText.Render(m.view.Path))
	b.WriteString("\n\n")
	b.WriteString(t.MutedText.Render("Available paths:"))
	for _, p := range route.Paths(m.cat) {
		b.WriteString("\n  ")
		b.WriteString(t.InfoText.Render(p))
	}
	b.WriteString("\n\n")
	b.WriteString(t.MutedText.Render("Press enter to go home."))

	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Danger).
		Padding(1, 3).
		Render(b.String())
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}
