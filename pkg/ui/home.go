package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/devsetup/pkg/catalog"
	"github.com/vanderheijden86/devsetup/pkg/progress"
	"github.com/vanderheijden86/devsetup/pkg/route"
	"github.com/vanderheijden86/devsetup/pkg/search"
)

// homeEntry is one selectable guide row on the home view.
type homeEntry struct {
	guide    catalog.Guide
	featured bool
}

// homeModel is the home view state: the catalog query and the guide cursor.
type homeModel struct {
	search  textinput.Model
	results []catalog.Category
	entries []homeEntry
	cursor  int
	// featured guides are shown only while the query is blank
	featured []catalog.Guide
}

func newHomeModel(theme Theme) homeModel {
	ti := textinput.New()
	ti.Placeholder = "Search guides, technologies..."
	ti.Prompt = "🔍 "
	ti.CharLimit = 120
	ti.Width = 50
	h := homeModel{search: ti}
	h.setTheme(theme)
	return h
}

func (h *homeModel) setTheme(theme Theme) {
	h.search.PromptStyle = theme.PrimaryBold
	h.search.PlaceholderStyle = theme.MutedText
}

// refilter recomputes the filtered catalog and the selectable rows.
func (h *homeModel) refilter(c *catalog.Catalog) {
	query := h.search.Value()
	h.results = search.Catalog(c.Categories(), query)
	h.featured = nil
	if search.Blank(query) {
		h.featured = c.Featured()
	}

	h.entries = nil
	for _, g := range h.featured {
		h.entries = append(h.entries, homeEntry{guide: g, featured: true})
	}
	for _, cat := range h.results {
		for _, g := range cat.Guides {
			h.entries = append(h.entries, homeEntry{guide: g})
		}
	}
	h.cursor = clamp(h.cursor, 0, len(h.entries)-1)
}

// heading is the title above the category list.
func (h homeModel) heading() string {
	if q := h.search.Value(); !search.Blank(q) {
		return fmt.Sprintf("Search Results for %q", q)
	}
	return "All Categories"
}

func (h homeModel) selected() (catalog.Guide, bool) {
	if h.cursor < 0 || h.cursor >= len(h.entries) {
		return catalog.Guide{}, false
	}
	return h.entries[h.cursor].guide, true
}

// ══════════════════════════════════════════════════════════════════════════════
// KEY HANDLING
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	h := &m.home

	if h.search.Focused() {
		switch msg.String() {
		case "esc", "enter":
			h.search.Blur()
			return m, nil
		case "down":
			h.search.Blur()
			h.cursor = clamp(h.cursor+1, 0, len(h.entries)-1)
			return m, nil
		}
		prev := h.search.Value()
		var cmd tea.Cmd
		h.search, cmd = h.search.Update(msg)
		if h.search.Value() != prev {
			h.cursor = 0
			h.refilter(m.cat)
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		return m, h.search.Focus()
	case "esc":
		if h.search.Value() != "" {
			h.search.SetValue("")
			h.cursor = 0
			h.refilter(m.cat)
		}
	case "j", "down":
		h.cursor = clamp(h.cursor+1, 0, len(h.entries)-1)
	case "k", "up":
		h.cursor = clamp(h.cursor-1, 0, len(h.entries)-1)
	case "g", "home":
		h.cursor = 0
	case "G", "end":
		h.cursor = max(len(h.entries)-1, 0)
	case "enter", "l", "right":
		if g, ok := h.selected(); ok {
			return m, m.openSelected(g)
		}
	case "t":
		return m, m.toggleTheme()
	}
	return m, nil
}

// openSelected opens g, or announces it as coming soon when it has no content.
func (m *Model) openSelected(g catalog.Guide) tea.Cmd {
	v, ok := route.Open(m.cat, g.ID)
	if !ok {
		if v.Kind == route.NotFound {
			m.navigateTo(v)
			return nil
		}
		return m.setStatus(route.ComingSoon(&g), false)
	}
	m.navigateTo(v)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RENDERING
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) renderHome() string {
	t := m.theme
	h := m.home
	width := max(m.width-2, 20)

	var lines []string
	add := func(block string) {
		lines = append(lines, strings.Split(block, "\n")...)
	}
	cursorLine := 0

	add(t.PrimaryBold.Render("Server setup guides, step by step"))
	add(t.MutedText.Render(fmt.Sprintf("%d categories · %d guides", len(m.cat.Categories()), len(m.cat.Guides()))))
	add(h.search.View())
	add("")

	idx := 0
	if len(h.featured) > 0 {
		add(t.Section.Render("★ Featured Guides"))
		for _, g := range h.featured {
			if idx == h.cursor {
				cursorLine = len(lines)
			}
			add(m.renderGuideRow(g, idx == h.cursor, width))
			idx++
		}
		add("")
	}

	add(t.Section.Render(h.heading()))
	if len(h.results) == 0 {
		add(t.MutedText.Render("No guides found"))
	}
	for _, cat := range h.results {
		add("")
		add(t.PrimaryBold.Render(IconGlyph(cat.Icon)+" "+cat.Title) + "  " +
			t.MutedText.Render(truncate(cat.Description, max(width-len(cat.Title)-6, 10))))
		for _, g := range cat.Guides {
			if idx == h.cursor {
				cursorLine = len(lines)
			}
			add(m.renderGuideRow(g, idx == h.cursor, width))
			idx++
		}
	}

	return windowLines(lines, cursorLine, m.bodyHeight(), 4, t)
}

// renderGuideRow renders a three-line guide entry with difficulty, duration,
// tags and progress.
func (m Model) renderGuideRow(g catalog.Guide, selected bool, width int) string {
	t := m.theme
	r := t.Renderer

	pointer := "  "
	titleStyle := r.NewStyle().Bold(true).Foreground(ColorText)
	if selected {
		pointer = t.PrimaryBold.Render("▶ ")
		titleStyle = t.PrimaryBold
	}

	status := ""
	if g.HasContent() {
		if done, total := m.progressFor(&g); done > 0 {
			status = "  " + RenderProgressLabel(t, done, total, progress.Percent(done, total))
		}
	} else {
		status = "  " + t.MutedText.Render("coming soon")
	}

	first := pointer + IconGlyph(g.Icon) + " " + titleStyle.Render(g.Title) + "  " +
		RenderDifficultyBadge(t, string(g.Difficulty)) + " " +
		t.MutedText.Render("⏱ "+g.Duration) + status
	second := "     " + t.MutedText.Render(truncate(g.Description, max(width-5, 10)))
	third := "     " + RenderTechBadges(t, g.Technologies, max(width-5, 10))
	return first + "\n" + second + "\n" + third
}

// windowLines returns the height-line window of lines that keeps focus
// visible, with the first keep lines pinned at the top.
func windowLines(lines []string, focus, height, keep int, t Theme) string {
	if len(lines) <= height {
		return strings.Join(lines, "\n")
	}
	keep = min(keep, len(lines))
	pinned := lines[:keep]
	rest := lines[keep:]
	focus -= keep

	// pinned lines plus two scroll hints; a guide row is three lines tall
	rows := max(height-keep-2, 1)
	start := 0
	if focus+3 > rows {
		start = focus + 3 - rows
	}
	start = clamp(start, 0, max(len(rest)-rows, 0))
	end := min(start+rows, len(rest))

	out := append([]string{}, pinned...)
	if start > 0 {
		out = append(out, t.MutedText.Render("↑ more above"))
	} else {
		out = append(out, "")
	}
	out = append(out, rest[start:end]...)
	if end < len(rest) {
		out = append(out, t.MutedText.Render("↓ more below"))
	}
	return strings.Join(out, "\n")
}

// progressFor reports the completed count of a guide without opening it.
func (m Model) progressFor(g *catalog.Guide) (done, total int) {
	set := m.store.Load(progress.Key(g.ID))
	total = g.TotalSteps()
	for n := range set {
		if n <= total {
			done++
		}
	}
	return done, total
}
