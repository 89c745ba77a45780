package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/devsetup/pkg/catalog"
	"github.com/vanderheijden86/devsetup/pkg/progress"
	"github.com/vanderheijden86/devsetup/pkg/route"
	"github.com/vanderheijden86/devsetup/pkg/search"
)

// guideHeaderLines is the height of the title, meta and search rows above
// the step viewport.
const guideHeaderLines = 4

// guideModel is the state of one open guide: its completed set, the step
// filter and the scroll position of the rendered steps.
type guideModel struct {
	guide   *catalog.Guide
	tracker *progress.Tracker

	search  textinput.Model
	visible []search.NumberedStep
	cursor  int // index into visible

	sidebarFocus  bool
	sidebarCursor int // index into guide.Steps

	viewport viewport.Model
	anchors  map[string]int    // step id -> first line in viewport content
	codeHTML map[string]string // rendered code per step id, reset on resize/theme

	theme    Theme
	renderer *MarkdownRenderer
	width    int
	height   int
}

func newGuideModel(g *catalog.Guide, tracker *progress.Tracker, theme Theme, renderer *MarkdownRenderer) *guideModel {
	ti := textinput.New()
	ti.Placeholder = "Search steps..."
	ti.Prompt = "/ "
	ti.CharLimit = 120

	gm := &guideModel{
		guide:    g,
		tracker:  tracker,
		search:   ti,
		viewport: viewport.New(defaultWidth, defaultHeight),
		anchors:  make(map[string]int),
		codeHTML: make(map[string]string),
		renderer: renderer,
	}
	gm.setTheme(theme, renderer)
	gm.refilter()
	return gm
}

func (g *guideModel) setTheme(theme Theme, renderer *MarkdownRenderer) {
	g.theme = theme
	g.renderer = renderer
	g.search.PromptStyle = theme.PrimaryBold
	g.search.PlaceholderStyle = theme.MutedText
	g.invalidate()
}

func (g *guideModel) resize(width, height int, renderer *MarkdownRenderer) {
	g.width = width
	g.height = height
	g.renderer = renderer
	g.search.Width = max(width-4, 10)
	g.viewport.Width = width
	g.viewport.Height = max(height-guideHeaderLines, 3)
	g.invalidate()
}

// invalidate drops cached code renders and rebuilds the content.
func (g *guideModel) invalidate() {
	clear(g.codeHTML)
	g.rebuild()
}

// refilter recomputes visible steps for the current query.
func (g *guideModel) refilter() {
	g.visible = search.Steps(g.guide.Steps, g.search.Value())
	g.cursor = 0
	g.rebuild()
	g.viewport.GotoTop()
}

// rebuild re-renders the viewport content and recomputes step anchors,
// keeping the scroll offset.
func (g *guideModel) rebuild() {
	if g.width == 0 {
		return
	}
	offset := g.viewport.YOffset
	content, anchors := g.renderSteps()
	g.anchors = anchors
	g.viewport.SetContent(content)
	g.viewport.SetYOffset(offset)
}

// JumpToStep scrolls the step with id into view. It reports false and does
// nothing when the step is hidden by the filter.
func (g *guideModel) JumpToStep(id string) bool {
	for i, ns := range g.visible {
		if ns.Step.ID == id {
			g.cursor = i
			g.rebuild()
			g.viewport.SetYOffset(g.anchors[id])
			return true
		}
	}
	return false
}

func (g *guideModel) moveCursor(delta int) {
	if len(g.visible) == 0 {
		return
	}
	g.cursor = clamp(g.cursor+delta, 0, len(g.visible)-1)
	g.rebuild()
	g.scrollToCursor()
}

func (g *guideModel) scrollToCursor() {
	if g.cursor < 0 || g.cursor >= len(g.visible) {
		return
	}
	top := g.anchors[g.visible[g.cursor].Step.ID]
	if top < g.viewport.YOffset || top >= g.viewport.YOffset+g.viewport.Height-2 {
		g.viewport.SetYOffset(top)
	}
}

// current returns the step under the cursor.
func (g *guideModel) current() (search.NumberedStep, bool) {
	if g.cursor < 0 || g.cursor >= len(g.visible) {
		return search.NumberedStep{}, false
	}
	return g.visible[g.cursor], true
}

func (g *guideModel) isVisible(id string) bool {
	_, ok := g.anchors[id]
	return ok
}

// ══════════════════════════════════════════════════════════════════════════════
// KEY HANDLING
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) updateGuide(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.guide
	if g == nil {
		m.goHome()
		return m, nil
	}

	if g.search.Focused() {
		switch msg.String() {
		case "esc", "enter":
			g.search.Blur()
			return m, nil
		}
		prev := g.search.Value()
		var cmd tea.Cmd
		g.search, cmd = g.search.Update(msg)
		if g.search.Value() != prev {
			g.refilter()
		}
		return m, cmd
	}

	if g.sidebarFocus {
		switch msg.String() {
		case "tab", "esc":
			g.sidebarFocus = false
		case "j", "down":
			g.sidebarCursor = clamp(g.sidebarCursor+1, 0, len(g.guide.Steps)-1)
		case "k", "up":
			g.sidebarCursor = clamp(g.sidebarCursor-1, 0, len(g.guide.Steps)-1)
		case "g", "home":
			g.sidebarCursor = 0
		case "G", "end":
			g.sidebarCursor = len(g.guide.Steps) - 1
		case "enter":
			id := g.guide.Steps[g.sidebarCursor].ID
			if !g.JumpToStep(id) {
				return m, m.setStatus(fmt.Sprintf("Step %d is hidden by the search filter", g.guide.StepNumber(id)), false)
			}
		case " ", "x":
			return m, m.toggleStep(g.sidebarCursor + 1)
		case "R":
			return m, m.resetProgress()
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		if g.search.Value() != "" {
			g.search.SetValue("")
			g.refilter()
			return m, nil
		}
		m.goHome()
		return m, nil
	case "/":
		return m, g.search.Focus()
	case "tab":
		g.sidebarFocus = true
		if ns, ok := g.current(); ok {
			g.sidebarCursor = ns.Number - 1
		}
	case "j", "down":
		g.moveCursor(1)
	case "k", "up":
		g.moveCursor(-1)
	case "g", "home":
		g.moveCursor(-len(g.visible))
		g.viewport.GotoTop()
	case "G", "end":
		g.moveCursor(len(g.visible))
	case "pgdown", "pgup", "ctrl+d", "ctrl+u":
		var cmd tea.Cmd
		g.viewport, cmd = g.viewport.Update(msg)
		return m, cmd
	case " ", "x", "enter":
		if ns, ok := g.current(); ok {
			return m, m.toggleStep(ns.Number)
		}
	case "y":
		if ns, ok := g.current(); ok {
			return m, m.copyText(ns.Step.Code)
		}
	case "Y":
		if ns, ok := g.current(); ok && ns.Step.AdditionalCode != nil {
			return m, m.copyText(ns.Step.AdditionalCode.Code)
		}
	case "R":
		return m, m.resetProgress()
	case "t":
		return m, m.toggleTheme()
	}
	return m, nil
}

// toggleStep flips step n of the open guide.
func (m *Model) toggleStep(n int) tea.Cmd {
	g := m.guide
	wasDone := g.tracker.AllDone()
	if err := g.tracker.Toggle(n); err != nil {
		return m.setStatus(err.Error(), true)
	}
	g.rebuild()
	if !wasDone && g.tracker.AllDone() {
		return m.setStatus(completionTitle(g.guide), false)
	}
	return nil
}

func (m *Model) resetProgress() tea.Cmd {
	m.guide.tracker.Reset()
	m.guide.rebuild()
	return m.setStatus("Progress reset", false)
}

// JumpToStep scrolls the open guide to the step with id. It is a no-op when
// no guide is open or the step is hidden by the current filter.
func (m *Model) JumpToStep(id string) bool {
	if m.view.Kind != route.Guide || m.guide == nil {
		return false
	}
	return m.guide.JumpToStep(id)
}

func completionTitle(g *catalog.Guide) string {
	if g.Completion != nil && g.Completion.Title != "" {
		return g.Completion.Title
	}
	return "All steps complete!"
}

// ══════════════════════════════════════════════════════════════════════════════
// RENDERING
// ══════════════════════════════════════════════════════════════════════════════

func (m Model) renderGuide() string {
	g := m.guide
	if g == nil {
		return ""
	}
	sidebar := g.renderSidebar(m.sidebarWidth, m.bodyHeight())
	content := lipgloss.JoinVertical(lipgloss.Left,
		g.renderHeader(),
		g.viewport.View(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", content)
}

// renderHeader renders the guide title, metadata, progress bar and search box.
func (g *guideModel) renderHeader() string {
	t := g.theme
	r := t.Renderer

	title := t.PrimaryBold.Render(IconGlyph(g.guide.Icon) + " " + g.guide.Title)
	meta := RenderDifficultyBadge(t, string(g.guide.Difficulty)) + " " +
		t.MutedText.Render("⏱ "+g.guide.Duration)

	barWidth := clamp(g.width-30, 10, 40)
	progressLine := RenderProgressBar(t, g.tracker.Percent(), barWidth) + " " +
		RenderProgressLabel(t, g.tracker.Count(), g.tracker.Total(), g.tracker.Percent())

	searchLine := g.search.View()
	if !g.search.Focused() && g.search.Value() != "" {
		searchLine = t.MutedText.Render("Filter: ") + r.NewStyle().Foreground(t.Info).Render(g.search.Value()) +
			t.MutedText.Render(fmt.Sprintf("  (%d of %d steps)", len(g.visible), len(g.guide.Steps)))
	}

	return strings.Join([]string{
		truncate(title, g.width) + "  " + meta,
		truncate(g.guide.Description, g.width),
		progressLine,
		searchLine,
	}, "\n")
}

// renderSidebar lists every step with its completion mark. Steps hidden by
// the filter are dimmed but keep their numbers.
func (g *guideModel) renderSidebar(width, height int) string {
	t := g.theme
	r := t.Renderer

	borderColor := t.Border
	if g.sidebarFocus {
		borderColor = t.Primary
	}
	style := r.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(borderColor).
		Width(width).
		Height(height)

	inner := max(width-2, 8)
	var lines []string
	lines = append(lines, t.Section.Render("Steps"))

	rows := max(height-4, 1)
	start := 0
	if g.sidebarFocus && g.sidebarCursor >= rows {
		start = g.sidebarCursor - rows + 1
	}
	end := min(start+rows, len(g.guide.Steps))
	if start > 0 {
		lines = append(lines, t.MutedText.Render("↑ more above"))
	}
	for i := start; i < end; i++ {
		step := g.guide.Steps[i]
		n := i + 1
		mark := t.MutedText.Render("○")
		if g.tracker.Done(n) {
			mark = t.SuccessText.Render("✓")
		}
		label := padRight(truncate(fmt.Sprintf("%d. %s", n, step.Title), inner-2), inner-2)

		lineStyle := t.Base
		switch {
		case g.sidebarFocus && i == g.sidebarCursor:
			lineStyle = r.NewStyle().Bold(true).Foreground(t.Info).Background(t.Highlight)
		case !g.isVisible(step.ID):
			lineStyle = t.MutedText
		case !g.sidebarFocus && len(g.visible) > 0 && g.visible[g.cursor].Number == n:
			lineStyle = t.PrimaryBold
		}
		lines = append(lines, mark+" "+lineStyle.Render(label))
	}
	if end < len(g.guide.Steps) {
		lines = append(lines, t.MutedText.Render("↓ more below"))
	}
	lines = append(lines, "", t.MutedText.Render("R reset progress"))

	return style.Render(strings.Join(lines, "\n"))
}

// renderSteps renders the scrollable guide body and returns it with the
// first line of each visible step.
func (g *guideModel) renderSteps() (string, map[string]int) {
	t := g.theme
	r := t.Renderer
	width := max(g.width-2, 20)
	wrap := r.NewStyle().Width(width)
	query := g.search.Value()

	var lines []string
	add := func(block string) {
		lines = append(lines, strings.Split(block, "\n")...)
	}
	anchors := make(map[string]int, len(g.visible))

	if search.Blank(query) {
		g.renderIntro(add, wrap)
	}

	if len(g.visible) == 0 && !search.Blank(query) {
		add(t.MutedText.Render(fmt.Sprintf("No steps found matching %q", query)))
	}

	for i, ns := range g.visible {
		anchors[ns.Step.ID] = len(lines)
		add(g.renderStep(ns, i == g.cursor, wrap))
		add("")
	}

	if g.tracker.AllDone() {
		add(g.renderCompletion(wrap))
	}

	return strings.Join(lines, "\n"), anchors
}

func (g *guideModel) renderIntro(add func(string), wrap lipgloss.Style) {
	t := g.theme
	gd := g.guide
	if gd.Overview != "" {
		add(wrap.Render(gd.Overview))
		add("")
	}
	list := func(title string, items []string, bullet string) {
		if len(items) == 0 {
			return
		}
		add(t.Section.Render(title))
		for _, it := range items {
			add(wrap.Render(bullet + " " + it))
		}
		add("")
	}
	list("Symptoms", gd.Symptoms, "•")
	list("What you'll learn", gd.Learn, "✓")
	list("Prerequisites", gd.Prerequisites, "•")
	if gd.Notice != nil {
		add(g.renderCallout(gd.Notice, t.Warning, "⚠", wrap))
		add("")
	}
}

func (g *guideModel) renderStep(ns search.NumberedStep, selected bool, wrap lipgloss.Style) string {
	t := g.theme
	r := t.Renderer
	step := ns.Step

	box := "[ ]"
	boxStyle := t.MutedText
	if g.tracker.Done(ns.Number) {
		box = "[✓]"
		boxStyle = t.SuccessText
	}
	pointer := "  "
	titleStyle := r.NewStyle().Bold(true).Foreground(ColorText)
	if selected {
		pointer = t.PrimaryBold.Render("▶ ")
		titleStyle = t.PrimaryBold
	}
	header := pointer + boxStyle.Render(box) + " " +
		titleStyle.Render(fmt.Sprintf("Step %d: %s", ns.Number, step.Title))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	if step.Description != "" {
		b.WriteString(wrap.Render(step.Description))
		b.WriteString("\n")
	}
	b.WriteString(g.renderCode(step.ID, step.Language, "", step.Code, "y"))
	if ac := step.AdditionalCode; ac != nil {
		b.WriteString("\n")
		b.WriteString(g.renderCode(step.ID+"#additional", ac.Language, ac.Title, ac.Code, "Y"))
	}
	if len(step.Tips) > 0 {
		b.WriteString("\n")
		b.WriteString(t.WarningText.Render("💡 Tips"))
		for _, tip := range step.Tips {
			b.WriteString("\n")
			b.WriteString(wrap.Render("  • " + tip))
		}
	}
	return b.String()
}

// renderCode renders one code snippet with its language label and copy key.
func (g *guideModel) renderCode(cacheKey, lang, title, code, copyKey string) string {
	t := g.theme
	label := t.InfoText.Render(lang)
	if title != "" {
		label += t.MutedText.Render(" • " + title)
	}
	label += t.MutedText.Render("  (" + copyKey + " to copy)")

	rendered, ok := g.codeHTML[cacheKey]
	if !ok {
		var err error
		rendered, err = g.renderer.Render(codeBlock(code, lang))
		if err != nil {
			rendered = code
		}
		g.codeHTML[cacheKey] = rendered
	}
	return label + "\n" + rendered
}

func (g *guideModel) renderCallout(c *catalog.Callout, color lipgloss.AdaptiveColor, icon string, wrap lipgloss.Style) string {
	t := g.theme
	r := t.Renderer
	var b strings.Builder
	b.WriteString(r.NewStyle().Bold(true).Foreground(color).Render(icon + " " + c.Title))
	if c.Message != "" {
		b.WriteString("\n")
		b.WriteString(wrap.Render(c.Message))
	}
	for _, d := range c.Details {
		b.WriteString("\n")
		b.WriteString(wrap.Render("  • " + d))
	}
	return r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Render(b.String())
}

func (g *guideModel) renderCompletion(wrap lipgloss.Style) string {
	c := g.guide.Completion
	if c == nil {
		c = &catalog.Callout{
			Title:   completionTitle(g.guide),
			Message: fmt.Sprintf("You have completed all %d steps of %s.", g.tracker.Total(), g.guide.Title),
		}
	}
	return g.renderCallout(c, g.theme.Success, "🎉", wrap)
}
