package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/devsetup/pkg/catalog"
	"github.com/vanderheijden86/devsetup/pkg/debug"
	"github.com/vanderheijden86/devsetup/pkg/metrics"
	"github.com/vanderheijden86/devsetup/pkg/progress"
	"github.com/vanderheijden86/devsetup/pkg/route"
	"github.com/vanderheijden86/devsetup/pkg/watcher"
)

// statusDuration is how long a transient status message stays visible.
const statusDuration = 2 * time.Second

// Default dimensions used until the first WindowSizeMsg arrives.
const (
	defaultWidth        = 120
	defaultHeight       = 40
	defaultSidebarWidth = 34
)

// statusClearMsg clears the status line if no newer message replaced it.
type statusClearMsg struct{ seq int }

// CatalogReloadedMsg carries the result of reloading a watched catalog
// directory. Err is set when the new catalog failed to load.
type CatalogReloadedMsg struct {
	Catalog *catalog.Catalog
	Err     error
}

// WatchCatalogCmd waits for the next change under dir and reloads it. It
// returns nil once the watcher stops.
func WatchCatalogCmd(w *watcher.Watcher, dir string) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.Changed():
		case <-w.Done():
			return nil
		}
		c, err := catalog.LoadDir(dir)
		return CatalogReloadedMsg{Catalog: c, Err: err}
	}
}

// Option configures a Model.
type Option func(*Model)

// WithLightTheme starts the model in the light theme.
func WithLightTheme(light bool) Option {
	return func(m *Model) { m.light = light }
}

// WithSidebarWidth sets the guide sidebar width in cells.
func WithSidebarWidth(w int) Option {
	return func(m *Model) {
		if w > 0 {
			m.sidebarWidth = w
		}
	}
}

// WithInitialPath opens the model on path instead of home.
func WithInitialPath(path string) Option {
	return func(m *Model) { m.initialPath = path }
}

// WithInitialView opens the model on an already resolved view.
func WithInitialView(v route.View) Option {
	return func(m *Model) { m.initialView = &v }
}

// WithThemeSaver registers fn to persist the theme after each toggle.
func WithThemeSaver(fn func(light bool) error) Option {
	return func(m *Model) { m.saveTheme = fn }
}

// WithCatalogWatch reloads the catalog from dir whenever w reports a change.
func WithCatalogWatch(w *watcher.Watcher, dir string) Option {
	return func(m *Model) {
		m.watcher = w
		m.catalogDir = dir
	}
}

// WithClipboard replaces the system clipboard.
func WithClipboard(fn ClipboardWriter) Option {
	return func(m *Model) { m.copy = fn }
}

// Model is the main Bubble Tea model for devsetup
type Model struct {
	// Data
	cat   *catalog.Catalog
	store *progress.Store

	// Navigation
	view        route.View
	initialPath string
	initialView *route.View
	home        homeModel
	guide       *guideModel

	// UI Components
	theme        Theme
	light        bool
	renderer     *MarkdownRenderer
	width        int
	height       int
	sidebarWidth int

	// Status message (for temporary feedback)
	statusMsg     string
	statusIsError bool
	statusSeq     int

	// Collaborators
	copy       ClipboardWriter
	saveTheme  func(light bool) error
	watcher    *watcher.Watcher
	catalogDir string
}

// NewModel returns a model over cat that records progress in store.
func NewModel(cat *catalog.Catalog, store *progress.Store, opts ...Option) Model {
	m := Model{
		cat:          cat,
		store:        store,
		width:        defaultWidth,
		height:       defaultHeight,
		sidebarWidth: defaultSidebarWidth,
		copy:         systemClipboard,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.applyTheme()
	m.home = newHomeModel(m.theme)
	m.home.refilter(cat)

	switch {
	case m.initialView != nil:
		m.navigateTo(*m.initialView)
	case m.initialPath != "":
		m.navigateTo(route.Resolve(cat, m.initialPath))
	default:
		m.view = route.View{Kind: route.Home, Path: route.HomePath}
	}
	return m
}

func (m *Model) applyTheme() {
	m.theme = NewTheme(!m.light)
	m.renderer = NewMarkdownRendererWithTheme(m.contentWidth()-4, m.theme)
	m.home.setTheme(m.theme)
	if m.guide != nil {
		m.guide.setTheme(m.theme, m.renderer)
	}
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchCatalogCmd(m.watcher, m.catalogDir)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.renderer = NewMarkdownRendererWithTheme(m.contentWidth()-4, m.theme)
		if m.guide != nil {
			m.guide.resize(m.contentWidth(), m.bodyHeight(), m.renderer)
		}
		return m, nil

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
			m.statusIsError = false
		}
		return m, nil

	case CatalogReloadedMsg:
		cmds = append(cmds, m.handleCatalogReload(msg))
		if m.watcher != nil {
			cmds = append(cmds, WatchCatalogCmd(m.watcher, m.catalogDir))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view.Kind {
		case route.Guide:
			return m.updateGuide(msg)
		case route.NotFound:
			return m.updateNotFound(msg)
		default:
			return m.updateHome(msg)
		}
	}

	return m, nil
}

// handleCatalogReload swaps in a reloaded catalog. A failed reload keeps the
// previous catalog and reports the error.
func (m *Model) handleCatalogReload(msg CatalogReloadedMsg) tea.Cmd {
	if msg.Err != nil {
		debug.Log("ui: catalog reload failed, keeping previous catalog: %v", msg.Err)
		return m.setStatus(fmt.Sprintf("Catalog reload failed: %v", firstLine(msg.Err.Error())), true)
	}
	if msg.Catalog == nil {
		return nil
	}
	m.cat = msg.Catalog
	m.home.refilter(m.cat)

	if m.view.Kind == route.Guide && m.guide != nil {
		g, err := m.cat.Guide(m.guide.guide.ID)
		if err != nil || !g.HasContent() {
			m.goHome()
		} else {
			// the store cache keeps completed sets that failed to persist
			query := m.guide.search.Value()
			m.openGuide(g)
			m.guide.search.SetValue(query)
			m.guide.refilter()
		}
	}
	return m.setStatus("Catalog reloaded", false)
}

// setStatus shows msg on the status line and schedules it to clear.
func (m *Model) setStatus(msg string, isError bool) tea.Cmd {
	m.statusSeq++
	m.statusMsg = msg
	m.statusIsError = isError
	seq := m.statusSeq
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

// Navigate moves to the view addressed by path.
func (m *Model) Navigate(path string) {
	m.navigateTo(route.Resolve(m.cat, path))
}

func (m *Model) navigateTo(v route.View) {
	switch v.Kind {
	case route.Guide:
		m.openGuide(v.Guide)
	case route.NotFound:
		m.guide = nil
		m.view = v
	default:
		m.goHome()
	}
}

func (m *Model) openGuide(g *catalog.Guide) {
	m.view = route.View{Kind: route.Guide, Path: g.Route, Guide: g}
	m.guide = newGuideModel(g, m.store.Track(g.ID, g.TotalSteps()), m.theme, m.renderer)
	m.guide.resize(m.contentWidth(), m.bodyHeight(), m.renderer)
}

func (m *Model) goHome() {
	m.guide = nil
	m.view = route.View{Kind: route.Home, Path: route.HomePath}
}

// toggleTheme flips dark/light and persists the choice.
func (m *Model) toggleTheme() tea.Cmd {
	m.light = !m.light
	m.applyTheme()
	if m.saveTheme != nil {
		if err := m.saveTheme(m.light); err != nil {
			debug.Log("ui: saving theme failed: %v", err)
			return m.setStatus("Failed to save theme", true)
		}
	}
	name := "dark"
	if m.light {
		name = "light"
	}
	return m.setStatus("Theme: "+name, false)
}

// copyText copies text and reports the outcome on the status line.
func (m *Model) copyText(text string) tea.Cmd {
	if err := m.copy(text); err != nil {
		debug.Log("ui: clipboard copy failed: %v", err)
		return m.setStatus("Failed to copy", true)
	}
	return m.setStatus("Copied!", false)
}

func (m Model) bodyHeight() int {
	// header (2) + footer (1)
	return max(m.height-3, 5)
}

func (m Model) contentWidth() int {
	return max(m.width-m.sidebarWidth-3, 30)
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()
	var body string
	switch m.view.Kind {
	case route.Guide:
		body = m.renderGuide()
	case route.NotFound:
		body = m.renderNotFound()
	default:
		body = m.renderHome()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderGlobalHeader(),
		body,
		m.renderFooter(),
	)
}

// renderGlobalHeader renders the title bar with the current path.
func (m Model) renderGlobalHeader() string {
	r := m.theme.Renderer
	title := m.theme.Header.Render("⚙ DevSetup Hub")
	path := r.NewStyle().Foreground(m.theme.Subtext).Render(" " + m.view.Path)

	right := ""
	if m.view.Kind == route.Guide && m.guide != nil {
		t := m.guide.tracker
		right = RenderProgressLabel(m.theme, t.Count(), t.Total(), t.Percent())
	}
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(path)-lipgloss.Width(right), 1)
	line := title + path + strings.Repeat(" ", gap) + right
	return line + "\n" + RenderDivider(m.theme, m.width)
}

// renderFooter renders the status message or context-sensitive key hints.
func (m Model) renderFooter() string {
	r := m.theme.Renderer

	if m.statusMsg != "" {
		style := m.theme.SuccessText.Bold(true).Padding(0, 1)
		prefix := "✓ "
		if m.statusIsError {
			style = m.theme.ErrorText.Padding(0, 1)
			prefix = "✗ "
		}
		return style.Render(prefix + m.statusMsg)
	}

	keyStyle := r.NewStyle().Bold(true).Foreground(m.theme.Primary)
	descStyle := r.NewStyle().Foreground(m.theme.Subtext)
	sep := r.NewStyle().Foreground(m.theme.Muted).Render(" │ ")

	type hint struct {
		key   string
		label string
	}
	var hints []hint
	switch m.view.Kind {
	case route.Guide:
		switch {
		case m.guide != nil && m.guide.search.Focused():
			hints = []hint{{"enter", "apply"}, {"esc", "done"}}
		case m.guide != nil && m.guide.sidebarFocus:
			hints = []hint{{"j/k", "select"}, {"enter", "jump"}, {"space", "toggle"}, {"tab", "content"}}
		default:
			hints = []hint{{"j/k", "step"}, {"space", "done"}, {"/", "search"}, {"y/Y", "copy"},
				{"tab", "steps"}, {"R", "reset"}, {"t", "theme"}, {"esc", "home"}}
		}
	case route.NotFound:
		hints = []hint{{"enter", "home"}, {"q", "quit"}}
	default:
		if m.home.search.Focused() {
			hints = []hint{{"enter", "apply"}, {"esc", "done"}}
		} else {
			hints = []hint{{"j/k", "select"}, {"enter", "open"}, {"/", "search"}, {"t", "theme"}, {"q", "quit"}}
		}
	}

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyStyle.Render(h.key)+descStyle.Render(" "+h.label))
	}
	return r.NewStyle().MaxWidth(m.width).Render(strings.Join(parts, sep))
}

// CurrentView returns the active navigation target.
func (m Model) CurrentView() route.View { return m.view }

// StatusMessage returns the status line text and whether it is an error.
func (m Model) StatusMessage() (string, bool) { return m.statusMsg, m.statusIsError }

// IsLight reports whether the light theme is active.
func (m Model) IsLight() bool { return m.light }

// Catalog returns the catalog currently shown.
func (m Model) Catalog() *catalog.Catalog { return m.cat }
