package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Route paths.
const (
	RouteDashboard = "/"
	RouteModels    = "/models"
	RouteSystem    = "/system"
	RouteSettings  = "/settings"
)

type route struct {
	path  string
	title string
	build func(deps *Deps, gen generation) screen
}

var routes = []route{
	{RouteDashboard, "Dashboard", func(d *Deps, g generation) screen { return newDashboard(d, g) }},
	{RouteModels, "Models", func(d *Deps, g generation) screen { return newModelsScreen(d, g) }},
	{RouteSystem, "System", func(d *Deps, g generation) screen { return newSystemScreen(d, g) }},
	{RouteSettings, "Settings", func(d *Deps, g generation) screen { return newSettingsScreen(d, g) }},
}

var appKeys = struct {
	Quit, ForceQuit, Prev, Next, PageUp, PageDown, Top, Bottom key.Binding
}{
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	Prev:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→ 1-4", "switch screen")),
	Next:      key.NewBinding(key.WithKeys("right", "l")),
	PageUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup/pgdn", "scroll")),
	PageDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d")),
	Top:       key.NewBinding(key.WithKeys("home")),
	Bottom:    key.NewBinding(key.WithKeys("end")),
}

// App routes between the four screens. Exactly one screen is mounted at a
// time; switching routes unmounts it and mounts a fresh instance.
type App struct {
	deps       *Deps
	activeTab  int
	current    screen
	generation generation
	notices    notifier
	help       help.Model
	width      int
	height     int
	// Vertical scrolling state
	verticalScrollOffset int
	contentHeight        int
}

// NewApp builds the application starting on startRoute. An unknown route
// falls back to the dashboard.
func NewApp(deps Deps, startRoute string) *App {
	a := &App{
		deps:    &deps,
		notices: notifier{ttl: deps.NotificationTTL},
		help:    help.New(),
	}
	a.activeTab = routeIndex(startRoute)
	return a
}

func routeIndex(path string) int {
	for i, r := range routes {
		if r.path == path {
			return i
		}
	}
	return 0
}

// Route returns the path of the mounted screen.
func (a *App) Route() string {
	return routes[a.activeTab].path
}

func (a *App) Init() tea.Cmd {
	return a.mount(a.activeTab)
}

func (a *App) mount(tab int) tea.Cmd {
	if a.current != nil {
		a.current.Unmount()
	}
	a.activeTab = tab
	a.verticalScrollOffset = 0
	a.generation++
	a.current = routes[tab].build(a.deps, a.generation)
	a.deps.Logger.Debug("screen mounted", "route", routes[tab].path, "generation", a.generation)
	return a.current.Mount()
}

// Shutdown unmounts the current screen.
func (a *App) Shutdown() {
	if a.current != nil {
		a.current.Unmount()
		a.current = nil
	}
}

// Get the height available for content (excluding sticky header elements)
func (a *App) getContentAreaHeight() int {
	// title, tabs, banner, help and the blank lines between them
	reservedHeight := 8
	return max(1, a.height-reservedHeight)
}

func (a *App) getMaxScrollOffset() int {
	availableHeight := a.getContentAreaHeight()
	if a.contentHeight <= availableHeight {
		return 0
	}
	return a.contentHeight - availableHeight
}

func (a *App) clampVerticalScroll() {
	a.verticalScrollOffset = max(0, min(a.verticalScrollOffset, a.getMaxScrollOffset()))
}

// Apply vertical scrolling to content by truncating lines
func (a *App) applyVerticalScroll(content string) string {
	lines := strings.Split(content, "\n")
	a.contentHeight = len(lines)
	a.clampVerticalScroll()

	availableHeight := a.getContentAreaHeight()
	if a.height == 0 || len(lines) <= availableHeight {
		return content
	}

	startLine := a.verticalScrollOffset
	endLine := min(startLine+availableHeight, len(lines))
	result := strings.Join(lines[startLine:endLine], "\n")

	indicator := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	if a.verticalScrollOffset > 0 {
		result = indicator.Render("▲ More content above") + "\n" + result
	}
	if a.verticalScrollOffset < a.getMaxScrollOffset() {
		result = result + "\n" + indicator.Render("▼ More content below")
	}
	return result
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case notifyMsg:
		return a, a.notices.show(msg.kind, msg.text)

	case dismissNoticeMsg:
		a.notices.dismiss(msg.id)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, appKeys.ForceQuit) {
			a.Shutdown()
			return a, tea.Quit
		}
		if a.current != nil && a.current.Capturing() {
			return a, a.current.Update(msg)
		}
		if cmd, ok := a.handleGlobalKey(msg); ok {
			return a, cmd
		}
	}

	if a.current == nil {
		return a, nil
	}
	return a, a.current.Update(msg)
}

func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, appKeys.Quit):
		a.Shutdown()
		return tea.Quit, true
	case key.Matches(msg, appKeys.Prev):
		if a.activeTab > 0 {
			return a.mount(a.activeTab - 1), true
		}
		return nil, true
	case key.Matches(msg, appKeys.Next):
		if a.activeTab < len(routes)-1 {
			return a.mount(a.activeTab + 1), true
		}
		return nil, true
	case key.Matches(msg, appKeys.PageUp):
		a.verticalScrollOffset = max(0, a.verticalScrollOffset-max(1, a.getContentAreaHeight()/2))
		return nil, true
	case key.Matches(msg, appKeys.PageDown):
		a.verticalScrollOffset += max(1, a.getContentAreaHeight()/2)
		a.clampVerticalScroll()
		return nil, true
	case key.Matches(msg, appKeys.Top):
		a.verticalScrollOffset = 0
		return nil, true
	case key.Matches(msg, appKeys.Bottom):
		a.verticalScrollOffset = a.getMaxScrollOffset()
		return nil, true
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '0'+byte(len(routes)) {
		tab := int(s[0] - '1')
		if tab == a.activeTab {
			return nil, true
		}
		return a.mount(tab), true
	}
	return nil, false
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	title := TitleStyle.Width(a.width).Render("AI Assistant Admin")
	tabs := a.renderTabs()

	content := ""
	if a.current != nil {
		content = a.current.View(a.width - 4)
	}
	scrollableContent := a.applyVerticalScroll(content)

	bindings := []key.Binding{appKeys.Prev}
	if a.current != nil {
		bindings = append(bindings, a.current.KeyBindings()...)
	}
	bindings = append(bindings, appKeys.PageUp, appKeys.Quit)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		tabs,
		a.notices.view(),
		scrollableContent,
		"",
		a.help.ShortHelpView(bindings),
	)
}

func (a *App) renderTabs() string {
	elements := make([]string, 0, len(routes))
	for i, r := range routes {
		label := fmt.Sprintf("%d %s", i+1, r.title)
		if i == a.activeTab {
			elements = append(elements, ActiveTabStyle.Render(label))
		} else {
			elements = append(elements, InactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, elements...)
}
