package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prabalesh/aideck/internal/format"
	"github.com/prabalesh/aideck/internal/models"
	"github.com/prabalesh/aideck/internal/store"
	"github.com/prabalesh/aideck/internal/sysinfo"
)

type systemInfoMsg struct {
	gen  generation
	info models.SystemInfo
}

type pollStoppedMsg struct {
	gen generation
}

type logsLoadedMsg struct {
	gen  generation
	seq  uint64
	logs []models.LogEntry
	err  error
}

const (
	tabOverview = iota
	tabLogs
)

var systemKeys = struct {
	SwitchTab, Search, Refresh, Done key.Binding
}{
	SwitchTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "overview/logs")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh logs")),
	Done:      key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc", "done")),
}

// systemScreen polls the system snapshot on a fixed interval and fetches
// logs on mount and on demand.
type systemScreen struct {
	deps    *Deps
	gen     generation
	ctx     context.Context
	cancel  context.CancelFunc
	mounted bool

	snapshots <-chan models.SystemInfo
	info      models.SystemInfo
	received  bool
	logs      []models.LogEntry
	logSeq    store.Sequencer

	tab      int
	search   textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	cpuProgress     progress.Model
	memoryProgress  progress.Model
	gpuProgress     progress.Model
	storageProgress progress.Model
}

func newSystemScreen(deps *Deps, gen generation) *systemScreen {
	search := textinput.New()
	search.Placeholder = "Search logs"
	search.Prompt = "/ "
	search.Width = 40
	search.Cursor.SetMode(cursor.CursorStatic)

	newBar := func() progress.Model {
		return progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	}

	return &systemScreen{
		deps:            deps,
		gen:             gen,
		search:          search,
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport:        viewport.New(80, 12),
		cpuProgress:     newBar(),
		memoryProgress:  newBar(),
		gpuProgress:     newBar(),
		storageProgress: newBar(),
	}
}

func (s *systemScreen) Mount() tea.Cmd {
	s.mounted = true
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return tea.Batch(s.poll(), s.fetchLogs(), s.spinner.Tick)
}

func (s *systemScreen) Unmount() {
	s.mounted = false
	if s.cancel != nil {
		s.cancel()
	}
}

// poll runs the poller on the mount context and returns the command that
// waits for its next snapshot.
func (s *systemScreen) poll() tea.Cmd {
	ctx, gen := s.ctx, s.gen
	snapshots := make(chan models.SystemInfo, 1)
	poller := sysinfo.NewPoller(s.deps.API.GetSystemInfo, s.deps.PollInterval, s.deps.Logger)
	s.snapshots = snapshots
	go func() {
		defer close(snapshots)
		poller.Run(ctx, func(info models.SystemInfo) {
			select {
			case snapshots <- info:
			case <-ctx.Done():
			}
		})
	}()
	return waitSnapshot(snapshots, gen)
}

func waitSnapshot(snapshots <-chan models.SystemInfo, gen generation) tea.Cmd {
	return func() tea.Msg {
		info, ok := <-snapshots
		if !ok {
			return pollStoppedMsg{gen: gen}
		}
		return systemInfoMsg{gen: gen, info: info}
	}
}

func (s *systemScreen) fetchLogs() tea.Cmd {
	ctx, gen := s.ctx, s.gen
	seq := s.logSeq.Begin()
	return func() tea.Msg {
		logs, err := s.deps.API.GetSystemLogs(ctx)
		return logsLoadedMsg{gen: gen, seq: seq, logs: logs, err: err}
	}
}

func (s *systemScreen) live(gen generation) bool {
	return s.mounted && gen == s.gen
}

func (s *systemScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case systemInfoMsg:
		if !s.live(msg.gen) {
			return nil
		}
		s.info = msg.info
		s.received = true
		return waitSnapshot(s.snapshots, msg.gen)

	case pollStoppedMsg:
		return nil

	case logsLoadedMsg:
		if !s.live(msg.gen) || !s.logSeq.Accept(msg.seq) {
			return nil
		}
		if msg.err != nil {
			s.deps.Logger.Error("Error fetching logs", "error", msg.err)
			return nil
		}
		s.logs = msg.logs
		s.refreshViewport()
		return nil

	case spinner.TickMsg:
		if !s.mounted || s.received {
			return nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return s.updateKeys(msg)
	}
	return nil
}

func (s *systemScreen) updateKeys(msg tea.KeyMsg) tea.Cmd {
	if s.search.Focused() {
		if key.Matches(msg, systemKeys.Done) {
			s.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		s.refreshViewport()
		return cmd
	}

	switch {
	case key.Matches(msg, systemKeys.SwitchTab):
		if s.tab == tabOverview {
			s.tab = tabLogs
		} else {
			s.tab = tabOverview
		}
		return nil
	case s.tab != tabLogs:
		return nil
	case key.Matches(msg, systemKeys.Search):
		return s.search.Focus()
	case key.Matches(msg, systemKeys.Refresh):
		return s.fetchLogs()
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}

func (s *systemScreen) filteredLogs() []models.LogEntry {
	return sysinfo.FilterLogs(s.logs, s.search.Value())
}

func (s *systemScreen) refreshViewport() {
	entries := s.filteredLogs()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			MutedStyle.Render(e.Timestamp),
			LevelStyle(e.Level).Render(fmt.Sprintf("%-7s", strings.ToUpper(string(e.Level)))),
			LabelStyle.Render("["+e.Source+"]"),
			e.Message,
		))
	}
	if len(lines) == 0 {
		lines = append(lines, MutedStyle.Render("No log entries"))
	}
	s.viewport.SetContent(strings.Join(lines, "\n"))
}

func (s *systemScreen) Capturing() bool { return s.search.Focused() }

func (s *systemScreen) KeyBindings() []key.Binding {
	if s.search.Focused() {
		return []key.Binding{systemKeys.Done}
	}
	if s.tab == tabLogs {
		return []key.Binding{systemKeys.SwitchTab, systemKeys.Search, systemKeys.Refresh}
	}
	return []key.Binding{systemKeys.SwitchTab}
}

func (s *systemScreen) View(width int) string {
	if !s.received {
		return lipgloss.JoinVertical(lipgloss.Left,
			HeaderStyle.Render("System"),
			"",
			s.spinner.View()+" Loading system information...",
		)
	}

	tabs := []string{"Overview", "Logs"}
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if i == s.tab {
			rendered[i] = ActiveTabStyle.Render(t)
		} else {
			rendered[i] = InactiveTabStyle.Render(t)
		}
	}

	var body string
	if s.tab == tabOverview {
		body = s.overviewView(width)
	} else {
		body = s.logsView(width)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render("System"),
		lipgloss.JoinHorizontal(lipgloss.Left, rendered...),
		"",
		body,
	)
}

func (s *systemScreen) overviewView(width int) string {
	barWidth := max(10, min(40, width/2-10))
	s.cpuProgress.Width = barWidth
	s.memoryProgress.Width = barWidth
	s.gpuProgress.Width = barWidth
	s.storageProgress.Width = barWidth

	info := s.info
	memPct := models.UsedPercent(info.Memory.Used, info.Memory.Total)
	gpuPct := models.UsedPercent(info.GPU.Memory.Used, info.GPU.Memory.Total)
	storagePct := models.UsedPercent(info.Storage.Used, info.Storage.Total)

	field := func(label, value string) string {
		return fmt.Sprintf("%s %s", LabelStyle.Render(label), ValueStyle.Render(value))
	}

	cpu := CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render("CPU"),
		field("Model:", info.CPU.Model),
		field("Cores:", fmt.Sprintf("%d", info.CPU.Cores)),
		field("Usage:", format.Percent(info.CPU.Usage)),
		s.cpuProgress.ViewAs(format.Fraction(info.CPU.Usage)),
		field("Temperature:", fmt.Sprintf("%.1f°C", info.CPU.Temperature)),
	))
	memory := CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render("Memory"),
		field("Total:", format.Bytes(info.Memory.Total)),
		field("Used:", format.Bytes(info.Memory.Used)),
		field("Free:", format.Bytes(info.Memory.Free)),
		s.memoryProgress.ViewAs(format.Fraction(memPct)),
	))
	gpu := CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render("GPU"),
		field("Model:", info.GPU.Model),
		field("Memory:", fmt.Sprintf("%s / %s", format.Bytes(info.GPU.Memory.Used), format.Bytes(info.GPU.Memory.Total))),
		s.gpuProgress.ViewAs(format.Fraction(gpuPct)),
		field("Temperature:", fmt.Sprintf("%.1f°C", info.GPU.Temperature)),
	))
	storage := CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render("Storage"),
		field("Total:", format.Bytes(info.Storage.Total)),
		field("Used:", format.Bytes(info.Storage.Used)),
		field("Free:", format.Bytes(info.Storage.Free)),
		s.storageProgress.ViewAs(format.Fraction(storagePct)),
	))

	if width < 100 {
		return lipgloss.JoinVertical(lipgloss.Left, cpu, memory, gpu, storage)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cpu, memory),
		lipgloss.JoinHorizontal(lipgloss.Top, gpu, storage),
	)
}

func (s *systemScreen) logsView(width int) string {
	s.viewport.Width = max(20, width-4)
	count := MutedStyle.Render(fmt.Sprintf("%d of %d entries", len(s.filteredLogs()), len(s.logs)))
	return lipgloss.JoinVertical(lipgloss.Left,
		s.search.View(),
		count,
		"",
		s.viewport.View(),
	)
}
