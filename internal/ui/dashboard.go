package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prabalesh/aideck/internal/format"
	"github.com/prabalesh/aideck/internal/models"
	"github.com/prabalesh/aideck/internal/telemetry"
)

type channelOpenedMsg struct {
	gen generation
	ch  *telemetry.Channel
	err error
}

type statsMsg struct {
	gen   generation
	stats models.SystemStats
}

type channelClosedMsg struct {
	gen generation
}

// dashboard shows the live telemetry feed: stat cards for the latest sample
// and a chart of the trailing window.
type dashboard struct {
	deps   *Deps
	gen    generation
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	mounted bool
	channel *telemetry.Channel

	window   *telemetry.Window
	latest   models.SystemStats
	received bool

	cpuProgress    progress.Model
	memoryProgress progress.Model
	gpuProgress    progress.Model
}

func newDashboard(deps *Deps, gen generation) *dashboard {
	return &dashboard{
		deps:           deps,
		gen:            gen,
		window:         telemetry.NewWindow(deps.ChartWindow),
		cpuProgress:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		memoryProgress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		gpuProgress:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (d *dashboard) Mount() tea.Cmd {
	d.mu.Lock()
	d.mounted = true
	d.mu.Unlock()
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d.subscribe()
}

// Unmount cancels any dial in flight and closes the live subscription.
func (d *dashboard) Unmount() {
	d.mu.Lock()
	d.mounted = false
	ch := d.channel
	d.channel = nil
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}
	if ch != nil {
		ch.Close()
	}
}

func (d *dashboard) subscribe() tea.Cmd {
	ctx, gen := d.ctx, d.gen
	return func() tea.Msg {
		ch, err := telemetry.Dial(ctx, d.deps.StreamURL, d.deps.Logger)
		if err != nil {
			return channelOpenedMsg{gen: gen, err: err}
		}
		if !d.attach(ch) {
			ch.Close()
			return channelClosedMsg{gen: gen}
		}
		return channelOpenedMsg{gen: gen, ch: ch}
	}
}

// attach records ch as the live subscription unless the screen has already
// been unmounted.
func (d *dashboard) attach(ch *telemetry.Channel) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mounted {
		return false
	}
	d.channel = ch
	return true
}

func (d *dashboard) live(gen generation) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mounted && gen == d.gen
}

func waitStats(ch *telemetry.Channel, gen generation) tea.Cmd {
	return func() tea.Msg {
		stats, ok := ch.Next()
		if !ok {
			return channelClosedMsg{gen: gen}
		}
		return statsMsg{gen: gen, stats: stats}
	}
}

func (d *dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case channelOpenedMsg:
		if !d.live(msg.gen) {
			return nil
		}
		if msg.err != nil {
			d.deps.Logger.Error("telemetry connection failed", "url", d.deps.StreamURL, "error", msg.err)
			return nil
		}
		return waitStats(msg.ch, msg.gen)

	case statsMsg:
		if !d.live(msg.gen) {
			return nil
		}
		d.window.Push(d.deps.now().Format(telemetry.LabelLayout), msg.stats)
		d.latest = msg.stats
		d.received = true

		d.mu.Lock()
		ch := d.channel
		d.mu.Unlock()
		if ch == nil {
			return nil
		}
		return waitStats(ch, msg.gen)

	case channelClosedMsg:
		if !d.live(msg.gen) {
			return nil
		}
		d.deps.Logger.Warn("telemetry subscription ended")
		d.mu.Lock()
		d.channel = nil
		d.mu.Unlock()
	}
	return nil
}

func (d *dashboard) Capturing() bool { return false }

func (d *dashboard) KeyBindings() []key.Binding { return nil }

func (d *dashboard) View(width int) string {
	barWidth := max(10, min(30, width/4-6))
	d.cpuProgress.Width = barWidth
	d.memoryProgress.Width = barWidth
	d.gpuProgress.Width = barWidth

	s := d.latest
	activeModel := s.ActiveModel
	if activeModel == "" {
		activeModel = "none"
	}

	usage := lipgloss.JoinHorizontal(lipgloss.Top,
		d.usageCard("CPU Usage", s.CPUUsage, d.cpuProgress),
		d.usageCard("Memory Usage", s.MemoryUsage, d.memoryProgress),
		d.usageCard("GPU Usage", s.GPUUsage, d.gpuProgress),
	)
	counters := lipgloss.JoinHorizontal(lipgloss.Top,
		CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			LabelStyle.Render("Active Model"),
			ValueStyle.Render(activeModel),
		)),
		CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			LabelStyle.Render("Requests/min"),
			ValueStyle.Render(fmt.Sprintf("%d", s.RequestsPerMinute)),
		)),
	)

	status := MutedStyle.Render("Waiting for telemetry...")
	if d.received {
		status = MutedStyle.Render(fmt.Sprintf("%d samples", d.window.Len()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render("Dashboard"),
		"",
		usage,
		counters,
		"",
		HeaderStyle.Render("Resource Usage"),
		status,
		renderChart(d.window),
	)
}

func (d *dashboard) usageCard(title string, percent float64, bar progress.Model) string {
	return CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		LabelStyle.Render(title),
		ValueStyle.Render(format.Percent(percent)),
		bar.ViewAs(format.Fraction(percent)),
	))
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// sparkline draws one rune per sample. Values outside 0..100 are pinned to
// the lowest or highest level.
func sparkline(values []float64) string {
	var b strings.Builder
	top := len(sparkLevels) - 1
	for _, v := range values {
		idx := int(v / 100 * float64(top))
		idx = max(0, min(idx, top))
		b.WriteRune(sparkLevels[idx])
	}
	return b.String()
}

func renderChart(w *telemetry.Window) string {
	if w.Len() == 0 {
		return ""
	}
	cpu, memory, gpu := w.Series()
	labels := w.Labels()

	row := func(name string, style lipgloss.Style, values []float64) string {
		last := values[len(values)-1]
		return fmt.Sprintf("%-7s %s %s", name, style.Render(sparkline(values)), MutedStyle.Render(format.Percent(last)))
	}
	axis := fmt.Sprintf("%-7s %s .. %s", "", labels[0], labels[len(labels)-1])

	return lipgloss.JoinVertical(lipgloss.Left,
		row("CPU", CPUSeriesStyle, cpu),
		row("Memory", MemorySeriesStyle, memory),
		row("GPU", GPUSeriesStyle, gpu),
		MutedStyle.Render(axis),
	)
}
