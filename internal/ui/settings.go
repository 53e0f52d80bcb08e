package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prabalesh/aideck/internal/models"
)

type configLoadedMsg struct {
	gen generation
	seq uint64
	cfg models.Config
	err error
}

type configSavedMsg struct {
	gen generation
	cfg models.Config
	err error
}

const (
	msgLoadFailed = "Error loading configuration"
	msgSaved      = "Settings saved successfully"
	msgSaveFailed = "Error saving configuration"
)

const (
	fieldBackend = iota
	fieldOpenAI
	fieldAnthropic
	fieldVoice
	fieldSuggestions
	fieldPerformance
	fieldCount
)

var settingsKeys = struct {
	Next, Prev, Change, Save key.Binding
}{
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab/↓", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab/↑", "previous field")),
	Change: key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "change")),
	Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
}

// settingsScreen edits the configuration document. The buffer starts at the
// defaults and is replaced wholesale by a successful load.
type settingsScreen struct {
	deps    *Deps
	gen     generation
	ctx     context.Context
	cancel  context.CancelFunc
	mounted bool

	buffer    models.Config
	focus     int
	openAI    textinput.Model
	anthropic textinput.Model
}

func newSettingsScreen(deps *Deps, gen generation) *settingsScreen {
	newKeyInput := func(placeholder string) textinput.Model {
		input := textinput.New()
		input.Placeholder = placeholder
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
		input.CharLimit = 256
		input.Width = 40
		input.Cursor.SetMode(cursor.CursorStatic)
		return input
	}

	return &settingsScreen{
		deps:      deps,
		gen:       gen,
		buffer:    models.DefaultConfig(),
		openAI:    newKeyInput("sk-..."),
		anthropic: newKeyInput("sk-ant-..."),
	}
}

func (s *settingsScreen) Mount() tea.Cmd {
	s.mounted = true
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.deps.Config.Acquire()
	return s.load()
}

func (s *settingsScreen) Unmount() {
	s.mounted = false
	if s.cancel != nil {
		s.cancel()
	}
	s.deps.Config.Release()
}

func (s *settingsScreen) load() tea.Cmd {
	ctx, gen := s.ctx, s.gen
	seq := s.deps.Config.Begin()
	return func() tea.Msg {
		cfg, err := s.deps.API.GetConfig(ctx)
		return configLoadedMsg{gen: gen, seq: seq, cfg: cfg, err: err}
	}
}

func (s *settingsScreen) save() tea.Cmd {
	ctx, gen, cfg := s.ctx, s.gen, s.buffer
	return func() tea.Msg {
		return configSavedMsg{gen: gen, cfg: cfg, err: s.deps.API.SaveConfig(ctx, cfg)}
	}
}

func (s *settingsScreen) live(gen generation) bool {
	return s.mounted && gen == s.gen
}

func (s *settingsScreen) setBuffer(cfg models.Config) {
	s.buffer = cfg
	s.openAI.SetValue(cfg.APIKeys.OpenAI)
	s.anthropic.SetValue(cfg.APIKeys.Anthropic)
}

func (s *settingsScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case configLoadedMsg:
		if !s.live(msg.gen) {
			return nil
		}
		if msg.err != nil {
			s.deps.Logger.Error(msgLoadFailed, "error", msg.err)
			return notify(noticeError, msgLoadFailed)
		}
		if s.deps.Config.Apply(msg.seq, msg.cfg) {
			s.setBuffer(msg.cfg)
		}
		return nil

	case configSavedMsg:
		if !s.live(msg.gen) {
			return nil
		}
		if msg.err != nil {
			s.deps.Logger.Error(msgSaveFailed, "error", msg.err)
			return notify(noticeError, msgSaveFailed)
		}
		s.deps.Config.Apply(s.deps.Config.Begin(), msg.cfg)
		return notify(noticeSuccess, msgSaved)

	case tea.KeyMsg:
		return s.updateKeys(msg)
	}
	return nil
}

func (s *settingsScreen) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, settingsKeys.Save):
		return s.save()
	case key.Matches(msg, settingsKeys.Next):
		return s.setFocus((s.focus + 1) % fieldCount)
	case key.Matches(msg, settingsKeys.Prev):
		return s.setFocus((s.focus + fieldCount - 1) % fieldCount)
	}

	switch s.focus {
	case fieldOpenAI:
		var cmd tea.Cmd
		s.openAI, cmd = s.openAI.Update(msg)
		s.buffer.APIKeys.OpenAI = s.openAI.Value()
		return cmd
	case fieldAnthropic:
		var cmd tea.Cmd
		s.anthropic, cmd = s.anthropic.Update(msg)
		s.buffer.APIKeys.Anthropic = s.anthropic.Value()
		return cmd
	}

	if !key.Matches(msg, settingsKeys.Change) {
		return nil
	}
	switch s.focus {
	case fieldBackend:
		s.buffer.AIBackend = cycle(models.Backends, s.buffer.AIBackend)
	case fieldVoice:
		s.buffer.SystemSettings.VoiceCommands = !s.buffer.SystemSettings.VoiceCommands
	case fieldSuggestions:
		s.buffer.SystemSettings.AutoSuggestions = !s.buffer.SystemSettings.AutoSuggestions
	case fieldPerformance:
		s.buffer.SystemSettings.PerformanceMode = cycle(models.PerformanceModes, s.buffer.SystemSettings.PerformanceMode)
	}
	return nil
}

func (s *settingsScreen) setFocus(field int) tea.Cmd {
	s.focus = field
	s.openAI.Blur()
	s.anthropic.Blur()
	switch field {
	case fieldOpenAI:
		return s.openAI.Focus()
	case fieldAnthropic:
		return s.anthropic.Focus()
	}
	return nil
}

// cycle returns the option after current, wrapping around. An unknown value
// moves to the first option.
func cycle[T comparable](options []T, current T) T {
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func (s *settingsScreen) Capturing() bool {
	return s.focus == fieldOpenAI || s.focus == fieldAnthropic
}

func (s *settingsScreen) KeyBindings() []key.Binding {
	return []key.Binding{settingsKeys.Next, settingsKeys.Prev, settingsKeys.Change, settingsKeys.Save}
}

func (s *settingsScreen) View(width int) string {
	label := func(field int, text string) string {
		if s.focus == field {
			return FocusStyle.Render("> " + text)
		}
		return LabelStyle.Render("  " + text)
	}
	toggle := func(on bool) string {
		if on {
			return SuccessStyle.Render("[x] on")
		}
		return MutedStyle.Render("[ ] off")
	}

	rows := []string{
		HeaderStyle.Render("AI Configuration"),
		"",
		fmt.Sprintf("%s %s", label(fieldBackend, "AI Backend:"), ValueStyle.Render(string(s.buffer.AIBackend))),
		fmt.Sprintf("%s %s", label(fieldOpenAI, "OpenAI API Key:"), s.openAI.View()),
		fmt.Sprintf("%s %s", label(fieldAnthropic, "Anthropic API Key:"), s.anthropic.View()),
		"",
		HeaderStyle.Render("System Settings"),
		"",
		fmt.Sprintf("%s %s", label(fieldVoice, "Voice Commands:"), toggle(s.buffer.SystemSettings.VoiceCommands)),
		fmt.Sprintf("%s %s", label(fieldSuggestions, "Auto Suggestions:"), toggle(s.buffer.SystemSettings.AutoSuggestions)),
		fmt.Sprintf("%s %s", label(fieldPerformance, "Performance Mode:"), ValueStyle.Render(string(s.buffer.SystemSettings.PerformanceMode))),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
