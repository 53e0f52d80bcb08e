package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prabalesh/aideck/internal/api"
	"github.com/prabalesh/aideck/internal/models"
)

type modelsLoadedMsg struct {
	gen  generation
	seq  uint64
	list []models.Model
	err  error
}

type modelSavedMsg struct {
	gen generation
	err error
}

var modelKeys = struct {
	Edit, Save, Cancel, Toggle, Next key.Binding
}{
	Edit:   key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "configure")),
	Save:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Toggle: key.NewBinding(key.WithKeys(" ", "space", "left", "right"), key.WithHelp("space", "toggle type")),
	Next:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
}

// modelDialog is the per-model edit buffer. The API key buffer survives
// type changes and is discarded with the dialog.
type modelDialog struct {
	config   models.ModelConfig
	apiKey   textinput.Model
	keyFocus bool
	saving   bool
	err      string
}

func newModelDialog(m models.Model) *modelDialog {
	input := textinput.New()
	input.Placeholder = "API key"
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.CharLimit = 256
	input.Width = 40
	input.Cursor.SetMode(cursor.CursorStatic)

	return &modelDialog{
		config: models.ModelConfig{Model: m.ID, Name: m.Name, Type: m.Type},
		apiKey: input,
	}
}

func (d *modelDialog) toggleType() {
	if d.config.Type == models.ModelCloud {
		d.config.Type = models.ModelLocal
		d.keyFocus = false
		d.apiKey.Blur()
		return
	}
	d.config.Type = models.ModelCloud
}

func (d *modelDialog) submission() models.ModelConfig {
	cfg := d.config
	cfg.APIKey = d.apiKey.Value()
	return cfg
}

// modelsScreen lists the registry and hosts the configuration dialog.
type modelsScreen struct {
	deps    *Deps
	gen     generation
	ctx     context.Context
	cancel  context.CancelFunc
	mounted bool

	list        []models.Model
	table       table.Model
	dialog      *modelDialog
	unsubscribe func()
}

func newModelsScreen(deps *Deps, gen generation) *modelsScreen {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 20},
			{Title: "Type", Width: 8},
			{Title: "Status", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("240"))
	t.SetStyles(styles)

	return &modelsScreen{deps: deps, gen: gen, table: t}
}

func (m *modelsScreen) Mount() tea.Cmd {
	m.mounted = true
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.deps.Models.Acquire()
	m.unsubscribe = m.deps.Models.Subscribe(m.setList)
	if list, ok := m.deps.Models.Get(); ok {
		m.setList(list)
	}
	return m.listModels()
}

func (m *modelsScreen) Unmount() {
	m.mounted = false
	if m.cancel != nil {
		m.cancel()
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.deps.Models.Release()
	m.dialog = nil
}

func (m *modelsScreen) setList(list []models.Model) {
	m.list = list
	rows := make([]table.Row, 0, len(list))
	for _, model := range list {
		rows = append(rows, table.Row{model.Name, string(model.Type), string(model.Status)})
	}
	m.table.SetRows(rows)
}

func (m *modelsScreen) listModels() tea.Cmd {
	ctx, gen := m.ctx, m.gen
	seq := m.deps.Models.Begin()
	return func() tea.Msg {
		list, err := m.deps.API.ListModels(ctx)
		return modelsLoadedMsg{gen: gen, seq: seq, list: list, err: err}
	}
}

func (m *modelsScreen) configureModel(cfg models.ModelConfig) tea.Cmd {
	ctx, gen := m.ctx, m.gen
	return func() tea.Msg {
		return modelSavedMsg{gen: gen, err: m.deps.API.ConfigureModel(ctx, cfg)}
	}
}

func (m *modelsScreen) live(gen generation) bool {
	return m.mounted && gen == m.gen
}

func (m *modelsScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case modelsLoadedMsg:
		if !m.live(msg.gen) {
			return nil
		}
		if msg.err != nil {
			m.deps.Logger.Error("Error fetching models", "unreachable", api.IsTransport(msg.err), "error", msg.err)
			return nil
		}
		m.deps.Models.Apply(msg.seq, msg.list)
		return nil

	case modelSavedMsg:
		if !m.live(msg.gen) || m.dialog == nil {
			return nil
		}
		if msg.err != nil {
			m.deps.Logger.Error("Error configuring model", "model", m.dialog.config.Model, "error", msg.err)
			m.dialog.saving = false
			m.dialog.err = "Save failed: " + msg.err.Error()
			return nil
		}
		m.dialog = nil
		return m.listModels()

	case tea.KeyMsg:
		if m.dialog != nil {
			return m.updateDialog(msg)
		}
		if key.Matches(msg, modelKeys.Edit) {
			if idx := m.table.Cursor(); idx >= 0 && idx < len(m.list) {
				m.dialog = newModelDialog(m.list[idx])
			}
			return nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

func (m *modelsScreen) updateDialog(msg tea.KeyMsg) tea.Cmd {
	d := m.dialog
	if d.saving {
		return nil
	}
	switch {
	case key.Matches(msg, modelKeys.Cancel):
		m.dialog = nil
		return nil
	case key.Matches(msg, modelKeys.Save):
		d.saving = true
		d.err = ""
		return m.configureModel(d.submission())
	case key.Matches(msg, modelKeys.Next):
		if d.config.Type != models.ModelCloud {
			return nil
		}
		d.keyFocus = !d.keyFocus
		if d.keyFocus {
			return d.apiKey.Focus()
		}
		d.apiKey.Blur()
		return nil
	}

	if d.keyFocus {
		var cmd tea.Cmd
		d.apiKey, cmd = d.apiKey.Update(msg)
		return cmd
	}
	if key.Matches(msg, modelKeys.Toggle) {
		d.toggleType()
	}
	return nil
}

func (m *modelsScreen) Capturing() bool { return m.dialog != nil }

func (m *modelsScreen) KeyBindings() []key.Binding {
	if m.dialog != nil {
		return []key.Binding{modelKeys.Toggle, modelKeys.Next, modelKeys.Save, modelKeys.Cancel}
	}
	return []key.Binding{modelKeys.Edit}
}

func (m *modelsScreen) View(width int) string {
	var selected string
	if idx := m.table.Cursor(); idx >= 0 && idx < len(m.list) {
		model := m.list[idx]
		selected = fmt.Sprintf("%s %s %s", ValueStyle.Render(model.Name), TypeBadge(model.Type), StatusBadge(model.Status))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render("Models"),
		"",
		m.table.View(),
		"",
		selected,
	)
	if m.dialog == nil {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, "", m.dialogView())
}

func (m *modelsScreen) dialogView() string {
	d := m.dialog
	typeLabel := LabelStyle.Render("Type:")
	if !d.keyFocus {
		typeLabel = FocusStyle.Render("> Type:")
	}
	lines := []string{
		HeaderStyle.Render("Configure " + d.config.Name),
		"",
		fmt.Sprintf("%s %s", LabelStyle.Render("Name:"), ValueStyle.Render(d.config.Name)),
		fmt.Sprintf("%s %s", typeLabel, TypeBadge(d.config.Type)),
	}
	if d.config.Type == models.ModelCloud {
		keyLabel := LabelStyle.Render("API Key:")
		if d.keyFocus {
			keyLabel = FocusStyle.Render("> API Key:")
		}
		lines = append(lines, fmt.Sprintf("%s %s", keyLabel, d.apiKey.View()))
	}
	if d.saving {
		lines = append(lines, "", MutedStyle.Render("Saving..."))
	}
	if d.err != "" {
		lines = append(lines, "", ErrorStyle.Render(d.err))
	}
	return DialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
