// Package history provides the history tab for viewing recorded statistics.
package history

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/app"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/models"
	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/stats"
)

// resources lists the snapshot series in display order.
var resources = []struct {
	Path string
	Name string
}{
	{stats.ResourceDownloads, "Downloads"},
	{stats.ResourceEvaluations, "Evaluations"},
	{stats.ResourceErrors, "Errors"},
}

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange    key.Binding
	SwitchResource key.Binding
	Refresh        key.Binding
	Up             key.Binding
	Down           key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		SwitchResource: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "switch resource"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	timeRange     models.TimeRange
	resourceIndex int
	snapshots     []models.StatSnapshot
	loaded        bool
	loading       bool
	lastRefresh   time.Time
	errorMsg      string
}

// New creates a new history model.
func New(state *app.State) *Model {
	return &Model{
		state:     state,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: models.TimeRange7Days,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) resource() (path, name string) {
	r := resources[m.resourceIndex]
	return r.Path, r.Name
}

// loadCmd asks the application to load snapshots for the current selection.
func (m *Model) loadCmd() tea.Cmd {
	path, _ := m.resource()
	timeRange := m.timeRange
	return func() tea.Msg {
		return app.LoadHistoryMsg{Resource: path, TimeRange: timeRange}
	}
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.HistoryLoadedMsg:
		m.loading = false
		if msg.Error != nil {
			m.errorMsg = msg.Error.Error()
			break
		}
		path, _ := m.resource()
		if msg.Resource == path && msg.TimeRange == m.timeRange {
			m.snapshots = msg.Snapshots
			m.loaded = true
			m.lastRefresh = time.Now()
			m.errorMsg = ""
		}

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory && !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadCmd())
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		m.loading = true
		cmds = append(cmds, m.loadCmd())

	case key.Matches(msg, m.keys.SwitchResource):
		m.resourceIndex = (m.resourceIndex + 1) % len(resources)
		m.loading = true
		cmds = append(cmds, m.loadCmd())

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		cmds = append(cmds, m.loadCmd())

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.SwitchResource,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.SwitchResource, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
