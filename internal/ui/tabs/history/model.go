// Package history provides the history tab listing recent daily records.
package history

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/averlow/healthdash/internal/app"
	"github.com/averlow/healthdash/internal/models"
	"github.com/averlow/healthdash/internal/services"
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
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

// historyLoadedMsg is sent when history data is loaded.
type historyLoadedMsg struct {
	rows []dayRow
}

// historyErrorMsg is sent when there's an error loading history.
type historyErrorMsg struct {
	err string
}

// dayRow is one rendered line of the history table, newest first.
type dayRow struct {
	day    time.Time
	metric *models.DailyMetric
	spend  *models.DailySpendSummary
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	rows        []dayRow
	loading     bool
	lastRefresh time.Time
	errorMsg    string
}

// New creates a new history model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:    state,
		services: svc,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.loadHistoryCmd()
}

// loadHistoryCmd creates a command to load history data.
func (m *Model) loadHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services == nil {
			return historyErrorMsg{err: "Services not initialized"}
		}

		metrics, err := m.services.RecentMetrics(app.HistoryWindowDays)
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}
		spend, err := m.services.RecentSpend(app.HistoryWindowDays)
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}

		return historyLoadedMsg{rows: mergeRows(metrics, spend)}
	}
}

// mergeRows joins metrics and spend by day, newest first.
func mergeRows(metrics []models.DailyMetric, spend []models.DailySpendSummary) []dayRow {
	byDay := make(map[string]*dayRow)

	for i := range metrics {
		key := models.DayString(metrics[i].Day)
		byDay[key] = &dayRow{day: metrics[i].Day, metric: &metrics[i]}
	}
	for i := range spend {
		key := models.DayString(spend[i].Day)
		if row, ok := byDay[key]; ok {
			row.spend = &spend[i]
		} else {
			byDay[key] = &dayRow{day: spend[i].Day, spend: &spend[i]}
		}
	}

	rows := make([]dayRow, 0, len(byDay))
	for _, row := range byDay {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].day.After(rows[j].day) })
	return rows
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.rows = msg.rows
		m.loading = false
		m.lastRefresh = time.Now()
		m.errorMsg = ""

	case historyErrorMsg:
		m.loading = false
		m.errorMsg = msg.err
		cmds = append(cmds, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("History error: %s", msg.err),
				Duration: app.LongNotificationDuration,
			}
		})

	case app.HistoryLoadedMsg:
		// The app-level loader already hit the store; reuse its results.
		if msg.Error == nil {
			m.rows = mergeRows(msg.Metrics, msg.Spend)
			m.loading = false
			m.lastRefresh = time.Now()
			m.errorMsg = ""
		}

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory && !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadHistoryCmd())
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())

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
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
