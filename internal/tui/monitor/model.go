// Package monitor is the live sync monitor TUI: unresolved conflicts,
// pending optimistic writes, and the household activity feed, refreshed
// on an interval.
package monitor

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/evanklingensmith/hungrymarmots/internal/data"
	"github.com/evanklingensmith/hungrymarmots/internal/models"
	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
)

// Panel represents which panel is active
type Panel int

const (
	PanelConflicts Panel = iota
	PanelPending
	PanelActivity
)

const panelCount = 3

// MinWidth is the minimum terminal width for proper display
const MinWidth = 40

// MinHeight is the minimum terminal height for proper display
const MinHeight = 12

// TickMsg triggers a data refresh
type TickMsg time.Time

// RefreshDataMsg carries refreshed data
type RefreshDataMsg struct {
	State     syncer.State
	Activity  []models.Activity
	Timestamp time.Time
	Err       error
}

// ResolvedMsg reports the outcome of a resolution pass
type ResolvedMsg struct {
	Result syncer.Resolution
	Err    error
}

// Model is the main Bubble Tea model for the sync monitor
type Model struct {
	Store       *data.Store
	HouseholdID string

	Width  int
	Height int

	State       syncer.State
	Activity    []models.Activity
	LastRefresh time.Time
	LastResult  *syncer.Resolution
	Err         error

	ActivePanel  Panel
	ScrollOffset map[Panel]int
	ShowHelp     bool
	Filter       textinput.Model
	Filtering    bool

	RefreshInterval time.Duration
}

// NewModel creates a new sync monitor model
func NewModel(store *data.Store, householdID string, interval time.Duration) Model {
	filter := textinput.New()
	filter.Placeholder = "filter by path"
	filter.CharLimit = 120

	return Model{
		Store:           store,
		HouseholdID:     householdID,
		RefreshInterval: interval,
		ScrollOffset:    make(map[Panel]int),
		ActivePanel:     PanelConflicts,
		Filter:          filter,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchData(),
		m.scheduleTick(),
	)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case TickMsg:
		return m, tea.Batch(m.fetchData(), m.scheduleTick())

	case RefreshDataMsg:
		m.State = msg.State
		m.Activity = msg.Activity
		m.LastRefresh = msg.Timestamp
		m.Err = msg.Err
		return m, nil

	case ResolvedMsg:
		if msg.Err != nil {
			m.Err = msg.Err
		} else {
			result := msg.Result
			m.LastResult = &result
		}
		return m, m.fetchData()
	}

	return m, nil
}

// handleKey processes key input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Filtering {
		switch msg.String() {
		case "enter", "esc":
			m.Filtering = false
			m.Filter.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.Filter, cmd = m.Filter.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.ActivePanel = (m.ActivePanel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.ActivePanel = (m.ActivePanel + panelCount - 1) % panelCount
		return m, nil

	case "1":
		m.ActivePanel = PanelConflicts
		return m, nil

	case "2":
		m.ActivePanel = PanelPending
		return m, nil

	case "3":
		m.ActivePanel = PanelActivity
		return m, nil

	case "j", "down":
		m.ScrollOffset[m.ActivePanel]++
		return m, nil

	case "k", "up":
		if m.ScrollOffset[m.ActivePanel] > 0 {
			m.ScrollOffset[m.ActivePanel]--
		}
		return m, nil

	case "/":
		m.Filtering = true
		return m, m.Filter.Focus()

	case "s":
		return m, m.resolveAll(syncer.StrategyServer)

	case "l":
		return m, m.resolveAll(syncer.StrategyLocal)

	case "r":
		return m, m.fetchData()

	case "?":
		m.ShowHelp = !m.ShowHelp
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	return m.renderView()
}

// visibleConflicts applies the path filter to the current conflict set.
func (m Model) visibleConflicts() []syncer.Conflict {
	needle := strings.TrimSpace(m.Filter.Value())
	if needle == "" {
		return m.State.Conflicts
	}
	var filtered []syncer.Conflict
	for _, c := range m.State.Conflicts {
		if strings.Contains(c.Path, needle) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// scheduleTick returns a command that sends a TickMsg after the refresh interval
func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.RefreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// fetchData returns a command that fetches sync state and the activity feed
func (m Model) fetchData() tea.Cmd {
	store := m.Store
	householdID := m.HouseholdID
	return func() tea.Msg {
		msg := RefreshDataMsg{
			State:     store.Coordinator().SyncConflictState(),
			Timestamp: time.Now(),
		}
		if householdID != "" {
			activity, err := store.ListActivity(context.Background(), householdID, data.DefaultActivityLimit)
			msg.Activity = activity
			msg.Err = err
		}
		return msg
	}
}

// resolveAll resolves every unresolved conflict with one strategy.
func (m Model) resolveAll(strategy syncer.Strategy) tea.Cmd {
	store := m.Store
	return func() tea.Msg {
		result := store.Coordinator().ResolveSyncConflicts(context.Background(), strategy)
		return ResolvedMsg{Result: result}
	}
}
