package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/engine"
	"github.com/julianstephens/habitly/internal/stats"
	"github.com/julianstephens/habitly/internal/tui/components/habits"
	statsview "github.com/julianstephens/habitly/internal/tui/components/stats"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateHabits
	StateStats
	StateAddHabit
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab
const tabCount = 3

type Model struct {
	ctx             context.Context
	engine          *engine.Engine
	defaultDays     []int
	state           SessionState
	previousState   SessionState
	keys            KeyMap
	help            help.Model
	todayModel      habits.Model
	habitsModel     habits.Model
	statsModel      statsview.Model
	form            *huh.Form
	habitForm       *HabitFormModel
	habitToDeleteID string
	status          string
	err             error
	quitting        bool
	width           int
	height          int
}

// NewModel creates the TUI over eng. defaultDays prefills the add form.
func NewModel(ctx context.Context, eng *engine.Engine, defaultDays []int) Model {
	m := Model{
		ctx:         ctx,
		engine:      eng,
		defaultDays: defaultDays,
		state:       StateToday,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		todayModel:  habits.New("Today", "Nothing due today.", nil, "", 0, 0),
		habitsModel: habits.New("Habits", "No habits yet.", nil, "", 0, 0),
		statsModel:  statsview.New(0, 0),
	}
	m.refresh()
	return m
}

// refresh reloads every view from the engine's visible collection
func (m *Model) refresh() {
	today := m.engine.Today()
	date := today.Format(constants.DateFormat)
	all := m.engine.SelectAll()

	m.todayModel.SetHabits(m.engine.SelectDue(today), date)
	m.habitsModel.SetHabits(all, date)
	m.statsModel.SetSummary(stats.Compute(all, today), len(all) > 0)
}

// setResult records the outcome of a mutation for the status line
func (m *Model) setResult(status string, err error) {
	m.err = err
	if err != nil {
		m.status = ""
		return
	}
	m.status = status
}

// activeList returns the habit list for the current tab, if any
func (m *Model) activeList() *habits.Model {
	switch m.state {
	case StateToday:
		return &m.todayModel
	case StateHabits:
		return &m.habitsModel
	}
	return nil
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateToday || m.state == StateHabits {
		hk := habits.DefaultKeyMap()
		keys = append(keys, hk.Add, hk.Mark, hk.Skip, hk.Unmark)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	if m.state == StateToday || m.state == StateHabits {
		hk := habits.DefaultKeyMap()
		actions = []key.Binding{hk.Add, hk.Mark, hk.Partial, hk.Skip, hk.Unmark, hk.Delete}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}
