package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/tui/components/habits"
)

// chromeHeight is the space taken by tabs, status line and help
const chromeHeight = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		w, h := max(msg.Width-4, 0), max(msg.Height-chromeHeight, 0)
		m.todayModel.SetSize(w, h)
		m.habitsModel.SetSize(w, h)
		m.statsModel.SetSize(w, h)
		return m, nil

	case habits.AddHabitMsg:
		m.habitForm = NewHabitFormModel(m.defaultDays)
		m.form = NewHabitForm(m.habitForm)
		m.previousState = m.state
		m.state = StateAddHabit
		return m, m.form.Init()

	case habits.MarkHabitMsg:
		h, err := m.engine.RecordCompletion(m.ctx, msg.ID, m.today(), msg.Status, nil)
		m.setResult(fmt.Sprintf("%s %s marked %s · 🔥 %d", h.Emoji, h.Name, msg.Status, h.Streak.Current), err)
		m.refresh()
		return m, nil

	case habits.UnmarkHabitMsg:
		h, err := m.engine.RemoveCompletion(m.ctx, msg.ID, m.today())
		m.setResult(fmt.Sprintf("%s %s unmarked · 🔥 %d", h.Emoji, h.Name, h.Streak.Current), err)
		m.refresh()
		return m, nil

	case habits.DeleteHabitMsg:
		m.habitToDeleteID = msg.ID
		m.previousState = m.state
		m.state = StateConfirmDelete
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	list := m.activeList()
	if msg, ok := msg.(tea.KeyMsg); ok && (list == nil || !list.Filtering()) {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			n, err := m.engine.RefreshStreaks(m.ctx)
			m.setResult(fmt.Sprintf("Refreshed %d streak(s)", n), err)
			m.refresh()
			return m, nil
		}
	}

	if list == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*list, cmd = list.Update(msg)
	return m, cmd
}

func (m Model) today() string {
	return m.engine.Today().Format(constants.DateFormat)
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.createHabit()
		m.state = m.previousState
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, cmd
}

// createHabit adds the habit described by the add form
func (m *Model) createHabit() {
	draft, err := m.habitForm.Draft()
	if err != nil {
		m.setResult("", err)
		return
	}
	if _, err := m.engine.FindByName(draft.Name); err == nil {
		m.setResult("", fmt.Errorf("habit with name %q already exists", draft.Name))
		return
	}
	h, err := m.engine.Create(m.ctx, draft)
	m.setResult(fmt.Sprintf("Added %s %s", h.Emoji, h.Name), err)
	m.refresh()
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		h, _ := m.engine.Get(m.habitToDeleteID)
		err := m.engine.Delete(m.ctx, m.habitToDeleteID)
		m.setResult(fmt.Sprintf("Deleted %s", h.Name), err)
		m.refresh()
	case key.Matches(keyMsg, m.keys.No):
	default:
		return m, nil
	}
	m.habitToDeleteID = ""
	m.state = m.previousState
	return m, nil
}
