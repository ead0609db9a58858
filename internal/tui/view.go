package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateToday:
		content = docStyle.Render(m.todayModel.View())
	case StateHabits:
		content = docStyle.Render(m.habitsModel.View())
	case StateStats:
		content = docStyle.Render(m.statsModel.View())
	case StateAddHabit:
		content = m.form.View()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	current := m.state
	if current >= tabCount {
		current = m.previousState
	}

	var tabs []string
	for i, title := range []string{"Today", "Habits", "Stats"} {
		if current == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	tabs = append(tabs, inactiveTabStyle.Render(m.engine.Today().Format("Mon Jan 2")))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return dangerStyle.Render("Error: " + m.err.Error())
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewConfirmDelete() string {
	name := m.habitToDeleteID
	if h, err := m.engine.Get(m.habitToDeleteID); err == nil {
		name = h.Name
	}
	return lipgloss.Place(m.width, max(m.height-chromeHeight, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete "+name+" and its history?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
