package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
	"github.com/julianstephens/habitly/internal/validation"
)

type AddHabitMsg struct{}

type MarkHabitMsg struct {
	ID     string
	Status constants.EntryStatus
}

type UnmarkHabitMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID string
}

// Item is one habit as it stands on Date
type Item struct {
	Habit models.Habit
	Date  string
}

func (i Item) status() (constants.EntryStatus, bool) {
	rec, ok := i.Habit.Record(i.Date)
	return rec.Status, ok
}

func (i Item) Title() string {
	title := i.Habit.Emoji + " " + i.Habit.Name
	status, ok := i.status()
	switch {
	case !ok:
		return "○ " + title
	case status == constants.StatusDone:
		return "✓ " + title
	case status == constants.StatusPartial:
		return "◐ " + title
	default:
		return "– " + title
	}
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s · 🔥 %d (best %d)",
		validation.FormatWeekdays(i.Habit.RepeatDays), i.Habit.Streak.Current, i.Habit.Streak.Longest)
	if status, ok := i.status(); ok {
		desc += " · " + string(status)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add     key.Binding
	Mark    key.Binding
	Partial key.Binding
	Skip    key.Binding
	Unmark  key.Binding
	Delete  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Mark: key.NewBinding(
			key.WithKeys("m", " "),
			key.WithHelp("m/space", "mark done"),
		),
		Partial: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "partial"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
		Unmark: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unmark"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

func (k KeyMap) bindings() []key.Binding {
	return []key.Binding{k.Add, k.Mark, k.Partial, k.Skip, k.Unmark, k.Delete}
}

type Model struct {
	list  list.Model
	keys  KeyMap
	empty string
}

// New creates a habit list showing each habit's status on date. empty is
// shown when there are no habits.
func New(title, empty string, habits []models.Habit, date string, width, height int) Model {
	l := list.New(items(habits, date), list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = keys.bindings
	l.AdditionalFullHelpKeys = keys.bindings

	return Model{
		list:  l,
		keys:  keys,
		empty: empty,
	}
}

func items(habits []models.Habit, date string) []list.Item {
	out := make([]list.Item, len(habits))
	for i, h := range habits {
		out[i] = Item{Habit: h, Date: date}
	}
	return out
}

// SetHabits replaces the listed habits, keeping the cursor where possible
func (m *Model) SetHabits(habits []models.Habit, date string) {
	m.list.SetItems(items(habits, date))
}

// Selected returns the habit under the cursor
func (m Model) Selected() (models.Habit, bool) {
	if i, ok := m.list.SelectedItem().(Item); ok {
		return i.Habit, true
	}
	return models.Habit{}, false
}

// Len returns the number of listed habits
func (m Model) Len() int {
	return len(m.list.Items())
}

// Filtering reports whether the list is capturing keys for its filter
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		if key.Matches(msg, m.keys.Add) {
			return m, func() tea.Msg { return AddHabitMsg{} }
		}
		if i, ok := m.list.SelectedItem().(Item); ok {
			id := i.Habit.ID
			_, recorded := i.status()
			switch {
			case key.Matches(msg, m.keys.Mark):
				return m, markCmd(id, constants.StatusDone)
			case key.Matches(msg, m.keys.Partial):
				return m, markCmd(id, constants.StatusPartial)
			case key.Matches(msg, m.keys.Skip):
				return m, markCmd(id, constants.StatusSkip)
			case key.Matches(msg, m.keys.Unmark):
				if recorded {
					return m, func() tea.Msg { return UnmarkHabitMsg{ID: id} }
				}
				return m, nil
			case key.Matches(msg, m.keys.Delete):
				return m, func() tea.Msg { return DeleteHabitMsg{ID: id} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func markCmd(id string, status constants.EntryStatus) tea.Cmd {
	return func() tea.Msg { return MarkHabitMsg{ID: id, Status: status} }
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  " + m.empty + "\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
