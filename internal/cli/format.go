package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	DoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	SkipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	PendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// FormatGoal renders a habit's goal, e.g. "count 10" or "time 30m"
func FormatGoal(h models.Habit) string {
	switch h.GoalType {
	case constants.GoalTime:
		if h.GoalValue != nil {
			return fmt.Sprintf("time %dm", *h.GoalValue)
		}
	case constants.GoalCount:
		if h.GoalValue != nil {
			return fmt.Sprintf("count %d", *h.GoalValue)
		}
	}
	return string(h.GoalType)
}

// StatusMark returns the checklist marker for a habit on date
func StatusMark(h models.Habit, date string) string {
	rec, ok := h.Record(date)
	if !ok {
		return PendingStyle.Render("[ ]")
	}
	switch rec.Status {
	case constants.StatusDone:
		return DoneStyle.Render("[x]")
	case constants.StatusPartial:
		return SkipStyle.Render("[~]")
	default:
		return MutedStyle.Render("[-]")
	}
}

// FormatStreak renders current and longest streak
func FormatStreak(s models.Streak) string {
	return fmt.Sprintf("🔥 %d (best %d)", s.Current, s.Longest)
}
