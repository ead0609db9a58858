package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitly/internal/stats"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const barWidth = 20

type Model struct {
	summary stats.Summary
	hasData bool
	width   int
	height  int
}

func New(width, height int) Model {
	return Model{width: width, height: height}
}

// SetSummary replaces the figures shown. hasData is false when there are no
// habits at all.
func (m *Model) SetSummary(summary stats.Summary, hasData bool) {
	m.summary = summary
	m.hasData = hasData
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) View() string {
	if !m.hasData {
		return "\n  No habits yet. Stats appear once you add one."
	}

	s := m.summary
	var b strings.Builder

	b.WriteString(headerStyle.Render("Today") + "\n")
	fmt.Fprintf(&b, "  %s %d%%  (%d of %d due)\n\n", bar(s.TodayPercent), s.TodayPercent, s.TodayDone, s.TodayDue)

	b.WriteString(headerStyle.Render("Last 7 days") + "\n")
	for _, d := range s.Last7 {
		fmt.Fprintf(&b, "  %s %s %3d%%\n", d.Weekday.String()[:3], bar(d.Percent), d.Percent)
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Streaks") + "\n")
	fmt.Fprintf(&b, "  Current best  %d\n", s.MaxCurrent)
	fmt.Fprintf(&b, "  Longest ever  %d\n", s.MaxLongest)
	if s.Best != nil {
		fmt.Fprintf(&b, "  Strongest     %s %s %s\n", s.Best.Emoji, s.Best.Name,
			mutedStyle.Render(fmt.Sprintf("(longest %d)", s.Best.Streak.Longest)))
	}
	if s.Worst != nil {
		fmt.Fprintf(&b, "  Needs work    %s %s %s\n", s.Worst.Emoji, s.Worst.Name,
			mutedStyle.Render(fmt.Sprintf("(longest %d)", s.Worst.Streak.Longest)))
	}
	return b.String()
}

func bar(percent int) string {
	filled := percent * barWidth / 100
	return barStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", barWidth-filled))
}
