package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitly/internal/cli"
	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
	"github.com/julianstephens/habitly/internal/validation"
)

type HabitTodayCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	eng, err := ctx.Engine()
	if err != nil {
		return err
	}

	day, err := cli.ParseDay(eng, c.Date)
	if err != nil {
		return err
	}
	dayTime, err := ctx.DayTime(day)
	if err != nil {
		return err
	}

	due := eng.SelectDue(dayTime)
	if len(due) == 0 {
		ctx.Printf("No habits scheduled for %s.\n", day)
		return nil
	}

	ctx.Printf("%s\n\n", cli.TitleStyle.Render(fmt.Sprintf("Habits for %s (%s):", day, dayTime.Weekday())))
	done := 0
	for _, h := range due {
		if rec, ok := h.Record(day); ok && rec.Status == constants.StatusDone {
			done++
		}
		ctx.Printf("%s %s %s  %s\n", cli.StatusMark(h, day), h.Emoji, h.Name, cli.MutedStyle.Render(cli.FormatStreak(h.Streak)))
	}

	ctx.Printf("\nDone: %d/%d\n", done, len(due))
	return nil
}

type HabitMarkCmd struct {
	Habit  string   `arg:"" help:"Habit id or name."`
	Date   string   `help:"Date in YYYY-MM-DD format, today or yesterday (default: today)." default:""`
	Status string   `help:"Outcome to record." enum:"done,skip,partial" default:"done"`
	Value  *float64 `help:"Amount achieved (minutes or count)."`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	eng, err := ctx.Engine()
	if err != nil {
		return err
	}

	habit, err := cli.ResolveHabit(eng, c.Habit)
	if err != nil {
		return err
	}
	day, err := cli.ParseDay(eng, c.Date)
	if err != nil {
		return err
	}
	status, err := validation.ParseStatus(c.Status)
	if err != nil {
		return err
	}

	updated, err := eng.RecordCompletion(ctx.Ctx, habit.ID, day, status, c.Value)
	if err != nil {
		return err
	}

	ctx.Printf("Marked habit %q %s for %s  %s\n", updated.Name, status, day, cli.FormatStreak(updated.Streak))
	return nil
}

type HabitUnmarkCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Date  string `help:"Date in YYYY-MM-DD format, today or yesterday (default: today)." default:""`
}

func (c *HabitUnmarkCmd) Run(ctx *cli.Context) error {
	eng, err := ctx.Engine()
	if err != nil {
		return err
	}

	habit, err := cli.ResolveHabit(eng, c.Habit)
	if err != nil {
		return err
	}
	day, err := cli.ParseDay(eng, c.Date)
	if err != nil {
		return err
	}

	updated, err := eng.RemoveCompletion(ctx.Ctx, habit.ID, day)
	if err != nil {
		return err
	}

	ctx.Printf("Unmarked habit %q for %s  %s\n", updated.Name, day, cli.FormatStreak(updated.Streak))
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" optional:"" help:"Habit id or name (default: all habits)."`
	Days  int    `help:"Number of days to show." default:"14"`
}

const logNameWidth = 20

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	eng, err := ctx.Engine()
	if err != nil {
		return err
	}

	var selected []models.Habit
	if c.Habit != "" {
		habit, err := cli.ResolveHabit(eng, c.Habit)
		if err != nil {
			return err
		}
		selected = []models.Habit{habit}
		printDetails(ctx, habit)
	} else {
		selected = eng.SelectAll()
	}

	if len(selected) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	today := eng.Today()
	startDay := today.AddDate(0, 0, -(c.Days - 1))

	ctx.Printf("Habit log (last %d days):\n\n", c.Days)

	// Header with dates
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", logNameWidth))
	for i := 0; i < c.Days; i++ {
		fmt.Fprintf(&b, " %5s", startDay.AddDate(0, 0, i).Format("01/02"))
	}
	ctx.Println(b.String())
	ctx.Println(strings.Repeat("-", logNameWidth+6*c.Days))

	for _, habit := range selected {
		b.Reset()
		b.WriteString(padName(habit.Name, logNameWidth))
		for i := 0; i < c.Days; i++ {
			day := startDay.AddDate(0, 0, i)
			fmt.Fprintf(&b, "  %s   ", logMarker(habit, day.Format(constants.DateFormat), habit.IsScheduledOn(day.Weekday())))
		}
		ctx.Println(b.String())
	}

	ctx.Println()
	ctx.Println(cli.MutedStyle.Render("x done  ~ partial  s skip  . missed  (blank) not scheduled"))
	return nil
}

func printDetails(ctx *cli.Context, h models.Habit) {
	ctx.Printf("%s\n", cli.TitleStyle.Render(h.Emoji+" "+h.Name))
	ctx.Printf("  ID:       %s\n", h.ID)
	ctx.Printf("  Goal:     %s\n", cli.FormatGoal(h))
	ctx.Printf("  Repeats:  %s\n", validation.FormatWeekdays(h.RepeatDays))
	if h.Reminder != nil {
		ctx.Printf("  Reminder: %s\n", *h.Reminder)
	}
	ctx.Printf("  Created:  %s\n", h.CreatedAt.In(ctx.Location).Format(constants.DateFormat))
	ctx.Printf("  Streak:   %d current, %d longest\n", h.Streak.Current, h.Streak.Longest)
	ctx.Printf("  Entries:  %d\n\n", len(h.History))
}

// padName truncates or pads name to exactly width runes
func padName(name string, width int) string {
	runes := []rune(name)
	if len(runes) > width {
		return string(runes[:width-3]) + "..."
	}
	return name + strings.Repeat(" ", width-len(runes))
}

func logMarker(h models.Habit, date string, scheduled bool) string {
	if rec, ok := h.Record(date); ok {
		switch rec.Status {
		case constants.StatusDone:
			return "x"
		case constants.StatusPartial:
			return "~"
		default:
			return "s"
		}
	}
	if scheduled {
		return "."
	}
	return " "
}
