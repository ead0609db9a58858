package habits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitly/internal/cli"
	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
	"github.com/julianstephens/habitly/internal/tui"
	"github.com/julianstephens/habitly/internal/validation"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit an existing habit."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its history."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Today  HabitTodayCmd  `cmd:"" help:"Show the habits due today and their status."`
	Mark   HabitMarkCmd   `cmd:"" help:"Record a habit outcome for a day."`
	Unmark HabitUnmarkCmd `cmd:"" help:"Remove a habit outcome for a day."`
	Show   HabitShowCmd   `cmd:"" help:"Show habit details and history (ASCII log)."`
}

type HabitAddCmd struct {
	Name        string  `arg:"" optional:"" help:"Habit name."`
	Emoji       string  `help:"Display emoji." default:"🏃"`
	Goal        string  `help:"Goal type." enum:"simple,time,count" default:"simple"`
	GoalValue   *int    `help:"Goal target: minutes for time goals, amount for count goals."`
	Days        *string `help:"Repeat days: names or numbers 0-6 (0=Sunday), or daily, weekdays, weekends. Defaults to the configured schedule."`
	Reminder    *string `help:"Reminder time (HH:MM)."`
	Interactive bool    `short:"i" help:"Fill in the habit with an interactive form."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	eng, err := ctx.Engine()
	if err != nil {
		return err
	}

	var draft models.Habit
	if c.Interactive {
		fm := tui.NewHabitFormModel(ctx.DefaultRepeatDays())
		fm.Name = c.Name
		if err := tui.NewHabitForm(fm).Run(); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
		draft, err = fm.Draft()
	} else {
		draft, err = c.draft(ctx)
	}
	if err != nil {
		return err
	}

	// Check if habit with same name already exists
	if _, err := eng.FindByName(draft.Name); err == nil {
		return fmt.Errorf("habit with name %q already exists", strings.TrimSpace(draft.Name))
	}

	habit, err := eng.Create(ctx.Ctx, draft)
	if err != nil {
		return err
	}

	ctx.Printf("✓ Added habit: %s %s (%s, %s)\n",
		habit.Emoji, habit.Name, validation.FormatWeekdays(habit.RepeatDays), cli.FormatGoal(habit))
	return nil
}

func (c *HabitAddCmd) draft(ctx *cli.Context) (models.Habit, error) {
	if strings.TrimSpace(c.Name) == "" {
		return models.Habit{}, errors.New("habit name is required (or use --interactive)")
	}
	days := ctx.DefaultRepeatDays()
	if c.Days != nil {
		parsed, err := validation.ParseWeekdays(*c.Days)
		if err != nil {
			return models.Habit{}, err
		}
		days = parsed
	}
	return models.Habit{
		Name:       c.Name,
		Emoji:      c.Emoji,
		GoalType:   constants.GoalType(c.Goal),
		GoalValue:  c.GoalValue,
		RepeatDays: days,
		Reminder:   c.Reminder,
	}, nil
}

type HabitEditCmd struct {
	Habit     string  `arg:"" help:"Habit id or name."`
	Name      *string `help:"New name."`
	Emoji     *string `help:"New emoji."`
	Goal      *string `help:"Goal type: simple, time or count."`
	GoalValue *int    `help:"Goal target."`
	Days      *string `help:"Repeat days: names or numbers 0-6, or daily, weekdays, weekends. Empty for none."`
	Reminder  *string `help:"Reminder time (HH:MM). Empty clears it."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	eng, err := ctx.Engine()
	if err != nil {
		return err
	}

	habit, err := cli.ResolveHabit(eng, c.Habit)
	if err != nil {
		return err
	}

	updated := false
	if c.Name != nil {
		habit.Name = *c.Name
		updated = true
	}
	if c.Emoji != nil {
		habit.Emoji = *c.Emoji
		updated = true
	}
	if c.Goal != nil {
		habit.GoalType = constants.GoalType(strings.ToLower(strings.TrimSpace(*c.Goal)))
		if habit.GoalType == constants.GoalSimple {
			habit.GoalValue = nil
		}
		updated = true
	}
	if c.GoalValue != nil {
		habit.GoalValue = c.GoalValue
		updated = true
	}
	if c.Days != nil {
		days, err := validation.ParseWeekdays(*c.Days)
		if err != nil {
			return err
		}
		habit.RepeatDays = days
		updated = true
	}
	if c.Reminder != nil {
		habit.Reminder = c.Reminder
		updated = true
	}

	if !updated {
		return errors.New("no changes specified")
	}

	// Keep the stored history and streak
	habit.History = nil
	saved, err := eng.Update(ctx.Ctx, habit)
	if err != nil {
		return err
	}

	ctx.Printf("✓ Updated habit: %s %s\n", saved.Emoji, saved.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	eng, err := ctx.Engine()
	if err != nil {
		return err
	}

	habit, err := cli.ResolveHabit(eng, c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes && !ctx.Confirm(fmt.Sprintf("Delete habit %q and its history?", habit.Name)) {
		ctx.Println("Delete cancelled.")
		return nil
	}

	if err := eng.Delete(ctx.Ctx, habit.ID); err != nil {
		return err
	}

	ctx.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}

type HabitListCmd struct {
	Due bool `help:"Only list habits scheduled today."`
	IDs bool `name:"ids" help:"Show habit ids."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	eng, err := ctx.Engine()
	if err != nil {
		return err
	}

	habits := eng.SelectAll()
	if c.Due {
		habits = eng.SelectDue(eng.Today())
	}

	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	for _, h := range habits {
		line := fmt.Sprintf("%s %-24s %-12s %-10s %s",
			h.Emoji, h.Name, validation.FormatWeekdays(h.RepeatDays), cli.FormatGoal(h), cli.FormatStreak(h.Streak))
		if c.IDs {
			line += "  " + cli.MutedStyle.Render(h.ID)
		}
		ctx.Println(line)
	}

	return nil
}
