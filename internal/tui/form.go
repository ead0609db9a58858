package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
	"github.com/julianstephens/habitly/internal/validation"
)

// HabitFormModel holds the raw values of the add-habit form
type HabitFormModel struct {
	Name      string
	Emoji     string
	Goal      constants.GoalType
	GoalValue string
	Days      string
	Reminder  string
}

// NewHabitFormModel returns form values prefilled with defaults
func NewHabitFormModel(defaultDays []int) *HabitFormModel {
	return &HabitFormModel{
		Emoji: constants.DefaultEmoji,
		Goal:  constants.GoalSimple,
		Days:  validation.FormatWeekdays(defaultDays),
	}
}

// Draft converts the form values into a habit ready for the engine
func (f *HabitFormModel) Draft() (models.Habit, error) {
	days, err := validation.ParseWeekdays(daysInput(f.Days))
	if err != nil {
		return models.Habit{}, err
	}
	h := models.Habit{
		Name:       strings.TrimSpace(f.Name),
		Emoji:      strings.TrimSpace(f.Emoji),
		GoalType:   f.Goal,
		RepeatDays: days,
	}
	if v := strings.TrimSpace(f.GoalValue); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return models.Habit{}, fmt.Errorf("invalid goal value %q", v)
		}
		h.GoalValue = &n
	}
	if r := strings.TrimSpace(f.Reminder); r != "" {
		h.Reminder = &r
	}
	return h, nil
}

// daysInput maps the "never" display value back to an empty schedule
func daysInput(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "never") {
		return ""
	}
	return s
}

// NewHabitForm creates a form for adding a habit
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					_, err := validation.ValidateName(s)
					return err
				}),
			huh.NewInput().
				Title("Emoji").
				Value(&fm.Emoji),
			huh.NewSelect[constants.GoalType]().
				Title("Goal").
				Options(
					huh.NewOption("Simple", constants.GoalSimple),
					huh.NewOption("Time (minutes)", constants.GoalTime),
					huh.NewOption("Count", constants.GoalCount),
				).
				Value(&fm.Goal),
			huh.NewInput().
				Title("Goal value").
				Description("Required for time and count goals").
				Value(&fm.GoalValue).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("goal value must be a positive number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Repeat days").
				Description("e.g. mon,wed,fri, daily, weekdays, weekends").
				Value(&fm.Days).
				Validate(func(s string) error {
					_, err := validation.ParseWeekdays(daysInput(s))
					return err
				}),
			huh.NewInput().
				Title("Reminder (HH:MM)").
				Description("Optional").
				Value(&fm.Reminder).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					return validation.ValidateReminder(strings.TrimSpace(s))
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
