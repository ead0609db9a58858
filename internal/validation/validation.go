// Package validation checks habit fields on the way in and audits a stored
// collection for problems the sanitizer cannot repair on its own.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
	"github.com/julianstephens/habitly/internal/streak"
)

// ConflictType identifies the kind of problem found in a collection
type ConflictType string

const (
	ConflictDuplicateHabitID   ConflictType = "duplicate_habit_id"
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictInvalidDateTime    ConflictType = "invalid_datetime"
	ConflictInvalidGoal        ConflictType = "invalid_goal"
	ConflictInvalidSchedule    ConflictType = "invalid_schedule"
	ConflictHistoryOrder       ConflictType = "history_order"
	ConflictStaleStreak        ConflictType = "stale_streak"
)

// Conflict is a single problem with one habit
type Conflict struct {
	Type        ConflictType
	HabitID     string
	HabitName   string
	Description string
}

// ValidationResult collects conflicts from a validation run
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts reports whether any conflict was found
func (r ValidationResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// FormatReport renders the result for the terminal
func (r ValidationResult) FormatReport() string {
	if !r.HasConflicts() {
		return "✓ No conflicts found"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d conflict(s):\n", len(r.Conflicts))
	for i, c := range r.Conflicts {
		fmt.Fprintf(&b, "\n%d. [%s] %s", i+1, c.Type, c.Description)
		if c.HabitName != "" {
			fmt.Fprintf(&b, "\n   Habit: %s (%s)", c.HabitName, c.HabitID)
		}
	}
	return b.String()
}

// Validator audits habit collections
type Validator struct{}

// New creates a Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabits checks every habit as of today. A streak that no longer
// matches its history is reported as stale rather than invalid.
func (v *Validator) ValidateHabits(habits []models.Habit, today time.Time) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	add := func(t ConflictType, h models.Habit, format string, args ...any) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        t,
			HabitID:     h.ID,
			HabitName:   h.Name,
			Description: fmt.Sprintf(format, args...),
		})
	}

	ids := make(map[string]bool, len(habits))
	names := make(map[string]string, len(habits))
	for _, h := range habits {
		if ids[h.ID] {
			add(ConflictDuplicateHabitID, h, "Duplicate habit id %q", h.ID)
		}
		ids[h.ID] = true

		key := strings.ToLower(strings.TrimSpace(h.Name))
		if first, ok := names[key]; ok {
			add(ConflictDuplicateHabitName, h, "Habit name %q is also used by %s", h.Name, first)
		} else {
			names[key] = h.ID
		}

		if err := ValidateGoal(h.GoalType, h.GoalValue); err != nil {
			add(ConflictInvalidGoal, h, "Goal value %s", err)
		}
		if err := ValidateRepeatDays(h.RepeatDays); err != nil {
			add(ConflictInvalidSchedule, h, "Schedule has a %s", err)
		}
		if h.Reminder != nil {
			if err := ValidateReminder(*h.Reminder); err != nil {
				add(ConflictInvalidDateTime, h, "Reminder has an %s", err)
			}
		}

		ordered := true
		for i, r := range h.History {
			if err := ValidateDate(r.Date); err != nil {
				add(ConflictInvalidDateTime, h, "History has an %s", err)
			}
			if i > 0 && r.Date <= h.History[i-1].Date {
				ordered = false
			}
		}
		if !ordered {
			add(ConflictHistoryOrder, h, "History is not in ascending date order or repeats a date")
		}

		if want := streak.Compute(h.RepeatDays, h.History, today); want != h.Streak {
			add(ConflictStaleStreak, h, "Stored streak %d/%d differs from %d/%d as of %s; run 'habitly refresh'",
				h.Streak.Current, h.Streak.Longest, want.Current, want.Longest, streak.Day(today).Format(constants.DateFormat))
		}
	}

	return result
}
