package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
)

var reminderPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var dayMap = map[string]int{
	"sun":       0,
	"sunday":    0,
	"mon":       1,
	"monday":    1,
	"tue":       2,
	"tuesday":   2,
	"wed":       3,
	"wednesday": 3,
	"thu":       4,
	"thursday":  4,
	"fri":       5,
	"friday":    5,
	"sat":       6,
	"saturday":  6,
}

// ValidateName trims name and rejects it if nothing is left
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.New("must not be empty")
	}
	return trimmed, nil
}

// ValidateGoal requires a positive goal value for time and count goals
func ValidateGoal(goalType constants.GoalType, goalValue *int) error {
	if !models.ValidGoalType(goalType) {
		return fmt.Errorf("unknown goal type %q", goalType)
	}
	if goalType == constants.GoalSimple {
		return nil
	}
	if goalValue == nil {
		return fmt.Errorf("required for %s goals", goalType)
	}
	if *goalValue <= 0 {
		return fmt.Errorf("must be positive, got %d", *goalValue)
	}
	return nil
}

// ValidateRepeatDays rejects weekday indices outside 0..6
func ValidateRepeatDays(days []int) error {
	for _, d := range days {
		if d < 0 || d > 6 {
			return fmt.Errorf("weekday %d out of range 0-6", d)
		}
	}
	return nil
}

// NormalizeRepeatDays returns days sorted and de-duplicated. The result is
// never nil.
func NormalizeRepeatDays(days []int) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return out
}

// ValidateReminder checks a 24-hour HH:MM time
func ValidateReminder(reminder string) error {
	if !reminderPattern.MatchString(reminder) {
		return fmt.Errorf("invalid time %q, expected HH:MM", reminder)
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD calendar date
func ValidateDate(date string) error {
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return nil
}

// ValidateValue rejects NaN and infinite completion values, which have no
// JSON encoding
func ValidateValue(value *float64) error {
	if value != nil && (math.IsNaN(*value) || math.IsInf(*value, 0)) {
		return fmt.Errorf("invalid value %v, expected a finite number", *value)
	}
	return nil
}

// ValidateCreatedAt rejects timestamps whose year falls outside 0000-9999,
// which RFC 3339 cannot represent
func ValidateCreatedAt(t time.Time) error {
	if y := t.Year(); y < 0 || y > 9999 {
		return fmt.Errorf("invalid creation time, year %d is outside 0-9999", y)
	}
	return nil
}

// ParseStatus parses an entry status name
func ParseStatus(s string) (constants.EntryStatus, error) {
	status := constants.EntryStatus(strings.ToLower(strings.TrimSpace(s)))
	if !models.ValidStatus(status) {
		return "", fmt.Errorf("invalid status %q, expected done, skip or partial", s)
	}
	return status, nil
}

// ParseWeekdays parses a comma-separated list of weekday names or numbers
// (0=Sunday, 6=Saturday). The shorthands "daily", "weekdays" and "weekends"
// are accepted on their own. An empty string yields an empty schedule.
func ParseWeekdays(s string) ([]int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "":
		return []int{}, nil
	case "daily":
		return []int{0, 1, 2, 3, 4, 5, 6}, nil
	case "weekdays":
		return slices.Clone(constants.DefaultRepeatDays), nil
	case "weekends":
		return []int{0, 6}, nil
	}

	var weekdays []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if wd, ok := dayMap[part]; ok {
			weekdays = append(weekdays, wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		weekdays = append(weekdays, num)
	}

	return NormalizeRepeatDays(weekdays), nil
}

// FormatWeekdays renders a schedule for display
func FormatWeekdays(days []int) string {
	norm := NormalizeRepeatDays(days)
	switch {
	case len(norm) == 0:
		return "never"
	case len(norm) == 7:
		return "daily"
	case slices.Equal(norm, constants.DefaultRepeatDays):
		return "weekdays"
	case slices.Equal(norm, []int{0, 6}):
		return "weekends"
	}

	names := make([]string, 0, len(norm))
	for _, d := range norm {
		if d < 0 || d > 6 {
			continue
		}
		names = append(names, time.Weekday(d).String()[:3])
	}
	return strings.Join(names, ",")
}
