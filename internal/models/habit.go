package models

import (
	"slices"
	"time"

	"github.com/julianstephens/habitly/internal/constants"
)

// Habit represents a recurring practice to track
type Habit struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Emoji      string             `json:"emoji"`
	GoalType   constants.GoalType `json:"goalType"`
	GoalValue  *int               `json:"goalValue"`
	RepeatDays []int              `json:"repeatDays"` // 0=Sunday..6=Saturday
	Reminder   *string            `json:"reminder"`   // HH:MM, stored only
	CreatedAt  time.Time          `json:"createdAt"`
	Streak     Streak             `json:"streak"`
	History    []HistoryRecord    `json:"history"`
}

// Streak is derived from History and RepeatDays by the engine. It is never
// edited by hand.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// HistoryRecord represents a single day's outcome for a habit
type HistoryRecord struct {
	Date   string                `json:"date"` // YYYY-MM-DD format
	Status constants.EntryStatus `json:"status"`
	Value  *float64              `json:"value,omitempty"`
}

// IsScheduledOn reports whether the habit's schedule includes the given weekday
func (h Habit) IsScheduledOn(day time.Weekday) bool {
	return slices.Contains(h.RepeatDays, int(day))
}

// Record returns the history record for a date, if any
func (h Habit) Record(date string) (HistoryRecord, bool) {
	for _, r := range h.History {
		if r.Date == date {
			return r, true
		}
	}
	return HistoryRecord{}, false
}

// Clone returns a deep copy so callers cannot mutate engine-owned state
func (h Habit) Clone() Habit {
	c := h
	if h.GoalValue != nil {
		v := *h.GoalValue
		c.GoalValue = &v
	}
	if h.Reminder != nil {
		r := *h.Reminder
		c.Reminder = &r
	}
	if h.RepeatDays != nil {
		c.RepeatDays = slices.Clone(h.RepeatDays)
	}
	if h.History != nil {
		c.History = make([]HistoryRecord, len(h.History))
		for i, r := range h.History {
			c.History[i] = r
			if r.Value != nil {
				v := *r.Value
				c.History[i].Value = &v
			}
		}
	}
	return c
}

// ValidGoalType reports whether g is one of the known goal types
func ValidGoalType(g constants.GoalType) bool {
	switch g {
	case constants.GoalSimple, constants.GoalTime, constants.GoalCount:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the known entry statuses
func ValidStatus(s constants.EntryStatus) bool {
	switch s {
	case constants.StatusDone, constants.StatusSkip, constants.StatusPartial:
		return true
	}
	return false
}
