// Package streak derives current and longest streaks from a habit's schedule
// and completion history.
//
// Days are civil dates: only the year, month and day of "today" matter, so a
// DST transition never adds or drops a day from the walk.
package streak

import (
	"time"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
)

// Compute returns the streak for repeatDays and history as of today.
//
// The current streak walks backward from today over at most
// constants.StreakWindowDays days, skipping unscheduled days and stopping at
// the first scheduled day without a done record. The longest streak walks
// forward from StreakWindowDays days ago through today, resetting its run on
// every scheduled day without a done record.
func Compute(repeatDays []int, history []models.HistoryRecord, today time.Time) models.Streak {
	var scheduled [7]bool
	hasSchedule := false
	for _, d := range repeatDays {
		if d >= 0 && d <= 6 {
			scheduled[d] = true
			hasSchedule = true
		}
	}
	if !hasSchedule {
		return models.Streak{}
	}

	done := make(map[string]bool, len(history))
	for _, r := range history {
		if r.Status == constants.StatusDone {
			done[r.Date] = true
		}
	}

	day := Day(today)
	return models.Streak{
		Current: current(day, &scheduled, done),
		Longest: longest(day, &scheduled, done),
	}
}

func current(today time.Time, scheduled *[7]bool, done map[string]bool) int {
	count := 0
	for offset := 0; offset < constants.StreakWindowDays; offset++ {
		d := today.AddDate(0, 0, -offset)
		if !scheduled[d.Weekday()] {
			continue
		}
		if !done[d.Format(constants.DateFormat)] {
			break
		}
		count++
	}
	return count
}

func longest(today time.Time, scheduled *[7]bool, done map[string]bool) int {
	best, run := 0, 0
	for offset := constants.StreakWindowDays; offset >= 0; offset-- {
		d := today.AddDate(0, 0, -offset)
		if !scheduled[d.Weekday()] {
			continue
		}
		if done[d.Format(constants.DateFormat)] {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

// Day truncates t to its calendar date in t's own location and returns it as
// midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
