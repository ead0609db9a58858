// Package stats summarizes a habit collection for the stats screen
package stats

import (
	"math"
	"time"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
	"github.com/julianstephens/habitly/internal/streak"
)

// DayPercent is the share of habits scheduled on Date that were done
type DayPercent struct {
	Date    string
	Weekday time.Weekday
	Percent int
}

// Summary holds the dashboard figures
type Summary struct {
	TodayPercent int
	TodayDue     int
	TodayDone    int
	Last7        []DayPercent
	MaxCurrent   int
	MaxLongest   int
	// Best and Worst are nil when there are no habits
	Best  *models.Habit
	Worst *models.Habit
}

// Compute summarizes habits as of today's civil date. Best and Worst are the
// habits with the largest and smallest longest streak; ties keep the first.
func Compute(habits []models.Habit, today time.Time) Summary {
	day := streak.Day(today)
	var s Summary

	s.TodayDue, s.TodayDone = completion(habits, day)
	s.TodayPercent = percent(s.TodayDone, s.TodayDue)

	s.Last7 = make([]DayPercent, 0, 7)
	for i := 6; i >= 0; i-- {
		d := day.AddDate(0, 0, -i)
		due, done := completion(habits, d)
		s.Last7 = append(s.Last7, DayPercent{
			Date:    d.Format(constants.DateFormat),
			Weekday: d.Weekday(),
			Percent: percent(done, due),
		})
	}

	for i := range habits {
		h := habits[i]
		s.MaxCurrent = max(s.MaxCurrent, h.Streak.Current)
		s.MaxLongest = max(s.MaxLongest, h.Streak.Longest)
		if s.Best == nil || h.Streak.Longest > s.Best.Streak.Longest {
			s.Best = &habits[i]
		}
		if s.Worst == nil || h.Streak.Longest < s.Worst.Streak.Longest {
			s.Worst = &habits[i]
		}
	}

	return s
}

func completion(habits []models.Habit, day time.Time) (due, done int) {
	date := day.Format(constants.DateFormat)
	for _, h := range habits {
		if !h.IsScheduledOn(day.Weekday()) {
			continue
		}
		due++
		if r, ok := h.Record(date); ok && r.Status == constants.StatusDone {
			done++
		}
	}
	return due, done
}

func percent(done, due int) int {
	if due == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(due) * 100))
}
