package streak

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
)

var weekdays = []int{1, 2, 3, 4, 5}

// friday is 2024-06-14
var friday = time.Date(2024, 6, 14, 9, 30, 0, 0, time.UTC)

func rec(date string, status constants.EntryStatus) models.HistoryRecord {
	return models.HistoryRecord{Date: date, Status: status}
}

func doneRange(from time.Time, days int) []models.HistoryRecord {
	var out []models.HistoryRecord
	for i := 0; i < days; i++ {
		out = append(out, rec(from.AddDate(0, 0, i).Format(constants.DateFormat), constants.StatusDone))
	}
	return out
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		repeatDays []int
		history    []models.HistoryRecord
		want       models.Streak
	}{
		{
			name:       "five most recent weekdays done",
			repeatDays: weekdays,
			history: []models.HistoryRecord{
				rec("2024-06-10", constants.StatusDone),
				rec("2024-06-11", constants.StatusDone),
				rec("2024-06-12", constants.StatusDone),
				rec("2024-06-13", constants.StatusDone),
				rec("2024-06-14", constants.StatusDone),
			},
			want: models.Streak{Current: 5, Longest: 5},
		},
		{
			name:       "skip on most recent scheduled day breaks current",
			repeatDays: weekdays,
			history: []models.HistoryRecord{
				rec("2024-06-10", constants.StatusDone),
				rec("2024-06-11", constants.StatusDone),
				rec("2024-06-12", constants.StatusDone),
				rec("2024-06-13", constants.StatusDone),
				rec("2024-06-14", constants.StatusSkip),
			},
			want: models.Streak{Current: 0, Longest: 4},
		},
		{
			name:       "missing record today breaks current",
			repeatDays: weekdays,
			history: []models.HistoryRecord{
				rec("2024-06-12", constants.StatusDone),
				rec("2024-06-13", constants.StatusDone),
			},
			want: models.Streak{Current: 0, Longest: 2},
		},
		{
			name:       "partial counts as unsatisfied",
			repeatDays: weekdays,
			history: []models.HistoryRecord{
				rec("2024-06-11", constants.StatusDone),
				rec("2024-06-12", constants.StatusPartial),
				rec("2024-06-13", constants.StatusDone),
				rec("2024-06-14", constants.StatusDone),
			},
			want: models.Streak{Current: 2, Longest: 2},
		},
		{
			name:       "weekend does not break a weekday run",
			repeatDays: weekdays,
			history: []models.HistoryRecord{
				rec("2024-06-06", constants.StatusDone),
				rec("2024-06-07", constants.StatusDone),
				rec("2024-06-10", constants.StatusDone),
				rec("2024-06-11", constants.StatusDone),
				rec("2024-06-12", constants.StatusDone),
				rec("2024-06-13", constants.StatusDone),
				rec("2024-06-14", constants.StatusDone),
			},
			want: models.Streak{Current: 7, Longest: 7},
		},
		{
			name:       "records on unscheduled days have no bearing",
			repeatDays: weekdays,
			history: []models.HistoryRecord{
				rec("2024-06-08", constants.StatusDone),
				rec("2024-06-09", constants.StatusDone),
				rec("2024-06-13", constants.StatusDone),
				rec("2024-06-14", constants.StatusDone),
			},
			want: models.Streak{Current: 2, Longest: 2},
		},
		{
			name:       "empty schedule is never scheduled",
			repeatDays: []int{},
			history:    doneRange(friday.AddDate(0, 0, -30), 31),
			want:       models.Streak{},
		},
		{
			name:       "out of range weekday indices are ignored",
			repeatDays: []int{7, -1},
			history:    doneRange(friday.AddDate(0, 0, -30), 31),
			want:       models.Streak{},
		},
		{
			name:       "no history",
			repeatDays: weekdays,
			want:       models.Streak{},
		},
		{
			name:       "older run is longest",
			repeatDays: []int{0, 1, 2, 3, 4, 5, 6},
			history: append(
				doneRange(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 10),
				rec("2024-06-13", constants.StatusDone),
				rec("2024-06-14", constants.StatusDone),
			),
			want: models.Streak{Current: 2, Longest: 10},
		},
		{
			name:       "records outside the window are ignored",
			repeatDays: []int{0, 1, 2, 3, 4, 5, 6},
			history:    doneRange(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 30),
			want:       models.Streak{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(tt.repeatDays, tt.history, friday))
		})
	}
}

func TestComputeCurrentIsBoundedByWindow(t *testing.T) {
	daily := []int{0, 1, 2, 3, 4, 5, 6}
	history := doneRange(friday.AddDate(0, 0, -500), 501)

	got := Compute(daily, history, friday)

	assert.Equal(t, constants.StreakWindowDays, got.Current)
	assert.GreaterOrEqual(t, got.Longest, got.Current)
}

func TestComputeUsesCalendarDateOfToday(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*60*60)
	// 23:30 on Friday locally is already Saturday in UTC
	lateFriday := time.Date(2024, 6, 14, 23, 30, 0, 0, loc)

	got := Compute(weekdays, []models.HistoryRecord{rec("2024-06-14", constants.StatusDone)}, lateFriday)

	assert.Equal(t, models.Streak{Current: 1, Longest: 1}, got)
}

func TestComputeCurrentNeverExceedsLongest(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	statuses := []constants.EntryStatus{constants.StatusDone, constants.StatusDone, constants.StatusSkip, constants.StatusPartial}

	for i := 0; i < 200; i++ {
		var days []int
		for d := 0; d < 7; d++ {
			if r.Intn(2) == 0 {
				days = append(days, d)
			}
		}
		var history []models.HistoryRecord
		for offset := 0; offset < 60; offset++ {
			if r.Intn(3) == 0 {
				continue
			}
			date := friday.AddDate(0, 0, -offset).Format(constants.DateFormat)
			history = append(history, rec(date, statuses[r.Intn(len(statuses))]))
		}

		got := Compute(days, history, friday)
		assert.LessOrEqual(t, got.Current, got.Longest, "days=%v", days)
	}
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	in := time.Date(2024, 1, 1, 2, 0, 0, 0, loc)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Day(in))
}
