package snapshot

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
	"github.com/julianstephens/habitly/internal/storage"
)

var fixedNow = time.Date(2024, 6, 14, 9, 30, 0, 0, time.UTC)

func testSanitizer() Sanitizer {
	n := 0
	return Sanitizer{
		NewID: func() string {
			n++
			return fmt.Sprintf("gen-%d", n)
		},
		Now: func() time.Time { return fixedNow },
	}
}

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestStoreLoadSave(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	s := NewStore(mem)

	_, ok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "fresh store should have no snapshot")

	require.NoError(t, s.Save(ctx, []byte(`[]`)))
	data, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[]`, string(data))

	// Bound to the fixed key
	raw, ok, err := mem.Get(ctx, constants.HabitsKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[]`, string(raw))
}

func TestStoreSaveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewStore(storage.NewMemoryStore())
	err := s.Save(ctx, []byte(`[]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	habits := []models.Habit{
		{
			ID:         "b",
			Name:       "Read",
			Emoji:      "📚",
			GoalType:   constants.GoalCount,
			GoalValue:  intPtr(10),
			RepeatDays: []int{0, 6},
			Reminder:   strPtr("07:30"),
			CreatedAt:  fixedNow.Add(time.Hour),
			Streak:     models.Streak{Current: 1, Longest: 3},
			History: []models.HistoryRecord{
				{Date: "2024-06-08", Status: constants.StatusDone, Value: floatPtr(12)},
				{Date: "2024-06-09", Status: constants.StatusPartial, Value: floatPtr(4.5)},
			},
		},
		{
			ID:         "a",
			Name:       "Walk",
			Emoji:      "🏃",
			GoalType:   constants.GoalSimple,
			RepeatDays: []int{},
			CreatedAt:  fixedNow,
			History:    []models.HistoryRecord{},
		},
	}

	data, err := Encode(habits)
	require.NoError(t, err)

	got := testSanitizer().Decode(data)
	assert.Equal(t, habits, got)
}

func TestEncodeNilSlices(t *testing.T) {
	data, err := Encode([]models.Habit{{ID: "x", Name: "X", CreatedAt: fixedNow}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"repeatDays":[]`)
	assert.Contains(t, string(data), `"history":[]`)

	got := testSanitizer().Decode(data)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].RepeatDays, "empty schedule must not turn into the default")
}

func TestDecodeDegenerateInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"garbage", "not json"},
		{"object", `{"id":"x"}`},
		{"number", `42`},
		{"null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testSanitizer().Decode([]byte(tt.raw))
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestDecodeSkipsNonObjects(t *testing.T) {
	got := testSanitizer().Decode([]byte(`[1, "x", null, [], {"id":"a","name":"A"}]`))
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestDecodeRepairsFields(t *testing.T) {
	raw := `[{
		"name": "   ",
		"goalType": "bogus",
		"goalValue": "15",
		"repeatDays": "weekdays",
		"reminder": 5,
		"createdAt": "yesterday",
		"streak": {"current": "x", "longest": 4},
		"history": {"2024-06-01": "done"}
	}]`

	got := testSanitizer().Decode([]byte(raw))
	require.Len(t, got, 1)
	h := got[0]

	assert.Equal(t, "gen-1", h.ID)
	assert.Equal(t, constants.PlaceholderName, h.Name)
	assert.Equal(t, constants.DefaultEmoji, h.Emoji)
	assert.Equal(t, constants.GoalSimple, h.GoalType)
	require.NotNil(t, h.GoalValue)
	assert.Equal(t, 15, *h.GoalValue)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, h.RepeatDays)
	assert.Nil(t, h.Reminder)
	assert.Equal(t, fixedNow, h.CreatedAt)
	assert.Equal(t, models.Streak{Current: 0, Longest: 4}, h.Streak)
	assert.NotNil(t, h.History)
	assert.Empty(t, h.History)
}

func TestDecodeGoalValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *int
	}{
		{"number", `10`, intPtr(10)},
		{"fraction floors", `2.7`, intPtr(2)},
		{"numeric string", `"30"`, intPtr(30)},
		{"non-numeric string", `"lots"`, nil},
		{"null", `null`, nil},
		{"bool", `true`, nil},
		{"too large", `1e300`, nil},
		{"too small", `-1e300`, nil},
		{"too large string", `"9e18"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := fmt.Sprintf(`[{"id":"a","name":"A","goalValue":%s}]`, tt.raw)
			got := testSanitizer().Decode([]byte(raw))
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].GoalValue)
		})
	}
}

func TestDecodeStreakOutOfRange(t *testing.T) {
	raw := `[{"id":"a","name":"A","streak":{"current":1e300,"longest":-1e300}}]`
	got := testSanitizer().Decode([]byte(raw))
	require.Len(t, got, 1)
	assert.Equal(t, models.Streak{Current: math.MaxInt32, Longest: 0}, got[0].Streak)
}

func TestDecodeRepeatDaysFiltered(t *testing.T) {
	raw := `[{"id":"a","name":"A","repeatDays":[6, 7, -1, 1, 1, 2.5, "3", 0]}]`
	got := testSanitizer().Decode([]byte(raw))
	require.Len(t, got, 1)
	assert.Equal(t, []int{0, 1, 3, 6}, got[0].RepeatDays)
}

func TestDecodeDuplicateIDs(t *testing.T) {
	raw := `[{"id":"a","name":"First"},{"id":"a","name":"Second"},{"id":1718000000000,"name":"Third"}]`
	got := testSanitizer().Decode([]byte(raw))
	require.Len(t, got, 3)

	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "gen-1", got[1].ID)
	assert.Equal(t, "Second", got[1].Name)
	assert.Equal(t, "1718000000000", got[2].ID)
}

func TestDecodeHistory(t *testing.T) {
	raw := `[{"id":"a","name":"A","history":[
		{"date":"2024-06-03","status":"done"},
		{"date":"2024-06-01","status":"skip"},
		{"date":"2024-06-03","status":"partial","value":2},
		{"date":"June 2","status":"done"},
		{"date":"2024-06-02","status":"finished"},
		{"status":"done"},
		"2024-06-04"
	]}]`

	got := testSanitizer().Decode([]byte(raw))
	require.Len(t, got, 1)

	want := []models.HistoryRecord{
		{Date: "2024-06-01", Status: constants.StatusSkip},
		{Date: "2024-06-03", Status: constants.StatusPartial, Value: floatPtr(2)},
	}
	assert.Equal(t, want, got[0].History)
}

func TestDecodeKeepsDisplayFields(t *testing.T) {
	raw := `[{"id":"a","name":"  Stretch ","emoji":"🧘","reminder":"21:00","createdAt":"2024-01-02T03:04:05Z"}]`
	got := testSanitizer().Decode([]byte(raw))
	require.Len(t, got, 1)

	h := got[0]
	assert.Equal(t, "  Stretch ", h.Name)
	assert.Equal(t, "🧘", h.Emoji)
	require.NotNil(t, h.Reminder)
	assert.Equal(t, "21:00", *h.Reminder)
	assert.True(t, h.CreatedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}
