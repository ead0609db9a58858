package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
	"github.com/julianstephens/habitly/internal/snapshot"
)

// Friday
var friday = time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

var errDiskFull = errors.New("disk full")

// fakeStore is an in-memory SnapshotStore whose failures can be switched on
type fakeStore struct {
	mu      sync.Mutex
	data    []byte
	present bool
	saves   int
	saveErr error
	loadErr error
}

func (s *fakeStore) Load(ctx context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	return s.data, s.present, nil
}

func (s *fakeStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data = append([]byte(nil), data...)
	s.present = true
	s.saves++
	return nil
}

func (s *fakeStore) failSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

func (s *fakeStore) stored() []models.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.Decode(s.data)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestEngine(t *testing.T) (*Engine, *fakeStore, *testClock) {
	t.Helper()
	store := &fakeStore{}
	clock := &testClock{now: friday}
	var mu sync.Mutex
	n := 0
	e := New(store,
		WithClock(clock.Now),
		WithLocation(time.UTC),
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("h%d", n)
		}),
	)
	require.NoError(t, e.Reload(context.Background()))
	return e, store, clock
}

func intPtr(v int) *int { return &v }

func weekdays() []int { return []int{1, 2, 3, 4, 5} }

func TestCreateDefaults(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "  Walk  ", RepeatDays: []int{5, 1, 1}})
	require.NoError(t, err)

	assert.Equal(t, "h1", h.ID)
	assert.Equal(t, "Walk", h.Name)
	assert.Equal(t, constants.DefaultEmoji, h.Emoji)
	assert.Equal(t, constants.GoalSimple, h.GoalType)
	assert.Equal(t, []int{1, 5}, h.RepeatDays)
	assert.Equal(t, friday, h.CreatedAt)
	assert.Equal(t, models.Streak{}, h.Streak)
	assert.NotNil(t, h.History)
	assert.Empty(t, h.History)

	assert.Equal(t, 1, store.saves)
	assert.Equal(t, []models.Habit{h}, store.stored())
}

func TestCreateInsertsAtFront(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	for _, name := range []string{"First", "Second", "Third"} {
		_, err := e.Create(ctx, models.Habit{Name: name})
		require.NoError(t, err)
	}

	all := e.SelectAll()
	require.Len(t, all, 3)
	assert.Equal(t, "Third", all[0].Name)
	assert.Equal(t, "Second", all[1].Name)
	assert.Equal(t, "First", all[2].Name)
}

func TestCreateValidation(t *testing.T) {
	bad := "7am"
	nan := math.NaN()
	tests := []struct {
		name  string
		draft models.Habit
		field string
	}{
		{"empty name", models.Habit{Name: "   "}, "name"},
		{"count without goal", models.Habit{Name: "Pushups", GoalType: constants.GoalCount}, "goalValue"},
		{"time with zero goal", models.Habit{Name: "Read", GoalType: constants.GoalTime, GoalValue: intPtr(0)}, "goalValue"},
		{"unknown goal type", models.Habit{Name: "Run", GoalType: "distance"}, "goalType"},
		{"weekday out of range", models.Habit{Name: "Run", RepeatDays: []int{1, 7}}, "repeatDays"},
		{"bad reminder", models.Habit{Name: "Run", Reminder: &bad}, "reminder"},
		{"bad history date", models.Habit{Name: "Run", History: []models.HistoryRecord{{Date: "2024-02-30", Status: constants.StatusDone}}}, "history"},
		{"bad history status", models.Habit{Name: "Run", History: []models.HistoryRecord{{Date: "2024-06-01", Status: "ok"}}}, "history"},
		{"non-finite history value", models.Habit{Name: "Run", History: []models.HistoryRecord{{Date: "2024-06-01", Status: constants.StatusDone, Value: &nan}}}, "history"},
		{"created after year 9999", models.Habit{Name: "Run", CreatedAt: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)}, "createdAt"},
		{"created before year 0", models.Habit{Name: "Run", CreatedAt: time.Date(-1, 1, 1, 0, 0, 0, 0, time.UTC)}, "createdAt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, store, _ := newTestEngine(t)

			_, err := e.Create(context.Background(), tt.draft)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)

			assert.Empty(t, e.SelectAll())
			assert.Zero(t, store.saves)
		})
	}
}

func TestCreateCountGoal(t *testing.T) {
	e, _, _ := newTestEngine(t)

	h, err := e.Create(context.Background(), models.Habit{Name: "Pushups", GoalType: constants.GoalCount, GoalValue: intPtr(10)})
	require.NoError(t, err)
	require.NotNil(t, h.GoalValue)
	assert.Equal(t, 10, *h.GoalValue)

	got, err := e.Get(h.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, *got.GoalValue)
}

func TestCreateDuplicateID(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	_, err := e.Create(ctx, models.Habit{ID: "fixed", Name: "A"})
	require.NoError(t, err)

	_, err = e.Create(ctx, models.Habit{ID: "fixed", Name: "B"})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Len(t, e.SelectAll(), 1)
}

func TestCreateWithHistoryComputesStreak(t *testing.T) {
	e, _, _ := newTestEngine(t)

	h, err := e.Create(context.Background(), models.Habit{
		Name:       "Walk",
		RepeatDays: weekdays(),
		History: []models.HistoryRecord{
			{Date: "2024-06-14", Status: constants.StatusDone},
			{Date: "2024-06-13", Status: constants.StatusSkip},
			{Date: "2024-06-13", Status: constants.StatusDone},
		},
	})
	require.NoError(t, err)

	require.Len(t, h.History, 2)
	assert.Equal(t, "2024-06-13", h.History[0].Date)
	assert.Equal(t, constants.StatusDone, h.History[0].Status)
	assert.Equal(t, models.Streak{Current: 2, Longest: 2}, h.Streak)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	e, _, clock := newTestEngine(t)

	orig, err := e.Create(ctx, models.Habit{Name: "Walk", RepeatDays: weekdays()})
	require.NoError(t, err)
	orig, err = e.RecordCompletion(ctx, orig.ID, "2024-06-14", constants.StatusDone, nil)
	require.NoError(t, err)
	require.Equal(t, 1, orig.Streak.Current)

	clock.Set(friday.Add(48 * time.Hour))

	edit := orig
	edit.Name = "Evening walk"
	edit.Emoji = "🌙"
	edit.CreatedAt = time.Time{}
	edit.History = nil
	edit.Streak = models.Streak{Current: 99, Longest: 99}

	got, err := e.Update(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, "Evening walk", got.Name)
	assert.Equal(t, "🌙", got.Emoji)
	assert.Equal(t, orig.CreatedAt, got.CreatedAt, "createdAt is immutable")
	assert.Equal(t, orig.History, got.History, "nil history keeps stored history")
	assert.Equal(t, orig.Streak, got.Streak, "streak is engine-owned")

	// Replacing the history recomputes as of the current clock (Sunday)
	edit.History = []models.HistoryRecord{
		{Date: "2024-06-13", Status: constants.StatusDone},
		{Date: "2024-06-14", Status: constants.StatusDone},
	}
	got, err = e.Update(ctx, edit)
	require.NoError(t, err)
	assert.Len(t, got.History, 2)
	assert.Equal(t, models.Streak{Current: 2, Longest: 2}, got.Streak)
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	_, err := e.Update(ctx, models.Habit{ID: "missing", Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)

	h, err := e.Create(ctx, models.Habit{Name: "Walk"})
	require.NoError(t, err)

	h.Name = ""
	_, err = e.Update(ctx, h)
	assert.ErrorIs(t, err, ErrValidation)

	got, err := e.Get(h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Walk", got.Name)
}

func TestDeleteTwice(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Walk"})
	require.NoError(t, err)

	require.NoError(t, e.Delete(ctx, h.ID))
	assert.Empty(t, e.SelectAll())
	assert.Empty(t, store.stored())

	err = e.Delete(ctx, h.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, store.saves)
}

func TestRecordCompletionWeekdayStreak(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Walk", RepeatDays: weekdays()})
	require.NoError(t, err)

	for _, d := range []string{"2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13", "2024-06-14"} {
		h, err = e.RecordCompletion(ctx, h.ID, d, constants.StatusDone, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, h.Streak.Current)
	assert.Equal(t, 5, h.Streak.Longest)
}

func TestRecordCompletionSkipBreaksStreak(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Walk", RepeatDays: weekdays()})
	require.NoError(t, err)

	for _, d := range []string{"2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13"} {
		_, err = e.RecordCompletion(ctx, h.ID, d, constants.StatusDone, nil)
		require.NoError(t, err)
	}
	h, err = e.RecordCompletion(ctx, h.ID, "2024-06-14", constants.StatusSkip, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, h.Streak.Current)
	assert.GreaterOrEqual(t, h.Streak.Longest, 4)
}

func TestRecordCompletionEmptySchedule(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Someday", RepeatDays: []int{}})
	require.NoError(t, err)

	h, err = e.RecordCompletion(ctx, h.ID, "2024-06-14", constants.StatusDone, nil)
	require.NoError(t, err)
	assert.Equal(t, models.Streak{}, h.Streak)
	assert.Len(t, h.History, 1)
}

func TestRecordCompletionIdempotent(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Water", GoalType: constants.GoalCount, GoalValue: intPtr(8), RepeatDays: weekdays()})
	require.NoError(t, err)

	v := 8.0
	first, err := e.RecordCompletion(ctx, h.ID, "2024-06-14", constants.StatusDone, &v)
	require.NoError(t, err)
	snap := store.stored()

	second, err := e.RecordCompletion(ctx, h.ID, "2024-06-14", constants.StatusDone, &v)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, snap, store.stored())
	require.Len(t, second.History, 1)
	assert.Equal(t, 8.0, *second.History[0].Value)
}

func TestRecordCompletionReplacesSameDate(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Walk", RepeatDays: weekdays()})
	require.NoError(t, err)

	_, err = e.RecordCompletion(ctx, h.ID, "2024-06-14", constants.StatusDone, nil)
	require.NoError(t, err)
	_, err = e.RecordCompletion(ctx, h.ID, "2024-06-12", constants.StatusDone, nil)
	require.NoError(t, err)
	h, err = e.RecordCompletion(ctx, h.ID, "2024-06-14", constants.StatusPartial, nil)
	require.NoError(t, err)

	require.Len(t, h.History, 2)
	assert.Equal(t, "2024-06-12", h.History[0].Date)
	assert.Equal(t, "2024-06-14", h.History[1].Date)
	assert.Equal(t, constants.StatusPartial, h.History[1].Status)
	assert.Equal(t, 0, h.Streak.Current)
}

func TestRecordCompletionErrors(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Walk"})
	require.NoError(t, err)

	_, err = e.RecordCompletion(ctx, "missing", "2024-06-14", constants.StatusDone, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.RecordCompletion(ctx, h.ID, "14/06/2024", constants.StatusDone, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.RecordCompletion(ctx, h.ID, "2024-06-14", "finished", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordCompletionRejectsNonFiniteValue(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"NaN", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e, store, _ := newTestEngine(t)

			h, err := e.Create(ctx, models.Habit{Name: "Swim"})
			require.NoError(t, err)
			before := e.SelectAll()
			saves := store.saves

			value := tt.value
			_, err = e.RecordCompletion(ctx, h.ID, "2024-06-14", constants.StatusPartial, &value)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.NotErrorIs(t, err, ErrPersistence)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "value", verr.Field)

			assert.Equal(t, saves, store.saves)
			assert.Equal(t, before, e.SelectAll())
		})
	}
}

func TestRemoveCompletion(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Walk", RepeatDays: weekdays()})
	require.NoError(t, err)
	_, err = e.RecordCompletion(ctx, h.ID, "2024-06-13", constants.StatusDone, nil)
	require.NoError(t, err)
	h, err = e.RecordCompletion(ctx, h.ID, "2024-06-14", constants.StatusDone, nil)
	require.NoError(t, err)
	require.Equal(t, 2, h.Streak.Current)

	h, err = e.RemoveCompletion(ctx, h.ID, "2024-06-14")
	require.NoError(t, err)
	assert.Len(t, h.History, 1)
	assert.Equal(t, models.Streak{Current: 0, Longest: 1}, h.Streak)

	_, err = e.RemoveCompletion(ctx, h.ID, "2024-06-14")
	assert.ErrorIs(t, err, ErrNotFound)
	var rerr *RecordNotFoundError
	assert.ErrorAs(t, err, &rerr)

	_, err = e.RemoveCompletion(ctx, "missing", "2024-06-14")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersistenceFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Walk", RepeatDays: weekdays()})
	require.NoError(t, err)
	_, err = e.RecordCompletion(ctx, h.ID, "2024-06-13", constants.StatusDone, nil)
	require.NoError(t, err)

	before := e.SelectAll()
	saved := store.stored()
	store.failSaves(errDiskFull)

	ops := map[string]func() error{
		"create": func() error {
			_, err := e.Create(ctx, models.Habit{Name: "Read"})
			return err
		},
		"update": func() error {
			edit := before[0]
			edit.Name = "Run"
			_, err := e.Update(ctx, edit)
			return err
		},
		"delete": func() error { return e.Delete(ctx, h.ID) },
		"record": func() error {
			_, err := e.RecordCompletion(ctx, h.ID, "2024-06-14", constants.StatusDone, nil)
			return err
		},
		"remove": func() error {
			_, err := e.RemoveCompletion(ctx, h.ID, "2024-06-13")
			return err
		},
		"reset": func() error { return e.Reset(ctx) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPersistence)
			assert.ErrorIs(t, err, errDiskFull)
			assert.Equal(t, before, e.SelectAll())
			assert.Equal(t, saved, store.stored())
		})
	}
}

func TestCancelledContextIsPersistenceFailure(t *testing.T) {
	e, store, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Create(ctx, models.Habit{Name: "Walk"})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, e.SelectAll())
	assert.Zero(t, store.saves)
}

func TestReload(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Walk"})
	require.NoError(t, err)

	// A fresh engine over the same store sees the persisted collection
	other := New(store, WithClock(func() time.Time { return friday }), WithLocation(time.UTC))
	require.NoError(t, other.Reload(ctx))
	assert.Equal(t, []models.Habit{h}, other.SelectAll())

	// Malformed data is sanitized, never raised
	store.data = []byte(`[{"name":"Legacy","repeatDays":null}, 42]`)
	require.NoError(t, e.Reload(ctx))
	all := e.SelectAll()
	require.Len(t, all, 1)
	assert.Equal(t, "Legacy", all[0].Name)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, all[0].RepeatDays)
	assert.NotEmpty(t, all[0].ID)

	store.data = []byte(`{{{`)
	require.NoError(t, e.Reload(ctx))
	assert.Empty(t, e.SelectAll())
}

func TestReloadReadFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)

	_, err := e.Create(ctx, models.Habit{Name: "Walk"})
	require.NoError(t, err)
	before := e.SelectAll()

	store.loadErr = errDiskFull
	err = e.Reload(ctx)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, before, e.SelectAll())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)

	for _, name := range []string{"A", "B"} {
		_, err := e.Create(ctx, models.Habit{Name: name})
		require.NoError(t, err)
	}

	require.NoError(t, e.Reset(ctx))
	assert.Empty(t, e.SelectAll())
	assert.Equal(t, "[]", string(store.data))
}

func TestSelectDue(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	_, err := e.Create(ctx, models.Habit{Name: "Weekdays", RepeatDays: weekdays()})
	require.NoError(t, err)
	_, err = e.Create(ctx, models.Habit{Name: "Weekends", RepeatDays: []int{0, 6}})
	require.NoError(t, err)
	_, err = e.Create(ctx, models.Habit{Name: "Never", RepeatDays: []int{}})
	require.NoError(t, err)

	due := e.SelectDue(friday)
	require.Len(t, due, 1)
	assert.Equal(t, "Weekdays", due[0].Name)

	due = e.SelectDue(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	require.Len(t, due, 1)
	assert.Equal(t, "Weekends", due[0].Name)
}

func TestGetAndFindByName(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Morning Run"})
	require.NoError(t, err)

	got, err := e.FindByName("  morning run ")
	require.NoError(t, err)
	assert.Equal(t, h.ID, got.ID)

	_, err = e.FindByName("Evening Run")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSelectorsReturnCopies(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Walk", RepeatDays: weekdays()})
	require.NoError(t, err)
	_, err = e.RecordCompletion(ctx, h.ID, "2024-06-14", constants.StatusDone, nil)
	require.NoError(t, err)

	all := e.SelectAll()
	all[0].Name = "Mutated"
	all[0].RepeatDays[0] = 6
	all[0].History[0].Status = constants.StatusSkip

	got, err := e.Get(h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Walk", got.Name)
	assert.Equal(t, 1, got.RepeatDays[0])
	assert.Equal(t, constants.StatusDone, got.History[0].Status)
}

func TestRefreshStreaks(t *testing.T) {
	ctx := context.Background()
	e, store, clock := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Walk", RepeatDays: weekdays()})
	require.NoError(t, err)
	h, err = e.RecordCompletion(ctx, h.ID, "2024-06-14", constants.StatusDone, nil)
	require.NoError(t, err)
	require.Equal(t, 1, h.Streak.Current)

	n, err := e.RefreshStreaks(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	saves := store.saves

	// The following Monday has no record yet
	clock.Set(friday.AddDate(0, 0, 3))
	n, err = e.RefreshStreaks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, saves+1, store.saves)

	got, err := e.Get(h.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Streak{Current: 0, Longest: 1}, got.Streak)
}

func TestTodayUsesLocation(t *testing.T) {
	ctx := context.Background()
	tokyo := time.FixedZone("JST", 9*60*60)
	// Friday 20:00 UTC is already Saturday in Tokyo
	e := New(&fakeStore{}, WithClock(func() time.Time { return time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC) }), WithLocation(tokyo))

	h, err := e.Create(ctx, models.Habit{Name: "Weekend", RepeatDays: []int{6}})
	require.NoError(t, err)
	h, err = e.RecordCompletion(ctx, h.ID, "2024-06-15", constants.StatusDone, nil)
	require.NoError(t, err)

	assert.Equal(t, time.Saturday, e.Today().Weekday())
	assert.Equal(t, 1, h.Streak.Current)
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	ctx := context.Background()
	e, store, _ := newTestEngine(t)

	h, err := e.Create(ctx, models.Habit{Name: "Walk", RepeatDays: []int{0, 1, 2, 3, 4, 5, 6}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			date := friday.AddDate(0, 0, -i).Format(constants.DateFormat)
			_, err := e.RecordCompletion(ctx, h.ID, date, constants.StatusDone, nil)
			assert.NoError(t, err)
			_ = e.SelectAll()
		}(i)
	}
	wg.Wait()

	got, err := e.Get(h.ID)
	require.NoError(t, err)
	assert.Len(t, got.History, 20)
	assert.Equal(t, models.Streak{Current: 20, Longest: 20}, got.Streak)
	assert.Equal(t, 21, store.saves)
	assert.Equal(t, []models.Habit{got}, store.stored())
}

func TestCurrentNeverExceedsLongest(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	statuses := []constants.EntryStatus{constants.StatusDone, constants.StatusDone, constants.StatusSkip, constants.StatusPartial}

	for run := 0; run < 20; run++ {
		e, _, _ := newTestEngine(t)
		days := []int{}
		for d := 0; d < 7; d++ {
			if rng.Intn(2) == 0 {
				days = append(days, d)
			}
		}
		h, err := e.Create(ctx, models.Habit{Name: "Random", RepeatDays: days})
		require.NoError(t, err)

		for i := 0; i < 40; i++ {
			date := friday.AddDate(0, 0, -rng.Intn(60)).Format(constants.DateFormat)
			h, err = e.RecordCompletion(ctx, h.ID, date, statuses[rng.Intn(len(statuses))], nil)
			require.NoError(t, err)
			require.LessOrEqual(t, h.Streak.Current, h.Streak.Longest)
		}
	}
}
