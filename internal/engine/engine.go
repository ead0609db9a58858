// Package engine owns the canonical habit collection. Every mutation builds
// the complete next collection, persists it as one snapshot and only then
// makes it visible, so readers never observe state that failed to save.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/logger"
	"github.com/julianstephens/habitly/internal/models"
	"github.com/julianstephens/habitly/internal/snapshot"
	"github.com/julianstephens/habitly/internal/streak"
	"github.com/julianstephens/habitly/internal/validation"
)

// SnapshotStore loads and saves the whole collection as one blob
type SnapshotStore interface {
	Load(ctx context.Context) ([]byte, bool, error)
	Save(ctx context.Context, data []byte) error
}

// Engine holds the habit collection and serializes writes to it
type Engine struct {
	store SnapshotStore
	now   func() time.Time
	newID func() string
	loc   *time.Location

	// writeMu is held across compute, persist and swap
	writeMu sync.Mutex
	mu      sync.RWMutex
	habits  []models.Habit
}

// New creates an engine with an empty collection. Call Reload to hydrate it
// from the store.
func New(store SnapshotStore, opts ...Option) *Engine {
	e := &Engine{store: store, habits: []models.Habit{}}
	defaultOptions(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today returns the current time in the engine's location
func (e *Engine) Today() time.Time {
	return e.now().In(e.loc)
}

// Reload replaces the visible collection with the sanitized stored snapshot.
// Absent or malformed data yields an empty or repaired collection; only a
// storage read failure is returned, and then the collection is unchanged.
func (e *Engine) Reload(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	data, ok, err := e.store.Load(ctx)
	if err != nil {
		logger.Error("Failed to load habits", "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	habits := []models.Habit{}
	if ok {
		habits = e.sanitizer().Decode(data)
	}

	e.mu.Lock()
	e.habits = habits
	e.mu.Unlock()

	logger.Debug("Loaded habits", "count", len(habits), "present", ok)
	return nil
}

// Reset persists an empty collection
func (e *Engine) Reset(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := e.commit(ctx, []models.Habit{}); err != nil {
		return err
	}
	logger.Info("Reset habits")
	return nil
}

// SelectAll returns copies of every habit, most recently created first
func (e *Engine) SelectAll() []models.Habit {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.Habit, len(e.habits))
	for i, h := range e.habits {
		out[i] = h.Clone()
	}
	return out
}

// SelectDue returns copies of the habits scheduled on the weekday of onDate,
// taken in onDate's own location
func (e *Engine) SelectDue(onDate time.Time) []models.Habit {
	day := onDate.Weekday()

	e.mu.RLock()
	defer e.mu.RUnlock()

	out := []models.Habit{}
	for _, h := range e.habits {
		if h.IsScheduledOn(day) {
			out = append(out, h.Clone())
		}
	}
	return out
}

// Get returns a copy of the habit with id
func (e *Engine) Get(id string) (models.Habit, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if i := indexOf(e.habits, id); i >= 0 {
		return e.habits[i].Clone(), nil
	}
	return models.Habit{}, notFound(id)
}

// FindByName returns the first habit whose trimmed name matches name,
// ignoring case
func (e *Engine) FindByName(name string) (models.Habit, error) {
	want := strings.TrimSpace(name)

	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, h := range e.habits {
		if strings.EqualFold(strings.TrimSpace(h.Name), want) {
			return h.Clone(), nil
		}
	}
	return models.Habit{}, notFound(name)
}

// Create validates draft, fills in defaults and inserts it at the front of
// the collection. An empty ID is replaced with a generated one.
func (e *Engine) Create(ctx context.Context, draft models.Habit) (models.Habit, error) {
	h, err := prepare(draft)
	if err != nil {
		return models.Habit{}, err
	}
	if err := validation.ValidateCreatedAt(draft.CreatedAt); err != nil {
		return models.Habit{}, invalid("createdAt", err)
	}
	history, err := normalizeHistory(draft.History)
	if err != nil {
		return models.Habit{}, err
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if h.ID == "" {
		h.ID = e.newID()
	} else if indexOf(e.habits, h.ID) >= 0 {
		return models.Habit{}, fmt.Errorf("%w: %s", ErrDuplicateID, h.ID)
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = e.now().UTC()
	}
	h.History = history
	h.Streak = streak.Compute(h.RepeatDays, h.History, e.Today())

	next := make([]models.Habit, 0, len(e.habits)+1)
	next = append(next, h)
	next = append(next, e.habits...)

	if err := e.commit(ctx, next); err != nil {
		return models.Habit{}, err
	}
	logger.Debug("Created habit", "id", h.ID, "name", h.Name)
	return h.Clone(), nil
}

// Update replaces the stored habit that has habit.ID. ID and CreatedAt keep
// their stored values. A nil History keeps the stored history and streak; a
// non-nil History replaces it and the streak is recomputed.
func (e *Engine) Update(ctx context.Context, habit models.Habit) (models.Habit, error) {
	h, err := prepare(habit)
	if err != nil {
		return models.Habit{}, err
	}
	var history []models.HistoryRecord
	if habit.History != nil {
		if history, err = normalizeHistory(habit.History); err != nil {
			return models.Habit{}, err
		}
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	i := indexOf(e.habits, habit.ID)
	if i < 0 {
		return models.Habit{}, notFound(habit.ID)
	}
	stored := e.habits[i]

	h.ID = stored.ID
	h.CreatedAt = stored.CreatedAt
	if history == nil {
		h.History = stored.Clone().History
		h.Streak = stored.Streak
	} else {
		h.History = history
		h.Streak = streak.Compute(h.RepeatDays, h.History, e.Today())
	}

	next := replaceAt(e.habits, i, h)
	if err := e.commit(ctx, next); err != nil {
		return models.Habit{}, err
	}
	logger.Debug("Updated habit", "id", h.ID)
	return h.Clone(), nil
}

// Delete removes the habit with id
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	i := indexOf(e.habits, id)
	if i < 0 {
		return notFound(id)
	}

	next := make([]models.Habit, 0, len(e.habits)-1)
	next = append(next, e.habits[:i]...)
	next = append(next, e.habits[i+1:]...)

	if err := e.commit(ctx, next); err != nil {
		return err
	}
	logger.Debug("Deleted habit", "id", id)
	return nil
}

// RecordCompletion sets the history record for date, replacing any existing
// record for that date, and recomputes the streak as of today
func (e *Engine) RecordCompletion(ctx context.Context, habitID, date string, status constants.EntryStatus, value *float64) (models.Habit, error) {
	if err := validation.ValidateDate(date); err != nil {
		return models.Habit{}, invalid("date", err)
	}
	if !models.ValidStatus(status) {
		return models.Habit{}, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	if err := validation.ValidateValue(value); err != nil {
		return models.Habit{}, invalid("value", err)
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	i := indexOf(e.habits, habitID)
	if i < 0 {
		return models.Habit{}, notFound(habitID)
	}

	h := e.habits[i].Clone()
	rec := models.HistoryRecord{Date: date, Status: status}
	if value != nil {
		v := *value
		rec.Value = &v
	}
	h.History = upsertRecord(h.History, rec)
	h.Streak = streak.Compute(h.RepeatDays, h.History, e.Today())

	if err := e.commit(ctx, replaceAt(e.habits, i, h)); err != nil {
		return models.Habit{}, err
	}
	logger.Debug("Recorded completion", "id", habitID, "date", date, "status", status)
	return h.Clone(), nil
}

// RemoveCompletion deletes the history record for date and recomputes the
// streak as of today
func (e *Engine) RemoveCompletion(ctx context.Context, habitID, date string) (models.Habit, error) {
	if err := validation.ValidateDate(date); err != nil {
		return models.Habit{}, invalid("date", err)
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	i := indexOf(e.habits, habitID)
	if i < 0 {
		return models.Habit{}, notFound(habitID)
	}
	if _, ok := e.habits[i].Record(date); !ok {
		return models.Habit{}, &RecordNotFoundError{HabitID: habitID, Date: date}
	}

	h := e.habits[i].Clone()
	kept := make([]models.HistoryRecord, 0, len(h.History)-1)
	for _, r := range h.History {
		if r.Date != date {
			kept = append(kept, r)
		}
	}
	h.History = kept
	h.Streak = streak.Compute(h.RepeatDays, h.History, e.Today())

	if err := e.commit(ctx, replaceAt(e.habits, i, h)); err != nil {
		return models.Habit{}, err
	}
	logger.Debug("Removed completion", "id", habitID, "date", date)
	return h.Clone(), nil
}

// RefreshStreaks recomputes every streak as of today and persists the result
// if any changed. It returns the number of habits whose streak changed.
func (e *Engine) RefreshStreaks(ctx context.Context) (int, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	today := e.Today()
	changed := 0
	next := make([]models.Habit, len(e.habits))
	for i, h := range e.habits {
		s := streak.Compute(h.RepeatDays, h.History, today)
		if s != h.Streak {
			h = h.Clone()
			h.Streak = s
			changed++
		}
		next[i] = h
	}
	if changed == 0 {
		return 0, nil
	}

	if err := e.commit(ctx, next); err != nil {
		return 0, err
	}
	logger.Info("Refreshed streaks", "changed", changed)
	return changed, nil
}

// commit persists next and then makes it visible. The caller holds writeMu.
func (e *Engine) commit(ctx context.Context, next []models.Habit) error {
	data, err := snapshot.Encode(next)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := e.store.Save(ctx, data); err != nil {
		logger.Error("Failed to persist habits", "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	e.mu.Lock()
	e.habits = next
	e.mu.Unlock()
	return nil
}

func (e *Engine) sanitizer() snapshot.Sanitizer {
	return snapshot.Sanitizer{
		NewID: e.newID,
		Now:   func() time.Time { return e.now().UTC() },
	}
}

// prepare validates the caller-editable fields of h and returns a normalized
// copy without history
func prepare(h models.Habit) (models.Habit, error) {
	out := h.Clone()
	out.History = nil

	name, err := validation.ValidateName(h.Name)
	if err != nil {
		return models.Habit{}, invalid("name", err)
	}
	out.Name = name

	if out.GoalType == "" {
		out.GoalType = constants.GoalSimple
	}
	if err := validation.ValidateGoal(out.GoalType, out.GoalValue); err != nil {
		field := "goalValue"
		if !models.ValidGoalType(out.GoalType) {
			field = "goalType"
		}
		return models.Habit{}, invalid(field, err)
	}

	if err := validation.ValidateRepeatDays(h.RepeatDays); err != nil {
		return models.Habit{}, invalid("repeatDays", err)
	}
	out.RepeatDays = validation.NormalizeRepeatDays(h.RepeatDays)

	if out.Reminder != nil && *out.Reminder == "" {
		out.Reminder = nil
	}
	if out.Reminder != nil {
		if err := validation.ValidateReminder(*out.Reminder); err != nil {
			return models.Habit{}, invalid("reminder", err)
		}
	}

	if out.Emoji == "" {
		out.Emoji = constants.DefaultEmoji
	}
	out.Streak = models.Streak{}
	return out, nil
}

// normalizeHistory validates caller-supplied records and returns them sorted
// by date with later duplicates winning. The result is never nil.
func normalizeHistory(history []models.HistoryRecord) ([]models.HistoryRecord, error) {
	out := make([]models.HistoryRecord, 0, len(history))
	for _, r := range history {
		if err := validation.ValidateDate(r.Date); err != nil {
			return nil, invalid("history", err)
		}
		if !models.ValidStatus(r.Status) {
			return nil, &ValidationError{Field: "history", Message: fmt.Sprintf("unknown status %q on %s", r.Status, r.Date)}
		}
		if err := validation.ValidateValue(r.Value); err != nil {
			return nil, invalid("history", err)
		}
		out = upsertRecord(out, r)
	}
	return models.Habit{History: out}.Clone().History, nil
}

// upsertRecord returns history with rec replacing any record on the same
// date, keeping ascending date order. history must already be sorted.
func upsertRecord(history []models.HistoryRecord, rec models.HistoryRecord) []models.HistoryRecord {
	i := sort.Search(len(history), func(i int) bool { return history[i].Date >= rec.Date })
	if i < len(history) && history[i].Date == rec.Date {
		history[i] = rec
		return history
	}
	history = append(history, models.HistoryRecord{})
	copy(history[i+1:], history[i:])
	history[i] = rec
	return history
}

func indexOf(habits []models.Habit, id string) int {
	for i, h := range habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func replaceAt(habits []models.Habit, i int, h models.Habit) []models.Habit {
	next := make([]models.Habit, len(habits))
	copy(next, habits)
	next[i] = h
	return next
}
