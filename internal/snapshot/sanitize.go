package snapshot

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/logger"
	"github.com/julianstephens/habitly/internal/models"
)

// Sanitizer repairs snapshots written by older or buggy versions
type Sanitizer struct {
	NewID func() string
	Now   func() time.Time
}

// DefaultSanitizer uses random UUIDs and the wall clock
func DefaultSanitizer() Sanitizer {
	return Sanitizer{
		NewID: uuid.NewString,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// Decode parses raw with DefaultSanitizer
func Decode(raw []byte) []models.Habit {
	return DefaultSanitizer().Decode(raw)
}

// Decode parses a snapshot blob. It never fails: an absent, unparsable or
// non-array blob yields an empty collection, and malformed elements are
// repaired field by field instead of rejecting the snapshot.
func (s Sanitizer) Decode(raw []byte) []models.Habit {
	habits := []models.Habit{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return habits
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		logger.Warn("Discarding unparsable habits snapshot", "error", err)
		return habits
	}

	seen := make(map[string]bool, len(elems))
	for i, elem := range elems {
		obj, ok := decodeObject(elem)
		if !ok {
			logger.Warn("Skipping non-object habit in snapshot", "index", i)
			continue
		}

		h, repaired := s.habit(obj)
		if seen[h.ID] {
			h.ID = s.NewID()
			repaired = append(repaired, "id")
		}
		seen[h.ID] = true

		if len(repaired) > 0 {
			logger.Warn("Repaired habit from snapshot", "index", i, "id", h.ID, "fields", strings.Join(repaired, ","))
		}
		habits = append(habits, h)
	}
	return habits
}

func decodeObject(raw json.RawMessage) (map[string]any, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func (s Sanitizer) habit(obj map[string]any) (models.Habit, []string) {
	var repaired []string
	var h models.Habit

	if id, ok := scalarString(obj["id"]); ok && id != "" {
		h.ID = id
	} else {
		h.ID = s.NewID()
		repaired = append(repaired, "id")
	}

	if name, ok := scalarString(obj["name"]); ok && strings.TrimSpace(name) != "" {
		h.Name = name
	} else {
		h.Name = constants.PlaceholderName
		repaired = append(repaired, "name")
	}

	if emoji, ok := obj["emoji"].(string); ok && emoji != "" {
		h.Emoji = emoji
	} else {
		h.Emoji = constants.DefaultEmoji
	}

	h.GoalType = constants.GoalSimple
	if g, ok := obj["goalType"].(string); ok && models.ValidGoalType(constants.GoalType(g)) {
		h.GoalType = constants.GoalType(g)
	} else if obj["goalType"] != nil {
		repaired = append(repaired, "goalType")
	}

	if f, ok := number(obj["goalValue"]); ok && math.Abs(f) <= maxStoredInt {
		v := int(math.Floor(f))
		h.GoalValue = &v
	} else if ok {
		repaired = append(repaired, "goalValue")
	}

	if days, ok := obj["repeatDays"].([]any); ok {
		h.RepeatDays = weekdays(days)
	} else {
		h.RepeatDays = slices.Clone(constants.DefaultRepeatDays)
		repaired = append(repaired, "repeatDays")
	}

	if r, ok := obj["reminder"].(string); ok {
		h.Reminder = &r
	}

	h.CreatedAt = s.Now()
	if c, ok := obj["createdAt"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, c); err == nil {
			h.CreatedAt = t
		} else {
			repaired = append(repaired, "createdAt")
		}
	}

	if st, ok := obj["streak"].(map[string]any); ok {
		h.Streak.Current = count(st["current"])
		h.Streak.Longest = count(st["longest"])
	}

	h.History = []models.HistoryRecord{}
	if hist, ok := obj["history"].([]any); ok {
		h.History = history(hist)
	} else if obj["history"] != nil {
		repaired = append(repaired, "history")
	}

	return h, repaired
}

// weekdays keeps integral indices in 0..6, de-duplicated and sorted
func weekdays(raw []any) []int {
	days := []int{}
	for _, v := range raw {
		f, ok := number(v)
		if !ok || f != math.Trunc(f) || f < 0 || f > 6 {
			continue
		}
		d := int(f)
		if !slices.Contains(days, d) {
			days = append(days, d)
		}
	}
	sort.Ints(days)
	return days
}

// history drops records without a valid date or status; later records for
// the same date win
func history(raw []any) []models.HistoryRecord {
	byDate := map[string]models.HistoryRecord{}
	for _, v := range raw {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		date, _ := obj["date"].(string)
		if _, err := time.Parse(constants.DateFormat, date); err != nil {
			continue
		}
		status, _ := obj["status"].(string)
		if !models.ValidStatus(constants.EntryStatus(status)) {
			continue
		}
		r := models.HistoryRecord{Date: date, Status: constants.EntryStatus(status)}
		if f, ok := number(obj["value"]); ok {
			r.Value = &f
		}
		byDate[date] = r
	}

	out := make([]models.HistoryRecord, 0, len(byDate))
	for _, r := range byDate {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// scalarString accepts strings and numbers, the latter for ids written as
// timestamps by early versions
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	}
	return "", false
}

func number(v any) (float64, bool) {
	var f float64
	var err error
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// maxStoredInt bounds numbers converted to int so the conversion is always
// defined
const maxStoredInt = math.MaxInt32

// count reads a non-negative counter, clamping values beyond maxStoredInt
func count(v any) int {
	f, ok := number(v)
	if !ok || f < 0 {
		return 0
	}
	return int(math.Min(f, maxStoredInt))
}
