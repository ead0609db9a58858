package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitly/internal/constants"
)

func TestNewHabitFormModel(t *testing.T) {
	fm := NewHabitFormModel([]int{0, 6})
	assert.Equal(t, "weekends", fm.Days)
	assert.Equal(t, constants.GoalSimple, fm.Goal)
	assert.Equal(t, constants.DefaultEmoji, fm.Emoji)

	assert.NotNil(t, NewHabitForm(fm))
}

func TestHabitFormModel_Draft(t *testing.T) {
	fm := &HabitFormModel{
		Name:      "  Pushups ",
		Emoji:     "💪",
		Goal:      constants.GoalCount,
		GoalValue: " 20 ",
		Days:      "mon, wed,fri",
		Reminder:  "07:00",
	}
	h, err := fm.Draft()
	require.NoError(t, err)
	assert.Equal(t, "Pushups", h.Name)
	assert.Equal(t, []int{1, 3, 5}, h.RepeatDays)
	require.NotNil(t, h.GoalValue)
	assert.Equal(t, 20, *h.GoalValue)
	require.NotNil(t, h.Reminder)
	assert.Equal(t, "07:00", *h.Reminder)

	h, err = (&HabitFormModel{Name: "Rest", Days: "never"}).Draft()
	require.NoError(t, err)
	assert.Empty(t, h.RepeatDays)
	assert.Nil(t, h.GoalValue)
	assert.Nil(t, h.Reminder)

	_, err = (&HabitFormModel{Name: "X", Days: "someday"}).Draft()
	assert.Error(t, err)

	_, err = (&HabitFormModel{Name: "X", GoalValue: "ten"}).Draft()
	assert.Error(t, err)
}
