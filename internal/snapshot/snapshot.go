// Package snapshot persists the whole habit collection as a single blob under
// one fixed storage key, and turns blobs back into habits.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/models"
	"github.com/julianstephens/habitly/internal/storage"
)

// Store binds a storage provider to the habits snapshot key
type Store struct {
	provider storage.Provider
	key      string
}

// NewStore creates a snapshot store over provider using constants.HabitsKey
func NewStore(provider storage.Provider) *Store {
	return &Store{provider: provider, key: constants.HabitsKey}
}

// Load returns the raw snapshot, or ok=false if none has been saved
func (s *Store) Load(ctx context.Context) ([]byte, bool, error) {
	data, ok, err := s.provider.Get(ctx, s.key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, ok, nil
}

// Save replaces the snapshot with data
func (s *Store) Save(ctx context.Context, data []byte) error {
	if err := s.provider.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Encode serializes habits as a JSON array. Nil schedules and histories are
// written as empty arrays so they are not mistaken for missing fields on load.
func Encode(habits []models.Habit) ([]byte, error) {
	out := make([]models.Habit, len(habits))
	for i, h := range habits {
		if h.RepeatDays == nil {
			h.RepeatDays = []int{}
		}
		if h.History == nil {
			h.History = []models.HistoryRecord{}
		}
		out[i] = h
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize habits: %w", err)
	}
	return data, nil
}
