package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError
	ErrValidation = errors.New("invalid habit")
	// ErrNotFound is returned when an operation targets an id not in the collection
	ErrNotFound = errors.New("habit not found")
	// ErrDuplicateID is returned when Create collides with an existing id
	ErrDuplicateID = errors.New("habit id already exists")
	// ErrPersistence wraps snapshot read and write failures. State is unchanged
	// when it is returned.
	ErrPersistence = errors.New("habit storage failed")
)

// ValidationError reports bad input to Create, Update or RecordCompletion
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RecordNotFoundError reports a missing history record. It matches ErrNotFound.
type RecordNotFoundError struct {
	HabitID string
	Date    string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("no completion recorded for habit %s on %s", e.HabitID, e.Date)
}

func (e *RecordNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Message: err.Error()}
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
