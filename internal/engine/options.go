package engine

import (
	"time"

	"github.com/google/uuid"
)

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces the wall clock used for createdAt and "today"
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator replaces the UUID generator used for new habits
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// WithLocation sets the location whose calendar defines "today"
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func defaultOptions(e *Engine) {
	e.now = time.Now
	e.newID = uuid.NewString
	e.loc = time.Local
}
