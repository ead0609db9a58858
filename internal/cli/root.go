package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitly/internal/backup"
	"github.com/julianstephens/habitly/internal/config"
	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/engine"
	"github.com/julianstephens/habitly/internal/logger"
	"github.com/julianstephens/habitly/internal/models"
	"github.com/julianstephens/habitly/internal/settings"
	"github.com/julianstephens/habitly/internal/snapshot"
	"github.com/julianstephens/habitly/internal/storage"
	"github.com/julianstephens/habitly/internal/validation"
)

// Context is handed to every command's Run method
type Context struct {
	Ctx      context.Context
	Store    storage.Provider
	Config   *config.Config
	Location *time.Location
	Out      io.Writer
	In       io.Reader
	// Clock overrides the engine clock when set
	Clock func() time.Time

	engine *engine.Engine
	reader *bufio.Reader
}

// NewContext builds a command context writing to stdout and reading stdin
func NewContext(ctx context.Context, store storage.Provider, cfg *config.Config) (*Context, error) {
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Context{
		Ctx:      ctx,
		Store:    store,
		Config:   cfg,
		Location: loc,
		Out:      os.Stdout,
		In:       os.Stdin,
	}, nil
}

// Engine returns the habit engine, hydrating it from storage on first use
func (c *Context) Engine() (*engine.Engine, error) {
	if c.engine != nil {
		return c.engine, nil
	}
	opts := []engine.Option{engine.WithLocation(c.Location)}
	if c.Clock != nil {
		opts = append(opts, engine.WithClock(c.Clock))
	}
	eng := engine.New(snapshot.NewStore(c.Store), opts...)
	if err := eng.Reload(c.Ctx); err != nil {
		return nil, err
	}
	c.engine = eng
	return eng, nil
}

// Settings returns the settings service for the current store
func (c *Context) Settings() *settings.Service {
	return settings.NewService(c.Store)
}

// Backups returns a backup manager for the storage file, honoring the
// configured retention
func (c *Context) Backups() *backup.Manager {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if c.Config != nil {
		mgr.SetRetention(c.Config.Backup.Keep)
	}
	return mgr
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !backup.Supported(c.Store.GetConfigPath()) {
		return
	}
	if _, err := c.Backups().CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// DefaultRepeatDays returns the schedule new habits get when none is given
func (c *Context) DefaultRepeatDays() []int {
	if c.Config != nil && c.Config.DefaultRepeatDays != nil {
		return validation.NormalizeRepeatDays(c.Config.DefaultRepeatDays)
	}
	return validation.NormalizeRepeatDays(constants.DefaultRepeatDays)
}

// ResolveHabit finds a habit by id, falling back to a case-insensitive name
// match
func ResolveHabit(eng *engine.Engine, ref string) (models.Habit, error) {
	if h, err := eng.Get(ref); err == nil {
		return h, nil
	}
	return eng.FindByName(ref)
}

// ParseDay resolves a --date value to YYYY-MM-DD. Empty and "today" mean the
// engine's current day; "yesterday" is accepted too.
func ParseDay(eng *engine.Engine, value string) (string, error) {
	today := eng.Today()
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "today":
		return today.Format(constants.DateFormat), nil
	case "yesterday":
		return today.AddDate(0, 0, -1).Format(constants.DateFormat), nil
	}
	if err := validation.ValidateDate(value); err != nil {
		return "", err
	}
	return value, nil
}

// DayTime parses a YYYY-MM-DD string as midnight in the context's location
func (c *Context) DayTime(day string) (time.Time, error) {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(constants.DateFormat, day, loc)
}

// Confirm asks a yes/no question on Out and reads the answer from In
func (c *Context) Confirm(prompt string) bool {
	fmt.Fprintf(c.Out, "%s (y/N): ", prompt)
	if c.reader == nil {
		c.reader = bufio.NewReader(c.In)
	}
	response, err := c.reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// Printf writes formatted output to Out
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// Println writes a line to Out
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}
