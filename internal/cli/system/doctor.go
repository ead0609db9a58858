package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitly/internal/backup"
	"github.com/julianstephens/habitly/internal/cli"
	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/logger"
	"github.com/julianstephens/habitly/internal/validation"
)

type DoctorCmd struct{}

// errSkipped marks a check that could not run
var errSkipped = errors.New("skipped")

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	fail := func(name string, err error) {
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", name)
		case errors.Is(err, errSkipped):
			ctx.Printf("⊘ %s: SKIPPED (%v)\n", name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}
	warn := func(name string, err error) {
		if err == nil {
			ctx.Printf("✓ %s: OK\n", name)
			return
		}
		ctx.Printf("⚠ %s: WARNING\n", name)
		ctx.Printf("   %v\n", err)
	}

	reachable := checkStorageReachable(ctx)
	fail("Storage reachable", reachable)

	unreachable := fmt.Errorf("%w: storage not reachable", errSkipped)
	if reachable == nil {
		fail("Snapshot readable", checkSnapshot(ctx))
		fail("Data validation", checkValidation(ctx))
	} else {
		fail("Snapshot readable", unreachable)
		fail("Data validation", unreachable)
	}

	if backup.Supported(ctx.Store.GetConfigPath()) {
		warn("Backups present", checkBackupsPresent(ctx))
	} else {
		fail("Backups present", fmt.Errorf("%w: storage is not a local file", errSkipped))
	}

	fail("Clock/timezone", checkClockTimezone(ctx))

	if p := logger.Path(); p != "" {
		ctx.Printf("✓ Log file: %s\n", p)
	} else {
		warn("Log file", errors.New("logging is not initialized"))
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

// checkStorageReachable opens the store. SQL backends also check the schema
// version here.
func checkStorageReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	return nil
}

func checkSnapshot(ctx *cli.Context) error {
	raw, ok, err := ctx.Store.Get(ctx.Ctx, constants.HabitsKey)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if !ok {
		return nil
	}
	if !json.Valid(raw) {
		return errors.New("snapshot is not valid JSON; habits will load as empty")
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	eng, err := ctx.Engine()
	if err != nil {
		return err
	}
	result := validation.New().ValidateHabits(eng.SelectAll(), eng.Today())
	if result.HasConflicts() {
		return fmt.Errorf("found %d conflict(s); run 'habitly validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := ctx.Backups()
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.GetBackupDir())
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	if ctx.Location == nil {
		return errors.New("no timezone configured")
	}
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}
