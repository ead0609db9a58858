package system

import (
	"fmt"

	"github.com/julianstephens/habitly/internal/backup"
	"github.com/julianstephens/habitly/internal/cli"
	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/storage"
)

// ResetCmd clears every habit and setting
type ResetCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	if !c.Yes && !ctx.Confirm("Delete all habits, history and settings?") {
		ctx.Println("Reset cancelled.")
		return nil
	}

	path := ctx.Store.GetConfigPath()
	if backup.Supported(path) {
		backupPath, err := ctx.Backups().CreateBackup()
		if err != nil {
			return fmt.Errorf("failed to back up before reset: %w", err)
		}
		ctx.Printf("Backed up current data to: %s\n", backupPath)
	}

	n, err := storage.ClearPrefix(ctx.Ctx, ctx.Store, constants.KeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}

	eng, err := ctx.Engine()
	if err != nil {
		return err
	}
	if err := eng.Reload(ctx.Ctx); err != nil {
		return err
	}

	ctx.Printf("✓ Cleared %d key(s)\n", n)
	return nil
}
