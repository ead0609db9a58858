package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitly/internal/backup"
	"github.com/julianstephens/habitly/internal/cli"
	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting existing data before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	fileBacked := backup.Supported(path)

	if c.Force && fileBacked {
		if _, err := os.Stat(path); err == nil {
			// Close first to prevent file locking issues
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing data at: %s\n", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(ctx.Ctx); err != nil {
		return err
	}

	if c.Force && !fileBacked {
		n, err := storage.ClearPrefix(ctx.Ctx, ctx.Store, constants.KeyPrefix)
		if err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
		ctx.Printf("Cleared %d existing key(s)\n", n)
	}

	ctx.Printf("Initialized habitly storage at: %s\n", path)
	return nil
}
