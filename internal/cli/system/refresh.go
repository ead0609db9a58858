package system

import (
	"github.com/julianstephens/habitly/internal/cli"
)

// RefreshCmd recomputes every streak as of today
type RefreshCmd struct{}

func (c *RefreshCmd) Run(ctx *cli.Context) error {
	eng, err := ctx.Engine()
	if err != nil {
		return err
	}

	changed, err := eng.RefreshStreaks(ctx.Ctx)
	if err != nil {
		return err
	}

	if changed == 0 {
		ctx.Println("All streaks are up to date.")
		return nil
	}
	ctx.Printf("✓ Refreshed %d streak(s)\n", changed)
	return nil
}
