package system

import (
	"fmt"

	"github.com/julianstephens/habitly/internal/cli"
	"github.com/julianstephens/habitly/internal/validation"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	eng, err := ctx.Engine()
	if err != nil {
		return err
	}

	result := validation.New().ValidateHabits(eng.SelectAll(), eng.Today())
	ctx.Println(result.FormatReport())

	if result.HasConflicts() {
		return fmt.Errorf("found %d conflict(s)", len(result.Conflicts))
	}
	return nil
}
