package settings

import (
	"fmt"

	"github.com/julianstephens/habitly/internal/cli"
	"github.com/julianstephens/habitly/internal/constants"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	DarkMode      *bool   `help:"Enable or disable dark mode."`
	Language      *string `help:"Interface language (en, hi, id)."`
	Notifications *bool   `help:"Enable or disable notifications."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	svc := ctx.Settings()

	updated := false
	if c.DarkMode != nil {
		if err := svc.SetDarkMode(ctx.Ctx, *c.DarkMode); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		updated = true
	}
	if c.Language != nil {
		if err := svc.SetLanguage(ctx.Ctx, *c.Language); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		updated = true
	}
	if c.Notifications != nil {
		if err := svc.SetNotifications(ctx.Ctx, *c.Notifications); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		updated = true
	}

	if updated {
		ctx.Println("Settings updated successfully.")
		if !c.List {
			return nil
		}
	} else if !c.List {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	settings, err := svc.Get(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	ctx.Println("Current Settings:")
	ctx.Printf("  Dark Mode:     %v\n", settings.DarkMode)
	ctx.Printf("  Language:      %s (%s)\n", settings.Language, constants.SupportedLanguages[settings.Language])
	ctx.Printf("  Notifications: %v\n", settings.NotificationsEnabled)
	return nil
}
