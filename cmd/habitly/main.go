package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	// Embedded zone data so configured timezones resolve on hosts without tzdata
	_ "time/tzdata"

	"github.com/julianstephens/habitly/internal/cli"
	"github.com/julianstephens/habitly/internal/cli/backups"
	"github.com/julianstephens/habitly/internal/cli/habits"
	"github.com/julianstephens/habitly/internal/cli/settings"
	"github.com/julianstephens/habitly/internal/cli/system"
	"github.com/julianstephens/habitly/internal/config"
	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/errors"
	"github.com/julianstephens/habitly/internal/keyring"
	"github.com/julianstephens/habitly/internal/logger"
	"github.com/julianstephens/habitly/internal/storage"
)

var CLI struct {
	Version    kong.VersionFlag
	Config     string `help:"Storage location: a .db or .json file path, or a PostgreSQL connection string. PostgreSQL credentials must NOT be embedded; use the OS keyring, environment variables or .pgpass instead." type:"string" default:"${storage}"`
	ConfigFile string `help:"Path to the YAML config file." name:"config-file" type:"string" default:"${config_file}"`
	Debug      bool   `help:"Enable debug logging."`

	Init     system.InitCmd     `cmd:"" help:"Initialize habitly storage."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Validate stored habits for conflicts."`
	Refresh  system.RefreshCmd  `cmd:"" help:"Recompute streaks as of today."`
	Reset    system.ResetCmd    `cmd:"" help:"Delete all habit data."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Stats    habits.StatsCmd    `cmd:"" help:"Show completion statistics."`
	Habit    habits.HabitCmd    `cmd:"" help:"Manage habits and habit tracking."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage data backups."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage the database connection string in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, backups and a terminal UI"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"storage":     constants.DefaultConfigPath,
			"config_file": constants.DefaultConfigFile,
		},
	)

	cfg, err := config.Load(CLI.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	location, err := resolveStorage(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Debug:   CLI.Debug || cfg.Debug,
		Storage: location,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := storage.Open(location)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	appCtx, err := cli.NewContext(context.Background(), store, cfg)
	if err != nil {
		store.Close()
		errors.Fatal(err)
	}

	// Init handles its own loading
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := store.Load(appCtx.Ctx); err != nil {
			store.Close()
			errors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}

// resolveStorage picks the storage location. An explicit --config wins. With
// the default flag a connection string from the environment or keyring is
// used, then the config file's storage setting.
func resolveStorage(cfg *config.Config) (string, error) {
	if CLI.Config != constants.DefaultConfigPath {
		return config.ExpandPath(CLI.Config), nil
	}

	connStr, source, err := keyring.ResolveConnectionString()
	if err != nil {
		return "", err
	}
	if source != keyring.SourceNone {
		return connStr, nil
	}
	return config.ExpandPath(cfg.Storage), nil
}
