package backups

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitly/internal/backup"
	"github.com/julianstephens/habitly/internal/cli"
	"github.com/julianstephens/habitly/internal/constants"
)

type BackupCreateCmd struct {
	Encrypt bool `help:"Encrypt the backup with the passphrase from the configured environment variable."`
}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr := ctx.Backups()

	var (
		backupPath string
		err        error
	)
	if c.Encrypt {
		passphrase := ctx.Config.Passphrase()
		if passphrase == "" {
			return fmt.Errorf("%w: set %s", backup.ErrPassphraseRequired, ctx.Config.Backup.PassphraseEnv)
		}
		backupPath, err = mgr.CreateEncryptedBackup(passphrase)
	} else {
		backupPath, err = mgr.CreateBackup()
	}
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	ctx.Printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr := ctx.Backups()
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), ctx.Config.Backup.Keep)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		timestamp := b.Timestamp.Format("2006-01-02 15:04:05")
		lock := ""
		if b.Encrypted {
			lock = " 🔒"
		}
		ctx.Printf("  %s  %s  (%.1f KB)%s\n", timestamp, filepath.Base(b.Path), sizeKB, lock)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.GetBackupDir())

	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr := ctx.Backups()

	backupPath, err := resolveBackupPath(c.BackupFile, mgr.GetBackupDir())
	if err != nil {
		return err
	}

	passphrase := ""
	if filepath.Ext(backupPath) == constants.EncryptedFileSuffix {
		passphrase = ctx.Config.Passphrase()
		if passphrase == "" {
			return fmt.Errorf("%w: set %s", backup.ErrPassphraseRequired, ctx.Config.Backup.PassphraseEnv)
		}
	}

	if !c.Yes {
		ctx.Println("⚠️  WARNING: This will replace your current habit data with the backup.")
		ctx.Println("⚠️  IMPORTANT: All habitly processes (including the TUI) must be stopped before restore.")
		ctx.Println("A backup of your current data will be created before restoring.")
		ctx.Printf("\nRestore from: %s\n", backupPath)
		if !ctx.Confirm("Continue?") {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	// Close the current store connection before restoring
	if err := ctx.Store.Close(); err != nil {
		ctx.Printf("Warning: failed to close database connection: %v\n", err)
	}

	if err := mgr.RestoreBackup(backupPath, passphrase); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	ctx.Println("✓ Habit data restored successfully!")
	return nil
}

// resolveBackupPath accepts an absolute path, a path relative to the working
// directory, or a file name inside the backup directory
func resolveBackupPath(name, backupDir string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("backup file not found: %s", name)
		}
		return name, nil
	}
	if _, err := os.Stat(name); err == nil {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup path: %w", err)
		}
		return abs, nil
	}
	possible := filepath.Join(backupDir, name)
	if _, err := os.Stat(possible); err == nil {
		return possible, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", backupDir)
}
