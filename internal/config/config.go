// Package config loads the optional YAML config file. Flags given on the
// command line take precedence over anything set here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/validation"
)

// Config holds file-based settings
type Config struct {
	// Storage is a file path (.db or .json), ":memory:" or a PostgreSQL URL
	Storage           string       `yaml:"storage"`
	Timezone          string       `yaml:"timezone"`
	Debug             bool         `yaml:"debug"`
	DefaultRepeatDays []int        `yaml:"default_repeat_days"`
	Backup            BackupConfig `yaml:"backup"`
}

// BackupConfig controls backup rotation and encryption
type BackupConfig struct {
	Keep int `yaml:"keep"`
	// PassphraseEnv names the environment variable holding the passphrase
	// for encrypted backups
	PassphraseEnv string `yaml:"passphrase_env"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage:           constants.DefaultConfigPath,
		Timezone:          "Local",
		DefaultRepeatDays: slices.Clone(constants.DefaultRepeatDays),
		Backup: BackupConfig{
			Keep:          constants.MaxBackups,
			PassphraseEnv: "HABITLY_BACKUP_PASSPHRASE",
		},
	}
}

// Load reads configuration from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(ExpandPath(path))
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.Storage) == "" {
		c.Storage = defaults.Storage
	}
	if c.Timezone == "" {
		c.Timezone = defaults.Timezone
	}
	if c.DefaultRepeatDays == nil {
		c.DefaultRepeatDays = defaults.DefaultRepeatDays
	}
	if c.Backup.Keep == 0 {
		c.Backup.Keep = defaults.Backup.Keep
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Storage == "" {
		return fmt.Errorf("storage cannot be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if err := validation.ValidateRepeatDays(c.DefaultRepeatDays); err != nil {
		return fmt.Errorf("default_repeat_days: %w", err)
	}
	if c.Backup.Keep < 1 {
		return fmt.Errorf("backup.keep must be at least 1")
	}
	return nil
}

// Location resolves Timezone. "Local" and "" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Passphrase returns the backup passphrase from the configured environment
// variable, or "" if unset
func (c *Config) Passphrase() string {
	if c.Backup.PassphraseEnv == "" {
		return ""
	}
	return os.Getenv(c.Backup.PassphraseEnv)
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// DataDir returns the directory for logs given a storage location. Non-file
// locations fall back to the default config directory.
func DataDir(storage string) string {
	if storage == "" || storage == ":memory:" ||
		strings.HasPrefix(storage, "postgres://") || strings.HasPrefix(storage, "postgresql://") ||
		strings.Contains(storage, "host=") {
		return filepath.Dir(ExpandPath(constants.DefaultConfigPath))
	}
	return filepath.Dir(ExpandPath(storage))
}
