// Package keyring keeps the PostgreSQL connection string out of config files
// by storing it in the OS keyring.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitly/internal/constants"
)

var (
	// ErrNotFound is returned when no connection string is stored
	ErrNotFound = errors.New("connection string not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Source names where a connection string came from
type Source string

const (
	SourceNone    Source = ""
	SourceEnv     Source = "environment"
	SourceKeyring Source = "keyring"
)

// GetConnectionString returns the stored connection string
func GetConnectionString() (string, error) {
	connStr, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// SetConnectionString stores connStr, replacing any previous value
func SetConnectionString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, connStr); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	return nil
}

// DeleteConnectionString removes the stored connection string
func DeleteConnectionString() error {
	if err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	return nil
}

// IsAvailable reports whether the OS keyring answers a read. An empty keyring
// counts as available.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// ResolveConnectionString looks for a connection string in the
// HABITLY_DB_CONNECTION environment variable, then in the keyring. It returns
// SourceNone and no error when neither has one or the keyring is unavailable.
func ResolveConnectionString() (string, Source, error) {
	if v := strings.TrimSpace(os.Getenv(constants.ConnectionEnvVar)); v != "" {
		return v, SourceEnv, nil
	}

	connStr, err := GetConnectionString()
	switch {
	case err == nil:
		return connStr, SourceKeyring, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrKeyringUnavailable):
		return "", SourceNone, nil
	default:
		return "", SourceNone, err
	}
}
