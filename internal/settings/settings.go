// Package settings reads and writes app preferences, each under its own
// storage key.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/logger"
	"github.com/julianstephens/habitly/internal/models"
	"github.com/julianstephens/habitly/internal/storage"
)

// ErrUnsupportedLanguage is returned by SetLanguage for unknown codes
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Service reads and writes settings through a storage provider
type Service struct {
	provider storage.Provider
}

// NewService creates a settings service over provider
func NewService(provider storage.Provider) *Service {
	return &Service{provider: provider}
}

// Get returns the stored settings. Missing or unreadable values fall back to
// their defaults; only a storage failure is returned as an error.
func (s *Service) Get(ctx context.Context) (models.Settings, error) {
	out := models.Settings{
		DarkMode:             constants.DefaultDarkMode,
		Language:             constants.DefaultLanguage,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
	}

	raw, ok, err := s.provider.Get(ctx, constants.SettingDarkModeKey)
	if err != nil {
		return out, fmt.Errorf("failed to read dark mode: %w", err)
	}
	if ok {
		out.DarkMode = coerceBool(string(raw), constants.DefaultDarkMode)
	}

	raw, ok, err = s.provider.Get(ctx, constants.SettingLanguageKey)
	if err != nil {
		return out, fmt.Errorf("failed to read language: %w", err)
	}
	if ok && strings.TrimSpace(string(raw)) != "" {
		out.Language = strings.TrimSpace(string(raw))
	}

	raw, ok, err = s.provider.Get(ctx, constants.SettingNotifsKey)
	if err != nil {
		return out, fmt.Errorf("failed to read notifications: %w", err)
	}
	if ok {
		out.NotificationsEnabled = coerceBool(string(raw), constants.DefaultNotificationsEnabled)
	}

	return out, nil
}

// SetDarkMode stores the dark mode preference
func (s *Service) SetDarkMode(ctx context.Context, enabled bool) error {
	return s.set(ctx, constants.SettingDarkModeKey, strconv.FormatBool(enabled))
}

// SetLanguage stores the language code after checking it is supported
func (s *Service) SetLanguage(ctx context.Context, code string) error {
	code = strings.ToLower(strings.TrimSpace(code))
	if _, ok := constants.SupportedLanguages[code]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	return s.set(ctx, constants.SettingLanguageKey, code)
}

// SetNotifications stores the notifications preference
func (s *Service) SetNotifications(ctx context.Context, enabled bool) error {
	return s.set(ctx, constants.SettingNotifsKey, strconv.FormatBool(enabled))
}

func (s *Service) set(ctx context.Context, key, value string) error {
	if err := s.provider.Set(ctx, key, []byte(value)); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	logger.Debug("Saved setting", "key", key, "value", value)
	return nil
}

// coerceBool accepts true/false/1/0 in any case and returns fallback for
// anything else
func coerceBool(v string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return fallback
}
