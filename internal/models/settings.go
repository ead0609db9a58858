package models

// Settings represents application-wide settings. Each field is persisted
// under its own storage key.
type Settings struct {
	DarkMode             bool   `json:"darkMode"`
	Language             string `json:"language"` // one of constants.SupportedLanguages
	NotificationsEnabled bool   `json:"notificationsEnabled"`
}
