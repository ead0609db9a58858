package constants

import "time"

// GoalType represents how completion of a habit is measured
type GoalType string

// EntryStatus represents the outcome recorded for a habit on a given day
type EntryStatus string

const (
	AppName            = "habitly"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitly/habitly.db"
	DefaultConfigFile  = "~/.config/habitly/config.yaml"
	ConnectionEnvVar   = "HABITLY_DB_CONNECTION"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Storage keys. Every key the app owns starts with KeyPrefix.
	KeyPrefix          = "habitly:"
	HabitsKey          = "habitly:habits_v1"
	SettingDarkModeKey = "habitly:settings:darkMode_v1"
	SettingLanguageKey = "habitly:settings:language_v1"
	SettingNotifsKey   = "habitly:settings:notifications_v1"

	// StreakWindowDays bounds how far back streaks look
	StreakWindowDays = 365

	// Sanitize placeholders for snapshots written by older versions
	PlaceholderName = "Unnamed"
	DefaultEmoji    = "🏃"

	// Backup constants
	MaxBackups          = 14
	BackupDirName       = "backups"
	BackupFilePrefix    = "habitly-"
	EncryptedFileSuffix = ".enc"

	// Goal types
	GoalSimple GoalType = "simple"
	GoalTime   GoalType = "time"
	GoalCount  GoalType = "count"

	// Entry statuses
	StatusDone    EntryStatus = "done"
	StatusSkip    EntryStatus = "skip"
	StatusPartial EntryStatus = "partial"

	// Default settings values
	DefaultLanguage             = "en"
	DefaultDarkMode             = false
	DefaultNotificationsEnabled = true

	// Postgres pool limits
	PostgresMaxConns        = 5
	PostgresConnMaxLifetime = 5 * time.Minute
)

// DefaultRepeatDays is the schedule assumed when a stored habit has none (Mon-Fri)
var DefaultRepeatDays = []int{1, 2, 3, 4, 5}

// SupportedLanguages lists the language codes accepted by the language setting
var SupportedLanguages = map[string]string{
	"en": "English",
	"hi": "हिन्दी",
	"id": "Bahasa Indonesia",
}
