// Package backup snapshots the storage file into a sibling backups directory
// and restores it. SQLite files are copied with VACUUM INTO; JSON files are
// copied byte for byte. Backups can optionally be encrypted.
package backup

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/logger"
)

const timestampFormat = "20060102-150405"

var (
	// ErrUnsupported is returned for storage that is not a local file
	ErrUnsupported = errors.New("backups are only supported for SQLite and JSON file storage")
	// ErrPassphraseRequired is returned when restoring an encrypted backup without a passphrase
	ErrPassphraseRequired = errors.New("backup is encrypted, a passphrase is required")
)

// BackupInfo describes one backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
	Encrypted bool

	seq int
}

// Manager handles backup operations for one storage file
type Manager struct {
	storePath string
	backupDir string
	suffix    string
	keep      int
	now       func() time.Time
}

// NewManager creates a backup manager for the storage file at storePath
func NewManager(storePath string) *Manager {
	suffix := ".db"
	if strings.HasSuffix(strings.ToLower(storePath), ".json") {
		suffix = ".json"
	}
	return &Manager{
		storePath: storePath,
		backupDir: filepath.Join(filepath.Dir(storePath), constants.BackupDirName),
		suffix:    suffix,
		keep:      constants.MaxBackups,
		now:       time.Now,
	}
}

// Supported reports whether location is a local file that can be backed up
func Supported(location string) bool {
	if location == "" || location == ":memory:" {
		return false
	}
	if strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://") ||
		strings.Contains(location, "host=") {
		return false
	}
	return true
}

// SetRetention sets how many backups rotation keeps. Values below 1 are ignored.
func (m *Manager) SetRetention(n int) {
	if n >= 1 {
		m.keep = n
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup copies the storage file into the backup directory and rotates
// old backups
func (m *Manager) CreateBackup() (string, error) {
	return m.create("", true)
}

// CreateEncryptedBackup is CreateBackup with the copy encrypted under passphrase
func (m *Manager) CreateEncryptedBackup(passphrase string) (string, error) {
	if passphrase == "" {
		return "", errors.New("passphrase cannot be empty")
	}
	return m.create(passphrase, true)
}

func (m *Manager) create(passphrase string, rotate bool) (string, error) {
	if !Supported(m.storePath) {
		return "", ErrUnsupported
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	if _, err := os.Stat(m.storePath); os.IsNotExist(err) {
		return "", fmt.Errorf("storage file does not exist: %s", m.storePath)
	}

	suffix := m.suffix
	if passphrase != "" {
		suffix += constants.EncryptedFileSuffix
	}
	backupPath, err := m.uniquePath(suffix)
	if err != nil {
		return "", err
	}

	if passphrase == "" {
		if err := m.snapshotTo(backupPath); err != nil {
			return "", fmt.Errorf("failed to back up storage: %w", err)
		}
	} else {
		tmp := backupPath + ".tmp"
		defer os.Remove(tmp)
		if err := m.snapshotTo(tmp); err != nil {
			return "", fmt.Errorf("failed to back up storage: %w", err)
		}
		salt, err := GenerateSalt()
		if err != nil {
			return "", err
		}
		if err := EncryptFile(tmp, backupPath, passphrase, salt); err != nil {
			return "", fmt.Errorf("failed to encrypt backup: %w", err)
		}
	}

	if rotate {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}

	logger.Info("Created backup", "path", backupPath, "encrypted", passphrase != "")
	return backupPath, nil
}

// uniquePath picks a timestamped name, adding a counter when a backup with
// the same second already exists
func (m *Manager) uniquePath(suffix string) (string, error) {
	stamp := m.now().Format(timestampFormat)
	path := filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+suffix)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d%s", constants.BackupFilePrefix, stamp, counter, suffix))
	}
}

func (m *Manager) snapshotTo(dst string) error {
	if m.suffix == ".json" {
		if err := verifyJSON(m.storePath); err != nil {
			return fmt.Errorf("storage file appears to be corrupted: %w", err)
		}
		return copyFile(m.storePath, dst)
	}

	src, err := sql.Open("sqlite", m.storePath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open storage database: %w", err)
	}
	defer src.Close()

	var count int
	if err := src.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("storage database appears to be corrupted: %w", err)
	}

	// VACUUM INTO writes a consistent copy even with other readers attached
	if _, err := src.Exec("VACUUM INTO ?", dst); err != nil {
		logger.Warn("VACUUM INTO failed, falling back to file copy", "error", err)
		src.Close()
		return copyFile(m.storePath, dst)
	}
	return nil
}

// ListBackups returns every backup for this storage type, newest first
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, ok := m.parseName(entry.Name())
		if !ok {
			continue
		}
		st, err := entry.Info()
		if err != nil {
			continue
		}
		info.Path = filepath.Join(m.backupDir, entry.Name())
		info.Size = st.Size()
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].seq > backups[j].seq
	})
	return backups, nil
}

// parseName accepts habitly-YYYYMMDD-HHMMSS[-N]<suffix>[.enc]
func (m *Manager) parseName(name string) (BackupInfo, bool) {
	var info BackupInfo
	if !strings.HasPrefix(name, constants.BackupFilePrefix) {
		return info, false
	}
	rest := strings.TrimPrefix(name, constants.BackupFilePrefix)
	if strings.HasSuffix(rest, constants.EncryptedFileSuffix) {
		info.Encrypted = true
		rest = strings.TrimSuffix(rest, constants.EncryptedFileSuffix)
	}
	if !strings.HasSuffix(rest, m.suffix) {
		return info, false
	}
	rest = strings.TrimSuffix(rest, m.suffix)

	if len(rest) > len(timestampFormat) {
		n, err := strconv.Atoi(strings.TrimPrefix(rest[len(timestampFormat):], "-"))
		if err != nil || rest[len(timestampFormat)] != '-' {
			return info, false
		}
		info.seq = n
		rest = rest[:len(timestampFormat)]
	}

	ts, err := time.ParseInLocation(timestampFormat, rest, time.Local)
	if err != nil {
		return info, false
	}
	info.Timestamp = ts
	return info, true
}

// rotateBackups removes backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup replaces the storage file with backupPath. Encrypted backups
// need the passphrase they were created with. The current file is backed up
// first, without rotation.
func (m *Manager) RestoreBackup(backupPath, passphrase string) error {
	if !Supported(m.storePath) {
		return ErrUnsupported
	}
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	plain := backupPath
	if strings.HasSuffix(backupPath, constants.EncryptedFileSuffix) {
		if passphrase == "" {
			return ErrPassphraseRequired
		}
		plain = m.storePath + ".decrypt.tmp"
		defer os.Remove(plain)
		if err := DecryptFile(backupPath, plain, passphrase); err != nil {
			return fmt.Errorf("failed to decrypt backup: %w", err)
		}
	}

	if err := m.verify(plain); err != nil {
		return fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if _, err := os.Stat(m.storePath); err == nil {
		current, err := m.create("", false)
		if err != nil {
			return fmt.Errorf("failed to back up current storage before restore: %w", err)
		}
		logger.Info("Backed up current storage before restore", "path", current)
	}

	tmp := m.storePath + ".restore.tmp"
	if err := copyFile(plain, tmp); err != nil {
		return fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.storePath); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("failed to restore storage: %w", err)
	}

	logger.Info("Restored backup", "path", backupPath)
	return nil
}

func (m *Manager) verify(path string) error {
	if m.suffix == ".json" {
		return verifyJSON(path)
	}
	return verifySQLite(path)
}

func verifySQLite(path string) error {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func verifyJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return errors.New("not valid JSON")
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
