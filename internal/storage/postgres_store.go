package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/lib/pq"

	"github.com/julianstephens/habitly/internal/constants"
	"github.com/julianstephens/habitly/internal/logger"
	"github.com/julianstephens/habitly/internal/migration"
	"github.com/julianstephens/habitly/migrations"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

type PostgresStore struct {
	connStr string
	db      *sql.DB
	kv      sqlKV
}

func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{
		connStr: withSearchPath(connStr),
	}
}

// IsPostgresConnString reports whether s looks like a PostgreSQL URL
func IsPostgresConnString(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// withSearchPath pins the connection to the application schema unless the
// caller already chose one
func withSearchPath(connStr string) string {
	if IsPostgresConnString(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}

	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "search_path") {
			return connStr
		}
	}
	return strings.TrimSpace(connStr) + " search_path=" + constants.AppName
}

// ValidateConnString checks that connStr is a PostgreSQL URL or DSN and
// that it does not carry a password
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if IsPostgresConnString(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := u.User.Password(); isSet {
			return ErrEmbeddedCredentials
		}
		return nil
	}

	for _, pair := range strings.Fields(connStr) {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[0]), "password") {
			return ErrEmbeddedCredentials
		}
	}
	return nil
}

// HasEmbeddedCredentials reports whether connStr contains a password
func HasEmbeddedCredentials(connStr string) bool {
	return errors.Is(ValidateConnString(connStr), ErrEmbeddedCredentials)
}

func (s *PostgresStore) Init(ctx context.Context) error {
	if err := s.open(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := s.runner().ApplyMigrations(ctx, func(msg string) {
		logger.Info(msg)
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if err := s.open(ctx); err != nil {
		return err
	}
	return s.runner().ValidateVersion(ctx)
}

func (s *PostgresStore) open(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(constants.PostgresMaxConns)
	db.SetMaxIdleConns(constants.PostgresMaxConns)
	db.SetConnMaxLifetime(constants.PostgresConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db
	s.kv = sqlKV{db: db, dialect: migration.Postgres}
	return nil
}

func (s *PostgresStore) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		panic(fmt.Sprintf("failed to access postgres migrations: %v", err))
	}
	return migration.NewRunner(s.db, subFS, migration.Postgres)
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		s.kv = sqlKV{}
		return err
	}
	return nil
}

// GetConfigPath returns the connection string with any password masked
func (s *PostgresStore) GetConfigPath() string {
	return MaskPassword(s.connStr)
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.kv.get(ctx, key)
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	return s.kv.set(ctx, key, value)
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	return s.kv.delete(ctx, key)
}

func (s *PostgresStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.kv.keys(ctx, prefix)
}

// MaskPassword masks passwords in connection strings for display
func MaskPassword(connStr string) string {
	if IsPostgresConnString(connStr) {
		idx := strings.Index(connStr, "://")
		remaining := connStr[idx+3:]
		// The last @ separates user info from host
		if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
			userInfo := remaining[:atIdx]
			if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
				return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
			}
		}
		return connStr
	}

	parts := strings.Fields(connStr)
	for i, part := range parts {
		if strings.HasPrefix(strings.ToLower(part), "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}
