package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitly/internal/logger"
	"github.com/julianstephens/habitly/internal/migration"
	"github.com/julianstephens/habitly/migrations"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
	kv   sqlKV
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	if _, err := s.runner().ApplyMigrations(ctx, func(msg string) {
		logger.Info(msg)
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return ErrNotInitialized
	}

	if err := s.open(); err != nil {
		return err
	}
	return s.runner().ValidateVersion(ctx)
}

func (s *SQLiteStore) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway
	db.SetMaxOpenConns(1)
	s.db = db
	s.kv = sqlKV{db: db, dialect: migration.SQLite}
	return nil
}

func (s *SQLiteStore) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// Embedded at build time; a failure here is a build defect
		panic(fmt.Sprintf("failed to access sqlite migrations: %v", err))
	}
	return migration.NewRunner(s.db, subFS, migration.SQLite)
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		s.kv = sqlKV{}
		return err
	}
	return nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.kv.get(ctx, key)
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	return s.kv.set(ctx, key, value)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return s.kv.delete(ctx, key)
}

func (s *SQLiteStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.kv.keys(ctx, prefix)
}
