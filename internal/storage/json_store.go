package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// jsonFile is the root JSON structure stored on disk
type jsonFile struct {
	Version int               `json:"version"`
	Entries map[string]string `json:"entries"`
}

// JSONStore keeps every key in a single JSON file. Each write rewrites the
// whole file through a temp file and rename.
type JSONStore struct {
	path string
	mu   sync.RWMutex
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

// Init creates the file if it doesn't exist. An existing file is left untouched.
func (s *JSONStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	return s.save(jsonFile{Version: 1, Entries: map[string]string{}})
}

func (s *JSONStore) Load(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return ErrNotInitialized
	}
	_, err := s.load()
	return err
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := file.Entries[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (s *JSONStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	file.Entries[key] = string(value)
	return s.save(file)
}

func (s *JSONStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := file.Entries[key]; !ok {
		return nil
	}
	delete(file.Entries, key)
	return s.save(file)
}

func (s *JSONStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	var keys []string
	for k := range file.Entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// load reads the file from disk. A missing or empty file is an empty store.
func (s *JSONStore) load() (jsonFile, error) {
	file := jsonFile{Version: 1, Entries: map[string]string{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return file, fmt.Errorf("failed to read storage: %w", err)
	}
	if len(data) == 0 {
		return file, nil
	}

	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("failed to parse storage: %w", err)
	}
	if file.Entries == nil {
		file.Entries = map[string]string{}
	}
	return file, nil
}

func (s *JSONStore) save(file jsonFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}
