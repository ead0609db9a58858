package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by Load when the storage location does not exist yet
var ErrNotInitialized = errors.New("storage not initialized, run 'habitly init' first")

// Provider is a key-value blob store. Values are opaque bytes; a missing key
// is reported as ok=false rather than an error.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Blobs
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Utils
	GetConfigPath() string
}

// ClearPrefix deletes every key starting with prefix and returns how many
// were removed
func ClearPrefix(ctx context.Context, p Provider, prefix string) (int, error) {
	keys, err := p.Keys(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list keys: %w", err)
	}
	for i, key := range keys {
		if err := p.Delete(ctx, key); err != nil {
			return i, fmt.Errorf("failed to delete %q: %w", key, err)
		}
	}
	return len(keys), nil
}
