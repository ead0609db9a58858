package storage

import (
	"fmt"
	"strings"
)

// Open selects a backend for location: MemoryPath, a PostgreSQL URL, a
// *.json file, or otherwise a SQLite database file. PostgreSQL URLs carrying
// a password are refused.
func Open(location string) (Provider, error) {
	switch {
	case location == MemoryPath:
		return NewMemoryStore(), nil
	case IsPostgresConnString(location) || strings.Contains(location, "host="):
		if HasEmbeddedCredentials(location) {
			return nil, fmt.Errorf("%w: use the OS keyring, a .pgpass file or environment variables instead", ErrEmbeddedCredentials)
		}
		return NewPostgresStore(location), nil
	case strings.HasSuffix(strings.ToLower(location), ".json"):
		return NewJSONStore(location), nil
	default:
		return NewSQLiteStore(location), nil
	}
}
