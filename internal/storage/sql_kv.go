package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/habitly/internal/migration"
)

// sqlKV implements the blob operations shared by the SQL backends
type sqlKV struct {
	db      *sql.DB
	dialect migration.Dialect
}

func (k sqlKV) bind(query string) string {
	if k.dialect != migration.Postgres {
		return query
	}
	n := 0
	var b strings.Builder
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (k sqlKV) get(ctx context.Context, key string) ([]byte, bool, error) {
	if k.db == nil {
		return nil, false, fmt.Errorf("storage not loaded")
	}
	var value []byte
	err := k.db.QueryRowContext(ctx, k.bind("SELECT value FROM kv WHERE key = ?"), key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, true, nil
}

func (k sqlKV) set(ctx context.Context, key string, value []byte) error {
	if k.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	now := time.Now().UTC()
	var updatedAt any = now.Format(time.RFC3339)
	if k.dialect == migration.Postgres {
		updatedAt = now
	}
	_, err := k.db.ExecContext(ctx, k.bind(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		key, value, updatedAt)
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (k sqlKV) delete(ctx context.Context, key string) error {
	if k.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, err := k.db.ExecContext(ctx, k.bind("DELETE FROM kv WHERE key = ?"), key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

func (k sqlKV) keys(ctx context.Context, prefix string) ([]string, error) {
	if k.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	rows, err := k.db.QueryContext(ctx, "SELECT key FROM kv")
	if err != nil {
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("kv keys: %w", err)
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
