// Package codecache stores compiled method descriptors in SQLite, keyed by
// a content hash of everything that influences the generated code.
package codecache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"rjit/pkg/method"
)

// ErrNotFound indicates the key has no cached descriptor.
var ErrNotFound = errors.New("codecache: entry not found")

// schema is mixed into every key; bump it when generated code changes
// for the same input.
const schema = "rjit-codecache/1"

// Cache is a descriptor store. It is safe for concurrent use.
type Cache struct {
	db   *sql.DB
	path string
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS descriptors (
		key  TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	return &Cache{db: db, path: path}, nil
}

func (c *Cache) Path() string { return c.path }

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Key hashes parts into a cache key. Each part is length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d:%s", len(schema), schema)
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s", len(p), p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the descriptor stored under key, or ErrNotFound.
func (c *Cache) Get(ctx context.Context, key string) (*method.Descriptor, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx, "SELECT data FROM descriptors WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying descriptor: %w", err)
	}
	d, err := method.UnmarshalDescriptor(data)
	if err != nil {
		return nil, fmt.Errorf("decoding cached descriptor %s: %w", key, err)
	}
	return d, nil
}

// Put stores d under key, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, key string, d *method.Descriptor) error {
	data, err := method.MarshalDescriptor(d)
	if err != nil {
		return fmt.Errorf("encoding descriptor: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO descriptors (key, name, data) VALUES (?, ?, ?)",
		key, d.Name, data,
	)
	if err != nil {
		return fmt.Errorf("saving descriptor: %w", err)
	}
	return nil
}

// Len reports the number of cached descriptors.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM descriptors").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting descriptors: %w", err)
	}
	return n, nil
}
