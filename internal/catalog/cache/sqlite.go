package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache implements Cache on top of a SQLite database file.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteCache opens (or creates) the cache database at dbPath.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS responses (
			cache_key TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			cached_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_responses_expires_at ON responses(expires_at);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}

	return &SQLiteCache{db: db, now: time.Now}, nil
}

// Get returns the cached body for key if present and not expired.
// Expired rows are deleted on read.
func (c *SQLiteCache) Get(key string) ([]byte, bool) {
	var data []byte
	var expiresAt int64

	err := c.db.QueryRow(
		"SELECT body, expires_at FROM responses WHERE cache_key = ?",
		key,
	).Scan(&data, &expiresAt)
	if err != nil {
		return nil, false
	}

	if c.now().UnixNano() >= expiresAt {
		c.db.Exec("DELETE FROM responses WHERE cache_key = ?", key)
		return nil, false
	}

	return data, true
}

// Set stores data under key for ttl.
func (c *SQLiteCache) Set(key string, data []byte, ttl time.Duration) error {
	now := c.now()

	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO responses (cache_key, body, cached_at, expires_at)
		 VALUES (?, ?, ?, ?)`,
		key, data, now.UnixNano(), now.Add(ttl).UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// Clear removes all entries from the cache.
func (c *SQLiteCache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM responses"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *SQLiteCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
