package build

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// PageCache stores rendered Markdown bodies keyed by source path so that
// preview rebuilds skip re-rendering unchanged files. Use ":memory:" for
// an ephemeral cache or a file path for one that survives restarts.
type PageCache struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenPageCache opens (and if needed initializes) a page cache database.
func OpenPageCache(dbPath string) (*PageCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open page cache: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		path        TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		html        BLOB NOT NULL,
		updated     INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize page cache schema: %w", err)
	}
	return &PageCache{db: db}, nil
}

// Fingerprint derives the cache key material for a source body.
func Fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached rendering for path when the stored fingerprint
// still matches.
func (c *PageCache) Get(ctx context.Context, path, fingerprint string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var storedFP string
	var html []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT fingerprint, html FROM pages WHERE path = ?", path,
	).Scan(&storedFP, &html)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query page cache: %w", err)
	}
	if storedFP != fingerprint {
		return nil, false, nil
	}
	return html, true, nil
}

// Put stores a rendering, replacing any previous entry for the path.
func (c *PageCache) Put(ctx context.Context, path, fingerprint string, html []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		"INSERT INTO pages (path, fingerprint, html, updated) VALUES (?, ?, ?, ?) "+
			"ON CONFLICT(path) DO UPDATE SET fingerprint = excluded.fingerprint, html = excluded.html, updated = excluded.updated",
		path, fingerprint, html, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store page cache entry: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (c *PageCache) Close() error { return c.db.Close() }
