// Package cache keeps the last fetched copy of each page source in SQLite so
// builds can run offline.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotCached is returned by offline fetches for sources never fetched.
var ErrNotCached = errors.New("source not in cache")

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Item is a cached source body.
type Item struct {
	Source    string
	Body      []byte // empty in List results
	Size      int
	FetchedAt time.Time
}

// Open opens or creates the cache database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sources (
			source TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			fetched_at TEXT NOT NULL
		);
	`)
	return err
}

// Put stores the latest body for source.
func (d *DB) Put(ctx context.Context, source string, body []byte, fetchedAt time.Time) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sources (source, body, fetched_at) VALUES (?, ?, ?)`,
		source, body, fetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("caching %s: %w", source, err)
	}
	return nil
}

// Get returns the cached body for source. ok is false on a miss.
func (d *DB) Get(ctx context.Context, source string) (Item, bool, error) {
	var (
		body      []byte
		fetchedAt string
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM sources WHERE source = ?`, source).Scan(&body, &fetchedAt)
	if err == sql.ErrNoRows {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, fmt.Errorf("reading cache for %s: %w", source, err)
	}

	t, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return Item{}, false, fmt.Errorf("parsing fetched_at for %s: %w", source, err)
	}
	return Item{Source: source, Body: body, Size: len(body), FetchedAt: t}, true, nil
}

// List returns every cached source, most recent first.
func (d *DB) List(ctx context.Context) ([]Item, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT source, length(body), fetched_at FROM sources ORDER BY fetched_at DESC, source`)
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item      Item
			fetchedAt string
		)
		if err := rows.Scan(&item.Source, &item.Size, &fetchedAt); err != nil {
			return nil, err
		}
		item.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
		items = append(items, item)
	}
	return items, rows.Err()
}
