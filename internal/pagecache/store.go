// Package pagecache keeps fetched table pages in SQLite so reopening a
// workflow at the same revision does not hit the server again.
package pagecache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cristianoliveira/workbench/internal/config"
	"github.com/cristianoliveira/workbench/internal/tablewindow"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// ErrCacheDisabled is returned by OpenFromConfig when page_cache_enabled is false.
var ErrCacheDisabled = errors.New("page cache disabled")

// DefaultMaxEntries bounds the cache when no limit is configured.
const DefaultMaxEntries = 500

// Key identifies one cached page.
type Key struct {
	Source   string
	Revision int
	StartRow int
	EndRow   int
}

// KeyFor returns the cache key of a loader request.
func KeyFor(req tablewindow.Request) Key {
	return Key{Source: req.SourceID, Revision: req.Revision, StartRow: req.StartRow, EndRow: req.EndRow}
}

// Store is a bounded SQLite page cache.
type Store struct {
	db         *sql.DB
	maxEntries int
	now        func() time.Time
}

// Open opens or creates the cache at dbPath, keeping at most maxEntries pages.
func Open(dbPath string, maxEntries int) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("page cache: db path cannot be empty")
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("page cache: create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("page cache: open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, maxEntries: maxEntries, now: time.Now}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// DefaultPath is pagecache.db inside the state directory.
func DefaultPath() string {
	return filepath.Join(config.Get("state_dir", ""), "pagecache.db")
}

// OpenFromConfig opens the cache described by the global configuration.
func OpenFromConfig() (*Store, error) {
	if !config.GetBool("page_cache_enabled", true) {
		return nil, ErrCacheDisabled
	}
	return Open(DefaultPath(), config.GetInt("page_cache_max_entries", DefaultMaxEntries))
}

func (s *Store) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("page cache: set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("page cache: create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the cached page for key.
func (s *Store) Get(ctx context.Context, key Key) (*tablewindow.Page, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT page FROM pages WHERE source = ? AND revision = ? AND start_row = ? AND end_row = ?`,
		key.Source, key.Revision, key.StartRow, key.EndRow,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("page cache: get: %w", err)
	}
	var page tablewindow.Page
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return nil, false, fmt.Errorf("page cache: decode page: %w", err)
	}
	return &page, true, nil
}

// Put stores page under key and evicts the oldest pages beyond the limit.
func (s *Store) Put(ctx context.Context, key Key, page *tablewindow.Page) error {
	if page == nil {
		return fmt.Errorf("page cache: nil page")
	}
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("page cache: encode page: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("page cache: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO pages (source, revision, start_row, end_row, total_rows, page, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key.Source, key.Revision, key.StartRow, key.EndRow, page.TotalRows, string(data), s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("page cache: put: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&count); err != nil {
		return fmt.Errorf("page cache: count: %w", err)
	}
	if over := count - s.maxEntries; over > 0 {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM pages WHERE rowid IN (SELECT rowid FROM pages ORDER BY fetched_at ASC, rowid ASC LIMIT ?)`,
			over)
		if err != nil {
			return fmt.Errorf("page cache: evict: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("page cache: commit: %w", err)
	}
	return nil
}

// DropSource removes every cached page of source older than keepRevision.
func (s *Store) DropSource(ctx context.Context, source string, keepRevision int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE source = ? AND revision < ?`, source, keepRevision)
	if err != nil {
		return 0, fmt.Errorf("page cache: drop source: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes every page and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages`)
	if err != nil {
		return 0, fmt.Errorf("page cache: clear: %w", err)
	}
	return res.RowsAffected()
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries    int
	Sources    int
	Bytes      int64
	MaxEntries int
	Oldest     time.Time
	Newest     time.Time
}

// Stats reports the number of pages, distinct sources and stored bytes.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		st             Stats
		oldest, newest sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT source), COALESCE(SUM(LENGTH(page)), 0), MIN(fetched_at), MAX(fetched_at) FROM pages`,
	).Scan(&st.Entries, &st.Sources, &st.Bytes, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("page cache: stats: %w", err)
	}
	st.MaxEntries = s.maxEntries
	if oldest.Valid {
		st.Oldest = time.Unix(0, oldest.Int64)
	}
	if newest.Valid {
		st.Newest = time.Unix(0, newest.Int64)
	}
	return st, nil
}
