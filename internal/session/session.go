// Package session persists small values between runs, such as the list of
// known tag names. Entries expire after a TTL so a long-lived cache file still
// picks up new tags eventually.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// TagsKey is where the known tag names are stored.
const TagsKey = "adoptableGuideTags"

// DefaultTTL is used when Open is given a non-positive ttl.
const DefaultTTL = 24 * time.Hour

// Store is a key/value table in SQLite. Safe for concurrent use.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open creates or opens the store at path. ":memory:" keeps it in memory,
// private to the returned Store.
func Open(path string, ttl time.Duration) (*Store, error) {
	inMemory := path == ":memory:"
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if inMemory {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping session db: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		stored_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key. Expired entries read as missing.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value    []byte
		storedAt int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT value, stored_at FROM kv WHERE key = ?`, key).Scan(&value, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	if s.now().Sub(time.Unix(storedAt, 0)) > s.ttl {
		return nil, false, nil
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv (key, value, stored_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, stored_at = excluded.stored_at`,
		key, value, s.now().Unix())
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// TagLister fetches the full tag list.
type TagLister interface {
	ListTags(ctx context.Context) ([]string, error)
}

// KnownTags returns the cached tag list, fetching and storing it when absent,
// expired or unreadable.
func KnownTags(ctx context.Context, s *Store, lister TagLister, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	raw, ok, err := s.Get(ctx, TagsKey)
	if err != nil {
		return nil, err
	}
	if ok {
		var tags []string
		if err := json.Unmarshal(raw, &tags); err == nil {
			return tags, nil
		}
		logger.Warn("discarding unreadable tag cache", zap.Int("bytes", len(raw)))
	}

	tags, err := lister.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	if err := s.Put(ctx, TagsKey, encoded); err != nil {
		return nil, err
	}
	logger.Info("tag list refreshed", zap.Int("tags", len(tags)))
	return tags, nil
}
