package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteKVStore implements KVStore on a sqlite table.
type SQLiteKVStore struct {
	db *sql.DB
}

// NewSQLiteKVStore wraps an open sqlite handle and creates the table if needed.
func NewSQLiteKVStore(ctx context.Context, db *sql.DB) (*SQLiteKVStore, error) {
	if db == nil {
		return nil, errors.New("sqlite handle is nil")
	}
	_, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create kv_store table: %w", err)
	}
	return &SQLiteKVStore{db: db}, nil
}

// Get fetches the document stored under key.
func (s *SQLiteKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query kv value: %w", err)
	}
	return []byte(value), nil
}

// Put upserts the document stored under key.
func (s *SQLiteKVStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(value), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert kv value: %w", err)
	}
	return nil
}

var _ KVStore = (*SQLiteKVStore)(nil)
