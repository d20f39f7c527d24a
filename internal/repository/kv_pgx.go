package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const createKVTableSQL = `
    CREATE TABLE IF NOT EXISTS kv_store (
        key        TEXT PRIMARY KEY,
        value      JSONB NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
`

// PGXKVStore implements KVStore on a PostgreSQL table using pgx.
type PGXKVStore struct {
	pool pgxPool
}

// NewPGXKVStore wires a pgx backed key/value store.
func NewPGXKVStore(pool *pgxpool.Pool) *PGXKVStore {
	return &PGXKVStore{pool: pool}
}

// EnsureSchema creates the backing table when missing.
func (r *PGXKVStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createKVTableSQL); err != nil {
		return fmt.Errorf("create kv_store table: %w", err)
	}
	return nil
}

// Get fetches the document stored under key.
func (r *PGXKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, `SELECT value::text FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("query kv value: %w", err)
	}
	return value, nil
}

// Put upserts the document stored under key.
func (r *PGXKVStore) Put(ctx context.Context, key string, value []byte) error {
	query := `
        INSERT INTO kv_store (key, value, updated_at)
        VALUES ($1, $2::jsonb, NOW())
        ON CONFLICT (key) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = NOW();
    `
	if _, err := r.pool.Exec(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("upsert kv value: %w", err)
	}
	return nil
}

var _ KVStore = (*PGXKVStore)(nil)
