package repository

import (
	"context"
	"fmt"

	"github.com/octobees/cardcrm/internal/config"
	"github.com/octobees/cardcrm/internal/database"
)

// OpenKV opens the document backend selected by cfg.StorageDriver. The
// returned close func releases the underlying connection.
func OpenKV(ctx context.Context, cfg *config.Config) (KVStore, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return NewMemoryKVStore(), func() {}, nil
	case config.StorageSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		kv, err := NewSQLiteKVStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return kv, func() { _ = db.Close() }, nil
	case config.StoragePostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		kv := NewPGXKVStore(pool)
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return kv, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
