package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/octobees/cardcrm/internal/config"
)

func TestOpenKV(t *testing.T) {
	tests := map[string]*config.Config{
		"memory": {StorageDriver: config.StorageMemory},
		"sqlite": {StorageDriver: config.StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "crm.db")},
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			kv, closeFn, err := OpenKV(context.Background(), cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer closeFn()

			if err := kv.Put(context.Background(), "k", []byte(`[]`)); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := kv.Get(context.Background(), "k")
			if err != nil || string(got) != "[]" {
				t.Fatalf("unexpected get: %q %v", got, err)
			}
		})
	}
}

func TestOpenKVUnknownDriver(t *testing.T) {
	if _, _, err := OpenKV(context.Background(), &config.Config{StorageDriver: "mongo"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
