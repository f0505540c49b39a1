package store

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"periplo/pkg/db"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	d, err := db.Init(dbPath)
	if err != nil {
		t.Fatalf("Failed to init DB: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	return NewSQLiteStore(d)
}

func TestCacheStore_SetAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
		val  []byte
	}{
		{"small value", "foo", []byte("bar")},
		{"json payload", "overpass_abc", []byte(`{"elements":[]}`)},
		{"large value (tests compression)", "big", bytes.Repeat([]byte("x"), 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.SetCache(ctx, tt.key, tt.val); err != nil {
				t.Fatalf("SetCache failed: %v", err)
			}
			got, hit := store.GetCache(ctx, tt.key)
			if !hit {
				t.Fatal("Expected cache hit")
			}
			if !bytes.Equal(got, tt.val) {
				t.Errorf("Cache roundtrip mismatch: got %d bytes, want %d", len(got), len(tt.val))
			}
		})
	}
}

func TestCacheStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, hit := store.GetCache(context.Background(), "nonexistent")
	if hit {
		t.Error("Expected miss for nonexistent key")
	}
}

func TestCacheStore_DeleteCachePrefix(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_ = store.SetCache(ctx, "sparql_a", []byte("a"))
	_ = store.SetCache(ctx, "sparql_b", []byte("b"))
	_ = store.SetCache(ctx, "keepme", []byte("c"))

	n, err := store.DeleteCachePrefix(ctx, "sparql_")
	if err != nil {
		t.Fatalf("DeleteCachePrefix() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteCachePrefix() deleted %d rows, want 2", n)
	}
	if _, hit := store.GetCache(ctx, "keepme"); !hit {
		t.Error("Unrelated key was deleted")
	}
}

func TestStateStore(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.SetState(ctx, "my_key", "my_val"); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	val, hit := store.GetState(ctx, "my_key")
	if !hit {
		t.Fatal("Expected state hit")
	}
	if val != "my_val" {
		t.Errorf("Expected 'my_val', got '%s'", val)
	}

	if err := store.DeleteState(ctx, "my_key"); err != nil {
		t.Fatalf("DeleteState failed: %v", err)
	}
	if _, hit := store.GetState(ctx, "my_key"); hit {
		t.Error("Expected miss after delete")
	}
}
