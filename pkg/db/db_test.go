package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"periplo/pkg/db"
)

func TestDB(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "db_test.db")

	d, err := db.Init(path)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if d == nil {
		t.Fatal("Init() returned nil DB")
	}
	defer d.Close()

	// The cache table must exist after migration.
	if _, err := d.Exec("INSERT INTO cache (key, value) VALUES (?, ?)", "k", []byte("v")); err != nil {
		t.Fatalf("insert into cache failed: %v", err)
	}
	if err := d.PruneCache(time.Hour); err != nil {
		t.Fatalf("PruneCache failed: %v", err)
	}
}
