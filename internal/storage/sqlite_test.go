package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestSQLite(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestSQLiteKV_LoadMissing_ReturnsNil(t *testing.T) {
	kv := openTestSQLite(t)

	data, err := kv.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if data != nil {
		t.Errorf("Load = %q, want nil", data)
	}
}

func TestSQLiteKV_SaveOverwrites(t *testing.T) {
	kv := openTestSQLite(t)
	ctx := context.Background()

	if err := kv.Save(ctx, "k", []byte("first")); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := kv.Save(ctx, "k", []byte("second")); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	data, err := kv.Load(ctx, "k")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("Load = %q, want %q", data, "second")
	}
}

func TestSQLiteKV_PruneOlderThan(t *testing.T) {
	kv := openTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return base }
	_ = kv.Save(ctx, "old", []byte("1"))
	kv.now = func() time.Time { return base.Add(72 * time.Hour) }
	_ = kv.Save(ctx, "new", []byte("2"))

	n, err := kv.PruneOlderThan(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneOlderThan returned error: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}
	if data, _ := kv.Load(ctx, "old"); data != nil {
		t.Errorf("old entry should be pruned, got %q", data)
	}
}

func TestSQLiteKV_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	_ = kv.Save(ctx, "k", []byte("v"))
	kv.Close()

	kv2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer kv2.Close()

	data, err := kv2.Load(ctx, "k")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if string(data) != "v" {
		t.Errorf("Load = %q, want %q", data, "v")
	}
}
