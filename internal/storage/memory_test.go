package storage

import (
	"context"
	"testing"
	"time"
)

func TestMemoryKV_LoadMissing_ReturnsNil(t *testing.T) {
	kv := NewMemoryKV()

	data, err := kv.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if data != nil {
		t.Errorf("Load = %q, want nil", data)
	}
}

func TestMemoryKV_SaveThenLoad(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	if err := kv.Save(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	data, err := kv.Load(ctx, "k")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("Load = %q, want %q", data, `{"a":1}`)
	}
}

func TestMemoryKV_SaveCopiesInput(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	buf := []byte("abc")
	_ = kv.Save(ctx, "k", buf)
	buf[0] = 'x'

	data, _ := kv.Load(ctx, "k")
	if string(data) != "abc" {
		t.Errorf("stored data mutated through caller slice: %q", data)
	}
}

func TestMemoryKV_PruneOlderThan(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return base }
	_ = kv.Save(ctx, "old", []byte("1"))

	kv.now = func() time.Time { return base.Add(48 * time.Hour) }
	_ = kv.Save(ctx, "new", []byte("2"))

	n, err := kv.PruneOlderThan(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneOlderThan returned error: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}
	if kv.Len() != 1 {
		t.Errorf("Len = %d, want 1", kv.Len())
	}
	if data, _ := kv.Load(ctx, "new"); string(data) != "2" {
		t.Errorf("new entry should remain, got %q", data)
	}
}
