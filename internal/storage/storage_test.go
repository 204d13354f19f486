package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpen_DefaultDriver_ReturnsMemory(t *testing.T) {
	s, err := Open(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*MemoryKV); !ok {
		t.Errorf("Open returned %T, want *MemoryKV", s)
	}
}

func TestOpen_SQLite_ReturnsSQLiteKV(t *testing.T) {
	s, err := Open(context.Background(), Options{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "open.db"),
	})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*SQLiteKV); !ok {
		t.Errorf("Open returned %T, want *SQLiteKV", s)
	}
	if _, ok := s.(Pruner); !ok {
		t.Error("SQLiteKV should implement Pruner")
	}
}

func TestOpen_UnknownDriver_ReturnsError(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "mongo"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
