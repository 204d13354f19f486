package storage

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	updatedAt time.Time
}

// MemoryKV はプロセス内メモリに保持するKV実装。
// プロセス再起動で内容は失われる。
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var (
	_ Store  = (*MemoryKV)(nil)
	_ Pruner = (*MemoryKV)(nil)
)

// NewMemoryKV は空のMemoryKVを生成する。
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Load はキーに対応するデータのコピーを返す。
func (m *MemoryKV) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

// Save はデータのコピーを保存する。
func (m *MemoryKV) Save(_ context.Context, key string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.entries[key] = memoryEntry{data: buf, updatedAt: m.now()}
	m.mu.Unlock()
	return nil
}

// PruneOlderThan はage以上更新されていないエントリを削除する。
func (m *MemoryKV) PruneOlderThan(_ context.Context, age time.Duration) (int64, error) {
	cutoff := m.now().Add(-age)

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for k, e := range m.entries {
		if e.updatedAt.Before(cutoff) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

// Len は保持しているエントリ数を返す。
func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Ping は常に成功する。
func (m *MemoryKV) Ping(context.Context) error { return nil }

// Close は何もしない。
func (m *MemoryKV) Close() error { return nil }
