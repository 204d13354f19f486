// Package session はブラウザクライアントごとの状態コンテナを管理する。
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/jobportal/internal/gate"
	"github.com/hitoshi/jobportal/internal/metrics"
	"github.com/hitoshi/jobportal/internal/store"
)

// Client は1クライアント分の状態コンテナとビューごとのゲート。
type Client struct {
	ID     string
	Store  *store.Store
	Guards *gate.Guards

	lastSeen time.Time
	ready    chan struct{} // 復元完了でclose
}

// View はゲート判定用のセッション要約を返す。
func (c *Client) View() gate.SessionView {
	return ViewOf(c.Store.Snapshot())
}

// ViewOf は状態からゲート判定用のセッション要約を作る。
func ViewOf(st store.State) gate.SessionView {
	v := gate.SessionView{
		IsLoading:       st.IsLoading,
		IsAuthenticated: st.IsAuthenticated,
		Version:         st.Version,
	}
	if st.User != nil {
		v.Role = st.User.Role
	}
	return v
}

// RegistryConfig はRegistryの設定を保持する。
type RegistryConfig struct {
	IdleTTL         time.Duration // 最終アクセスからこの時間を過ぎたクライアントを破棄する
	CleanupInterval time.Duration
	NewStore        func(clientID string) *store.Store
	Rules           gate.Rules
	Metrics         metrics.MetricsCollector
}

// Registry はクライアントIDと状態コンテナの対応を保持する。
type Registry struct {
	config RegistryConfig
	now    func() time.Time

	mu      sync.RWMutex
	clients map[string]*Client

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRegistry は新しいRegistryを生成し、アイドルクライアントのクリーンアップを開始する。
func NewRegistry(config RegistryConfig) *Registry {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 30 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = config.IdleTTL / 2
	}
	if config.NewStore == nil {
		config.NewStore = func(clientID string) *store.Store {
			return store.New(store.Options{ClientID: clientID})
		}
	}
	if config.Metrics == nil {
		config.Metrics = metrics.Nop{}
	}

	r := &Registry{
		config:  config,
		now:     time.Now,
		clients: make(map[string]*Client),
		stopCh:  make(chan struct{}),
	}

	go r.cleanupLoop()

	return r
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
}

// Get は既存のクライアントを返し、最終アクセス時刻を更新する。
// 復元中のクライアントは復元が終わるまで待ってから返す。
func (r *Registry) Get(id string) (*Client, bool) {
	r.mu.Lock()
	c, ok := r.clients[id]
	if ok {
		c.lastSeen = r.now()
	}
	r.mu.Unlock()

	if ok {
		<-c.ready
	}
	return c, ok
}

// GetOrCreate はクライアントを返す。初回アクセスの場合は状態コンテナを生成し、
// 保存済みスナップショットから復元する。
// 同じIDの並行リクエストは復元が終わるまで待つため、復元前の状態を操作しない。
func (r *Registry) GetOrCreate(ctx context.Context, id string) (c *Client, created bool) {
	r.mu.Lock()
	if existing, ok := r.clients[id]; ok {
		existing.lastSeen = r.now()
		r.mu.Unlock()
		<-existing.ready
		return existing, false
	}
	c = &Client{
		ID:       id,
		Store:    r.config.NewStore(id),
		Guards:   gate.NewGuards(r.config.Rules),
		lastSeen: r.now(),
		ready:    make(chan struct{}),
	}
	r.clients[id] = c
	n := len(r.clients)
	r.mu.Unlock()

	r.config.Metrics.SetActiveClients(n)

	defer close(c.ready)
	if err := c.Store.Rehydrate(ctx); err != nil {
		slog.Warn("failed to rehydrate client state",
			slog.String("client_id", id),
			slog.String("error", err.Error()),
		)
	}
	return c, true
}

// Len は保持中のクライアント数を返す。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// cleanupLoop はバックグラウンドでアイドルクライアントを定期的に破棄する。
func (r *Registry) cleanupLoop() {
	ticker := time.NewTicker(r.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.EvictIdle(); n > 0 {
				slog.Info("evicted idle clients", slog.Int("count", n))
			}
		case <-r.stopCh:
			return
		}
	}
}

// EvictIdle はIdleTTLを超えてアクセスのないクライアントを破棄し、破棄した数を返す。
// 状態は永続化済みのため、次回アクセス時に復元される。
func (r *Registry) EvictIdle() int {
	now := r.now()

	r.mu.Lock()
	evicted := 0
	for id, c := range r.clients {
		if !c.isReady() {
			continue
		}
		if now.Sub(c.lastSeen) > r.config.IdleTTL {
			delete(r.clients, id)
			evicted++
		}
	}
	n := len(r.clients)
	r.mu.Unlock()

	if evicted > 0 {
		r.config.Metrics.SetActiveClients(n)
	}
	return evicted
}

func (c *Client) isReady() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}
