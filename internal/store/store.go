// Package store はクライアントごとのアプリケーション状態コンテナを提供する。
// 状態の変更はすべてStoreのアクションを通して行い、確定した変更は購読者への通知と永続化を伴う。
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/jobportal/internal/metrics"
	"github.com/hitoshi/jobportal/internal/model"
	"github.com/hitoshi/jobportal/internal/storage"
)

// StorageKeyPrefix はスナップショットの保存キーの接頭辞。
const StorageKeyPrefix = "job-portal-storage"

// persistTimeout はスナップショット保存1回あたりの上限時間。
const persistTimeout = 5 * time.Second

// maxIDAttempts は重複しないIDを得るまでの生成試行回数の上限。
const maxIDAttempts = 16

// アクションの結果ラベル
const (
	outcomeSuccess   = "success"
	outcomeError     = "error"
	outcomeDiscarded = "discarded"
)

// 逐次番号で保護するコレクション
type collection int

const (
	collApplications collection = iota
	collSavedJobs
	collPostedJobs
	collCandidates
	numCollections
)

// StorageKey はクライアントIDに対応する保存キーを返す。
func StorageKey(clientID string) string {
	if clientID == "" {
		return StorageKeyPrefix
	}
	return StorageKeyPrefix + ":" + clientID
}

// Options はStoreの依存を指定する。ゼロ値のフィールドには既定値が使われる。
type Options struct {
	ClientID string
	Storage  storage.KV // nilの場合は永続化しない
	Backend  Backend
	Delayer  Delayer
	Clock    Clock
	IDs      IDGenerator
	Latency  *Latency
	Logger   *slog.Logger
	Metrics  metrics.MetricsCollector
}

// Store は1クライアント分の状態コンテナ。
type Store struct {
	clientID string
	key      string
	kv       storage.KV
	backend  Backend
	delayer  Delayer
	clock    Clock
	ids      IDGenerator
	latency  Latency
	logger   *slog.Logger
	metrics  metrics.MetricsCollector

	mu          sync.Mutex
	state       State
	loading     int
	seq         [numCollections]uint64
	subscribers map[int]func(State)
	nextSubID   int

	persistMu sync.Mutex
}

// New はStoreを生成する。
func New(opts Options) *Store {
	s := &Store{
		clientID:    opts.ClientID,
		key:         StorageKey(opts.ClientID),
		kv:          opts.Storage,
		backend:     opts.Backend,
		delayer:     opts.Delayer,
		clock:       opts.Clock,
		ids:         opts.IDs,
		latency:     DefaultLatency(),
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		state:       initialState(),
		subscribers: make(map[int]func(State)),
	}
	if s.backend == nil {
		s.backend = MockBackend{}
	}
	if s.delayer == nil {
		s.delayer = RealDelayer{}
	}
	if s.clock == nil {
		s.clock = systemClock{}
	}
	if s.ids == nil {
		s.ids = RandomIDGenerator{}
	}
	if opts.Latency != nil {
		s.latency = *opts.Latency
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	return s
}

// ClientID はStoreが属するクライアントIDを返す。
func (s *Store) ClientID() string {
	return s.clientID
}

// Snapshot は現在の状態の深いコピーを返す。
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	out := s.state.clone()
	out.IsLoading = s.loading > 0
	return out
}

// Subscribe は状態変更の通知先を登録し、登録解除関数を返す。
// 通知はロック外で変更後のスナップショットとともに行われる。
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// commit は状態を変更し、変更があれば永続化と通知を行う。
// fnはロック中に呼ばれ、状態を変更した場合にtrueを返す。
func (s *Store) commit(ctx context.Context, fn func(st *State) bool) {
	s.mu.Lock()
	changed := fn(&s.state)
	if changed {
		s.state.Version++
	}
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if !changed {
		return
	}
	s.persist(ctx)
	notify(subs, snap)
}

// setLoading は読み込み中カウンタを増減し、表示状態が変わった場合に通知する。
func (s *Store) setLoading(delta int) {
	s.mu.Lock()
	before := s.loading > 0
	s.loading += delta
	after := s.loading > 0
	if before != after {
		s.state.Version++
	}
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if before != after {
		notify(subs, snap)
	}
}

func (s *Store) subscribersLocked() []func(State) {
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(State), snap State) {
	for _, fn := range subs {
		fn(snap.clone())
	}
}

// persist は現在の状態をJSONで保存する。失敗はログとメトリクスに記録し、アクションは失敗させない。
func (s *Store) persist(ctx context.Context) {
	if s.kv == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		s.metrics.RecordPersistFailure()
		s.logger.Error("failed to encode state snapshot",
			slog.String("client_id", s.clientID),
			slog.String("error", err.Error()),
		)
		return
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := s.kv.Save(saveCtx, s.key, data); err != nil {
		s.metrics.RecordPersistFailure()
		s.logger.Error("failed to persist state snapshot",
			slog.String("client_id", s.clientID),
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
	}
}

// Rehydrate は保存済みスナップショットを読み込んで状態を置き換える。
// 読み込み中はIsLoadingがtrueになる。スナップショットがない場合や、
// 読み込み中に別のアクションが状態を確定した場合は何もしない。
func (s *Store) Rehydrate(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}

	s.setLoading(1)
	defer s.setLoading(-1)

	s.mu.Lock()
	base := s.state.Version
	s.mu.Unlock()

	data, err := s.kv.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("failed to load state snapshot: %w", err)
	}
	if data == nil {
		return nil
	}

	var restored State
	if err := json.Unmarshal(data, &restored); err != nil {
		return fmt.Errorf("failed to decode state snapshot: %w", err)
	}
	restored.normalize()

	s.mu.Lock()
	if s.state.Version != base {
		// 読み込み中に確定した変更を優先する
		s.mu.Unlock()
		s.logger.Warn("discarded state snapshot superseded during rehydrate",
			slog.String("client_id", s.clientID),
		)
		return nil
	}
	restored.Version = s.state.Version + 1
	s.state = restored
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)
	return nil
}

// call は疑似的な待ちの後にBackendを呼び出す。
func (s *Store) call(ctx context.Context, op string, d time.Duration) error {
	if err := s.delayer.Wait(ctx, d); err != nil {
		return err
	}
	return s.backend.Do(ctx, op)
}

// beginFetch はコレクションの逐次番号を進め、この要求のトークンを返す。
func (s *Store) beginFetch(c collection) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[c]++
	return s.seq[c]
}

// fetch は一覧を取得してコレクションを丸ごと置き換える。
// 待機中に新しい取得や更新が発生した場合、この応答は破棄される。
func (s *Store) fetch(ctx context.Context, action string, c collection, apply func(st *State)) error {
	start := time.Now()
	token := s.beginFetch(c)

	if err := s.call(ctx, action, s.latency.Fetch); err != nil {
		s.record(action, outcomeError, start)
		return model.NewOperationFailedError(action, err)
	}

	stale := false
	s.commit(ctx, func(st *State) bool {
		if s.seq[c] != token {
			stale = true
			return false
		}
		apply(st)
		return true
	})

	if stale {
		s.logger.Debug("discarded stale fetch response",
			slog.String("client_id", s.clientID),
			slog.String("action", action),
		)
		s.record(action, outcomeDiscarded, start)
		return nil
	}
	s.record(action, outcomeSuccess, start)
	return nil
}

// mutate は疑似的な待ちの後に更新を確定する。fnがエラーを返した場合は状態を変更しない。
func (s *Store) mutate(ctx context.Context, action string, d time.Duration, fn func(st *State) (bool, error)) error {
	start := time.Now()

	if err := s.call(ctx, action, d); err != nil {
		s.record(action, outcomeError, start)
		return model.NewOperationFailedError(action, err)
	}

	var fnErr error
	s.commit(ctx, func(st *State) bool {
		changed, err := fn(st)
		if err != nil {
			fnErr = err
			return false
		}
		return changed
	})
	if fnErr != nil {
		s.record(action, outcomeError, start)
		return fnErr
	}
	s.record(action, outcomeSuccess, start)
	return nil
}

// bumpLocked は更新でコレクションの逐次番号を進め、待機中の取得結果を無効にする。
func (s *Store) bumpLocked(c collection) {
	s.seq[c]++
}

func (s *Store) record(action, outcome string, start time.Time) {
	s.metrics.RecordAction(action, outcome, time.Since(start))
}

// today は現在日付をYYYY-MM-DD形式で返す。
func (s *Store) today() string {
	return s.clock.Now().Format(time.DateOnly)
}

// uniqueID は既存IDと重複しないIDを生成する。
func (s *Store) uniqueID(prefix string, taken func(id string) bool) (string, error) {
	for range maxIDAttempts {
		id := prefix + s.ids.NewID()
		if !taken(id) {
			return id, nil
		}
	}
	return "", errIDExhausted
}

var errIDExhausted = errors.New("could not generate a unique id")
