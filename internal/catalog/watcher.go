package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	defaultDebounce     = 200 * time.Millisecond
	defaultPollInterval = 30 * time.Second
)

// Watcher はカタログファイルを監視し、変更時に再読み込みする。
// fsnotifyが使えない環境ではファイルの更新時刻をポーリングする。
type Watcher struct {
	path         string
	catalog      *Catalog
	debounce     time.Duration
	pollInterval time.Duration
	onReload     func(error)

	mu            sync.Mutex
	lastModTime   time.Time
	debounceTimer *time.Timer
	stopCh        chan struct{}
	doneCh        chan struct{}
	stopOnce      sync.Once
}

// WatcherOption はWatcherの設定を変更する。
type WatcherOption func(*Watcher)

// WithPollInterval はポーリング間隔を設定する。
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithDebounce は変更イベントをまとめる待ち時間を設定する。
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithReloadHook は再読み込みの完了ごとに呼ばれる関数を設定する。errは読み込み失敗時のみ非nil。
func WithReloadHook(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher はWatcherを生成する。
func NewWatcher(path string, c *Catalog, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:         path,
		catalog:      c,
		debounce:     defaultDebounce,
		pollInterval: defaultPollInterval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	if info, err := os.Stat(path); err == nil {
		w.lastModTime = info.ModTime()
	}
	return w
}

// Start は監視を開始し、ctxがキャンセルされるかStopが呼ばれるまでブロックする。
func (w *Watcher) Start(ctx context.Context) {
	defer close(w.doneCh)

	dir := filepath.Dir(w.path)
	name := filepath.Base(w.path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("catalog watcher: fsnotify unavailable, polling only", slog.String("error", err.Error()))
	} else if err := watcher.Add(dir); err != nil {
		slog.Warn("catalog watcher: failed to watch directory, polling only",
			slog.String("dir", dir),
			slog.String("error", err.Error()),
		)
		_ = watcher.Close()
		watcher = nil
	}

	if watcher != nil {
		defer watcher.Close()
		go w.watchLoop(ctx, watcher, name)
	}

	w.pollLoop(ctx)
}

// Stop は監視を停止し、Startの終了を待つ。
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.doneCh

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
}

func (w *Watcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, name string) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.triggerDebounced()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("catalog watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) triggerDebounced() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		w.Reload()
	})
}

func (w *Watcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			w.mu.Lock()
			changed := info.ModTime().After(w.lastModTime)
			w.mu.Unlock()
			if changed {
				w.Reload()
			}
		}
	}
}

// Reload はファイルを読み直してカタログを差し替える。
// 読み込みやパースに失敗した場合は現在のデータを維持する。
func (w *Watcher) Reload() error {
	info, statErr := os.Stat(w.path)

	d, err := ReadFile(w.path)
	if err != nil {
		slog.Error("catalog reload failed",
			slog.String("path", w.path),
			slog.String("error", err.Error()),
		)
	} else {
		w.catalog.Replace(d)
		slog.Info("catalog reloaded",
			slog.String("path", w.path),
			slog.Int("jobs", len(d.Jobs)),
			slog.Int("companies", len(d.Companies)),
			slog.Int("articles", len(d.Articles)),
			slog.Int("plans", len(d.Plans)),
		)
	}

	if statErr == nil {
		w.mu.Lock()
		w.lastModTime = info.ModTime()
		w.mu.Unlock()
	}
	if w.onReload != nil {
		w.onReload(err)
	}
	return err
}
