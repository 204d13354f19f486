package catalog

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const watcherCatalogV1 = `
jobs:
  - id: job1
    title: First
`

const watcherCatalogV2 = `
jobs:
  - id: job1
    title: Second
  - id: job2
    title: Added
`

func writeCatalogFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
}

// TestWatcher_Reload は直接のReload呼び出しでデータが差し替わることをテストする。
func TestWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeCatalogFile(t, path, watcherCatalogV1)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	w := NewWatcher(path, c)

	writeCatalogFile(t, path, watcherCatalogV2)
	if err := w.Reload(); err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}

	job, _ := c.Job("job1")
	if job.Title != "Second" {
		t.Errorf("title = %q, want Second", job.Title)
	}
	if _, ok := c.Job("job2"); !ok {
		t.Error("job2 should exist after reload")
	}
}

// TestWatcher_ReloadKeepsDataOnError はパース失敗時に既存データが維持されることをテストする。
func TestWatcher_ReloadKeepsDataOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeCatalogFile(t, path, watcherCatalogV1)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	var hookErr error
	w := NewWatcher(path, c, WithReloadHook(func(err error) { hookErr = err }))

	writeCatalogFile(t, path, "jobs: [")
	if err := w.Reload(); err == nil {
		t.Fatal("expected reload error, got nil")
	}
	if hookErr == nil {
		t.Error("reload hook should receive the error")
	}
	if job, ok := c.Job("job1"); !ok || job.Title != "First" {
		t.Errorf("job1 = %+v, ok=%v; want original data", job, ok)
	}
}

// TestWatcher_ReloadLogsOnce は1回の再読み込みでログが1行だけ出ることをテストする。
func TestWatcher_ReloadLogsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeCatalogFile(t, path, watcherCatalogV1)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	writeCatalogFile(t, path, watcherCatalogV2)
	if err := NewWatcher(path, c).Reload(); err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	if n := strings.Count(buf.String(), "catalog reloaded"); n != 1 {
		t.Errorf("reload log lines = %d, want 1\n%s", n, buf.String())
	}
}

// TestWatcher_DetectsFileChange はファイル更新が検知され再読み込みされることをテストする。
func TestWatcher_DetectsFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeCatalogFile(t, path, watcherCatalogV1)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	reloaded := make(chan error, 8)
	w := NewWatcher(path, c,
		WithDebounce(10*time.Millisecond),
		WithPollInterval(50*time.Millisecond),
		WithReloadHook(func(err error) {
			select {
			case reloaded <- err:
			default:
			}
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	defer w.Stop()

	// 更新時刻の解像度が粗いファイルシステムでもポーリングで検知できるようにする
	time.Sleep(20 * time.Millisecond)
	writeCatalogFile(t, path, watcherCatalogV2)
	future := time.Now().Add(2 * time.Second)
	_ = os.Chtimes(path, future, future)

	deadline := time.After(3 * time.Second)
	for {
		select {
		case err := <-reloaded:
			if err != nil {
				continue
			}
			if _, ok := c.Job("job2"); ok {
				return
			}
		case <-deadline:
			t.Fatal("catalog was not reloaded")
		}
	}
}

// TestWatcher_StopWithoutEvents はイベントなしでもStopが終了することをテストする。
func TestWatcher_StopWithoutEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeCatalogFile(t, path, watcherCatalogV1)
	c, _ := Load(path)

	w := NewWatcher(path, c, WithPollInterval(time.Hour))
	go w.Start(context.Background())

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
