package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// defaultMaxConcurrency は同時に取得するフィード数の既定値。
const defaultMaxConcurrency = 4

// SourceFetcher はフィード1件の取得インターフェース。
type SourceFetcher interface {
	// Fetch はフィードを取得し、追加した記事数を返す。
	Fetch(ctx context.Context, src *Source) (int, error)
}

// Scheduler はリソースフィード取得のスケジューリングと並列制御を行う。
// 一定間隔で取得時刻に達したフィードを選び、
// semaphoreパターンで最大並列数を制御しながら取得する。
// RunOnceは同時に呼び出さないこと。
type Scheduler struct {
	sources        []*Source
	fetcher        SourceFetcher
	logger         *slog.Logger
	maxConcurrency int
	now            func() time.Time
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合は既定値を使用する。
func NewScheduler(sources []*Source, fetcher SourceFetcher, logger *slog.Logger, maxConcurrency int) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	return &Scheduler{
		sources:        sources,
		fetcher:        fetcher,
		logger:         logger,
		maxConcurrency: maxConcurrency,
		now:            time.Now,
	}
}

// Start はintervalごとにRunOnceを実行する。起動直後にも1回実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	if len(s.sources) == 0 {
		s.logger.Info("取り込み対象のフィードが設定されていません")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("リソース取り込みスケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.Int("source_count", len(s.sources)),
		slog.Int("max_concurrency", s.maxConcurrency),
	)

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("リソース取り込みスケジューラを停止しました")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce は取得時刻に達したフィードを並列に取得し、追加した記事の合計数を返す。
func (s *Scheduler) RunOnce(ctx context.Context) int {
	start := s.now()

	var due []*Source
	for _, src := range s.sources {
		if src.Due(start) {
			due = append(due, src)
		}
	}
	if len(due) == 0 {
		s.logger.Debug("取得対象のフィードはありません")
		return 0
	}

	sem := make(chan struct{}, s.maxConcurrency)
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for _, src := range due {
		wg.Add(1)
		sem <- struct{}{}

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			added, err := s.fetcher.Fetch(ctx, src)
			if err != nil {
				s.logger.Error("フィードの取得に失敗しました",
					slog.String("feed_url", src.URL),
					slog.String("error", err.Error()),
				)
				return
			}
			mu.Lock()
			total += added
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.logger.Info("取り込みサイクルが完了しました",
		slog.Int("feed_count", len(due)),
		slog.Int("articles_added", total),
		slog.Float64("duration_ms", float64(s.now().Sub(start).Milliseconds())),
	)
	return total
}
