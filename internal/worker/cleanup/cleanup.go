// Package cleanup は保存済みクライアント状態スナップショットの自動削除ジョブを提供する。
// 保持期間を超えて更新されていないスナップショットを定期的に削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/jobportal/internal/storage"
)

// DefaultRetention はスナップショットの既定の保持期間（30日）。
const DefaultRetention = 30 * 24 * time.Hour

// CleanupJob は保持期間を超過したスナップショットの削除ジョブ。
// 削除処理は冪等で、対象がない場合もエラーにならない。
type CleanupJob struct {
	pruner    storage.Pruner
	logger    *slog.Logger
	Retention time.Duration
}

// NewCleanupJob は新しいCleanupJobを生成する。retentionが0以下の場合はDefaultRetentionを使う。
func NewCleanupJob(pruner storage.Pruner, logger *slog.Logger, retention time.Duration) *CleanupJob {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &CleanupJob{
		pruner:    pruner,
		logger:    logger,
		Retention: retention,
	}
}

// Run は保持期間を超過したスナップショットを削除し、削除件数を返す。
func (j *CleanupJob) Run(ctx context.Context) (int64, error) {
	start := time.Now()

	deleted, err := j.pruner.PruneOlderThan(ctx, j.Retention)
	if err != nil {
		j.logger.Error("スナップショットのクリーンアップに失敗しました",
			slog.String("error", err.Error()),
			slog.Duration("retention", j.Retention),
		)
		return 0, fmt.Errorf("スナップショットのクリーンアップに失敗: %w", err)
	}

	j.logger.Info("スナップショットのクリーンアップが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Duration("retention", j.Retention),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return deleted, nil
}

// Start はintervalごとにRunを実行する。起動直後にも1回実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("クリーンアップジョブを開始しました",
		slog.Duration("interval", interval),
		slog.Duration("retention", j.Retention),
	)

	// エラーはRun内でログ出力済み
	_, _ = j.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("クリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			_, _ = j.Run(ctx)
		}
	}
}
