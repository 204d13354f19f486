// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ストア、ゲート、ミドルウェア、リソース取込から利用する。
type MetricsCollector interface {
	RecordAction(action, outcome string, duration time.Duration)
	RecordPersistFailure()
	RecordGateDecision(state string)
	RecordHTTPStatus(statusCode int)
	SetActiveClients(n int)
	RecordArticlesImported(count int)
	RecordImportFailure(reason string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	actions          *prometheus.CounterVec
	actionLatency    *prometheus.HistogramVec
	persistFail      prometheus.Counter
	gateDecisions    *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	activeClients    prometheus.Gauge
	articlesImported prometheus.Counter
	importFail       *prometheus.CounterVec
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobportal_store_actions_total",
			Help: "ストアアクションの実行数（結果別）",
		}, []string{"action", "outcome"}),
		actionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobportal_store_action_duration_seconds",
			Help:    "ストアアクションの所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
		persistFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobportal_persist_fail_total",
			Help: "スナップショット保存失敗の合計数",
		}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobportal_gate_decisions_total",
			Help: "アクセスゲートの判定数（状態別）",
		}, []string{"state"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobportal_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		activeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jobportal_active_clients",
			Help: "保持中のクライアント状態コンテナ数",
		}),
		articlesImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobportal_articles_imported_total",
			Help: "フィードから取り込んだ記事の合計数",
		}),
		importFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobportal_import_fail_total",
			Help: "フィード取込失敗の合計数（理由別）",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		c.actions,
		c.actionLatency,
		c.persistFail,
		c.gateDecisions,
		c.httpStatus,
		c.activeClients,
		c.articlesImported,
		c.importFail,
	)

	return c
}

// RecordAction はストアアクションの結果と所要時間を記録する。
func (c *Collector) RecordAction(action, outcome string, duration time.Duration) {
	c.actions.WithLabelValues(action, outcome).Inc()
	c.actionLatency.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordPersistFailure はスナップショット保存失敗を記録する。
func (c *Collector) RecordPersistFailure() {
	c.persistFail.Inc()
}

// RecordGateDecision はアクセスゲートの判定結果を記録する。
func (c *Collector) RecordGateDecision(state string) {
	c.gateDecisions.WithLabelValues(state).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// SetActiveClients は保持中のクライアント数を設定する。
func (c *Collector) SetActiveClients(n int) {
	c.activeClients.Set(float64(n))
}

// RecordArticlesImported は取り込んだ記事数を記録する。
func (c *Collector) RecordArticlesImported(count int) {
	c.articlesImported.Add(float64(count))
}

// RecordImportFailure はフィード取込失敗を記録する。
func (c *Collector) RecordImportFailure(reason string) {
	c.importFail.WithLabelValues(reason).Inc()
}

// Nop は何も記録しないMetricsCollector。テストや未設定時に使う。
type Nop struct{}

var _ MetricsCollector = Nop{}

func (Nop) RecordAction(string, string, time.Duration) {}
func (Nop) RecordPersistFailure()                      {}
func (Nop) RecordGateDecision(string)                  {}
func (Nop) RecordHTTPStatus(int)                       {}
func (Nop) SetActiveClients(int)                       {}
func (Nop) RecordArticlesImported(int)                 {}
func (Nop) RecordImportFailure(string)                 {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
