// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はメトリクス収集のインターフェース。
// サービス層とクリーンアップジョブから利用する。
type Recorder interface {
	RecordLogSuccess()
	RecordSessionSaveFailure()
	RecordMunchieSaveFailure()
	RecordFeedLoad()
	RecordFeedLoadFailure()
	RecordLogLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
	SetOrphanSessions(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	logSuccess     prometheus.Counter
	sessionFail    prometheus.Counter
	munchieFail    prometheus.Counter
	feedLoads      prometheus.Counter
	feedLoadFail   prometheus.Counter
	logLatency     prometheus.Histogram
	httpStatus     *prometheus.CounterVec
	orphanSessions prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "munchboxd_logs_created_total",
			Help: "ログ（セッション＋マンチー）作成成功の合計数",
		}),
		sessionFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "munchboxd_session_save_fail_total",
			Help: "書き込み第1段階（セッション保存）失敗の合計数",
		}),
		munchieFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "munchboxd_munchie_save_fail_total",
			Help: "書き込み第2段階（マンチー保存）失敗の合計数。孤児セッション発生数に等しい",
		}),
		feedLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "munchboxd_feed_loads_total",
			Help: "フィード読み込みの合計数",
		}),
		feedLoadFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "munchboxd_feed_load_fail_total",
			Help: "フィード読み込み失敗の合計数",
		}),
		logLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "munchboxd_log_latency_seconds",
			Help:    "2段階書き込みワークフローのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "munchboxd_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		orphanSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "munchboxd_orphan_sessions",
			Help: "マンチーが紐づかない孤児セッション行の現在数（クリーンアップジョブが計測）",
		}),
	}

	reg.MustRegister(
		c.logSuccess,
		c.sessionFail,
		c.munchieFail,
		c.feedLoads,
		c.feedLoadFail,
		c.logLatency,
		c.httpStatus,
		c.orphanSessions,
	)

	return c
}

// RecordLogSuccess はログ作成成功を記録する。
func (c *Collector) RecordLogSuccess() {
	c.logSuccess.Inc()
}

// RecordSessionSaveFailure はセッション保存失敗を記録する。
func (c *Collector) RecordSessionSaveFailure() {
	c.sessionFail.Inc()
}

// RecordMunchieSaveFailure はマンチー保存失敗（＝孤児セッション発生）を記録する。
func (c *Collector) RecordMunchieSaveFailure() {
	c.munchieFail.Inc()
}

// RecordFeedLoad はフィード読み込みを記録する。
func (c *Collector) RecordFeedLoad() {
	c.feedLoads.Inc()
}

// RecordFeedLoadFailure はフィード読み込み失敗を記録する。
func (c *Collector) RecordFeedLoadFailure() {
	c.feedLoadFail.Inc()
}

// RecordLogLatency は書き込みワークフローのレイテンシを記録する。
func (c *Collector) RecordLogLatency(duration time.Duration) {
	c.logLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// SetOrphanSessions は孤児セッションの現在数を記録する。
func (c *Collector) SetOrphanSessions(count int) {
	c.orphanSessions.Set(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ Recorder = (*Collector)(nil)
