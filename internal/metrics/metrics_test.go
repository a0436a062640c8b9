package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogSuccess()
	c.RecordLogSuccess()
	c.RecordSessionSaveFailure()
	c.RecordMunchieSaveFailure()
	c.RecordFeedLoad()
	c.RecordFeedLoadFailure()

	if got := testutil.ToFloat64(c.logSuccess); got != 2 {
		t.Errorf("logSuccess = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.sessionFail); got != 1 {
		t.Errorf("sessionFail = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.munchieFail); got != 1 {
		t.Errorf("munchieFail = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.feedLoads); got != 1 {
		t.Errorf("feedLoads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.feedLoadFail); got != 1 {
		t.Errorf("feedLoadFail = %v, want 1", got)
	}
}

func TestCollector_OrphanSessionsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.SetOrphanSessions(5)
	if got := testutil.ToFloat64(c.orphanSessions); got != 5 {
		t.Errorf("orphanSessions = %v, want 5", got)
	}

	// ゲージは上書きされる
	c.SetOrphanSessions(2)
	if got := testutil.ToFloat64(c.orphanSessions); got != 2 {
		t.Errorf("orphanSessions = %v, want 2", got)
	}
}

func TestCollector_HTTPStatusByCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(502)

	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("200")); got != 2 {
		t.Errorf("httpStatus{200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("502")); got != 1 {
		t.Errorf("httpStatus{502} = %v, want 1", got)
	}
}

// /metricsハンドラーが登録済みメトリクスを公開する。
func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogSuccess()
	c.RecordLogLatency(120 * time.Millisecond)

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, "munchboxd_logs_created_total 1") {
		t.Error("munchboxd_logs_created_total が公開されていない")
	}
	if !strings.Contains(body, "munchboxd_log_latency_seconds") {
		t.Error("munchboxd_log_latency_seconds が公開されていない")
	}
}
