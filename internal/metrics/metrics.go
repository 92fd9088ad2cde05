// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/keybind/internal/model"
)

// 操作名
const (
	OpLookup       = "lookup"
	OpRegister     = "register"
	OpAuthenticate = "authenticate"
)

// 結果ラベル
const (
	OutcomeSuccess           = "success"
	OutcomeNotFound          = "not_found"
	OutcomeInvalidSignature  = "invalid_signature"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeStoreError        = "store_error"
	OutcomeInternalError     = "internal_error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordOperation(op string, err error)
	RecordOperationLatency(op string, duration time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	operations       *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	httpStatus       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keybind_operations_total",
			Help: "操作・結果別の処理数",
		}, []string{"operation", "outcome"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "keybind_operation_latency_seconds",
			Help:    "操作別のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keybind_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.operations,
		c.operationLatency,
		c.httpStatus,
	)

	return c
}

// RecordOperation は操作の結果を記録する。errがnilの場合は成功として扱う。
func (c *Collector) RecordOperation(op string, err error) {
	c.operations.WithLabelValues(op, Outcome(err)).Inc()
}

// RecordOperationLatency は操作のレイテンシを記録する。
func (c *Collector) RecordOperationLatency(op string, duration time.Duration) {
	c.operationLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Outcome はエラー分類を結果ラベルに変換する。
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, model.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, model.ErrInvalidSignature):
		return OutcomeInvalidSignature
	case errors.Is(err, model.ErrAlreadyRegistered):
		return OutcomeAlreadyRegistered
	case model.IsStoreError(err):
		return OutcomeStoreError
	default:
		return OutcomeInternalError
	}
}

// NopCollector は何も記録しないMetricsCollector。
type NopCollector struct{}

func (NopCollector) RecordOperation(string, error)                {}
func (NopCollector) RecordOperationLatency(string, time.Duration) {}
func (NopCollector) RecordHTTPStatus(int)                         {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
