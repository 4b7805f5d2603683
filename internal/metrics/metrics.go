// Package metrics collects storefront runtime metrics and exposes them in the
// Prometheus format.
// Package metrics 采集店面运行时指标并以Prometheus格式导出。
//
// Two producers feed it: the catalog controller, through the catalog.Observer
// interface, reports how each product fetch ended; the dev API server, through
// a gin middleware, reports every HTTP request it serves.
//
// 有两个数据来源：目录控制器通过catalog.Observer接口报告每次产品请求的结果；
// 开发API服务器通过gin中间件报告它处理的每个HTTP请求。
package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/storefront/pkg/catalog"
)

// Level defines the metrics collection level.
// Level 定义指标采集级别。
type Level int

const (
	// Disabled means metrics collection is turned off.
	// Disabled 表示禁用指标采集。
	Disabled Level = iota

	// Basic collects outcome counters only.
	// Basic 只采集结果计数。
	Basic

	// Detailed also collects latency histograms.
	// Detailed 额外采集延迟直方图。
	Detailed
)

// ParseLevel maps the metrics.level setting to a Level.
// Unknown names fall back to Basic.
//
// ParseLevel 将metrics.level配置映射为Level，未知名称按Basic处理。
func ParseLevel(name string) Level {
	switch name {
	case "disabled":
		return Disabled
	case "detailed":
		return Detailed
	default:
		return Basic
	}
}

// DefaultNamespace is the metric name prefix.
// DefaultNamespace 是指标名称前缀。
const DefaultNamespace = "storefront"

// Metrics is the storefront metrics collector.
// Counters are mirrored in atomics so a snapshot can be taken without scraping.
//
// Metrics 是店面指标收集器。
// 计数同时保存在原子变量中，无需抓取即可获取快照。
type Metrics struct {
	level    Level
	registry *prometheus.Registry

	fetches        *prometheus.CounterVec
	fetchLatency   prometheus.Histogram
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec

	issued   uint64 // Fetches observed / 已观察的请求数
	rendered uint64 // Fetches rendered with products / 渲染了产品的请求数
	empty    uint64 // Fetches with no products / 无结果的请求数
	failed   uint64 // Failed fetches / 失败的请求数
	stale    uint64 // Discarded stale responses / 被丢弃的过期响应数
	latency  int64  // Total fetch latency in nanoseconds / 请求总延迟（纳秒）
}

// Snapshot is a point-in-time copy of the fetch counters.
// Snapshot 是请求计数的时间点副本。
type Snapshot struct {
	Issued         uint64        `json:"issued"`
	Rendered       uint64        `json:"rendered"`
	Empty          uint64        `json:"empty"`
	Failed         uint64        `json:"failed"`
	Stale          uint64        `json:"stale"`
	AverageLatency time.Duration `json:"average_latency"`
}

// NewMetrics creates a collector with its own registry.
// NewMetrics 创建一个使用独立注册表的收集器。
//
// Parameters:
//   - level: Collection level
//   - namespace: Metric name prefix, DefaultNamespace when empty
//
// Returns:
//   - *Metrics: A new collector
func NewMetrics(level Level, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	m := &Metrics{
		level:    level,
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "fetches_total",
			Help:      "Product fetches by outcome.",
		}, []string{"outcome"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of product fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served by route and status.",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(m.fetches, m.requests)
	if level >= Detailed {
		m.registry.MustRegister(m.fetchLatency, m.requestLatency)
	}
	return m
}

// ObserveFetch implements catalog.Observer.
// ObserveFetch 实现catalog.Observer。
func (m *Metrics) ObserveFetch(outcome catalog.Outcome, latency time.Duration) {
	if m.level == Disabled {
		return
	}
	atomic.AddUint64(&m.issued, 1)
	atomic.AddInt64(&m.latency, int64(latency))
	switch outcome {
	case catalog.OutcomeRendered:
		atomic.AddUint64(&m.rendered, 1)
	case catalog.OutcomeEmpty:
		atomic.AddUint64(&m.empty, 1)
	case catalog.OutcomeFailed:
		atomic.AddUint64(&m.failed, 1)
	case catalog.OutcomeStale:
		atomic.AddUint64(&m.stale, 1)
	}

	m.fetches.WithLabelValues(string(outcome)).Inc()
	if m.level >= Detailed {
		m.fetchLatency.Observe(latency.Seconds())
	}
}

// ObserveRequest records one served HTTP request.
// ObserveRequest 记录一次已处理的HTTP请求。
func (m *Metrics) ObserveRequest(method, route string, status int, latency time.Duration) {
	if m.level == Disabled {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	if m.level >= Detailed {
		m.requestLatency.WithLabelValues(method, route).Observe(latency.Seconds())
	}
}

// GetSnapshot returns the current fetch counters.
// GetSnapshot 返回当前的请求计数。
func (m *Metrics) GetSnapshot() Snapshot {
	s := Snapshot{
		Issued:   atomic.LoadUint64(&m.issued),
		Rendered: atomic.LoadUint64(&m.rendered),
		Empty:    atomic.LoadUint64(&m.empty),
		Failed:   atomic.LoadUint64(&m.failed),
		Stale:    atomic.LoadUint64(&m.stale),
	}
	if s.Issued > 0 {
		s.AverageLatency = time.Duration(atomic.LoadInt64(&m.latency) / int64(s.Issued))
	}
	return s
}

// ToJSON returns the snapshot as JSON.
// ToJSON 以JSON格式返回快照。
func (s Snapshot) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// Registry returns the underlying Prometheus registry.
// Registry 返回底层的Prometheus注册表。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler.
// Handler 返回/metrics的HTTP处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var _ catalog.Observer = (*Metrics)(nil)
