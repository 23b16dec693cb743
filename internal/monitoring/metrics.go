package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ib-77/queueautomator/pkg/qa/automator"
)

const namespace = "queueautomator"

// Metrics holds all Prometheus metrics
type Metrics struct {
	gatherer prometheus.Gatherer

	// Pipeline metrics
	RunsActive     prometheus.Gauge
	RunsTotal      *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	WorkersTotal   *prometheus.CounterVec
	EnqueuedTotal  *prometheus.CounterVec
	ProcessedTotal *prometheus.CounterVec
	ItemDuration   *prometheus.HistogramVec
	FailuresTotal  *prometheus.CounterVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

var _ automator.Observer = (*Metrics)(nil)

// NewMetrics registers every collector on reg. Passing a dedicated registry
// keeps several collectors (one per test, say) from clashing.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		RunsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "runs_active",
				Help:      "Number of pipeline runs currently executing",
			},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of finished pipeline runs",
			},
			[]string{"status"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Pipeline run duration in seconds",
				Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 300},
			},
		),
		WorkersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workers_spawned_total",
				Help:      "Total number of worker goroutines started per stage",
			},
			[]string{"stage"},
		),
		EnqueuedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_enqueued_total",
				Help:      "Total number of items bound onto a stage queue",
			},
			[]string{"stage"},
		),
		ProcessedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_processed_total",
				Help:      "Total number of items processed per stage",
			},
			[]string{"stage"},
		),
		ItemDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "item_duration_seconds",
				Help:      "Worker function duration in seconds",
				Buckets:   []float64{.0001, .001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10},
			},
			[]string{"stage"},
		),
		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worker_failures_total",
				Help:      "Total number of worker functions that panicked",
			},
			[]string{"stage"},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
	}
}

func (m *Metrics) RunStarted(string) {
	m.RunsActive.Inc()
}

func (m *Metrics) RunFinished(_ string, took time.Duration, err error) {
	m.RunsActive.Dec()
	m.RunDuration.Observe(took.Seconds())
	m.RunsTotal.WithLabelValues(runStatus(err)).Inc()
}

func (m *Metrics) WorkersSpawned(stage string, n int) {
	m.WorkersTotal.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) ItemsEnqueued(stage string, n int) {
	m.EnqueuedTotal.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) ItemProcessed(stage string, took time.Duration) {
	m.ProcessedTotal.WithLabelValues(stage).Inc()
	m.ItemDuration.WithLabelValues(stage).Observe(took.Seconds())
}

func (m *Metrics) WorkerFailed(stage string) {
	m.FailuresTotal.WithLabelValues(stage).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, took time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware creates a Gin middleware for metrics collection. Requests are
// labelled by route template so path parameters do not explode cardinality.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func runStatus(err error) string {
	if err != nil {
		return "aborted"
	}
	return "finished"
}
