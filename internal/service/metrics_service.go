package service

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	txDuration      *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	txDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moderation_tx_duration_seconds",
		Help:    "Duration of transactional workflows",
		Buckets: prometheus.DefBuckets,
	}, []string{"workflow"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, txDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		txDuration:      txDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveTransaction records the duration of a transactional workflow.
func (m *MetricsService) ObserveTransaction(workflow string, duration time.Duration) {
	if m == nil {
		return
	}
	m.txDuration.WithLabelValues(workflow).Observe(duration.Seconds())
}

// InstrumentTx wraps a transaction runner so every WithTx call is timed under
// the given workflow label. Failed transactions are observed too.
func (m *MetricsService) InstrumentTx(next txRunner, workflow string) txRunner {
	return &instrumentedTxRunner{next: next, metrics: m, workflow: workflow}
}

type instrumentedTxRunner struct {
	next     txRunner
	metrics  *MetricsService
	workflow string
}

func (r *instrumentedTxRunner) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	start := time.Now()
	err := r.next.WithTx(ctx, fn)
	r.metrics.ObserveTransaction(r.workflow, time.Since(start))
	return err
}
