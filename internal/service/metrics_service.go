package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/campus-erp-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation: request and
// cache timings plus a handful of institution-level gauges that a
// refresher updates in the background.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	applicationsByStatus *prometheus.GaugeVec
	pendingResults       prometheus.Gauge
	feeCollectionTotal   prometheus.Gauge
	booksIssued          prometheus.Gauge
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	applicationsByStatus := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "admission_applications",
		Help: "Admission applications by status",
	}, []string{"status"})

	pendingResults := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "exam_results_pending",
		Help: "Exam results awaiting declaration",
	})

	feeCollectionTotal := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fee_collection_total",
		Help: "Fees collected in the current academic year",
	})

	booksIssued := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "library_books_issued",
		Help: "Book copies currently on loan",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite,
		cacheHits, cacheMisses, dbQueryDuration,
		applicationsByStatus, pendingResults, feeCollectionTotal, booksIssued, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:             registry,
		handler:              handler,
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		cacheLatency:         cacheLatency,
		cacheWrite:           cacheWrite,
		cacheHits:            cacheHits,
		cacheMisses:          cacheMisses,
		dbQueryDuration:      dbQueryDuration,
		applicationsByStatus: applicationsByStatus,
		pendingResults:       pendingResults,
		feeCollectionTotal:   feeCollectionTotal,
		booksIssued:          booksIssued,
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

// ObserveHTTPRequest records per-request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup outcome.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// SetApplicationsByStatus replaces the admission gauge values.
func (m *MetricsService) SetApplicationsByStatus(counts map[models.ApplicationStatus]int) {
	if m == nil {
		return
	}
	m.applicationsByStatus.Reset()
	for status, count := range counts {
		m.applicationsByStatus.WithLabelValues(string(status)).Set(float64(count))
	}
}

// SetPendingResults updates the pending-declaration gauge.
func (m *MetricsService) SetPendingResults(count int) {
	if m == nil {
		return
	}
	m.pendingResults.Set(float64(count))
}

// SetFeeCollection updates the collected-fees gauge.
func (m *MetricsService) SetFeeCollection(total float64) {
	if m == nil {
		return
	}
	m.feeCollectionTotal.Set(total)
}

// SetBooksIssued updates the copies-on-loan gauge.
func (m *MetricsService) SetBooksIssued(count int) {
	if m == nil {
		return
	}
	m.booksIssued.Set(float64(count))
}
