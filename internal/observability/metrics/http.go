package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchTotal        *prometheus.CounterVec
	searchRoutedTotal  *prometheus.CounterVec
	searchResultCount  *prometheus.HistogramVec
	searchDuration     *prometheus.HistogramVec
	ingestRecordsTotal *prometheus.CounterVec
	ingestBatchSize    *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pgd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pgd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pgd",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pgd",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total successful search requests by domain.",
		},
		[]string{"service", "domain"},
	)
	searchRoutedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pgd",
			Subsystem: "search",
			Name:      "routed_total",
			Help:      "Total searches where the domain was inferred from the query.",
		},
		[]string{"service", "domain"},
	)
	searchResultCount := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pgd",
			Subsystem: "search",
			Name:      "result_count",
			Help:      "Distribution of result counts per successful search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "domain"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pgd",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "domain"},
	)
	ingestRecordsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pgd",
			Subsystem: "ingest",
			Name:      "records_total",
			Help:      "Total ingested raw records by outcome.",
		},
		[]string{"service", "outcome"},
	)
	ingestBatchSize := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pgd",
			Subsystem: "ingest",
			Name:      "batch_size",
			Help:      "Distribution of raw record batch sizes.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchTotal,
		searchRoutedTotal,
		searchResultCount,
		searchDuration,
		ingestRecordsTotal,
		ingestBatchSize,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		searchTotal:        searchTotal,
		searchRoutedTotal:  searchRoutedTotal,
		searchResultCount:  searchResultCount,
		searchDuration:     searchDuration,
		ingestRecordsTotal: ingestRecordsTotal,
		ingestBatchSize:    ingestBatchSize,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/canonical/"):
		return "/v1/canonical/{record_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordSearch(service, searchDomain string, routed bool, resultCount int, duration time.Duration) {
	if searchDomain == "" {
		searchDomain = "unknown"
	}
	m.searchTotal.WithLabelValues(service, searchDomain).Inc()
	m.searchResultCount.WithLabelValues(service, searchDomain).Observe(float64(resultCount))
	m.searchDuration.WithLabelValues(service, searchDomain).Observe(duration.Seconds())
	if routed {
		m.searchRoutedTotal.WithLabelValues(service, searchDomain).Inc()
	}
}

func (m *HTTPServerMetrics) RecordIngestBatch(service string, accepted, skipped int) {
	m.ingestBatchSize.WithLabelValues(service).Observe(float64(accepted + skipped))
	if accepted > 0 {
		m.ingestRecordsTotal.WithLabelValues(service, "accepted").Add(float64(accepted))
	}
	if skipped > 0 {
		m.ingestRecordsTotal.WithLabelValues(service, "skipped").Add(float64(skipped))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
