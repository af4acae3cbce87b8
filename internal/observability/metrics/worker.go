package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pogodigest/pogodigest/internal/core/domain"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	runTotal      *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	runInFlight   prometheus.Gauge
	mergedRecords *prometheus.HistogramVec
	unresolved    *prometheus.HistogramVec
	docsIndexed   *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	runTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pgd",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total pipeline runs by domain and status.",
		},
		[]string{"service", "domain", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pgd",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Pipeline run duration in seconds by domain and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "domain", "status"},
	)
	runInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pgd",
			Subsystem: "pipeline",
			Name:      "runs_in_flight",
			Help:      "Number of pipeline runs currently executing.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	mergedRecords := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pgd",
			Subsystem: "pipeline",
			Name:      "merged_records",
			Help:      "Distribution of canonical records produced per run.",
			Buckets:   []float64{0, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"service", "domain"},
	)
	unresolved := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pgd",
			Subsystem: "pipeline",
			Name:      "unresolved_records",
			Help:      "Distribution of canonical records left without an entity per run.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"service", "domain"},
	)
	docsIndexed := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pgd",
			Subsystem: "pipeline",
			Name:      "docs_indexed",
			Help:      "Distribution of documents indexed per run.",
			Buckets:   []float64{0, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"service", "domain"},
	)

	registry.MustRegister(runTotal, runDuration, runInFlight, mergedRecords, unresolved, docsIndexed)

	return &WorkerMetrics{
		registry:      registry,
		runTotal:      runTotal,
		runDuration:   runDuration,
		runInFlight:   runInFlight,
		mergedRecords: mergedRecords,
		unresolved:    unresolved,
		docsIndexed:   docsIndexed,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartRun() {
	m.runInFlight.Inc()
}

func (m *WorkerMetrics) FinishRun(service string, d domain.Domain, duration time.Duration, err error) {
	m.runInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.runTotal.WithLabelValues(service, string(d), status).Inc()
	m.runDuration.WithLabelValues(service, string(d), status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveRunReport(service string, report *domain.RunReport) {
	if report == nil {
		return
	}
	m.mergedRecords.WithLabelValues(service, string(report.Domain)).Observe(float64(report.Merged))
	m.unresolved.WithLabelValues(service, string(report.Domain)).Observe(float64(report.Unresolved))
	m.docsIndexed.WithLabelValues(service, string(report.Domain)).Observe(float64(report.DocsIndexed))
}
