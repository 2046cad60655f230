// Package metrics exposes Prometheus counters for report ingestion and fleet queries.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "syshealth"

type Metrics struct {
	registry *prometheus.Registry

	reports       *prometheus.CounterVec
	rejected      prometheus.Counter
	queries       *prometheus.CounterVec
	storageErrors *prometheus.CounterVec
}

// New creates a metrics set backed by its own registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Stored machine reports by verdict.",
		}, []string{"has_issues"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_rejected_total",
			Help:      "Reports rejected as invalid.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Fleet queries served by view.",
		}, []string{"view"}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Storage failures by operation.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.reports, m.rejected, m.queries, m.storageErrors)
	return m
}

func (m *Metrics) ReportStored(hasIssues bool) {
	m.reports.WithLabelValues(strconv.FormatBool(hasIssues)).Inc()
}

func (m *Metrics) ReportRejected() {
	m.rejected.Inc()
}

func (m *Metrics) QueryServed(view string) {
	m.queries.WithLabelValues(view).Inc()
}

func (m *Metrics) StorageError(op string) {
	m.storageErrors.WithLabelValues(op).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
