// Package monitoring exposes Prometheus metrics for the reporting engine.
package monitoring

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AnalyticsFetchesTotal *prometheus.CounterVec
	InspectionsTotal      *prometheus.CounterVec
	ReportDuration        prometheus.Histogram
}

var (
	metrics *Metrics
	once    sync.Once
)

// GetMetrics returns the process-wide metrics set. Collectors register on the
// default registry, which tolerates only one registration per name.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = &Metrics{
			AnalyticsFetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "searchlens_analytics_fetches_total",
				Help: "The total number of search analytics fetch calls by outcome",
			}, []string{"status"}),
			InspectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "searchlens_inspections_total",
				Help: "The total number of URL inspection calls by outcome",
			}, []string{"status"}),
			ReportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "searchlens_report_duration_seconds",
				Help:    "Time spent building one comparison report",
				Buckets: prometheus.DefBuckets,
			}),
		}
	})
	return metrics
}

func (m *Metrics) IncAnalyticsFetches(status string) {
	m.AnalyticsFetchesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncInspections(status string) {
	m.InspectionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveReportDuration(seconds float64) {
	m.ReportDuration.Observe(seconds)
}
