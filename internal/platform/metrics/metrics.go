package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EntriesCreated        prometheus.Counter
	EntryOperations       *prometheus.CounterVec
	ScopeDenials          prometheus.Counter
	ActivityEventsDropped prometheus.Counter
	CompaniesCreated      prometheus.Counter
	RequestLatency        *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EntriesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flagdesk_entries_created_total",
			Help: "Total number of blacklist entries created",
		}),
		EntryOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flagdesk_entry_operations_total",
			Help: "Blacklist entry operations by type and outcome",
		}, []string{"operation", "outcome"}),
		ScopeDenials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flagdesk_scope_denials_total",
			Help: "Operations refused because the entry was outside the caller's company scope",
		}),
		ActivityEventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flagdesk_activity_events_dropped_total",
			Help: "Activity events lost to sink failures or a full buffer",
		}),
		CompaniesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flagdesk_companies_created_total",
			Help: "Total number of companies registered",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flagdesk_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// ObserveRequest records one HTTP request's latency.
func (m *Metrics) ObserveRequest(route, method string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// IncrementEntryOperation counts one lifecycle operation.
func (m *Metrics) IncrementEntryOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.EntryOperations.WithLabelValues(operation, outcome).Inc()
}
