package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "disaster_alerts"

// Metrics holds the Prometheus collectors for feeds, proximity checks,
// notifications and reports.
type Metrics struct {
	FeedRequests *prometheus.CounterVec   // labels: source, outcome={success,error,rejected}
	FeedDuration *prometheus.HistogramVec // labels: source
	FeedAlerts   *prometheus.GaugeVec     // labels: source
	BreakerState *prometheus.GaugeVec     // labels: source; 0 closed, 1 half-open, 2 open

	MonitoredAlerts   prometheus.Gauge
	LocationUpdates   prometheus.Counter
	ProximityWarnings prometheus.Counter

	NotificationsSent       *prometheus.CounterVec // labels: channel, outcome={success,error,dropped}
	NotificationsSuppressed prometheus.Counter

	Reports *prometheus.CounterVec // labels: outcome={accepted,rejected,publish_error}
}

// NewMetrics creates and registers all collectors with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeedRequests,
		m.FeedDuration,
		m.FeedAlerts,
		m.BreakerState,
		m.MonitoredAlerts,
		m.LocationUpdates,
		m.ProximityWarnings,
		m.NotificationsSent,
		m.NotificationsSuppressed,
		m.Reports,
	)
	return m
}

// NewMetricsForTesting returns unregistered collectors so tests can build
// as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "Upstream feed fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FeedDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_request_duration_seconds",
			Help:      "Upstream feed fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),
		FeedAlerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_alerts",
			Help:      "Alerts produced by the most recent successful fetch.",
		}, []string{"source"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_breaker_state",
			Help:      "Circuit breaker state per feed: 0 closed, 1 half-open, 2 open.",
		}, []string{"source"}),
		MonitoredAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitored_alerts",
			Help:      "Alerts currently checked against live positions.",
		}),
		LocationUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_updates_total",
			Help:      "Live position updates received.",
		}),
		ProximityWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proximity_warnings_total",
			Help:      "Position updates that landed within a hazard radius.",
		}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by channel and outcome.",
		}, []string{"channel", "outcome"}),
		NotificationsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_suppressed_total",
			Help:      "Warnings not delivered because of the repeat cooldown.",
		}),
		Reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Submitted disaster reports by outcome.",
		}, []string{"outcome"}),
	}
}
