// Package metrics holds the Prometheus instrumentation for the dashboard.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all Prometheus metrics for the dashboard service.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	SnapshotFetches *prometheus.CounterVec
	SnapshotAge     prometheus.Gauge
	PublishOutcomes *prometheus.CounterVec
	FirehoseEvents  prometheus.Counter
}

// New creates and registers the metric set on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skydash_http_requests_total",
			Help: "HTTP requests served, by path and status code",
		}, []string{"path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skydash_http_request_duration_seconds",
			Help:    "HTTP request latency, by path",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		SnapshotFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skydash_snapshot_fetches_total",
			Help: "Full snapshot fetches from the network, by outcome",
		}, []string{"status"}),
		SnapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skydash_snapshot_age_seconds",
			Help: "Age of the snapshot served to the last analytics request",
		}),
		PublishOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skydash_publish_outcomes_total",
			Help: "Scheduled post publish attempts, by outcome",
		}, []string{"status"}),
		FirehoseEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skydash_firehose_engagement_events_total",
			Help: "Engagement events on own posts observed on the firehose",
		}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.SnapshotFetches,
		m.SnapshotAge,
		m.PublishOutcomes,
		m.FirehoseEvents,
	)
	return m
}
