// Package metrics exposes Prometheus counters/gauges/histograms for the
// alerting core, grounded on the teacher's promauto-constructor pattern
// (internal/metrics/metrics.go) with the websocket/NATS series replaced by
// the domain's own: alert evaluations, deviations fired, notifications
// sent, queue health, and sampler errors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every series the core emits. A process constructs exactly
// one and shares it by pointer.
type Metrics struct {
	alertEvaluations   *prometheus.CounterVec
	deviationsFired    *prometheus.CounterVec
	cooloffSuppressed  *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec

	samplerErrors  *prometheus.CounterVec
	samplerLatency *prometheus.HistogramVec

	queueDepth     prometheus.Gauge
	queueDelivered prometheus.Counter
	queueRetried   prometheus.Counter
	queueDropped   *prometheus.CounterVec

	startTime time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		alertEvaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigalert_alert_evaluations_total",
			Help: "Total number of alert evaluation passes, by alert id.",
		}, []string{"alert_id"}),

		deviationsFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigalert_deviations_fired_total",
			Help: "Total number of evaluations that crossed the configured deviation threshold, by alert id.",
		}, []string{"alert_id"}),

		cooloffSuppressed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigalert_cooloff_suppressed_total",
			Help: "Total number of threshold crossings suppressed by the cooloff gate, by alert id.",
		}, []string{"alert_id"}),

		notificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigalert_notifications_total",
			Help: "Total number of notifications handed off to a sink, by sink kind.",
		}, []string{"sink"}),

		samplerErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigalert_sampler_errors_total",
			Help: "Total number of signal sampling failures, by signal name.",
		}, []string{"signal"}),

		samplerLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sigalert_sampler_duration_seconds",
			Help:    "Signal sampling duration, by signal name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"signal"}),

		queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sigalert_queue_depth",
			Help: "Current length of the durable message delivery queue.",
		}),

		queueDelivered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigalert_queue_delivered_total",
			Help: "Total number of queue entries successfully delivered.",
		}),

		queueRetried: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sigalert_queue_retried_total",
			Help: "Total number of queue entries requeued after a failed delivery attempt.",
		}),

		queueDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigalert_queue_dropped_total",
			Help: "Total number of queue entries dropped, by reason.",
		}, []string{"reason"}),
	}
}

func (m *Metrics) AlertEvaluated(alertID string) {
	m.alertEvaluations.WithLabelValues(alertID).Inc()
}

func (m *Metrics) DeviationFired(alertID string) {
	m.deviationsFired.WithLabelValues(alertID).Inc()
}

func (m *Metrics) CooloffSuppressed(alertID string) {
	m.cooloffSuppressed.WithLabelValues(alertID).Inc()
}

func (m *Metrics) Notified(sinkKind string) {
	m.notificationsTotal.WithLabelValues(sinkKind).Inc()
}

func (m *Metrics) SamplerError(signalName string) {
	m.samplerErrors.WithLabelValues(signalName).Inc()
}

func (m *Metrics) SamplerDuration(signalName string, d time.Duration) {
	m.samplerLatency.WithLabelValues(signalName).Observe(d.Seconds())
}

// QueueDepth, QueueDelivered, QueueRetried, and QueueDropped satisfy
// internal/queue.Metrics.
func (m *Metrics) QueueDepth(n int64) { m.queueDepth.Set(float64(n)) }
func (m *Metrics) QueueDelivered()    { m.queueDelivered.Inc() }
func (m *Metrics) QueueRetried()      { m.queueRetried.Inc() }
func (m *Metrics) QueueDropped(reason string) {
	m.queueDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
