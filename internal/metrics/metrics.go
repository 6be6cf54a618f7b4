// Package metrics holds the Prometheus collectors for the campaign pipeline
// and the tracking API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "battery_reminder"

type Metrics struct {
	NotificationsSent   prometheus.Counter
	NotificationsFailed prometheus.Counter
	Batches             *prometheus.CounterVec
	DeliveryLogErrors   prometheus.Counter
	CampaignDuration    prometheus.Histogram
	StaleLocks          prometheus.Gauge
	Recipients          prometheus.Gauge

	Clicks      prometheus.Counter
	Conversions *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		NotificationsSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Notifications accepted by the push gateway.",
		}),
		NotificationsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Notifications rejected individually or as part of a failed batch.",
		}),
		Batches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Multicast batches by outcome.",
		}, []string{"outcome"}),
		DeliveryLogErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_log_errors_total",
			Help:      "Successful sends whose delivery record could not be written.",
		}),
		CampaignDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "campaign_duration_seconds",
			Help:      "Wall time of a full campaign run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		StaleLocks: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stale_locks",
			Help:      "Stale locks found by the last run.",
		}),
		Recipients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recipients",
			Help:      "Recipients resolved by the last run.",
		}),
		Clicks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_total",
			Help:      "Tracked notification clicks.",
		}),
		Conversions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "battery_checks_total",
			Help:      "Battery check claims by result.",
		}, []string{"result"}),
	}
}
