// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes, used as the "outcome" label value.
const (
	OutcomeSuccess       = "success"
	OutcomeValidation    = "validation_error"
	OutcomeDeliveryError = "delivery_error"
	OutcomeRejected      = "rejected"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_submissions_total",
			Help: "Submit calls by outcome.",
		}, []string{"outcome"})

	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_deliveries_total",
			Help: "Delivery attempts by target and result.",
		}, []string{"target", "result"})

	DeliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_delivery_duration_seconds",
			Help:    "Time spent delivering one event, retries included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"target"})

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_form_sessions",
			Help: "Number of form sessions currently held in memory.",
		})

	SessionEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "form_session_evict_total",
			Help: "Cumulative number of form sessions evicted.",
		})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		DeliveriesTotal,
		DeliveryDuration,
		ActiveSessions,
		SessionEvictTotal,
	)
}
