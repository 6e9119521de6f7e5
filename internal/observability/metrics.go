// Package observability holds the service-wide Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	sessionPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "training_service",
		Subsystem: "persistence",
		Name:      "last_session_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout session persisted.",
	})

	readinessDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "training_service",
		Subsystem: "readiness",
		Name:      "query_duration_seconds",
		Help:      "Time spent composing and projecting readiness views.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"outcome"})

	readinessDangerCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "training_service",
		Subsystem: "readiness",
		Name:      "danger_responses_total",
		Help:      "Readiness responses whose current ACWR was in the danger zone.",
	})
)

func init() {
	prometheus.MustRegister(sessionPersistGauge, readinessDuration, readinessDangerCounter)
}

// RecordSessionPersisted updates the persistence watermark gauge.
func RecordSessionPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	sessionPersistGauge.Set(float64(ts.Unix()))
}

// ObserveReadinessQuery records how long a readiness query took and whether it failed.
func ObserveReadinessQuery(elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	readinessDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordReadinessDanger counts a readiness response flagged as danger.
func RecordReadinessDanger() {
	readinessDangerCounter.Inc()
}
