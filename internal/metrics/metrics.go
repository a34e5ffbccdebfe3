// Package metrics exposes prometheus counters for recordings and estimates.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cropcalc"

var (
	observationsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observations_recorded_total",
		Help:      "Observation recording attempts by outcome.",
	}, []string{"outcome"})

	estimates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "estimates_total",
		Help:      "Estimates served by mode and outcome.",
	}, []string{"mode", "outcome"})
)

const (
	OutcomeOK              = "ok"
	OutcomeValidationError = "validation_error"
	OutcomeStoreError      = "store_error"
)

// ObserveRecording counts one recording attempt.
func ObserveRecording(outcome string) {
	observationsRecorded.WithLabelValues(outcome).Inc()
}

// ObserveEstimate counts one estimate. For unavailable estimates outcome is
// the reason, e.g. insufficient_samples.
func ObserveEstimate(mode, outcome string) {
	estimates.WithLabelValues(mode, outcome).Inc()
}
