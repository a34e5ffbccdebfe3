package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRecording(t *testing.T) {
	before := testutil.ToFloat64(observationsRecorded.WithLabelValues(OutcomeOK))
	ObserveRecording(OutcomeOK)
	assert.Equal(t, before+1, testutil.ToFloat64(observationsRecorded.WithLabelValues(OutcomeOK)))
}

func TestObserveEstimate(t *testing.T) {
	before := testutil.ToFloat64(estimates.WithLabelValues("model", "insufficient_samples"))
	ObserveEstimate("model", "insufficient_samples")
	ObserveEstimate("model", "insufficient_samples")
	assert.Equal(t, before+2, testutil.ToFloat64(estimates.WithLabelValues("model", "insufficient_samples")))
}
