package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersRegistered(t *testing.T) {
	RequestsTotal.WithLabelValues(StageBaseline).Inc()
	RequestsTotal.WithLabelValues(StageBaseline).Inc()
	if got := testutil.ToFloat64(RequestsTotal.WithLabelValues(StageBaseline)); got < 2 {
		t.Errorf("baseline requests counter = %v, want >= 2", got)
	}

	ParametersFound.Inc()
	if got := testutil.ToFloat64(ParametersFound); got < 1 {
		t.Errorf("parameters found counter = %v, want >= 1", got)
	}

	VerifyOutcomes.WithLabelValues("kept").Inc()
	if got := testutil.ToFloat64(VerifyOutcomes.WithLabelValues("kept")); got < 1 {
		t.Errorf("verify outcomes counter = %v, want >= 1", got)
	}
}
