// Package metrics exposes Prometheus counters for the discovery engine.
// Collectors register on the default registry; a driver that wants to
// scrape them mounts promhttp.Handler itself.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage label values for RequestsTotal.
const (
	StageBaseline  = "baseline"
	StageLearn     = "learn"
	StageSizing    = "sizing"
	StageDiscovery = "discovery"
	StageVerify    = "verify"
	StageReplay    = "replay"
)

var (
	// RequestsTotal counts probe requests sent, by pipeline stage.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paramprobe",
		Name:      "requests_total",
		Help:      "Probe requests sent, by pipeline stage.",
	}, []string{"stage"})

	// ParametersFound counts parameters confirmed as hidden.
	ParametersFound = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paramprobe",
		Name:      "parameters_found_total",
		Help:      "Parameters confirmed to alter server behavior.",
	})

	// VerifyOutcomes counts verification results per finding.
	VerifyOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paramprobe",
		Name:      "verify_outcomes_total",
		Help:      "Verification outcomes for found parameters.",
	}, []string{"outcome"}) // kept, dropped

	// RunsTotal counts completed runs per result.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paramprobe",
		Name:      "runs_total",
		Help:      "Discovery runs, by result.",
	}, []string{"result"}) // ok, error
)
