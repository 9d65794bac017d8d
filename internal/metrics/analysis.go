// Package metrics exposes application metrics collectors.
package metrics

import (
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysisRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stateinsight7000",
		Subsystem: "analysis",
		Name:      "runs_total",
		Help:      "Count of analysis runs.",
	}, []string{"network", "status"})

	analysisStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stateinsight7000",
		Subsystem: "analysis",
		Name:      "stage_duration_seconds",
		Help:      "Duration of a single analysis stage.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "stage", "status"})

	analysisGraphSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stateinsight7000",
		Subsystem: "analysis",
		Name:      "graph_size",
		Help:      "Number of states and transitions per analyzed graph.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16), // 1..32768
	}, []string{"network", "kind"})

	analysisDatumDecodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stateinsight7000",
		Subsystem: "analysis",
		Name:      "datum_decodes_total",
		Help:      "Count of datum decodes by cache result.",
	}, []string{"network", "result"})
)

// Analysis tracks metrics for the analysis pipeline.
type Analysis struct {
	network model.Network
}

// NewAnalysis constructs an Analysis collector with sane defaults.
func NewAnalysis(network model.Network) *Analysis {
	if network == "" {
		network = "unknown"
	}
	return &Analysis{network: network}
}

// ObserveStage records one pipeline stage: decode, build, classify or analyze.
func (m Analysis) ObserveStage(stage string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	analysisStageDuration.WithLabelValues(string(m.network), stage, status).
		Observe(time.Since(started).Seconds())
}

// ObserveRun records a finished run with the size of the produced graph.
func (m Analysis) ObserveRun(err error, nodes, edges int) {
	status := "success"
	if err != nil {
		status = "error"
	}
	analysisRunsTotal.WithLabelValues(string(m.network), status).Inc()
	if err != nil {
		return
	}
	analysisGraphSize.WithLabelValues(string(m.network), "states").Observe(float64(nodes))
	analysisGraphSize.WithLabelValues(string(m.network), "transitions").Observe(float64(edges))
}

// ObserveDecodes adds datum cache hits and misses of a run.
func (m Analysis) ObserveDecodes(hits, misses int) {
	analysisDatumDecodes.WithLabelValues(string(m.network), "hit").Add(float64(hits))
	analysisDatumDecodes.WithLabelValues(string(m.network), "miss").Add(float64(misses))
}
