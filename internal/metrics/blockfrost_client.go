package metrics

import (
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blockfrostRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stateinsight7000",
		Subsystem: "blockfrost_client",
		Name:      "requests_total",
		Help:      "Count of Blockfrost API requests.",
	}, []string{"operation", "network", "status"})
	blockfrostRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stateinsight7000",
		Subsystem: "blockfrost_client",
		Name:      "request_duration_seconds",
		Help:      "Duration of Blockfrost API requests including retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "network", "status"})
	blockfrostRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stateinsight7000",
		Subsystem: "blockfrost_client",
		Name:      "retries_total",
		Help:      "Count of retried Blockfrost API requests.",
	}, []string{"operation", "network"})
	blockfrostBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "stateinsight7000",
		Subsystem: "blockfrost_client",
		Name:      "circuit_breaker_open",
		Help:      "1 while the circuit breaker rejects requests.",
	}, []string{"network"})
)

// BlockfrostClient tracks metrics for calls to the Blockfrost API.
type BlockfrostClient struct {
	network model.Network
}

// NewBlockfrostClient constructs a metrics collector for Blockfrost calls.
func NewBlockfrostClient(network model.Network) *BlockfrostClient {
	if network == "" {
		network = "unknown"
	}
	return &BlockfrostClient{network: network}
}

// Observe records a single API call outcome and duration.
func (m BlockfrostClient) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	blockfrostRequestsTotal.WithLabelValues(operation, string(m.network), status).Inc()
	blockfrostRequestDuration.WithLabelValues(operation, string(m.network), status).Observe(time.Since(started).Seconds())
}

func (m BlockfrostClient) ObserveRetry(operation string) {
	blockfrostRetriesTotal.WithLabelValues(operation, string(m.network)).Inc()
}

func (m BlockfrostClient) SetBreakerOpen(open bool) {
	v := 0.0
	if open {
		v = 1
	}
	blockfrostBreakerState.WithLabelValues(string(m.network)).Set(v)
}
