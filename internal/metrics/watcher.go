package metrics

import (
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	watcherPollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stateinsight7000",
		Subsystem: "watcher",
		Name:      "polls_total",
		Help:      "Count of source polls.",
	}, []string{"network", "status"})

	watcherPollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stateinsight7000",
		Subsystem: "watcher",
		Name:      "poll_duration_seconds",
		Help:      "Duration of a poll including re-analysis.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	watcherNewTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stateinsight7000",
		Subsystem: "watcher",
		Name:      "new_transactions_total",
		Help:      "Count of transactions added to the watched graph.",
	}, []string{"network"})

	watcherSchemaReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stateinsight7000",
		Subsystem: "watcher",
		Name:      "schema_reloads_total",
		Help:      "Count of schema reloads triggered by file changes.",
	}, []string{"network", "status"})
)

// Watcher tracks metrics for watch mode.
type Watcher struct {
	network model.Network
}

func NewWatcher(network model.Network) *Watcher {
	if network == "" {
		network = "unknown"
	}
	return &Watcher{network: network}
}

// ObservePoll records a poll outcome and how many new transactions it brought.
func (m Watcher) ObservePoll(err error, newTxs int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	watcherPollsTotal.WithLabelValues(string(m.network), status).Inc()
	watcherPollDuration.WithLabelValues(string(m.network), status).Observe(time.Since(started).Seconds())
	if newTxs > 0 {
		watcherNewTransactions.WithLabelValues(string(m.network)).Add(float64(newTxs))
	}
}

func (m Watcher) ObserveSchemaReload(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	watcherSchemaReloads.WithLabelValues(string(m.network), status).Inc()
}
