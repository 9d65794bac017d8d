package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sourceCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "stateinsight7000",
	Subsystem: "source_cache",
	Name:      "lookups_total",
	Help:      "Count of response cache lookups.",
}, []string{"operation", "result"})

// SourceCache tracks hits and misses of the on-disk response cache.
type SourceCache struct{}

func NewSourceCache() *SourceCache {
	return &SourceCache{}
}

func (m SourceCache) ObserveLookup(operation string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	sourceCacheLookupsTotal.WithLabelValues(operation, result).Inc()
}
