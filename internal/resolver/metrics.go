package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resolveTotal counts Resolve calls by outcome: hit, miss, not_found, error
	resolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "du_browser_resolve_total",
		Help: "Total path resolutions by result",
	}, []string{"result"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "du_browser_scan_duration_seconds",
		Help:    "Duration of full report scans",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	})

	malformedLines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "du_browser_malformed_lines_total",
		Help: "Malformed report lines skipped during scans",
	})

	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "du_browser_cache_evictions_total",
		Help: "Resolution results evicted from the LRU cache",
	})
)
