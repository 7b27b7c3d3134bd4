package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/knowledge-engine/pagefilter/internal/filter"
)

// Filter Prometheus metrics.
var (
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pagefilter",
			Name:      "evaluations_total",
			Help:      "Total number of query evaluations",
		},
		[]string{"result"}, // "matched" / "empty"
	)

	EvaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pagefilter",
			Name:      "evaluation_duration_seconds",
			Help:      "Query evaluation duration in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	QueryTokens = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pagefilter",
			Name:      "query_tokens",
			Help:      "Number of tokens per evaluated query",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
	)

	IndexedEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pagefilter",
			Name:      "indexed_entries",
			Help:      "Number of items in the loaded index",
		},
	)

	MatchedEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pagefilter",
			Name:      "matched_entries",
			Help:      "Number of items matched by the latest query",
		},
	)

	FollowedLinksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pagefilter",
			Name:      "followed_links_total",
			Help:      "Total number of links followed by a confirm gesture",
		},
	)
)

// Collectors lists every filter metric
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		EvaluationsTotal,
		EvaluationDuration,
		QueryTokens,
		IndexedEntries,
		MatchedEntries,
		FollowedLinksTotal,
	}
}

var registered bool

// Register registers the filter metrics with the default registry. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(Collectors()...)
	registered = true
}

// ObserveEvaluation records one evaluation. It matches the signature of
// filter.WithObserver.
func ObserveEvaluation(res filter.Result, elapsed time.Duration) {
	outcome := "matched"
	if res.Empty {
		outcome = "empty"
	}
	EvaluationsTotal.WithLabelValues(outcome).Inc()
	EvaluationDuration.Observe(elapsed.Seconds())
	QueryTokens.Observe(float64(len(res.Tokens)))
	IndexedEntries.Set(float64(res.Total))
	MatchedEntries.Set(float64(res.Count()))
}
