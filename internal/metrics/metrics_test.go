package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/knowledge-engine/pagefilter/internal/filter"
	"github.com/knowledge-engine/pagefilter/internal/metrics"
)

func TestObserveEvaluation(t *testing.T) {
	matchedBefore := testutil.ToFloat64(metrics.EvaluationsTotal.WithLabelValues("matched"))
	emptyBefore := testutil.ToFloat64(metrics.EvaluationsTotal.WithLabelValues("empty"))

	metrics.ObserveEvaluation(filter.Result{
		Tokens:  []string{"alpha"},
		Matched: []int{0, 2},
		Total:   5,
	}, time.Millisecond)

	assert.Equal(t, matchedBefore+1, testutil.ToFloat64(metrics.EvaluationsTotal.WithLabelValues("matched")))
	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.IndexedEntries))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.MatchedEntries))

	metrics.ObserveEvaluation(filter.Result{Tokens: []string{"zzz"}, Matched: []int{}, Empty: true, Total: 5}, time.Millisecond)
	assert.Equal(t, emptyBefore+1, testutil.ToFloat64(metrics.EvaluationsTotal.WithLabelValues("empty")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.MatchedEntries))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.EvaluationDuration))
}

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.Register()
		metrics.Register()
	})
}
