package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_stats_cache_lookups_total",
			Help: "Total number of result cache lookups by operation and outcome",
		},
		[]string{"operation", "result"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "league_stats_query_duration_seconds",
			Help:    "Duration of stats and prediction queries in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_stats_predictions_total",
			Help: "Total number of match predictions by outcome",
		},
		[]string{"outcome"},
	)

	MatchLogRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "league_stats_match_log_rows",
			Help: "Number of match rows before and after cleaning",
		},
		[]string{"stage"},
	)

	ModelAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "league_stats_model_test_accuracy",
			Help: "Accuracy of the outcome model on the held-out split",
		},
	)

	WarmupTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_stats_warmup_tasks_total",
			Help: "Total number of cache warmup tasks by status",
		},
		[]string{"status"},
	)
)

// RecordCacheLookup records a cache hit or miss for an operation.
func RecordCacheLookup(operation string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(operation, result).Inc()
}

// RecordQuery records the duration of one query.
func RecordQuery(operation string, seconds float64) {
	QueryDuration.WithLabelValues(operation).Observe(seconds)
}

func RecordPrediction(outcome string) {
	PredictionsTotal.WithLabelValues(outcome).Inc()
}

// UpdateMatchLogRows publishes the cleaning counts of the loaded log.
func UpdateMatchLogRows(before, after int) {
	MatchLogRows.WithLabelValues("raw").Set(float64(before))
	MatchLogRows.WithLabelValues("clean").Set(float64(after))
}

func UpdateModelAccuracy(accuracy float64) {
	ModelAccuracy.Set(accuracy)
}

func RecordWarmupTask(status string) {
	WarmupTasksTotal.WithLabelValues(status).Inc()
}
