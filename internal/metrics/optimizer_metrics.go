// Package metrics defines optimizer-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Optimizer metrics
var (
	OptimizerRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "optimizer_runs_total",
		Help:      "Total number of threshold searches by status",
	}, []string{"status"})
	OptimizerCandidatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "optimizer_candidates_total",
		Help:      "Threshold combinations evaluated by outcome",
	}, []string{"outcome"})
	OptimizerBestWinRate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "optimizer_best_win_rate_percent",
		Help:      "Mean tier win rate of the best threshold set per sport",
	}, []string{"sport"})
	OptimizerDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "optimizer_duration_seconds",
		Help:      "Duration of threshold searches in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// RecordOptimizerRun records a finished threshold search.
// status should be one of: "success", "failure"
func RecordOptimizerRun(status string, evaluated, accepted int, durationSeconds float64) {
	OptimizerRunsTotal.WithLabelValues(status).Inc()
	OptimizerCandidatesTotal.WithLabelValues("accepted").Add(float64(accepted))
	OptimizerCandidatesTotal.WithLabelValues("rejected").Add(float64(evaluated - accepted))
	OptimizerDuration.Observe(durationSeconds)
}

// UpdateBestWinRate updates the best mean win rate found for a sport.
func UpdateBestWinRate(sport string, winRate float64) {
	OptimizerBestWinRate.WithLabelValues(sport).Set(winRate)
}
