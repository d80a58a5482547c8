// Package metrics defines classifier-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Classifier counter vectors
var (
	ClassifierDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classifier_decisions_total",
		Help:      "Total number of matchup classifications by sport and tier",
	}, []string{"sport", "tier"})
)

// Classifier histogram vectors
var (
	SignalWinRate = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "signal_win_rate_percent",
		Help:      "Win rate used to size bettable signals",
		Buckets:   []float64{50, 55, 60, 65, 70, 75, 80, 85},
	}, []string{"sport", "tier"})
)

// RecordDecision records a classifier decision.
func RecordDecision(sport, tier string) {
	ClassifierDecisionsTotal.WithLabelValues(sport, tier).Inc()
}

// RecordSignalWinRate records the win rate attached to a bettable signal.
func RecordSignalWinRate(sport, tier string, winRate float64) {
	SignalWinRate.WithLabelValues(sport, tier).Observe(winRate)
}
