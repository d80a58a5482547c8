// Package metrics provides centralized Prometheus metrics registry for the wagering engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "b2b_edge"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	WagersPlacedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wagers_placed_total",
		Help:      "Total number of wagers added to the ledger",
	}, []string{"sport", "tier"})
	WagersRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wagers_rejected_total",
		Help:      "Total number of wager candidates rejected by the ledger",
	}, []string{"sport", "reason"})
	WagersSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wagers_settled_total",
		Help:      "Total number of wagers settled by result",
	}, []string{"sport", "result"})
	ScanCyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scan_cycles_total",
		Help:      "Total number of scan cycles by status",
	}, []string{"status"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of data source circuit breaker trips",
	})
	DataSourceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "datasource_requests_total",
		Help:      "Total number of data source requests by source and status",
	}, []string{"source", "status"})
	SeasonCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "season_cache_lookups_total",
		Help:      "Season cache lookups by outcome",
	}, []string{"outcome"})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "current_bankroll",
		Help:      "Current bankroll in currency units",
	})
	PendingWagers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_wagers",
		Help:      "Number of wagers awaiting settlement",
	})
	TotalProfit = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "total_profit",
		Help:      "Cumulative settled profit",
	})
)

// Histogram metrics
var (
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Duration of scan cycles in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})
	DataSourceLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "datasource_request_duration_seconds",
		Help:      "Latency of data source requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(WagersPlacedTotal)
		registry.MustRegister(WagersRejectedTotal)
		registry.MustRegister(WagersSettledTotal)
		registry.MustRegister(ScanCyclesTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(DataSourceRequestsTotal)
		registry.MustRegister(SeasonCacheLookupsTotal)

		// Register gauge metrics
		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(PendingWagers)
		registry.MustRegister(TotalProfit)

		// Register histogram metrics
		registry.MustRegister(ScanDuration)
		registry.MustRegister(DataSourceLatency)

		// Register classifier metrics
		registry.MustRegister(ClassifierDecisionsTotal)
		registry.MustRegister(SignalWinRate)

		// Register optimizer metrics
		registry.MustRegister(OptimizerRunsTotal)
		registry.MustRegister(OptimizerCandidatesTotal)
		registry.MustRegister(OptimizerBestWinRate)
		registry.MustRegister(OptimizerDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordWagerPlaced records a wager added to the ledger.
func RecordWagerPlaced(sport, tier string) {
	WagersPlacedTotal.WithLabelValues(sport, tier).Inc()
}

// RecordWagerRejected records a candidate the ledger declined.
func RecordWagerRejected(sport, reason string) {
	WagersRejectedTotal.WithLabelValues(sport, reason).Inc()
}

// RecordWagerSettled records a settlement.
func RecordWagerSettled(sport, result string) {
	WagersSettledTotal.WithLabelValues(sport, result).Inc()
}

// RecordScanCycle records a completed scan cycle.
func RecordScanCycle(status string, durationSeconds float64) {
	ScanCyclesTotal.WithLabelValues(status).Inc()
	ScanDuration.Observe(durationSeconds)
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// RecordDataSourceRequest records a data source request and its latency.
func RecordDataSourceRequest(source, status string, durationSeconds float64) {
	DataSourceRequestsTotal.WithLabelValues(source, status).Inc()
	DataSourceLatency.WithLabelValues(source).Observe(durationSeconds)
}

// RecordCacheLookup records a season cache hit, miss or refresh.
func RecordCacheLookup(outcome string) {
	SeasonCacheLookupsTotal.WithLabelValues(outcome).Inc()
}

// UpdateBankroll updates the current bankroll gauge.
func UpdateBankroll(amount float64) {
	CurrentBankroll.Set(amount)
}

// UpdateLedger updates the pending count and cumulative profit gauges.
func UpdateLedger(pending int, profit float64) {
	PendingWagers.Set(float64(pending))
	TotalProfit.Set(profit)
}
