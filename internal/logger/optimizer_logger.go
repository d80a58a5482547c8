// Package logger provides optimizer-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// OptimizerLogger provides dedicated logging for threshold searches and Kelly validation.
type OptimizerLogger struct {
	*logrus.Entry
}

// NewOptimizerLogger creates a new optimizer logger.
func NewOptimizerLogger(baseLogger *logrus.Logger) *OptimizerLogger {
	return &OptimizerLogger{
		Entry: baseLogger.WithField("component", "optimizer"),
	}
}

// LogSearchStarted logs the start of a grid search.
func (ol *OptimizerLogger) LogSearchStarted(games, candidates, minSample int) {
	ol.WithFields(logrus.Fields{
		"games":      games,
		"candidates": candidates,
		"min_sample": minSample,
	}).Info("Threshold search started")
}

// LogCandidate logs the outcome of one threshold combination.
func (ol *OptimizerLogger) LogCandidate(params map[string]interface{}, totalGames int, meanWinRate float64, accepted bool) {
	ol.WithFields(logrus.Fields{
		"parameters":    params,
		"total_games":   totalGames,
		"mean_win_rate": meanWinRate,
		"accepted":      accepted,
	}).Debug("Threshold candidate evaluated")
}

// LogSearchCompleted logs the best candidate found.
func (ol *OptimizerLogger) LogSearchCompleted(evaluated, accepted int, bestParams map[string]interface{}, bestWinRate, durationMs float64) {
	ol.WithFields(logrus.Fields{
		"evaluated":     evaluated,
		"accepted":      accepted,
		"best_params":   bestParams,
		"best_win_rate": bestWinRate,
		"duration_ms":   durationMs,
	}).Info("Threshold search completed")
}

// LogKellyFraction logs the simulated outcome of one Kelly fraction.
func (ol *OptimizerLogger) LogKellyFraction(fraction, finalBankroll, roi, maxDrawdown, sharpe float64, bankrupt bool) {
	ol.WithFields(logrus.Fields{
		"kelly_fraction": fraction,
		"final_bankroll": finalBankroll,
		"roi":            roi,
		"max_drawdown":   maxDrawdown,
		"sharpe_ratio":   sharpe,
		"bankrupt":       bankrupt,
	}).Info("Kelly fraction simulated")
}
