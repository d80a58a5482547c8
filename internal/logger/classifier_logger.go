// Package logger provides classifier-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ClassifierLogger provides dedicated logging for matchup classification.
type ClassifierLogger struct {
	*logrus.Entry
}

// NewClassifierLogger creates a new classifier logger.
func NewClassifierLogger(baseLogger *logrus.Logger) *ClassifierLogger {
	return &ClassifierLogger{
		Entry: baseLogger.WithField("component", "classifier"),
	}
}

// LogEvaluation logs a completed evaluation pass over upcoming matchups.
func (cl *ClassifierLogger) LogEvaluation(sport, preset string, matchupsEvaluated, betsSignalled, skipped int, durationMs float64) {
	cl.WithFields(logrus.Fields{
		"sport":                  sport,
		"preset":                 preset,
		"matchups_evaluated":     matchupsEvaluated,
		"bets_signalled":         betsSignalled,
		"skipped":                skipped,
		"evaluation_duration_ms": durationMs,
	}).Info("Matchup evaluation completed")
}

// LogDecision logs a tier assigned to a matchup.
func (cl *ClassifierLogger) LogDecision(game, pick, tier string, restedWins, b2bWins, formAdvantage int, winRate float64) {
	cl.WithFields(logrus.Fields{
		"game":           game,
		"pick":           pick,
		"tier":           tier,
		"rested_wins":    restedWins,
		"b2b_wins":       b2bWins,
		"form_advantage": formAdvantage,
		"win_rate":       winRate,
	}).Info("Matchup classified")
}

// LogSkip logs a back-to-back matchup that did not qualify.
func (cl *ClassifierLogger) LogSkip(game, reason string) {
	cl.WithFields(logrus.Fields{
		"game":   game,
		"reason": reason,
	}).Debug("Matchup skipped")
}

// LogAdjustments logs enhancement adjustments applied after base classification.
func (cl *ClassifierLogger) LogAdjustments(game, baseTier, finalTier string, adjustments []string) {
	cl.WithFields(logrus.Fields{
		"game":        game,
		"base_tier":   baseTier,
		"final_tier":  finalTier,
		"adjustments": adjustments,
	}).Info("Classification adjusted")
}
