// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for ledger mutations.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogWagerPlacement logs a wager being recorded.
func (al *AuditLogger) LogWagerPlacement(wagerID, key, pick, tier string, stake, odds, winRate, bankroll float64, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"wager_id":  wagerID,
		"wager_key": key,
		"pick":      pick,
		"tier":      tier,
		"stake":     stake,
		"odds":      odds,
		"win_rate":  winRate,
		"bankroll":  bankroll,
		"timestamp": timestamp.Unix(),
	}).Info("Wager placement recorded")
}

// LogWagerRejected logs a wager that was refused without mutating the ledger.
func (al *AuditLogger) LogWagerRejected(key, reason string) {
	al.WithFields(logrus.Fields{
		"wager_key": key,
		"reason":    reason,
	}).Info("Wager rejected")
}

// LogSettlement logs a wager transitioning out of pending.
func (al *AuditLogger) LogSettlement(wagerID, key, result string, profit, bankrollBefore, bankrollAfter float64) {
	al.WithFields(logrus.Fields{
		"wager_id":        wagerID,
		"wager_key":       key,
		"result":          result,
		"profit":          profit,
		"bankroll_before": bankrollBefore,
		"bankroll_after":  bankrollAfter,
	}).Info("Wager settled")
}

// LogPersistenceFailure logs a ledger flush that failed and was rolled back.
func (al *AuditLogger) LogPersistenceFailure(operation, key string, err error) {
	al.WithFields(logrus.Fields{
		"operation": operation,
		"wager_key": key,
		"error":     err.Error(),
	}).Error("Ledger persistence failed, mutation rolled back")
}
