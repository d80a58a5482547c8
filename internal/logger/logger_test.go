package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestClassifierLoggerEvaluation(t *testing.T) {
	log, buf := setupTestLogger()
	classifierLogger := NewClassifierLogger(log)

	classifierLogger.LogEvaluation("NHL", "canonical", 40, 3, 5, 12.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "NHL", logEntry["sport"])
	assert.Equal(t, "classifier", logEntry["component"])
	assert.Equal(t, float64(3), logEntry["bets_signalled"])
}

func TestClassifierLoggerDecision(t *testing.T) {
	log, buf := setupTestLogger()
	classifierLogger := NewClassifierLogger(log)

	classifierLogger.LogDecision("TOR @ BOS (2024-01-02)", "BOS", "S", 5, 1, 4, 68.2)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "S", logEntry["tier"])
	assert.Equal(t, float64(4), logEntry["form_advantage"])
}

func TestClassifierLoggerSkipIsDebug(t *testing.T) {
	log, buf := setupTestLogger()
	log.SetLevel(logrus.InfoLevel)
	classifierLogger := NewClassifierLogger(log)

	classifierLogger.LogSkip("TOR @ BOS (2024-01-02)", "insufficient form advantage")

	assert.Empty(t, buf.String())
}

func TestClassifierLoggerAdjustments(t *testing.T) {
	log, buf := setupTestLogger()
	classifierLogger := NewClassifierLogger(log)

	classifierLogger.LogAdjustments("TOR @ BOS (2024-01-02)", "A", "S", []string{"upgraded A to S"})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "A", logEntry["base_tier"])
	assert.Equal(t, "S", logEntry["final_tier"])
}

func TestAuditLoggerWagerPlacement(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogWagerPlacement(
		"0d6c8a5e-5a55-4d27-9f6c-3c6f0c1f7c11",
		"NHL|2024-01-02|TOR|BOS",
		"BOS",
		"S",
		91,
		2.0,
		68.2,
		1000,
		time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "NHL|2024-01-02|TOR|BOS", logEntry["wager_key"])
	assert.Equal(t, float64(91), logEntry["stake"])
}

func TestAuditLoggerSettlement(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogSettlement("id", "NHL|2024-01-02|TOR|BOS", "won", 91, 1000, 1091)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "won", logEntry["result"])
	assert.Equal(t, float64(1091), logEntry["bankroll_after"])
}

func TestAuditLoggerPersistenceFailure(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogPersistenceFailure("settle", "NHL|2024-01-02|TOR|BOS", errors.New("disk full"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "disk full", logEntry["error"])
}

func TestOptimizerLoggerKellyFraction(t *testing.T) {
	log, buf := setupTestLogger()
	optimizerLogger := NewOptimizerLogger(log)

	optimizerLogger.LogKellyFraction(0.25, 1450.5, 45.05, 12.3, 1.8, false)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "optimizer", logEntry["component"])
	assert.Equal(t, 0.25, logEntry["kelly_fraction"])
}

func TestDiscardLogger(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	log, _ := setupTestLogger()
	assert.Same(t, log, OrDiscard(log))
}
