package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/b2b-edge/internal/metrics"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthReportsLastScan(t *testing.T) {
	s := NewServer(Config{ServiceName: "b2b-edge", Version: "test"})
	s.RecordScan(time.Date(2025, 11, 11, 15, 0, 0, 0, time.UTC), "success")

	rec := get(t, s.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "2025-11-11T15:00:00Z", resp.LastScan)
	assert.Equal(t, "success", resp.LastStatus)
}

func TestLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "b2b-edge"})
	rec := get(t, s.Handler(), "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "b2b-edge")
}

func TestReadyChecks(t *testing.T) {
	s := NewServer(Config{ServiceName: "b2b-edge"})
	dbErr := errors.New("connection refused")
	dbHealthy := false
	s.AddCheck("database", func(ctx context.Context) error {
		if dbHealthy {
			return nil
		}
		return dbErr
	})

	rec := get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Checks["service"])
	assert.Equal(t, "error: connection refused", resp.Checks["database"])

	s.SetReady(true)
	dbHealthy = true
	rec = get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.InitRegistry()
	metrics.RecordScanCycle("success", 0.5)

	s := NewServer(Config{ServiceName: "b2b-edge", MetricsPath: "/metrics"})
	rec := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "b2b_edge_scan_cycles_total")
}
