package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batch-scheduler-api/internal/service"
)

func newMetricsRouter(h *MetricsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", h.Prometheus)
	router.GET("/metrics/summary", h.Snapshot)
	return router
}

func TestMetricsReady(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{"postgres": ok, "redis": ok})

	w := serve(newMetricsRouter(h), http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ready"`)
}

func TestMetricsReadyDegraded(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})

	w := serve(newMetricsRouter(h), http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)
}

func TestMetricsPrometheusAndSnapshot(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordScheduleRun(service.OperationGenerate, 4, 1, 20*time.Millisecond, nil)
	router := newMetricsRouter(NewMetricsHandler(metrics, nil))

	w := serve(router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `schedule_runs_total{operation="generate",outcome="success"} 1`)

	w = serve(router, http.MethodGet, "/metrics/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unassigned_sessions":1`)

	w = serve(newMetricsRouter(NewMetricsHandler(nil, nil)), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
