package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batch-scheduler-api/internal/service"
)

func metricsRouter(svc *service.MetricsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics(svc, "/health"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/batches/:id/schedule", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func hit(router *gin.Engine, path string) {
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
}

func TestMetricsRecordsRouteTemplate(t *testing.T) {
	svc := service.NewMetricsService()
	router := metricsRouter(svc)

	hit(router, "/batches/b1/schedule")
	hit(router, "/batches/b2/schedule")
	hit(router, "/health")
	hit(router, "/nowhere")

	assert.Equal(t, uint64(3), svc.Snapshot().RequestsTotal)

	families, err := svc.Registry().Gather()
	require.NoError(t, err)
	var routes []string
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "path" {
					routes = append(routes, label.GetValue())
				}
			}
		}
	}
	assert.ElementsMatch(t, []string{"/batches/:id/schedule", unmatchedRoute}, routes)
}

func TestMetricsNilServicePassesThrough(t *testing.T) {
	router := metricsRouter(nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/batches/b1/schedule", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
