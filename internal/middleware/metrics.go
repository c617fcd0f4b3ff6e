package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batch-scheduler-api/internal/service"
)

// unmatchedRoute labels requests that hit no registered route so raw paths
// never become label values.
const unmatchedRoute = "unmatched"

// Metrics returns middleware that records request count and latency per route
// template. Requests to the skip paths are not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
