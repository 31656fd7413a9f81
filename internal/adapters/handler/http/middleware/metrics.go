package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wefixte/Foreach-Wildwatch/internal/monitoring"
)

// MetricsMiddleware records per-request counters and latency. The route
// template (not the raw path) is used as the label so ids do not blow up
// the cardinality.
func MetricsMiddleware(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
