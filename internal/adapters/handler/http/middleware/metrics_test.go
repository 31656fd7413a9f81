package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/wefixte/Foreach-Wildwatch/internal/monitoring"
)

func scrape(t *testing.T, metrics *monitoring.Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	metrics.Handler().ServeHTTP(w, req)
	return w.Body.String()
}

func TestMetricsMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := monitoring.New()

	router := gin.New()
	router.Use(MetricsMiddleware(metrics))
	router.GET("/widgets/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/widgets/42", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `wildwatch_http_requests_total{method="GET",route="/widgets/:id",status="200"} 1`)
	assert.NotContains(t, body, "/widgets/42", "raw paths must not become label values")
}

func TestMetricsMiddlewareLabelsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := monitoring.New()

	router := gin.New()
	router.Use(MetricsMiddleware(metrics))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/nowhere", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `route="unmatched"`)
}
