package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckHealth(t *testing.T) {
	hc := NewHealthChecker("crm-api", "v1")
	hc.AddCheck("database", DatabaseCheck(pingerFunc(func(context.Context) error { return nil })))

	status := hc.CheckHealth(context.Background())
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Equal(t, StatusHealthy, status.Checks["database"].Status)

	hc.AddCheck("cache", func(context.Context) CheckResult {
		return CheckResult{Status: StatusUnhealthy, Message: "down"}
	})
	status = hc.CheckHealth(context.Background())
	assert.Equal(t, StatusUnhealthy, status.Status)
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hc := NewHealthChecker("crm-api", "v1")
	hc.AddCheck("database", DatabaseCheck(pingerFunc(func(context.Context) error {
		return errors.New("connection refused")
	})))

	router := gin.New()
	router.GET("/health", hc.Handler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestObserveOperation(t *testing.T) {
	mc := NewMetricsCollector("crm-api", "v1")
	mc.ObserveOperation("Everything", 10*time.Millisecond, 0)
	mc.ObserveOperation("Everything", 10*time.Millisecond, 2)
	mc.ObserveOperation("Everything", 10*time.Millisecond, 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(mc.graphqlOperationsTotal.WithLabelValues("Everything", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(mc.graphqlOperationsTotal.WithLabelValues("Everything", "error")))
}

func TestMetricsMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mc := NewMetricsCollector("crm-api", "v1")
	// a second collector in the same process must not collide
	_ = NewMetricsCollector("crm-api", "v1")

	router := gin.New()
	router.Use(mc.MetricsMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/metrics", mc.Handler())

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `crm_api_http_requests_total{endpoint="/ping",method="GET",status="200"} 1`), body)
	assert.Contains(t, body, "crm_api_service_info")
}
